package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)

	// Вебхук Twilio не несет API-ключа, вместо него проверяется подпись
	api.POST("/sms/incoming", TwilioSignatureMiddleware(h.cfg, h.logger), h.incomingSMS)

	secured := api.Group("", APIKeyAuthMiddleware(h.cfg, h.logger), CallerMiddleware(h.logger))

	incidents := secured.Group("/incidents")
	{
		incidents.POST("/report", h.reportIncident)
		incidents.GET("", h.listIncidents)
		incidents.GET("/pending", h.listPendingIncidents)
		incidents.GET("/verified", h.listVerifiedIncidents)
		incidents.GET("/map-data", h.mapIncidents)
		incidents.GET("/:id", h.getIncident)
		incidents.PUT("/:id/verify", h.verifyIncident)
		incidents.PUT("/:id/ongoing", h.markIncidentOngoing)
		incidents.PUT("/:id/complete", h.markIncidentCompleted)
	}

	requests := secured.Group("/requests")
	{
		requests.POST("", h.createHelpRequest)
		requests.GET("", h.listHelpRequests)
		requests.GET("/available", h.listAvailableRequests)
		requests.GET("/nearby", h.listNearbyRequests)
		requests.GET("/:id", h.getHelpRequest)
		requests.PUT("/:id", h.updateHelpRequest)
		requests.DELETE("/:id", h.deleteHelpRequest)
		requests.POST("/:id/claim", h.claimHelpRequest)
		requests.POST("/:id/notes", h.addRequestNote)
	}

	volunteers := secured.Group("/volunteers")
	{
		volunteers.GET("", h.listVolunteers)
		volunteers.GET("/stats", h.volunteerStats)
		volunteers.GET("/:id/claims", h.listClaimsByVolunteer)
	}

	tasks := secured.Group("/tasks")
	{
		tasks.POST("", h.assignTask)
		tasks.GET("", h.listTasks)
		tasks.GET("/skills", h.listSkills)
		tasks.GET("/volunteers/:skill", h.listVolunteersBySkill)
		tasks.GET("/volunteer/:volunteerId", h.listVolunteerTasks)
		tasks.PUT("/update-status/:volunteerId/:taskId", h.respondToTask)
		tasks.PUT("/:id/complete", h.completeTask)
	}

	profiles := secured.Group("/volunteer-profiles")
	{
		profiles.GET("", h.listVolunteerProfiles)
		profiles.GET("/user/:userId", h.getVolunteerProfileByUser)
		profiles.GET("/:id", h.getVolunteerProfile)
		profiles.PUT("/:id", h.updateVolunteerProfile)
		profiles.PUT("/:id/application-status", h.updateApplicationStatus)
		profiles.PUT("/:id/skills", h.updateSkills)
	}

	alerts := secured.Group("/alerts")
	{
		alerts.GET("", h.listActiveAlerts)
		alerts.GET("/all", h.listAllAlerts)
		alerts.GET("/:id", h.getAlert)
		alerts.POST("", h.createAlert)
		alerts.PUT("/:id", h.updateAlert)
		alerts.DELETE("/:id", h.deleteAlert)
	}

	resources := secured.Group("/resources")
	{
		resources.GET("", h.listResources)
		resources.GET("/all", h.listAllResources)
		resources.GET("/:id", h.getResource)
		resources.POST("", h.createResource)
		resources.PUT("/:id", h.updateResource)
		resources.DELETE("/:id", h.deleteResource)
	}

	secured.GET("/ws", h.serveWS)
}
