package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/service"
)

// @Summary Report an incident
// @Description Civilian reports a new incident. It starts as pending until an admin verifies it.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param incident body service.IncidentInput true "Incident report"
// @Success 201 {object} models.Incident
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/report [post]
func (h *Handler) reportIncident(c *gin.Context) {
	log := h.log(c, "reportIncident")

	var input service.IncidentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, log, err, "invalid request body")
		return
	}

	incident, err := h.incidentService.ReportIncident(c.Request.Context(), callerFrom(c), input)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, incident)
}

// @Summary Verify an incident
// @Description Admin verifies a pending incident. Accepted volunteers are notified by email.
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} models.Incident
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 409 {object} ErrorResponse "Incident is not pending"
// @Router /incidents/{id}/verify [put]
func (h *Handler) verifyIncident(c *gin.Context) {
	h.advanceIncident(c, "verifyIncident", h.incidentService.VerifyIncident)
}

// @Summary Mark an incident as ongoing
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} models.Incident
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 409 {object} ErrorResponse "Incident is not verified"
// @Router /incidents/{id}/ongoing [put]
func (h *Handler) markIncidentOngoing(c *gin.Context) {
	h.advanceIncident(c, "markIncidentOngoing", h.incidentService.MarkIncidentOngoing)
}

// @Summary Mark an incident as completed
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} models.Incident
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 409 {object} ErrorResponse "Incident is not ongoing"
// @Router /incidents/{id}/complete [put]
func (h *Handler) markIncidentCompleted(c *gin.Context) {
	h.advanceIncident(c, "markIncidentCompleted", h.incidentService.MarkIncidentCompleted)
}

type incidentTransition func(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Incident, error)

func (h *Handler) advanceIncident(c *gin.Context, method string, advance incidentTransition) {
	log := h.log(c, method)
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}

	incident, err := advance(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, incident)
}

// @Summary Get an incident by ID
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} models.Incident
// @Failure 400 {object} ErrorResponse "Invalid ID format"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	log := h.log(c, "getIncident")
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}

	incident, err := h.incidentService.GetIncident(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, incident)
}

// @Summary List incidents
// @Description Civilians see only their own reports.
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Param search query string false "Substring of location, type or description"
// @Param type query string false "Incident type"
// @Param status query string false "Status code 0-3 or name"
// @Param minSeverity query int false "Lowest severity to include, 1-5"
// @Param startDate query string false "Created at or after (RFC3339 or YYYY-MM-DD)"
// @Param endDate query string false "Created at or before (RFC3339 or YYYY-MM-DD)"
// @Success 200 {array} models.Incident
// @Failure 400 {object} ErrorResponse "Invalid query"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.log(c, "listIncidents")

	var q IncidentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, log, err, "invalid query parameters")
		return
	}
	filter, err := ToIncidentFilter(q)
	if err != nil {
		respondError(c, log, err)
		return
	}

	incidents, err := h.incidentService.ListIncidents(c.Request.Context(), callerFrom(c), filter)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, incidents)
}

// @Summary List pending incidents
// @Description Admin queue ordered by severity, highest first.
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Incident
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /incidents/pending [get]
func (h *Handler) listPendingIncidents(c *gin.Context) {
	log := h.log(c, "listPendingIncidents")
	incidents, err := h.incidentService.ListPendingIncidents(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, incidents)
}

// @Summary List verified incidents
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Incident
// @Router /incidents/verified [get]
func (h *Handler) listVerifiedIncidents(c *gin.Context) {
	log := h.log(c, "listVerifiedIncidents")
	incidents, err := h.incidentService.ListVerifiedIncidents(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, incidents)
}

// @Summary Incidents for the map
// @Description Verified and ongoing incidents in summary form.
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.IncidentSummary
// @Router /incidents/map-data [get]
func (h *Handler) mapIncidents(c *gin.Context) {
	log := h.log(c, "mapIncidents")
	summaries, err := h.incidentService.MapIncidents(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}
