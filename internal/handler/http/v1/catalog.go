package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/query"
	"github.com/shenikar/crisis_connect/internal/service"
)

// @Summary List active alerts for the caller's audience
// @Tags Alerts
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Alert
// @Router /alerts [get]
func (h *Handler) listActiveAlerts(c *gin.Context) {
	log := h.log(c, "listActiveAlerts")
	alerts, err := h.alertService.ListActiveAlerts(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// @Summary List all alerts
// @Tags Alerts
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Alert
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /alerts/all [get]
func (h *Handler) listAllAlerts(c *gin.Context) {
	log := h.log(c, "listAllAlerts")
	alerts, err := h.alertService.ListAllAlerts(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// @Summary Get an alert
// @Tags Alerts
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} models.Alert
// @Failure 404 {object} ErrorResponse "Alert not found"
// @Router /alerts/{id} [get]
func (h *Handler) getAlert(c *gin.Context) {
	log := h.log(c, "getAlert")
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}
	alert, err := h.alertService.GetAlert(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// @Summary Create an alert
// @Tags Alerts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param alert body service.AlertInput true "Alert"
// @Success 201 {object} models.Alert
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /alerts [post]
func (h *Handler) createAlert(c *gin.Context) {
	log := h.log(c, "createAlert")

	var input service.AlertInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, log, err, "invalid request body")
		return
	}

	alert, err := h.alertService.CreateAlert(c.Request.Context(), callerFrom(c), input)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

// @Summary Update an alert
// @Tags Alerts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Alert ID"
// @Param alert body UpdateAlertRequest true "Fields to change"
// @Success 200 {object} models.Alert
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Alert not found"
// @Router /alerts/{id} [put]
func (h *Handler) updateAlert(c *gin.Context) {
	log := h.log(c, "updateAlert")
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}

	var dto UpdateAlertRequest
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, log, err, "invalid request body")
		return
	}

	alert, err := h.alertService.UpdateAlert(c.Request.Context(), callerFrom(c), id, ToAlertPatch(dto))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, alert)
}

// @Summary Deactivate an alert
// @Tags Alerts
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Alert not found"
// @Router /alerts/{id} [delete]
func (h *Handler) deleteAlert(c *gin.Context) {
	log := h.log(c, "deleteAlert")
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}
	if err := h.alertService.DeleteAlert(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "alert deactivated"})
}

// @Summary List resources
// @Description Active resources only, admins use /resources/all for the rest.
// @Tags Resources
// @Produce json
// @Security ApiKeyAuth
// @Param type query string false "shelter, food, medical, water or other"
// @Success 200 {array} models.Resource
// @Router /resources [get]
func (h *Handler) listResources(c *gin.Context) {
	log := h.log(c, "listResources")

	filter := query.ResourceFilter{ActiveOnly: true}
	if raw := c.Query("type"); raw != "" {
		t := models.ResourceType(raw)
		filter.Type = &t
	}

	resources, err := h.resourceService.ListResources(c.Request.Context(), callerFrom(c), filter)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, resources)
}

// @Summary List all resources including inactive
// @Tags Resources
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Resource
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /resources/all [get]
func (h *Handler) listAllResources(c *gin.Context) {
	log := h.log(c, "listAllResources")
	caller := callerFrom(c)
	if !caller.IsAdmin() {
		respondError(c, log, models.ErrForbidden)
		return
	}
	resources, err := h.resourceService.ListResources(c.Request.Context(), caller, query.ResourceFilter{})
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, resources)
}

// @Summary Get a resource
// @Tags Resources
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Resource ID"
// @Success 200 {object} models.Resource
// @Failure 404 {object} ErrorResponse "Resource not found"
// @Router /resources/{id} [get]
func (h *Handler) getResource(c *gin.Context) {
	log := h.log(c, "getResource")
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}
	res, err := h.resourceService.GetResource(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Create a resource
// @Tags Resources
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param resource body service.ResourceInput true "Resource"
// @Success 201 {object} models.Resource
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /resources [post]
func (h *Handler) createResource(c *gin.Context) {
	log := h.log(c, "createResource")

	var input service.ResourceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, log, err, "invalid request body")
		return
	}

	res, err := h.resourceService.CreateResource(c.Request.Context(), callerFrom(c), input)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// @Summary Update a resource
// @Tags Resources
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Resource ID"
// @Param resource body UpdateResourceRequest true "Fields to change"
// @Success 200 {object} models.Resource
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Resource not found"
// @Router /resources/{id} [put]
func (h *Handler) updateResource(c *gin.Context) {
	log := h.log(c, "updateResource")
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}

	var dto UpdateResourceRequest
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, log, err, "invalid request body")
		return
	}
	patch, err := ToResourcePatch(dto)
	if err != nil {
		respondError(c, log, err)
		return
	}

	res, err := h.resourceService.UpdateResource(c.Request.Context(), callerFrom(c), id, patch)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Deactivate a resource
// @Tags Resources
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Resource ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Resource not found"
// @Router /resources/{id} [delete]
func (h *Handler) deleteResource(c *gin.Context) {
	log := h.log(c, "deleteResource")
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}
	if err := h.resourceService.DeleteResource(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "resource deactivated"})
}
