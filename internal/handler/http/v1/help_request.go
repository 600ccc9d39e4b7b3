package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/service"
)

// @Summary Create a help request
// @Description Civilian asks for help. The request always starts as pending.
// @Tags HelpRequests
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.HelpRequestInput true "Help request"
// @Success 201 {object} models.HelpRequest
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /requests [post]
func (h *Handler) createHelpRequest(c *gin.Context) {
	log := h.log(c, "createHelpRequest")

	var input service.HelpRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, log, err, "invalid request body")
		return
	}

	req, err := h.requestService.CreateHelpRequest(c.Request.Context(), callerFrom(c), input)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// @Summary List help requests
// @Description Civilians see only their own requests.
// @Tags HelpRequests
// @Produce json
// @Security ApiKeyAuth
// @Param search query string false "Substring of title or description"
// @Param category query string false "medical, shelter, food, rescue or other"
// @Param priority query string false "low, medium, high or critical"
// @Param status query string false "pending, claimed, in-progress, resolved or cancelled"
// @Param startDate query string false "Created at or after"
// @Param endDate query string false "Created at or before"
// @Success 200 {array} models.HelpRequest
// @Failure 400 {object} ErrorResponse "Invalid query"
// @Router /requests [get]
func (h *Handler) listHelpRequests(c *gin.Context) {
	log := h.log(c, "listHelpRequests")

	var q RequestListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, log, err, "invalid query parameters")
		return
	}
	filter, err := ToRequestFilter(q)
	if err != nil {
		respondError(c, log, err)
		return
	}

	reqs, err := h.requestService.ListHelpRequests(c.Request.Context(), callerFrom(c), filter)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// @Summary List requests available to claim
// @Tags HelpRequests
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.HelpRequest
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /requests/available [get]
func (h *Handler) listAvailableRequests(c *gin.Context) {
	log := h.log(c, "listAvailableRequests")
	reqs, err := h.requestService.ListAvailableRequests(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// @Summary List pending requests near a point
// @Description Nearest first, each with its distance in kilometres.
// @Tags HelpRequests
// @Produce json
// @Security ApiKeyAuth
// @Param latitude query number true "Center latitude"
// @Param longitude query number true "Center longitude"
// @Param radius query number false "Radius in km" default(10)
// @Success 200 {array} models.HelpRequest
// @Failure 400 {object} ErrorResponse "Invalid coordinates"
// @Router /requests/nearby [get]
func (h *Handler) listNearbyRequests(c *gin.Context) {
	log := h.log(c, "listNearbyRequests")

	var q NearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, log, err, "invalid query parameters")
		return
	}

	reqs, err := h.requestService.ListNearbyRequests(c.Request.Context(), callerFrom(c), ToNearbyInput(q))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// @Summary Get a help request by ID
// @Tags HelpRequests
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Request ID"
// @Success 200 {object} models.HelpRequest
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Request not found"
// @Router /requests/{id} [get]
func (h *Handler) getHelpRequest(c *gin.Context) {
	log := h.log(c, "getHelpRequest")
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}

	req, err := h.requestService.GetHelpRequest(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// @Summary Update a help request
// @Description Owner edits content, the claimant volunteer may change status, admin may set is_verified.
// @Tags HelpRequests
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Request ID"
// @Param request body UpdateHelpRequestRequest true "Fields to change"
// @Success 200 {object} models.HelpRequest
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Request not found"
// @Failure 409 {object} ErrorResponse "Concurrent update"
// @Router /requests/{id} [put]
func (h *Handler) updateHelpRequest(c *gin.Context) {
	log := h.log(c, "updateHelpRequest")
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}

	var dto UpdateHelpRequestRequest
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, log, err, "invalid request body")
		return
	}
	patch, err := ToRequestPatch(dto)
	if err != nil {
		respondError(c, log, err)
		return
	}

	req, err := h.requestService.UpdateHelpRequest(c.Request.Context(), callerFrom(c), id, patch)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// @Summary Delete a help request
// @Tags HelpRequests
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Request ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Request not found"
// @Router /requests/{id} [delete]
func (h *Handler) deleteHelpRequest(c *gin.Context) {
	log := h.log(c, "deleteHelpRequest")
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}

	if err := h.requestService.DeleteHelpRequest(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "help request deleted"})
}

// @Summary Claim a help request
// @Description Exactly one volunteer wins a claim. Losers get 409 with code conflict.
// @Tags HelpRequests
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Request ID"
// @Success 200 {object} models.HelpRequest
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Request not found"
// @Failure 409 {object} ErrorResponse "Already claimed or cancelled"
// @Router /requests/{id}/claim [post]
func (h *Handler) claimHelpRequest(c *gin.Context) {
	log := h.log(c, "claimHelpRequest")
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}

	req, err := h.requestService.ClaimHelpRequest(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// @Summary Add a note to a help request
// @Tags HelpRequests
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Request ID"
// @Param note body AddNoteRequest true "Note"
// @Success 200 {object} models.HelpRequest
// @Failure 400 {object} ErrorResponse "Empty note"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Request not found"
// @Router /requests/{id}/notes [post]
func (h *Handler) addRequestNote(c *gin.Context) {
	log := h.log(c, "addRequestNote")
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}

	var dto AddNoteRequest
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, log, err, "invalid request body")
		return
	}

	req, err := h.requestService.AddRequestNote(c.Request.Context(), callerFrom(c), id, dto.Text)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// @Summary List requests claimed by a volunteer
// @Tags HelpRequests
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Volunteer user ID"
// @Success 200 {array} models.HelpRequest
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /volunteers/{id}/claims [get]
func (h *Handler) listClaimsByVolunteer(c *gin.Context) {
	log := h.log(c, "listClaimsByVolunteer")
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}

	reqs, err := h.requestService.ListClaimsByVolunteer(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// @Summary Claim counters of a volunteer
// @Description Volunteers get their own counters. Admins pass userId.
// @Tags HelpRequests
// @Produce json
// @Security ApiKeyAuth
// @Param userId query string false "Volunteer user ID, defaults to the caller"
// @Success 200 {object} service.ClaimStats
// @Failure 400 {object} ErrorResponse "Invalid userId"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /volunteers/stats [get]
func (h *Handler) volunteerStats(c *gin.Context) {
	log := h.log(c, "volunteerStats")
	caller := callerFrom(c)

	volunteerID := caller.ID
	if raw := c.Query("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, log, err, "invalid userId format")
			return
		}
		volunteerID = id
	}

	stats, err := h.requestService.VolunteerClaimStats(c.Request.Context(), caller, volunteerID)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
