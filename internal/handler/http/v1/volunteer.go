package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/crisis_connect/internal/models"
)

// @Summary List volunteer profiles
// @Tags Volunteers
// @Produce json
// @Security ApiKeyAuth
// @Param applicationStatus query string false "0 pending, 1 accepted, 2 rejected"
// @Param skill query string false "Skill, case-insensitive"
// @Param available query bool false "Availability"
// @Success 200 {array} models.VolunteerProfile
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /volunteer-profiles [get]
func (h *Handler) listVolunteerProfiles(c *gin.Context) {
	log := h.log(c, "listVolunteerProfiles")

	var q VolunteerListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, log, err, "invalid query parameters")
		return
	}
	filter, err := ToVolunteerFilter(q)
	if err != nil {
		respondError(c, log, err)
		return
	}

	profiles, err := h.volunteerService.ListVolunteerProfiles(c.Request.Context(), callerFrom(c), filter)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// @Summary List volunteer accounts
// @Tags Volunteers
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.User
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /volunteers [get]
func (h *Handler) listVolunteers(c *gin.Context) {
	log := h.log(c, "listVolunteers")

	users, err := h.volunteerService.ListVolunteerUsers(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// @Summary Get a volunteer profile
// @Tags Volunteers
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Profile ID"
// @Success 200 {object} models.VolunteerProfile
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Profile not found"
// @Router /volunteer-profiles/{id} [get]
func (h *Handler) getVolunteerProfile(c *gin.Context) {
	log := h.log(c, "getVolunteerProfile")
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}

	profile, err := h.volunteerService.GetVolunteerProfile(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// @Summary Get a volunteer profile by user
// @Tags Volunteers
// @Produce json
// @Security ApiKeyAuth
// @Param userId path string true "User ID"
// @Success 200 {object} models.VolunteerProfile
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Profile not found"
// @Router /volunteer-profiles/user/{userId} [get]
func (h *Handler) getVolunteerProfileByUser(c *gin.Context) {
	log := h.log(c, "getVolunteerProfileByUser")
	userID, ok := paramID(c, log, "userId")
	if !ok {
		return
	}

	profile, err := h.volunteerService.GetVolunteerProfileByUser(c.Request.Context(), callerFrom(c), userID)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// @Summary Update a volunteer profile
// @Tags Volunteers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Profile ID"
// @Param profile body UpdateVolunteerProfileRequest true "Fields to change"
// @Success 200 {object} models.VolunteerProfile
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Profile not found"
// @Router /volunteer-profiles/{id} [put]
func (h *Handler) updateVolunteerProfile(c *gin.Context) {
	log := h.log(c, "updateVolunteerProfile")
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}

	var dto UpdateVolunteerProfileRequest
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, log, err, "invalid request body")
		return
	}

	profile, err := h.volunteerService.UpdateVolunteerProfile(c.Request.Context(), callerFrom(c), id, ToVolunteerPatch(dto))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// @Summary Decide on a volunteer application
// @Tags Volunteers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Profile ID"
// @Param status body ApplicationStatusRequest true "New application status"
// @Success 200 {object} models.VolunteerProfile
// @Failure 400 {object} ErrorResponse "Unknown status"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Profile not found"
// @Router /volunteer-profiles/{id}/application-status [put]
func (h *Handler) updateApplicationStatus(c *gin.Context) {
	log := h.log(c, "updateApplicationStatus")
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}

	var dto ApplicationStatusRequest
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, log, err, "invalid request body")
		return
	}
	if dto.ApplicationStatus == nil {
		respondError(c, log, &models.ValidationError{Fields: []models.FieldError{{
			Field: "application_status", Rule: "required", Message: "application_status is required",
		}}})
		return
	}

	profile, err := h.volunteerService.UpdateApplicationStatus(c.Request.Context(), callerFrom(c), id, models.ApplicationStatus(*dto.ApplicationStatus))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// @Summary Replace volunteer skills
// @Tags Volunteers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Profile ID"
// @Param skills body SkillsRequest true "Skills"
// @Success 200 {object} models.VolunteerProfile
// @Failure 400 {object} ErrorResponse "Blank skill"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /volunteer-profiles/{id}/skills [put]
func (h *Handler) updateSkills(c *gin.Context) {
	log := h.log(c, "updateSkills")
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}

	var dto SkillsRequest
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, log, err, "invalid request body")
		return
	}

	profile, err := h.volunteerService.UpdateSkills(c.Request.Context(), callerFrom(c), id, dto.Skills)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
