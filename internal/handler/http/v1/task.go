package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/service"
)

// @Summary Assign a task to a volunteer
// @Tags Tasks
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param task body service.TaskInput true "Task"
// @Success 201 {object} models.Task
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Volunteer or incident not found"
// @Router /tasks [post]
func (h *Handler) assignTask(c *gin.Context) {
	log := h.log(c, "assignTask")

	var input service.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, log, err, "invalid request body")
		return
	}

	task, err := h.taskService.AssignTask(c.Request.Context(), callerFrom(c), input)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// @Summary List tasks
// @Tags Tasks
// @Produce json
// @Security ApiKeyAuth
// @Param volunteerId query string false "Volunteer profile ID"
// @Param incidentId query string false "Incident ID"
// @Param status query string false "Status code 1-4 or name"
// @Success 200 {array} models.Task
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /tasks [get]
func (h *Handler) listTasks(c *gin.Context) {
	log := h.log(c, "listTasks")

	var q TaskListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, log, err, "invalid query parameters")
		return
	}
	filter, err := ToTaskFilter(q)
	if err != nil {
		respondError(c, log, err)
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), callerFrom(c), filter)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary Volunteer accepts or rejects a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param volunteerId path string true "Volunteer profile ID"
// @Param taskId path string true "Task ID"
// @Param decision body TaskStatusRequest true "2 to accept, 3 to reject"
// @Success 200 {object} models.Task
// @Failure 400 {object} ErrorResponse "Unknown decision"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Task not found"
// @Failure 409 {object} ErrorResponse "Task already answered"
// @Router /tasks/update-status/{volunteerId}/{taskId} [put]
func (h *Handler) respondToTask(c *gin.Context) {
	log := h.log(c, "respondToTask")
	volunteerID, ok := paramID(c, log, "volunteerId")
	if !ok {
		return
	}
	taskID, ok := paramID(c, log, "taskId")
	if !ok {
		return
	}

	var dto TaskStatusRequest
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, log, err, "invalid request body")
		return
	}
	if dto.Status == nil {
		respondError(c, log, &models.ValidationError{Fields: []models.FieldError{{
			Field: "status", Rule: "required", Message: "status is required",
		}}})
		return
	}

	task, err := h.taskService.RespondToTask(c.Request.Context(), callerFrom(c), volunteerID, taskID, models.TaskDecision(*dto.Status))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary Complete an accepted task
// @Tags Tasks
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Task ID"
// @Success 200 {object} models.Task
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Task not found"
// @Failure 409 {object} ErrorResponse "Task is not accepted"
// @Router /tasks/{id}/complete [put]
func (h *Handler) completeTask(c *gin.Context) {
	log := h.log(c, "completeTask")
	id, ok := paramID(c, log, "id")
	if !ok {
		return
	}

	task, err := h.taskService.CompleteTask(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// @Summary List tasks of a volunteer
// @Tags Tasks
// @Produce json
// @Security ApiKeyAuth
// @Param volunteerId path string true "Volunteer profile ID"
// @Param status query string false "Status code 1-4 or name"
// @Success 200 {array} models.Task
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /tasks/volunteer/{volunteerId} [get]
func (h *Handler) listVolunteerTasks(c *gin.Context) {
	log := h.log(c, "listVolunteerTasks")
	volunteerID, ok := paramID(c, log, "volunteerId")
	if !ok {
		return
	}
	status, err := ToTaskStatus(c.Query("status"))
	if err != nil {
		respondError(c, log, err)
		return
	}

	tasks, err := h.taskService.ListVolunteerTasks(c.Request.Context(), callerFrom(c), volunteerID, status)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary List distinct skills of accepted volunteers
// @Tags Tasks
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} string
// @Router /tasks/skills [get]
func (h *Handler) listSkills(c *gin.Context) {
	log := h.log(c, "listSkills")
	skills, err := h.volunteerService.ListSkills(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, skills)
}

// @Summary List accepted volunteers with a skill
// @Tags Tasks
// @Produce json
// @Security ApiKeyAuth
// @Param skill path string true "Skill, case-insensitive"
// @Success 200 {array} models.VolunteerProfile
// @Router /tasks/volunteers/{skill} [get]
func (h *Handler) listVolunteersBySkill(c *gin.Context) {
	log := h.log(c, "listVolunteersBySkill")
	profiles, err := h.volunteerService.ListVolunteersBySkill(c.Request.Context(), callerFrom(c), c.Param("skill"))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}
