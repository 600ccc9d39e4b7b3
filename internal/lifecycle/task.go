package lifecycle

import (
	"fmt"
	"time"

	"github.com/shenikar/crisis_connect/internal/models"
)

// ProjectTaskStatus отображает статус задачи в taskStatus профиля волонтера.
// Отказ сразу освобождает волонтера.
func ProjectTaskStatus(s models.TaskStatus) models.VolunteerTaskStatus {
	switch s {
	case models.TaskAssigned:
		return models.VolunteerAssigned
	case models.TaskAccepted:
		return models.VolunteerAccepted
	case models.TaskCompleted:
		return models.VolunteerCompleted
	}
	return models.VolunteerAvailable
}

// AssignTask создает задачу в статусе Assigned. Если указан инцидент,
// он обязан быть Verified.
func AssignTask(task *models.Task, incident *models.Incident, admin models.UserRef, now time.Time) (Change, error) {
	if incident != nil {
		if incident.Status != models.IncidentVerified {
			return ChangeNone, fmt.Errorf("%w: can only assign tasks to verified incidents", models.ErrInvalidState)
		}
		id := incident.ID
		task.IncidentID = &id
		task.Incident = incident.Summary()
	}
	task.Status = models.TaskAssigned
	task.AssignedBy = admin
	task.AssignedAt = now
	task.AcceptedAt = nil
	task.CompletedAt = nil
	if task.ExtraDetails == nil {
		task.ExtraDetails = map[string]any{}
	}
	if task.Notes == nil {
		task.Notes = []models.Note{}
	}
	task.CreatedAt = now
	task.UpdatedAt = now
	return ChangeTaskAssigned, nil
}

// ValidateDecision - допустимы только 2 (принять) и 3 (отклонить)
func ValidateDecision(d models.TaskDecision) error {
	if d != models.DecisionAccept && d != models.DecisionReject {
		verr := &models.ValidationError{}
		verr.Add("status", "oneof", "status must be 2 (accept) or 3 (reject)")
		return verr
	}
	return nil
}

// RespondToTask - Assigned -> Accepted | Rejected
func RespondToTask(task *models.Task, decision models.TaskDecision, now time.Time) (Change, error) {
	if err := ValidateDecision(decision); err != nil {
		return ChangeNone, err
	}
	if task.Status != models.TaskAssigned {
		return ChangeNone, fmt.Errorf("%w: task %s is already %s", models.ErrInvalidState, task.ID, task.Status)
	}
	task.Status = models.TaskStatus(decision)
	if task.Status == models.TaskAccepted {
		task.AcceptedAt = &now
	}
	task.UpdatedAt = now
	return ChangeTaskResponded, nil
}

// CompleteTask - Accepted -> Completed, только администратором.
// AcceptedAt заполнен только у Accepted, при завершении он сбрасывается.
func CompleteTask(task *models.Task, now time.Time) (Change, error) {
	if task.Status != models.TaskAccepted {
		return ChangeNone, fmt.Errorf("%w: task %s is %s, only accepted tasks can be completed", models.ErrInvalidState, task.ID, task.Status)
	}
	task.Status = models.TaskCompleted
	task.AcceptedAt = nil
	task.CompletedAt = &now
	task.UpdatedAt = now
	return ChangeTaskCompleted, nil
}
