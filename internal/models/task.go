package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus int

const (
	TaskAssigned  TaskStatus = 1
	TaskAccepted  TaskStatus = 2
	TaskRejected  TaskStatus = 3
	TaskCompleted TaskStatus = 4
)

func (s TaskStatus) Valid() bool {
	return s >= TaskAssigned && s <= TaskCompleted
}

func (s TaskStatus) String() string {
	switch s {
	case TaskAssigned:
		return "assigned"
	case TaskAccepted:
		return "accepted"
	case TaskRejected:
		return "rejected"
	case TaskCompleted:
		return "completed"
	}
	return "unknown"
}

type Task struct {
	ID           uuid.UUID        `json:"id"`
	TaskType     string           `json:"task_type"`
	Description  string           `json:"description"`
	IncidentID   *uuid.UUID       `json:"incident_id"`
	Incident     *IncidentSummary `json:"incident,omitempty"`
	VolunteerID  uuid.UUID        `json:"volunteer_id"`
	Volunteer    *UserRef         `json:"volunteer,omitempty"`
	Status       TaskStatus       `json:"status"`
	AssignedBy   UserRef          `json:"assigned_by"`
	AssignedAt   time.Time        `json:"assigned_at"`
	AcceptedAt   *time.Time       `json:"accepted_at"`
	CompletedAt  *time.Time       `json:"completed_at"`
	ExtraDetails map[string]any   `json:"extra_details"`
	Notes        []Note           `json:"notes"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// TaskDecision - ответ волонтера на задачу
type TaskDecision int

const (
	DecisionAccept TaskDecision = TaskDecision(TaskAccepted)
	DecisionReject TaskDecision = TaskDecision(TaskRejected)
)
