package models

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus int

const (
	ApplicationPending  ApplicationStatus = 0
	ApplicationAccepted ApplicationStatus = 1
	ApplicationRejected ApplicationStatus = 2
)

func (s ApplicationStatus) Valid() bool {
	return s >= ApplicationPending && s <= ApplicationRejected
}

func (s ApplicationStatus) String() string {
	switch s {
	case ApplicationPending:
		return "pending"
	case ApplicationAccepted:
		return "accepted"
	case ApplicationRejected:
		return "rejected"
	}
	return "unknown"
}

// VolunteerTaskStatus - проекция статуса последней задачи волонтера
type VolunteerTaskStatus int

const (
	VolunteerAvailable VolunteerTaskStatus = 0
	VolunteerAssigned  VolunteerTaskStatus = 1
	VolunteerAccepted  VolunteerTaskStatus = 2
	VolunteerRejected  VolunteerTaskStatus = 3
	VolunteerCompleted VolunteerTaskStatus = 4
)

func (s VolunteerTaskStatus) Valid() bool {
	return s >= VolunteerAvailable && s <= VolunteerCompleted
}

type VolunteerProfile struct {
	ID                    uuid.UUID           `json:"id"`
	UserID                uuid.UUID           `json:"user_id"`
	User                  *UserRef            `json:"user,omitempty"`
	Skills                []string            `json:"skills"`
	IDProof               string              `json:"id_proof,omitempty"`
	ExperienceCertificate string              `json:"experience_certificate,omitempty"`
	ApplicationStatus     ApplicationStatus   `json:"application_status"`
	TaskStatus            VolunteerTaskStatus `json:"task_status"`
	Bio                   string              `json:"bio,omitempty"`
	Availability          bool                `json:"availability"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

// VolunteerPatch - изменения профиля от самого волонтера или администратора
type VolunteerPatch struct {
	Skills       []string
	Bio          *string
	Availability *bool
}
