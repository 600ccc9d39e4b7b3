package models

import (
	"time"

	"github.com/google/uuid"
)

type AlertType string

const (
	AlertInfo    AlertType = "info"
	AlertWarning AlertType = "warning"
	AlertDanger  AlertType = "danger"
	AlertSuccess AlertType = "success"
)

type AlertAudience string

const (
	AudienceAll        AlertAudience = "all"
	AudienceVolunteers AlertAudience = "volunteers"
	AudienceCivilians  AlertAudience = "civilians"
)

type Alert struct {
	ID             uuid.UUID     `json:"id"`
	Title          string        `json:"title"`
	Message        string        `json:"message"`
	Type           AlertType     `json:"type"`
	TargetAudience AlertAudience `json:"target_audience"`
	IsActive       bool          `json:"is_active"`
	CreatedBy      UserRef       `json:"created_by"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type AlertPatch struct {
	Title          *string
	Message        *string
	Type           *AlertType
	TargetAudience *AlertAudience
	IsActive       *bool
}
