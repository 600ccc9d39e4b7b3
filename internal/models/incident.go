package models

import (
	"time"

	"github.com/google/uuid"
)

// IncidentStatus статус инцидента: только вперед 0 -> 1 -> 2 -> 3
type IncidentStatus int

const (
	IncidentPending   IncidentStatus = 0
	IncidentVerified  IncidentStatus = 1
	IncidentOngoing   IncidentStatus = 2
	IncidentCompleted IncidentStatus = 3
)

func (s IncidentStatus) Valid() bool {
	return s >= IncidentPending && s <= IncidentCompleted
}

func (s IncidentStatus) String() string {
	switch s {
	case IncidentPending:
		return "pending"
	case IncidentVerified:
		return "verified"
	case IncidentOngoing:
		return "ongoing"
	case IncidentCompleted:
		return "completed"
	}
	return "unknown"
}

type Incident struct {
	ID          uuid.UUID      `json:"id"`
	Location    string         `json:"location"`
	Type        string         `json:"type"`
	Severity    int            `json:"severity"`
	Description string         `json:"description"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	Coordinates GeoPoint       `json:"coordinates"`
	Status      IncidentStatus `json:"status"`
	ReportedBy  UserRef        `json:"reported_by"`
	VerifiedBy  *UserRef       `json:"verified_by"`
	VerifiedAt  *time.Time     `json:"verified_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Summary - сокращенная проекция инцидента для populate в задачах
func (i *Incident) Summary() *IncidentSummary {
	return &IncidentSummary{
		ID:          i.ID,
		Location:    i.Location,
		Type:        i.Type,
		Severity:    i.Severity,
		Description: i.Description,
		Latitude:    i.Latitude,
		Longitude:   i.Longitude,
		Status:      i.Status,
	}
}

type IncidentSummary struct {
	ID          uuid.UUID      `json:"id"`
	Location    string         `json:"location"`
	Type        string         `json:"type"`
	Severity    int            `json:"severity"`
	Description string         `json:"description,omitempty"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	Status      IncidentStatus `json:"status"`
}
