package models

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestClaimed    RequestStatus = "claimed"
	RequestInProgress RequestStatus = "in-progress"
	RequestResolved   RequestStatus = "resolved"
	RequestCancelled  RequestStatus = "cancelled"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestClaimed, RequestInProgress, RequestResolved, RequestCancelled:
		return true
	}
	return false
}

// Claimed сообщает, должен ли при этом статусе быть назначен claimedBy
func (s RequestStatus) Claimed() bool {
	return s == RequestClaimed || s == RequestInProgress || s == RequestResolved
}

type RequestCategory string

const (
	CategoryMedical RequestCategory = "medical"
	CategoryShelter RequestCategory = "shelter"
	CategoryFood    RequestCategory = "food"
	CategoryRescue  RequestCategory = "rescue"
	CategoryOther   RequestCategory = "other"
)

func (c RequestCategory) Valid() bool {
	switch c {
	case CategoryMedical, CategoryShelter, CategoryFood, CategoryRescue, CategoryOther:
		return true
	}
	return false
}

type RequestPriority string

const (
	PriorityLow      RequestPriority = "low"
	PriorityMedium   RequestPriority = "medium"
	PriorityHigh     RequestPriority = "high"
	PriorityCritical RequestPriority = "critical"
)

func (p RequestPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type RequestLocation struct {
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Address     string   `json:"address,omitempty"`
	Coordinates GeoPoint `json:"coordinates"`
}

type HelpRequest struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Civilian    UserRef         `json:"civilian"`
	Location    RequestLocation `json:"location"`
	Category    RequestCategory `json:"category"`
	Priority    RequestPriority `json:"priority"`
	Status      RequestStatus   `json:"status"`
	ClaimedBy   *UserRef        `json:"claimed_by"`
	IsVerified  bool            `json:"is_verified"`
	VerifiedBy  *UserRef        `json:"verified_by"`
	Notes       []Note          `json:"notes"`
	// Distance заполняется только в выдаче nearby, км
	Distance  *float64  `json:"distance,omitempty"`
	Version   int       `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Unclaimed покрывает все представления "никто не взял": отсутствующая ссылка и нулевой ID
func (r *HelpRequest) Unclaimed() bool {
	return r.ClaimedBy == nil || r.ClaimedBy.ID == uuid.Nil
}

// RequestPatch - частичное обновление заявки; nil означает "не менять"
type RequestPatch struct {
	Title       *string
	Description *string
	Location    *RequestLocation
	Category    *RequestCategory
	Priority    *RequestPriority
	Status      *RequestStatus
	IsVerified  *bool
}
