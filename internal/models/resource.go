package models

import (
	"time"

	"github.com/google/uuid"
)

type ResourceType string

const (
	ResourceShelter ResourceType = "shelter"
	ResourceFood    ResourceType = "food"
	ResourceMedical ResourceType = "medical"
	ResourceWater   ResourceType = "water"
	ResourceOther   ResourceType = "other"
)

type ResourceLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

type ResourceContact struct {
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type Resource struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Type             ResourceType     `json:"type"`
	Description      string           `json:"description,omitempty"`
	Location         ResourceLocation `json:"location"`
	Capacity         *int             `json:"capacity"`
	CurrentOccupancy int              `json:"current_occupancy"`
	Contact          ResourceContact  `json:"contact"`
	IsActive         bool             `json:"is_active"`
	CreatedBy        UserRef          `json:"created_by"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type ResourcePatch struct {
	Name             *string
	Type             *ResourceType
	Description      *string
	Location         *ResourceLocation
	Capacity         *int
	CurrentOccupancy *int
	Contact          *ResourceContact
	IsActive         *bool
}
