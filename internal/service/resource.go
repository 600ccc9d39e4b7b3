package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/lifecycle"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/query"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=resource.go -destination=mocks/resource_mocks.go -package=mocks

type ResourceRepository interface {
	Create(ctx context.Context, res *models.Resource) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	List(ctx context.Context, filter query.ResourceFilter) ([]*models.Resource, error)
	Update(ctx context.Context, res *models.Resource) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type ResourceService interface {
	ListResources(ctx context.Context, caller models.Caller, filter query.ResourceFilter) ([]*models.Resource, error)
	GetResource(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Resource, error)
	CreateResource(ctx context.Context, caller models.Caller, input ResourceInput) (*models.Resource, error)
	UpdateResource(ctx context.Context, caller models.Caller, id uuid.UUID, patch models.ResourcePatch) (*models.Resource, error)
	DeleteResource(ctx context.Context, caller models.Caller, id uuid.UUID) error
}

type ResourceInput struct {
	Name             string                 `json:"name" validate:"required"`
	Type             models.ResourceType    `json:"type" validate:"required,oneof=shelter food medical water other"`
	Description      string                 `json:"description"`
	Location         ResourceLocationInput  `json:"location"`
	Capacity         *int                   `json:"capacity" validate:"omitempty,min=0"`
	CurrentOccupancy int                    `json:"current_occupancy" validate:"min=0"`
	Contact          models.ResourceContact `json:"contact"`
}

type ResourceLocationInput struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	Address   string   `json:"address"`
}

type resourceService struct {
	repo       ResourceRepository
	populate   populator
	dispatcher Dispatcher
	validate   *validator.Validate
	logger     *logrus.Logger
	now        Clock
}

func NewResourceService(repo ResourceRepository, users UserRepository, dispatcher Dispatcher, logger *logrus.Logger) ResourceService {
	return &resourceService{
		repo:       repo,
		populate:   populator{users: users},
		dispatcher: dispatcher,
		validate:   newValidator(),
		logger:     logger,
		now:        utcNow,
	}
}

// ListResources - читатели видят только активные ресурсы, администратор может запросить все
func (s *resourceService) ListResources(ctx context.Context, caller models.Caller, filter query.ResourceFilter) ([]*models.Resource, error) {
	if !caller.IsAdmin() {
		filter.ActiveOnly = true
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.WithError(err).WithField("method", "ListResources").Error("Failed to list resources")
		return nil, fmt.Errorf("service: could not list resources: %w", err)
	}
	s.populateResources(ctx, items...)
	return items, nil
}

func (s *resourceService) GetResource(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Resource, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get resource: %w", err)
	}
	if !res.IsActive && !caller.IsAdmin() {
		return nil, fmt.Errorf("service: could not get resource: %w", models.ErrNotFound)
	}
	s.populateResources(ctx, res)
	return res, nil
}

func (s *resourceService) CreateResource(ctx context.Context, caller models.Caller, input ResourceInput) (*models.Resource, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "resource",
		"method":  "CreateResource",
	})
	log.Info("Attempting to create resource")

	if !caller.IsAdmin() {
		return nil, models.ErrForbidden
	}
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}
	if err := validateOccupancy(input.Capacity, input.CurrentOccupancy); err != nil {
		return nil, err
	}

	now := s.now()
	res := &models.Resource{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Type:        input.Type,
		Description: input.Description,
		Location: models.ResourceLocation{
			Latitude:  *input.Location.Latitude,
			Longitude: *input.Location.Longitude,
			Address:   input.Location.Address,
		},
		Capacity:         input.Capacity,
		CurrentOccupancy: input.CurrentOccupancy,
		Contact:          input.Contact,
		IsActive:         true,
		CreatedBy:        models.UserRef{ID: caller.ID},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, res); err != nil {
		log.WithError(err).Error("Failed to create resource in repository")
		return nil, fmt.Errorf("service: could not create resource: %w", err)
	}
	s.populateResources(ctx, res)
	s.dispatcher.Dispatch(ctx, lifecycle.ChangeResourceCreated, res)
	log.WithField("resource_id", res.ID).Info("Resource created successfully")
	return res, nil
}

func (s *resourceService) UpdateResource(ctx context.Context, caller models.Caller, id uuid.UUID, patch models.ResourcePatch) (*models.Resource, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "resource",
		"method":      "UpdateResource",
		"resource_id": id,
	})
	if !caller.IsAdmin() {
		return nil, models.ErrForbidden
	}

	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get resource: %w", err)
	}
	verr := &models.ValidationError{}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			verr.Add("name", "required", "name must not be empty")
		}
		res.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Type != nil {
		switch *patch.Type {
		case models.ResourceShelter, models.ResourceFood, models.ResourceMedical, models.ResourceWater, models.ResourceOther:
		default:
			verr.Add("type", "oneof", "type must be one of: shelter food medical water other")
		}
		res.Type = *patch.Type
	}
	if patch.Description != nil {
		res.Description = *patch.Description
	}
	if patch.Location != nil {
		if patch.Location.Latitude < -90 || patch.Location.Latitude > 90 {
			verr.Add("location.latitude", "latitude", "latitude must be within [-90, 90]")
		}
		if patch.Location.Longitude < -180 || patch.Location.Longitude > 180 {
			verr.Add("location.longitude", "longitude", "longitude must be within [-180, 180]")
		}
		res.Location = *patch.Location
	}
	if patch.Capacity != nil {
		res.Capacity = patch.Capacity
	}
	if patch.CurrentOccupancy != nil {
		res.CurrentOccupancy = *patch.CurrentOccupancy
	}
	if patch.Contact != nil {
		res.Contact = *patch.Contact
	}
	if patch.IsActive != nil {
		res.IsActive = *patch.IsActive
	}
	if err := mergeValidation(verr.OrNil(), validateOccupancy(res.Capacity, res.CurrentOccupancy)); err != nil {
		return nil, err
	}
	res.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, res); err != nil {
		log.WithError(err).Error("Failed to update resource in repository")
		return nil, fmt.Errorf("service: could not update resource: %w", err)
	}
	s.populateResources(ctx, res)
	s.dispatcher.Dispatch(ctx, lifecycle.ChangeResourceUpdated, res)
	log.Info("Resource updated successfully")
	return res, nil
}

func (s *resourceService) DeleteResource(ctx context.Context, caller models.Caller, id uuid.UUID) error {
	if !caller.IsAdmin() {
		return models.ErrForbidden
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("service: could not delete resource: %w", err)
	}
	s.dispatcher.Dispatch(ctx, lifecycle.ChangeResourceDeleted, id)
	s.logger.WithField("resource_id", id).Info("Resource deactivated successfully")
	return nil
}

func validateOccupancy(capacity *int, occupancy int) error {
	verr := &models.ValidationError{}
	if capacity != nil && *capacity < 0 {
		verr.Add("capacity", "min", "capacity must be at least 0")
	}
	if occupancy < 0 {
		verr.Add("current_occupancy", "min", "current_occupancy must be at least 0")
	}
	if capacity != nil && *capacity >= 0 && occupancy > *capacity {
		verr.Add("current_occupancy", "lte", "current_occupancy must not exceed capacity")
	}
	return verr.OrNil()
}

func (s *resourceService) populateResources(ctx context.Context, items ...*models.Resource) {
	refs := make([]*models.UserRef, 0, len(items))
	for _, r := range items {
		refs = append(refs, &r.CreatedBy)
	}
	if err := s.populate.refs(ctx, refs...); err != nil {
		s.logger.WithError(err).Warn("Failed to populate resources")
	}
}
