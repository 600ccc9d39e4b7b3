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

//go:generate mockgen -source=alert.go -destination=mocks/alert_mocks.go -package=mocks

// activeAlertsLimit - сколько последних оповещений видит читатель
const activeAlertsLimit = 10

type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Alert, error)
	// List возвращает оповещения, новые первыми
	List(ctx context.Context, filter query.AlertFilter) ([]*models.Alert, error)
	Update(ctx context.Context, alert *models.Alert) error
	// Deactivate - мягкое удаление: is_active=false
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type AlertService interface {
	ListActiveAlerts(ctx context.Context, caller models.Caller) ([]*models.Alert, error)
	ListAllAlerts(ctx context.Context, caller models.Caller) ([]*models.Alert, error)
	GetAlert(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Alert, error)
	CreateAlert(ctx context.Context, caller models.Caller, input AlertInput) (*models.Alert, error)
	UpdateAlert(ctx context.Context, caller models.Caller, id uuid.UUID, patch models.AlertPatch) (*models.Alert, error)
	DeleteAlert(ctx context.Context, caller models.Caller, id uuid.UUID) error
}

type AlertInput struct {
	Title          string               `json:"title" validate:"required"`
	Message        string               `json:"message" validate:"required"`
	Type           models.AlertType     `json:"type" validate:"omitempty,oneof=info warning danger success"`
	TargetAudience models.AlertAudience `json:"target_audience" validate:"omitempty,oneof=all volunteers civilians"`
}

type alertService struct {
	repo       AlertRepository
	populate   populator
	dispatcher Dispatcher
	validate   *validator.Validate
	logger     *logrus.Logger
	now        Clock
}

func NewAlertService(repo AlertRepository, users UserRepository, dispatcher Dispatcher, logger *logrus.Logger) AlertService {
	return &alertService{
		repo:       repo,
		populate:   populator{users: users},
		dispatcher: dispatcher,
		validate:   newValidator(),
		logger:     logger,
		now:        utcNow,
	}
}

// ListActiveAlerts - активные оповещения для аудитории вызывающего
func (s *alertService) ListActiveAlerts(ctx context.Context, caller models.Caller) ([]*models.Alert, error) {
	alerts, err := s.repo.List(ctx, query.AlertFilter{
		ActiveOnly: true,
		Audiences:  query.AudiencesFor(caller),
		Limit:      activeAlertsLimit,
	})
	if err != nil {
		s.logger.WithError(err).WithField("method", "ListActiveAlerts").Error("Failed to list alerts")
		return nil, fmt.Errorf("service: could not list alerts: %w", err)
	}
	s.populateAlerts(ctx, alerts...)
	return alerts, nil
}

func (s *alertService) ListAllAlerts(ctx context.Context, caller models.Caller) ([]*models.Alert, error) {
	if !caller.IsAdmin() {
		return nil, models.ErrForbidden
	}
	alerts, err := s.repo.List(ctx, query.AlertFilter{})
	if err != nil {
		return nil, fmt.Errorf("service: could not list alerts: %w", err)
	}
	s.populateAlerts(ctx, alerts...)
	return alerts, nil
}

func (s *alertService) GetAlert(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Alert, error) {
	alert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get alert: %w", err)
	}
	if !caller.IsAdmin() && !query.MatchAlert(query.AlertFilter{ActiveOnly: true, Audiences: query.AudiencesFor(caller)}, alert) {
		return nil, models.ErrForbidden
	}
	s.populateAlerts(ctx, alert)
	return alert, nil
}

func (s *alertService) CreateAlert(ctx context.Context, caller models.Caller, input AlertInput) (*models.Alert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "alert",
		"method":  "CreateAlert",
	})
	log.Info("Attempting to create alert")

	if !caller.IsAdmin() {
		return nil, models.ErrForbidden
	}
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}

	now := s.now()
	alert := &models.Alert{
		ID:             uuid.New(),
		Title:          strings.TrimSpace(input.Title),
		Message:        strings.TrimSpace(input.Message),
		Type:           input.Type,
		TargetAudience: input.TargetAudience,
		IsActive:       true,
		CreatedBy:      models.UserRef{ID: caller.ID},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if alert.Type == "" {
		alert.Type = models.AlertInfo
	}
	if alert.TargetAudience == "" {
		alert.TargetAudience = models.AudienceAll
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		log.WithError(err).Error("Failed to create alert in repository")
		return nil, fmt.Errorf("service: could not create alert: %w", err)
	}
	s.populateAlerts(ctx, alert)
	s.dispatcher.Dispatch(ctx, lifecycle.ChangeAlertCreated, alert)
	log.WithField("alert_id", alert.ID).Info("Alert created successfully")
	return alert, nil
}

func (s *alertService) UpdateAlert(ctx context.Context, caller models.Caller, id uuid.UUID, patch models.AlertPatch) (*models.Alert, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "alert",
		"method":   "UpdateAlert",
		"alert_id": id,
	})
	if !caller.IsAdmin() {
		return nil, models.ErrForbidden
	}
	if err := validateAlertPatch(patch); err != nil {
		return nil, err
	}

	alert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get alert: %w", err)
	}
	if patch.Title != nil {
		alert.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Message != nil {
		alert.Message = strings.TrimSpace(*patch.Message)
	}
	if patch.Type != nil {
		alert.Type = *patch.Type
	}
	if patch.TargetAudience != nil {
		alert.TargetAudience = *patch.TargetAudience
	}
	if patch.IsActive != nil {
		alert.IsActive = *patch.IsActive
	}
	alert.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, alert); err != nil {
		log.WithError(err).Error("Failed to update alert in repository")
		return nil, fmt.Errorf("service: could not update alert: %w", err)
	}
	s.populateAlerts(ctx, alert)
	s.dispatcher.Dispatch(ctx, lifecycle.ChangeAlertUpdated, alert)
	log.Info("Alert updated successfully")
	return alert, nil
}

func (s *alertService) DeleteAlert(ctx context.Context, caller models.Caller, id uuid.UUID) error {
	if !caller.IsAdmin() {
		return models.ErrForbidden
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("service: could not delete alert: %w", err)
	}
	s.dispatcher.Dispatch(ctx, lifecycle.ChangeAlertDeleted, id)
	s.logger.WithField("alert_id", id).Info("Alert deactivated successfully")
	return nil
}

func validateAlertPatch(p models.AlertPatch) error {
	verr := &models.ValidationError{}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		verr.Add("title", "required", "title must not be empty")
	}
	if p.Message != nil && strings.TrimSpace(*p.Message) == "" {
		verr.Add("message", "required", "message must not be empty")
	}
	if p.Type != nil {
		switch *p.Type {
		case models.AlertInfo, models.AlertWarning, models.AlertDanger, models.AlertSuccess:
		default:
			verr.Add("type", "oneof", "type must be one of: info warning danger success")
		}
	}
	if p.TargetAudience != nil {
		switch *p.TargetAudience {
		case models.AudienceAll, models.AudienceVolunteers, models.AudienceCivilians:
		default:
			verr.Add("target_audience", "oneof", "target_audience must be one of: all volunteers civilians")
		}
	}
	return verr.OrNil()
}

func (s *alertService) populateAlerts(ctx context.Context, alerts ...*models.Alert) {
	refs := make([]*models.UserRef, 0, len(alerts))
	for _, a := range alerts {
		refs = append(refs, &a.CreatedBy)
	}
	if err := s.populate.refs(ctx, refs...); err != nil {
		s.logger.WithError(err).Warn("Failed to populate alerts")
	}
}
