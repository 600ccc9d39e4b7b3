package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/geo"
	"github.com/shenikar/crisis_connect/internal/lifecycle"
	"github.com/shenikar/crisis_connect/internal/metrics"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/query"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=help_request.go -destination=mocks/help_request_mocks.go -package=mocks

// HelpRequestRepository - хранилище заявок о помощи
type HelpRequestRepository interface {
	Create(ctx context.Context, req *models.HelpRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.HelpRequest, error)
	List(ctx context.Context, caller models.Caller, filter query.RequestFilter) ([]*models.HelpRequest, error)
	// ListAvailable возвращает кандидатов pending без исполнителя; радиус может
	// применяться грубо, точный отбор и сортировку делает query.Nearby
	ListAvailable(ctx context.Context, fence query.Geofence) ([]*models.HelpRequest, error)
	// Claim - атомарный compare-and-set {pending, без исполнителя} -> {claimed, volunteer}.
	// Проигравший гонку получает models.ErrConflict.
	Claim(ctx context.Context, id uuid.UUID, volunteer models.UserRef, at time.Time) (*models.HelpRequest, error)
	// Update записывает заявку, если версия не изменилась с момента чтения
	Update(ctx context.Context, req *models.HelpRequest) error
	AddNote(ctx context.Context, id uuid.UUID, note models.Note) (*models.HelpRequest, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// HelpRequestService - операции над заявками о помощи
type HelpRequestService interface {
	CreateHelpRequest(ctx context.Context, caller models.Caller, input HelpRequestInput) (*models.HelpRequest, error)
	GetHelpRequest(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.HelpRequest, error)
	ListHelpRequests(ctx context.Context, caller models.Caller, filter query.RequestFilter) ([]*models.HelpRequest, error)
	ListAvailableRequests(ctx context.Context, caller models.Caller) ([]*models.HelpRequest, error)
	ListNearbyRequests(ctx context.Context, caller models.Caller, input NearbyInput) ([]*models.HelpRequest, error)
	MapRequests(ctx context.Context, caller models.Caller) ([]*models.HelpRequest, error)
	ClaimHelpRequest(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.HelpRequest, error)
	UpdateHelpRequest(ctx context.Context, caller models.Caller, id uuid.UUID, patch models.RequestPatch) (*models.HelpRequest, error)
	AddRequestNote(ctx context.Context, caller models.Caller, id uuid.UUID, text string) (*models.HelpRequest, error)
	ListClaimsByVolunteer(ctx context.Context, caller models.Caller, volunteerUserID uuid.UUID) ([]*models.HelpRequest, error)
	VolunteerClaimStats(ctx context.Context, caller models.Caller, volunteerUserID uuid.UUID) (ClaimStats, error)
	DeleteHelpRequest(ctx context.Context, caller models.Caller, id uuid.UUID) error
}

// ClaimStats - счетчики заявок, взятых волонтером.
// Активные - claimed и in-progress.
type ClaimStats struct {
	TotalClaims    int `json:"totalClaims"`
	ActiveClaims   int `json:"activeClaims"`
	ResolvedClaims int `json:"resolvedClaims"`
}

// HelpRequestInput - новая заявка от гражданина
type HelpRequestInput struct {
	Title       string                 `json:"title" validate:"required"`
	Description string                 `json:"description" validate:"required"`
	Location    RequestLocationInput   `json:"location"`
	Category    models.RequestCategory `json:"category" validate:"omitempty,oneof=medical shelter food rescue other"`
	Priority    models.RequestPriority `json:"priority" validate:"omitempty,oneof=low medium high critical"`
}

type RequestLocationInput struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	Address   string   `json:"address"`
}

// NearbyInput - центр и необязательный радиус в км
type NearbyInput struct {
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	RadiusKm  *float64 `json:"radius" validate:"omitempty,gt=0"`
}

type helpRequestService struct {
	repo          HelpRequestRepository
	populate      populator
	dispatcher    Dispatcher
	notifier      Notifier
	validate      *validator.Validate
	metrics       *metrics.Metrics
	logger        *logrus.Logger
	now           Clock
	notifyTimeout time.Duration
	defaultRadius float64
}

// HelpRequestDeps - зависимости сервиса заявок
type HelpRequestDeps struct {
	Repo            HelpRequestRepository
	Users           UserRepository
	Dispatcher      Dispatcher
	Notifier        Notifier
	Metrics         *metrics.Metrics
	Logger          *logrus.Logger
	NotifyTimeout   time.Duration
	DefaultRadiusKm float64
	Clock           Clock
}

func NewHelpRequestService(deps HelpRequestDeps) HelpRequestService {
	now := deps.Clock
	if now == nil {
		now = utcNow
	}
	return &helpRequestService{
		repo:          deps.Repo,
		populate:      populator{users: deps.Users},
		dispatcher:    deps.Dispatcher,
		notifier:      deps.Notifier,
		validate:      newValidator(),
		metrics:       deps.Metrics,
		logger:        deps.Logger,
		now:           now,
		notifyTimeout: deps.NotifyTimeout,
		defaultRadius: deps.DefaultRadiusKm,
	}
}

// CreateHelpRequest создает заявку: статус pending и пустой исполнитель независимо от ввода
func (s *helpRequestService) CreateHelpRequest(ctx context.Context, caller models.Caller, input HelpRequestInput) (*models.HelpRequest, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "help_request",
		"method":  "CreateHelpRequest",
		"user_id": caller.ID,
	})
	log.Info("Attempting to create a help request")

	if !caller.IsCivilian() {
		s.metrics.Transition("help_request", "create", models.ErrForbidden)
		return nil, models.ErrForbidden
	}
	var locErr error
	if lat, lon := input.Location.Latitude, input.Location.Longitude; lat != nil && lon != nil && *lat == 0 && *lon == 0 {
		locErr = lifecycle.ValidateRequestLocation(models.RequestLocation{
			Latitude:  *input.Location.Latitude,
			Longitude: *input.Location.Longitude,
		})
	}
	if err := mergeValidation(validateInput(s.validate, input), locErr); err != nil {
		log.WithError(err).Warn("Help request rejected")
		s.metrics.Transition("help_request", "create", err)
		return nil, err
	}

	req := &models.HelpRequest{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Location: models.RequestLocation{
			Latitude:  *input.Location.Latitude,
			Longitude: *input.Location.Longitude,
			Address:   input.Location.Address,
		},
		Category: input.Category,
		Priority: input.Priority,
	}
	change := lifecycle.CreateHelpRequest(req, models.UserRef{ID: caller.ID}, s.now())

	if err := s.repo.Create(ctx, req); err != nil {
		log.WithError(err).Error("Failed to create help request in repository")
		s.metrics.Transition("help_request", "create", err)
		return nil, fmt.Errorf("service: could not create help request: %w", err)
	}
	s.metrics.Transition("help_request", "create", nil)

	s.publish(ctx, change, req, log)
	log.WithField("request_id", req.ID).Info("Help request created successfully")
	return req, nil
}

func (s *helpRequestService) GetHelpRequest(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.HelpRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get help request: %w", err)
	}
	if caller.IsCivilian() && req.Civilian.ID != caller.ID {
		return nil, models.ErrForbidden
	}
	if err := s.populate.requests(ctx, req); err != nil {
		s.logger.WithError(err).WithField("request_id", id).Warn("Failed to populate help request")
	}
	return req, nil
}

func (s *helpRequestService) ListHelpRequests(ctx context.Context, caller models.Caller, filter query.RequestFilter) ([]*models.HelpRequest, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "help_request",
		"method":  "ListHelpRequests",
		"role":    caller.Role,
	})
	log.Info("Listing help requests")

	items, err := s.repo.List(ctx, caller, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list help requests from repository")
		return nil, fmt.Errorf("service: could not list help requests: %w", err)
	}
	if err := s.populate.requests(ctx, items...); err != nil {
		log.WithError(err).Warn("Failed to populate help requests")
	}
	log.WithField("count", len(items)).Info("Help requests listed successfully")
	return items, nil
}

// ListAvailableRequests - заявки, ждущие волонтера, новые первыми
func (s *helpRequestService) ListAvailableRequests(ctx context.Context, caller models.Caller) ([]*models.HelpRequest, error) {
	if caller.IsCivilian() {
		return nil, models.ErrForbidden
	}
	items, err := s.repo.ListAvailable(ctx, query.Geofence{})
	if err != nil {
		return nil, fmt.Errorf("service: could not list available requests: %w", err)
	}
	items = query.Nearby(items, query.Geofence{})
	if err := s.populate.requests(ctx, items...); err != nil {
		s.logger.WithError(err).Warn("Failed to populate available requests")
	}
	return items, nil
}

// ListNearbyRequests - доступные заявки в радиусе, по возрастанию расстояния
func (s *helpRequestService) ListNearbyRequests(ctx context.Context, caller models.Caller, input NearbyInput) ([]*models.HelpRequest, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "help_request",
		"method":  "ListNearbyRequests",
		"user_id": caller.ID,
	})

	if caller.IsCivilian() {
		return nil, models.ErrForbidden
	}
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}

	radius := s.defaultRadius
	if input.RadiusKm != nil {
		radius = *input.RadiusKm
	}
	center := geo.Point{Lat: *input.Latitude, Lon: *input.Longitude}
	fence := query.Geofence{Center: &center}
	if radius > 0 {
		fence.RadiusKm = &radius
	}
	log.WithFields(logrus.Fields{"lat": center.Lat, "lon": center.Lon, "radius_km": radius}).Info("Searching nearby requests")

	candidates, err := s.repo.ListAvailable(ctx, fence)
	if err != nil {
		log.WithError(err).Error("Failed to list nearby candidates")
		return nil, fmt.Errorf("service: could not list nearby requests: %w", err)
	}
	items := query.Nearby(candidates, fence)
	if err := s.populate.requests(ctx, items...); err != nil {
		log.WithError(err).Warn("Failed to populate nearby requests")
	}
	log.WithField("count", len(items)).Info("Nearby requests found")
	return items, nil
}

// MapRequests - открытые заявки для карты: pending, claimed и in-progress
func (s *helpRequestService) MapRequests(ctx context.Context, caller models.Caller) ([]*models.HelpRequest, error) {
	items, err := s.repo.List(ctx, caller, query.RequestFilter{})
	if err != nil {
		return nil, fmt.Errorf("service: could not list requests for map: %w", err)
	}
	open := items[:0]
	for _, req := range items {
		switch req.Status {
		case models.RequestPending, models.RequestClaimed, models.RequestInProgress:
			open = append(open, req)
		}
	}
	if err := s.populate.requests(ctx, open...); err != nil {
		s.logger.WithError(err).Warn("Failed to populate map requests")
	}
	return open, nil
}

// ClaimHelpRequest - волонтер берет заявку. Ровно один из конкурентов побеждает.
func (s *helpRequestService) ClaimHelpRequest(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.HelpRequest, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "help_request",
		"method":     "ClaimHelpRequest",
		"request_id": id,
		"user_id":    caller.ID,
	})
	log.Info("Attempting to claim help request")

	if !caller.IsVolunteer() {
		s.metrics.Transition("help_request", "claim", models.ErrForbidden)
		return nil, models.ErrForbidden
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.metrics.Transition("help_request", "claim", err)
		return nil, fmt.Errorf("service: could not get help request: %w", err)
	}
	volunteer := models.UserRef{ID: caller.ID}
	now := s.now()
	// Проверка по прочитанному состоянию дает точную причину отказа,
	// атомарность обеспечивает условная запись ниже
	if _, err := lifecycle.ClaimHelpRequest(current, volunteer, now); err != nil {
		log.WithError(err).Warn("Claim rejected")
		s.metrics.Transition("help_request", "claim", err)
		return nil, err
	}

	req, err := s.repo.Claim(ctx, id, volunteer, now)
	if err != nil {
		log.WithError(err).Warn("Claim lost or failed")
		s.metrics.Transition("help_request", "claim", err)
		return nil, fmt.Errorf("service: could not claim help request: %w", err)
	}
	s.metrics.Transition("help_request", "claim", nil)

	s.publish(ctx, lifecycle.ChangeRequestClaimed, req, log)
	s.notifyClaimed(ctx, req, log)
	log.Info("Help request claimed successfully")
	return req, nil
}

func (s *helpRequestService) notifyClaimed(ctx context.Context, req *models.HelpRequest, log *logrus.Entry) {
	if req.ClaimedBy == nil {
		return
	}
	nctx := context.WithoutCancel(ctx)
	if s.notifyTimeout > 0 {
		var cancel context.CancelFunc
		nctx, cancel = context.WithTimeout(nctx, s.notifyTimeout)
		defer cancel()
	}
	if err := s.notifier.NotifyRequestClaimed(nctx, req.Civilian, *req.ClaimedBy, req); err != nil {
		var nerr *models.NotificationError
		if !errors.As(err, &nerr) {
			nerr = &models.NotificationError{Channel: "email", Err: err}
		}
		log.WithError(nerr).Error("Failed to notify civilian about claimed request")
	}
}

// UpdateHelpRequest - администратор меняет любую заявку, гражданин только свою,
// взявший заявку волонтер - только ее статус
func (s *helpRequestService) UpdateHelpRequest(ctx context.Context, caller models.Caller, id uuid.UUID, patch models.RequestPatch) (*models.HelpRequest, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "help_request",
		"method":     "UpdateHelpRequest",
		"request_id": id,
	})
	log.Info("Attempting to update help request")

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.metrics.Transition("help_request", "update", err)
		return nil, fmt.Errorf("service: could not get help request: %w", err)
	}
	if err := canEditRequest(caller, req, patch); err != nil {
		s.metrics.Transition("help_request", "update", err)
		return nil, err
	}

	change, err := lifecycle.PatchHelpRequest(req, patch, caller, s.now())
	if err != nil {
		log.WithError(err).Warn("Help request update rejected")
		s.metrics.Transition("help_request", "update", err)
		return nil, err
	}
	if err := s.repo.Update(ctx, req); err != nil {
		log.WithError(err).Warn("Failed to update help request in repository")
		s.metrics.Transition("help_request", "update", err)
		return nil, fmt.Errorf("service: could not update help request: %w", err)
	}
	s.metrics.Transition("help_request", "update", nil)

	s.publish(ctx, change, req, log)
	log.Info("Help request updated successfully")
	return req, nil
}

func canEditRequest(caller models.Caller, req *models.HelpRequest, patch models.RequestPatch) error {
	switch {
	case caller.IsAdmin():
		return nil
	case caller.IsCivilian() && req.Civilian.ID == caller.ID:
		return nil
	case caller.IsVolunteer() && !req.Unclaimed() && req.ClaimedBy.ID == caller.ID:
		statusOnly := patch.Title == nil && patch.Description == nil && patch.Location == nil &&
			patch.Category == nil && patch.Priority == nil && patch.IsVerified == nil
		if statusOnly {
			return nil
		}
	}
	return models.ErrForbidden
}

// AddRequestNote дописывает заметку; доступно администратору, владельцу и исполнителю
func (s *helpRequestService) AddRequestNote(ctx context.Context, caller models.Caller, id uuid.UUID, text string) (*models.HelpRequest, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		verr := &models.ValidationError{}
		verr.Add("text", "required", "text is required")
		return nil, verr
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get help request: %w", err)
	}
	allowed := caller.IsAdmin() ||
		req.Civilian.ID == caller.ID ||
		(!req.Unclaimed() && req.ClaimedBy.ID == caller.ID)
	if !allowed {
		return nil, models.ErrForbidden
	}

	req, err = s.repo.AddNote(ctx, id, models.Note{
		Text:    text,
		AddedBy: models.UserRef{ID: caller.ID},
		AddedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("service: could not add note: %w", err)
	}
	log := s.logger.WithFields(logrus.Fields{"service": "help_request", "method": "AddRequestNote", "request_id": id})
	s.publish(ctx, lifecycle.ChangeRequestUpdated, req, log)
	log.Info("Note added to help request")
	return req, nil
}

// ListClaimsByVolunteer - заявки, взятые волонтером (по ID пользователя)
func (s *helpRequestService) ListClaimsByVolunteer(ctx context.Context, caller models.Caller, volunteerUserID uuid.UUID) ([]*models.HelpRequest, error) {
	if !caller.IsAdmin() && !(caller.IsVolunteer() && caller.ID == volunteerUserID) {
		return nil, models.ErrForbidden
	}
	return s.ListHelpRequests(ctx, caller, query.RequestFilter{ClaimedBy: &volunteerUserID})
}

// VolunteerClaimStats считает заявки волонтера по статусам
func (s *helpRequestService) VolunteerClaimStats(ctx context.Context, caller models.Caller, volunteerUserID uuid.UUID) (ClaimStats, error) {
	if !caller.IsAdmin() && !(caller.IsVolunteer() && caller.ID == volunteerUserID) {
		return ClaimStats{}, models.ErrForbidden
	}
	claims, err := s.repo.List(ctx, caller, query.RequestFilter{ClaimedBy: &volunteerUserID})
	if err != nil {
		s.logger.WithError(err).WithField("volunteer_id", volunteerUserID).Error("Failed to count volunteer claims")
		return ClaimStats{}, fmt.Errorf("service: could not count claims: %w", err)
	}

	stats := ClaimStats{TotalClaims: len(claims)}
	for _, req := range claims {
		switch req.Status {
		case models.RequestClaimed, models.RequestInProgress:
			stats.ActiveClaims++
		case models.RequestResolved:
			stats.ResolvedClaims++
		}
	}
	return stats, nil
}

// DeleteHelpRequest - жесткое удаление администратором или владельцем
func (s *helpRequestService) DeleteHelpRequest(ctx context.Context, caller models.Caller, id uuid.UUID) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "help_request",
		"method":     "DeleteHelpRequest",
		"request_id": id,
	})
	log.Info("Attempting to delete help request")

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service: could not get help request: %w", err)
	}
	if !caller.IsAdmin() && !(caller.IsCivilian() && req.Civilian.ID == caller.ID) {
		return models.ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		log.WithError(err).Error("Failed to delete help request in repository")
		return fmt.Errorf("service: could not delete help request: %w", err)
	}

	s.dispatcher.Dispatch(ctx, lifecycle.ChangeRequestDeleted, id)
	log.Info("Help request deleted successfully")
	return nil
}

// publish дополняет ссылки на пользователей и отдает изменение диспетчеру
func (s *helpRequestService) publish(ctx context.Context, change lifecycle.Change, req *models.HelpRequest, log *logrus.Entry) {
	if err := s.populate.requests(ctx, req); err != nil {
		log.WithError(err).Warn("Failed to populate help request")
	}
	s.dispatcher.Dispatch(ctx, change, req)
}
