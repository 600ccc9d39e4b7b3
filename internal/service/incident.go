package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/lifecycle"
	"github.com/shenikar/crisis_connect/internal/metrics"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/query"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=incident.go -destination=mocks/incident_mocks.go -package=mocks

// IncidentRepository определяет контракт для работы с бд инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	List(ctx context.Context, caller models.Caller, filter query.IncidentFilter) ([]*models.Incident, error)
	// UpdateStatus - условная запись: применяется, только если статус в хранилище равен from
	UpdateStatus(ctx context.Context, incident *models.Incident, from models.IncidentStatus) error
}

// IncidentCache - кеш инцидентов по ID
type IncidentCache interface {
	GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, incident *models.Incident) error
	InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error
}

// IncidentService определяет контракт бизнес-логики инцидентов
type IncidentService interface {
	ReportIncident(ctx context.Context, caller models.Caller, input IncidentInput) (*models.Incident, error)
	VerifyIncident(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Incident, error)
	MarkIncidentOngoing(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Incident, error)
	MarkIncidentCompleted(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Incident, error)
	GetIncident(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, caller models.Caller, filter query.IncidentFilter) ([]*models.Incident, error)
	ListPendingIncidents(ctx context.Context, caller models.Caller) ([]*models.Incident, error)
	ListVerifiedIncidents(ctx context.Context, caller models.Caller) ([]*models.Incident, error)
	MapIncidents(ctx context.Context, caller models.Caller) ([]*models.IncidentSummary, error)
}

// IncidentInput - отчет гражданина. Указатели отличают "не передано" от нуля.
type IncidentInput struct {
	Location    string   `json:"location" validate:"required"`
	Type        string   `json:"type" validate:"required"`
	Severity    *int     `json:"severity" validate:"required,min=1,max=5"`
	Description string   `json:"description" validate:"required"`
	Latitude    *float64 `json:"latitude" validate:"required,latitude"`
	Longitude   *float64 `json:"longitude" validate:"required,longitude"`
}

type incidentService struct {
	repo       IncidentRepository
	cache      IncidentCache
	volunteers VolunteerRepository
	populate   populator
	dispatcher Dispatcher
	notifier   Notifier
	validate   *validator.Validate
	metrics    *metrics.Metrics
	logger     *logrus.Logger
	now        Clock
	// notifyTimeout ограничивает синхронную постановку уведомления в очередь
	notifyTimeout time.Duration
}

// IncidentDeps - зависимости сервиса инцидентов
type IncidentDeps struct {
	Repo          IncidentRepository
	Cache         IncidentCache
	Volunteers    VolunteerRepository
	Users         UserRepository
	Dispatcher    Dispatcher
	Notifier      Notifier
	Metrics       *metrics.Metrics
	Logger        *logrus.Logger
	NotifyTimeout time.Duration
	Clock         Clock
}

func NewIncidentService(deps IncidentDeps) IncidentService {
	now := deps.Clock
	if now == nil {
		now = utcNow
	}
	return &incidentService{
		repo:          deps.Repo,
		cache:         deps.Cache,
		volunteers:    deps.Volunteers,
		populate:      populator{users: deps.Users},
		dispatcher:    deps.Dispatcher,
		notifier:      deps.Notifier,
		validate:      newValidator(),
		metrics:       deps.Metrics,
		logger:        deps.Logger,
		now:           now,
		notifyTimeout: deps.NotifyTimeout,
	}
}

// ReportIncident создает инцидент в статусе Pending
func (s *incidentService) ReportIncident(ctx context.Context, caller models.Caller, input IncidentInput) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ReportIncident",
		"user_id": caller.ID,
	})
	log.Info("Attempting to report a new incident")

	if !caller.IsCivilian() {
		s.metrics.Transition("incident", "report", models.ErrForbidden)
		return nil, models.ErrForbidden
	}
	if err := validateInput(s.validate, input); err != nil {
		log.WithError(err).Warn("Incident report rejected")
		s.metrics.Transition("incident", "report", err)
		return nil, err
	}

	incident := &models.Incident{
		ID:          uuid.New(),
		Location:    input.Location,
		Type:        input.Type,
		Severity:    *input.Severity,
		Description: input.Description,
		Latitude:    *input.Latitude,
		Longitude:   *input.Longitude,
	}
	change := lifecycle.ReportIncident(incident, models.UserRef{ID: caller.ID}, s.now())

	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		s.metrics.Transition("incident", "report", err)
		return nil, fmt.Errorf("service: could not create incident: %w", err)
	}
	s.metrics.Transition("incident", "report", nil)

	if err := s.populate.incidents(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to populate incident reporter")
	}
	s.dispatcher.Dispatch(ctx, change, incident)

	log.WithField("incident_id", incident.ID).Info("Incident reported successfully")
	return incident, nil
}

// VerifyIncident переводит Pending -> Verified и уведомляет принятых волонтеров
func (s *incidentService) VerifyIncident(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "VerifyIncident",
		"incident_id": id,
	})
	log.Info("Attempting to verify incident")

	incident, err := s.transition(ctx, caller, id, "verify", func(inc *models.Incident) (lifecycle.Change, error) {
		return lifecycle.VerifyIncident(inc, models.UserRef{ID: caller.ID}, s.now())
	})
	if err != nil {
		log.WithError(err).Warn("Incident verification failed")
		return nil, err
	}

	s.notifyVerified(ctx, incident, log)
	log.Info("Incident verified successfully")
	return incident, nil
}

func (s *incidentService) MarkIncidentOngoing(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Incident, error) {
	return s.advance(ctx, caller, id, models.IncidentOngoing)
}

func (s *incidentService) MarkIncidentCompleted(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Incident, error) {
	return s.advance(ctx, caller, id, models.IncidentCompleted)
}

func (s *incidentService) advance(ctx context.Context, caller models.Caller, id uuid.UUID, to models.IncidentStatus) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "AdvanceIncident",
		"incident_id": id,
		"to":          to.String(),
	})
	log.Info("Attempting to advance incident")

	incident, err := s.transition(ctx, caller, id, "mark_"+to.String(), func(inc *models.Incident) (lifecycle.Change, error) {
		return lifecycle.AdvanceIncident(inc, to, s.now())
	})
	if err != nil {
		log.WithError(err).Warn("Incident advancement failed")
		return nil, err
	}
	log.Info("Incident advanced successfully")
	return incident, nil
}

// transition - общий путь административных переходов: чтение из хранилища,
// проверка машиной состояний, условная запись, сброс кеша и рассылка
func (s *incidentService) transition(
	ctx context.Context,
	caller models.Caller,
	id uuid.UUID,
	name string,
	apply func(*models.Incident) (lifecycle.Change, error),
) (*models.Incident, error) {
	if !caller.IsAdmin() {
		s.metrics.Transition("incident", name, models.ErrForbidden)
		return nil, models.ErrForbidden
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.metrics.Transition("incident", name, err)
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	from := incident.Status
	change, err := apply(incident)
	if err != nil {
		s.metrics.Transition("incident", name, err)
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, incident, from); err != nil {
		s.metrics.Transition("incident", name, err)
		return nil, fmt.Errorf("service: could not update incident: %w", err)
	}
	s.metrics.Transition("incident", name, nil)

	if err := s.cache.InvalidateIncidentCache(ctx, id); err != nil {
		s.logger.WithError(err).WithField("incident_id", id).Warn("Failed to invalidate incident cache")
	}
	if err := s.populate.incidents(ctx, incident); err != nil {
		s.logger.WithError(err).WithField("incident_id", id).Warn("Failed to populate incident")
	}
	s.dispatcher.Dispatch(ctx, change, incident)
	return incident, nil
}

// notifyVerified рассылает письма принятым волонтерам; сбой только логируется
func (s *incidentService) notifyVerified(ctx context.Context, incident *models.Incident, log *logrus.Entry) {
	accepted := models.ApplicationAccepted
	profiles, err := s.volunteers.List(ctx, query.VolunteerFilter{ApplicationStatus: &accepted})
	if err != nil {
		log.WithError(err).Error("Failed to list accepted volunteers for notification")
		return
	}

	refs := make([]*models.UserRef, 0, len(profiles))
	for _, p := range profiles {
		refs = append(refs, &models.UserRef{ID: p.UserID})
	}
	if err := s.populate.refs(ctx, refs...); err != nil {
		log.WithError(err).Error("Failed to resolve volunteer emails for notification")
		return
	}
	emails := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.Email != "" {
			emails = append(emails, r.Email)
		}
	}
	if len(emails) == 0 {
		log.Info("No accepted volunteers to notify")
		return
	}

	nctx, cancel := s.notifyContext(ctx)
	defer cancel()
	if err := s.notifier.NotifyIncidentVerified(nctx, emails, incident); err != nil {
		var nerr *models.NotificationError
		if !errors.As(err, &nerr) {
			nerr = &models.NotificationError{Channel: "email", Err: err}
		}
		log.WithError(nerr).Error("Failed to notify volunteers about verified incident")
		return
	}
	log.WithField("recipients", len(emails)).Info("Volunteers notified about verified incident")
}

func (s *incidentService) notifyContext(ctx context.Context) (context.Context, context.CancelFunc) {
	// Уведомление не должно отменяться вместе с HTTP-запросом после фиксации изменения
	base := context.WithoutCancel(ctx)
	if s.notifyTimeout > 0 {
		return context.WithTimeout(base, s.notifyTimeout)
	}
	return context.WithCancel(base)
}

// GetIncident получает инцидент по ID, сначала из кеша
func (s *incidentService) GetIncident(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})
	log.Info("Fetching incident by ID")

	incident, err := s.cache.GetIncidentFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read incident cache")
	}
	if incident == nil {
		incident, err = s.repo.GetByID(ctx, id)
		if err != nil {
			log.WithError(err).Warn("Failed to get incident in repository")
			return nil, fmt.Errorf("service: could not get incident: %w", err)
		}
		if err := s.populate.incidents(ctx, incident); err != nil {
			log.WithError(err).Warn("Failed to populate incident")
		}
		if err := s.cache.SetIncidentCache(ctx, incident); err != nil {
			log.WithError(err).Warn("Failed to cache incident")
		}
	}

	if caller.IsCivilian() && incident.ReportedBy.ID != caller.ID {
		return nil, models.ErrForbidden
	}
	log.Info("Incident fetched successfully")
	return incident, nil
}

// ListIncidents возвращает инциденты с учетом роли и фильтров
func (s *incidentService) ListIncidents(ctx context.Context, caller models.Caller, filter query.IncidentFilter) ([]*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ListIncidents",
		"role":    caller.Role,
	})
	log.Info("Listing incidents")

	incidents, err := s.repo.List(ctx, caller, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}
	if err := s.populate.incidents(ctx, incidents...); err != nil {
		log.WithError(err).Warn("Failed to populate incidents")
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}

func (s *incidentService) ListPendingIncidents(ctx context.Context, caller models.Caller) ([]*models.Incident, error) {
	if !caller.IsAdmin() {
		return nil, models.ErrForbidden
	}
	status := models.IncidentPending
	return s.ListIncidents(ctx, caller, query.IncidentFilter{Status: &status, BySeverity: true})
}

func (s *incidentService) ListVerifiedIncidents(ctx context.Context, caller models.Caller) ([]*models.Incident, error) {
	if !caller.IsAdmin() {
		return nil, models.ErrForbidden
	}
	status := models.IncidentVerified
	return s.ListIncidents(ctx, caller, query.IncidentFilter{Status: &status})
}

// MapIncidents - облегченная проекция всех инцидентов для карты, без ролевого ограничения
func (s *incidentService) MapIncidents(ctx context.Context, caller models.Caller) ([]*models.IncidentSummary, error) {
	incidents, err := s.repo.List(ctx, models.Caller{ID: caller.ID, Role: models.RoleAdmin}, query.IncidentFilter{})
	if err != nil {
		s.logger.WithError(err).WithField("method", "MapIncidents").Error("Failed to list incidents for map")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}
	out := make([]*models.IncidentSummary, 0, len(incidents))
	for _, inc := range incidents {
		out = append(out, inc.Summary())
	}
	return out, nil
}
