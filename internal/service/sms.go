package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/lifecycle"
	"github.com/shenikar/crisis_connect/internal/metrics"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	smsDefaultSeverity = 3

	SMSReplyInvalidFormat = "Invalid format. Please use: INCIDENT: [type] at [location] - [description]"
	SMSReplyAccepted      = "Thank you! Your emergency report has been received and will be reviewed by our team. Help will be dispatched as needed."
	SMSReplyFailed        = "Sorry, there was an error processing your report. Please try again later."
)

// INCIDENT: <type> at <location> - <description>
var smsReportPattern = regexp.MustCompile(`(?i)INCIDENT:\s*(.+?)\s+at\s+(.+?)\s*-\s*(.+)`)

//go:generate mockgen -source=sms.go -destination=mocks/sms_mocks.go -package=mocks

// SMSService принимает отчеты об инцидентах из входящих SMS
type SMSService interface {
	// HandleIncomingSMS всегда возвращает текст ответа отправителю
	HandleIncomingSMS(ctx context.Context, from, body string) (string, error)
}

type smsService struct {
	repo          IncidentRepository
	dispatcher    Dispatcher
	notifier      Notifier
	metrics       *metrics.Metrics
	logger        *logrus.Logger
	reporter      uuid.UUID
	adminPhones   []string
	notifyTimeout time.Duration
	now           Clock
}

// SMSDeps - зависимости приема SMS
type SMSDeps struct {
	Repo          IncidentRepository
	Dispatcher    Dispatcher
	Notifier      Notifier
	Metrics       *metrics.Metrics
	Logger        *logrus.Logger
	ReporterID    uuid.UUID
	AdminPhones   []string
	NotifyTimeout time.Duration
}

func NewSMSService(deps SMSDeps) SMSService {
	return &smsService{
		repo:          deps.Repo,
		dispatcher:    deps.Dispatcher,
		notifier:      deps.Notifier,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
		reporter:      deps.ReporterID,
		adminPhones:   deps.AdminPhones,
		notifyTimeout: deps.NotifyTimeout,
		now:           utcNow,
	}
}

// ParseSMSReport разбирает тело SMS на тип, место и описание
func ParseSMSReport(body string) (incidentType, location, description string, ok bool) {
	m := smsReportPattern.FindStringSubmatch(body)
	if m == nil {
		return "", "", "", false
	}
	incidentType = strings.TrimSpace(m[1])
	location = strings.TrimSpace(m[2])
	description = strings.TrimSpace(m[3])
	if incidentType == "" || location == "" || description == "" {
		return "", "", "", false
	}
	return incidentType, location, description, true
}

// HandleIncomingSMS создает инцидент в статусе Pending: координат в SMS нет,
// поэтому 0,0, серьезность по умолчанию 3. Проверку проходит как обычный отчет.
func (s *smsService) HandleIncomingSMS(ctx context.Context, from, body string) (string, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "sms",
		"method":  "HandleIncomingSMS",
		"from":    from,
	})
	log.Info("Received incoming SMS")

	incidentType, location, description, ok := ParseSMSReport(body)
	if !ok {
		log.Warn("SMS did not match report format")
		return SMSReplyInvalidFormat, nil
	}

	incident := &models.Incident{
		ID:          uuid.New(),
		Type:        incidentType,
		Location:    location,
		Description: description,
		Severity:    smsDefaultSeverity,
	}
	change := lifecycle.ReportIncident(incident, models.UserRef{ID: s.reporter}, s.now())
	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).Error("Failed to store SMS incident")
		s.metrics.Transition("incident", "report_sms", err)
		return SMSReplyFailed, fmt.Errorf("service: could not create sms incident: %w", err)
	}
	s.metrics.Transition("incident", "report_sms", nil)
	s.dispatcher.Dispatch(ctx, change, incident)

	if len(s.adminPhones) > 0 {
		nctx := context.WithoutCancel(ctx)
		if s.notifyTimeout > 0 {
			var cancel context.CancelFunc
			nctx, cancel = context.WithTimeout(nctx, s.notifyTimeout)
			defer cancel()
		}
		if err := s.notifier.NotifyAdminsSMSReport(nctx, s.adminPhones, incident); err != nil {
			var nerr *models.NotificationError
			if !errors.As(err, &nerr) {
				nerr = &models.NotificationError{Channel: "sms", Err: err}
			}
			log.WithError(nerr).Error("Failed to notify admins about SMS report")
		}
	}

	log.WithField("incident_id", incident.ID).Info("SMS incident reported successfully")
	return SMSReplyAccepted, nil
}
