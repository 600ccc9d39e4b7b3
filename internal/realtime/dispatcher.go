package realtime

import (
	"context"

	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/lifecycle"
	"github.com/shenikar/crisis_connect/internal/metrics"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/sirupsen/logrus"
)

// Имена событий, которые видят клиенты
const (
	EventNewIncident       = "new-incident"
	EventIncidentVerified  = "incident-verified"
	EventIncidentUpdated   = "incident-updated"
	EventNewRequest        = "new-request"
	EventRequestClaimed    = "request-claimed"
	EventRequestUpdated    = "request-updated"
	EventRequestDeleted    = "request-deleted"
	EventNewTaskAssigned   = "new-task-assigned"
	EventTaskAssigned      = "task-assigned"
	EventTaskStatusUpdated = "task-status-updated"
	EventNewAlert          = "new-alert"
	EventAlertUpdated      = "alert-updated"
	EventAlertDeleted      = "alert-deleted"
	EventNewResource       = "new-resource"
	EventResourceUpdated   = "resource-updated"
	EventResourceDeleted   = "resource-deleted"
)

// IDPayload - полезная нагрузка событий удаления
type IDPayload struct {
	ID uuid.UUID `json:"id"`
}

// Emission - одно событие в одну аудиторию
type Emission struct {
	Room    string
	Event   string
	Payload any
}

// Audience - метка аудитории для метрик
func (e Emission) Audience() string {
	switch {
	case e.Room == Broadcast:
		return "broadcast"
	case e.Room == RoomVolunteers:
		return "volunteers"
	}
	return "volunteer"
}

// Plan раскладывает изменение на события по каталогу. Для удалений payload - uuid.UUID.
func Plan(change lifecycle.Change, payload any) []Emission {
	switch change {
	case lifecycle.ChangeIncidentReported:
		return broadcast(EventNewIncident, payload)
	case lifecycle.ChangeIncidentVerified:
		return broadcast(EventIncidentVerified, payload)
	case lifecycle.ChangeIncidentAdvanced:
		return broadcast(EventIncidentUpdated, payload)

	case lifecycle.ChangeRequestCreated:
		if req, ok := payload.(*models.HelpRequest); ok {
			unclaimed := *req
			unclaimed.ClaimedBy = nil
			payload = &unclaimed
		}
		return volunteersAndAll(EventNewRequest, payload)
	case lifecycle.ChangeRequestClaimed:
		return volunteersAndAll(EventRequestClaimed, payload)
	case lifecycle.ChangeRequestUpdated:
		return volunteersAndAll(EventRequestUpdated, payload)
	case lifecycle.ChangeRequestDeleted:
		return broadcast(EventRequestDeleted, idPayload(payload))

	case lifecycle.ChangeTaskAssigned:
		task, ok := payload.(*models.Task)
		if !ok {
			return broadcast(EventTaskAssigned, payload)
		}
		return []Emission{
			{Room: VolunteerRoom(task.VolunteerID), Event: EventNewTaskAssigned, Payload: task},
			{Room: Broadcast, Event: EventTaskAssigned, Payload: task},
		}
	case lifecycle.ChangeTaskResponded, lifecycle.ChangeTaskCompleted:
		return broadcast(EventTaskStatusUpdated, payload)

	case lifecycle.ChangeAlertCreated:
		return broadcast(EventNewAlert, payload)
	case lifecycle.ChangeAlertUpdated:
		return broadcast(EventAlertUpdated, payload)
	case lifecycle.ChangeAlertDeleted:
		return broadcast(EventAlertDeleted, idPayload(payload))

	case lifecycle.ChangeResourceCreated:
		return broadcast(EventNewResource, payload)
	case lifecycle.ChangeResourceUpdated:
		return broadcast(EventResourceUpdated, payload)
	case lifecycle.ChangeResourceDeleted:
		return broadcast(EventResourceDeleted, idPayload(payload))
	}
	return nil
}

func broadcast(event string, payload any) []Emission {
	return []Emission{{Room: Broadcast, Event: event, Payload: payload}}
}

// volunteersAndAll - двойная отправка: комната волонтеров может быть устаревшей
// после переподключения, широковещательная копия догоняет таких клиентов
func volunteersAndAll(event string, payload any) []Emission {
	return []Emission{
		{Room: RoomVolunteers, Event: event, Payload: payload},
		{Room: Broadcast, Event: event, Payload: payload},
	}
}

func idPayload(payload any) any {
	if id, ok := payload.(uuid.UUID); ok {
		return IDPayload{ID: id}
	}
	return payload
}

// Dispatcher передает события транспорту. Ошибки транспорта только логируются:
// изменение уже зафиксировано.
type Dispatcher struct {
	transport Transport
	metrics   *metrics.Metrics
	logger    *logrus.Logger
}

func NewDispatcher(transport Transport, m *metrics.Metrics, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		metrics:   m,
		logger:    logger,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, change lifecycle.Change, payload any) {
	for _, e := range Plan(change, payload) {
		log := d.logger.WithFields(logrus.Fields{
			"component": "dispatcher",
			"event":     e.Event,
			"audience":  e.Audience(),
		})
		if err := d.transport.Emit(ctx, e.Room, e.Event, e.Payload); err != nil {
			d.metrics.EventDropped("transport_error")
			log.WithError(err).Warn("Failed to emit realtime event")
			continue
		}
		d.metrics.EventEmitted(e.Event, e.Audience())
		log.Debug("Realtime event emitted")
	}
}
