// Package metrics - счетчики Prometheus для рассылки событий, уведомлений
// и переходов состояний. Все методы безопасны для nil-получателя.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shenikar/crisis_connect/internal/models"
)

const namespace = "crisis"

type Metrics struct {
	eventsEmitted   *prometheus.CounterVec
	eventsDropped   *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	sessions        prometheus.Gauge
	transitions     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New создает метрики и регистрирует их в reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		eventsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_emitted_total",
			Help:      "Realtime events handed to the transport",
		}, []string{"event", "audience"}),
		eventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Realtime frames dropped before reaching a session",
		}, []string{"reason"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification attempts by channel and outcome",
		}, []string{"channel", "status"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realtime_sessions",
			Help:      "Currently connected realtime sessions",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transition_total",
			Help:      "State machine transitions by entity and result",
		}, []string{"entity", "transition", "result"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}

	reg.MustRegister(
		m.eventsEmitted,
		m.eventsDropped,
		m.notifications,
		m.sessions,
		m.transitions,
		m.requestDuration,
	)
	return m
}

func (m *Metrics) EventEmitted(event, audience string) {
	if m == nil {
		return
	}
	m.eventsEmitted.WithLabelValues(event, audience).Inc()
}

func (m *Metrics) EventDropped(reason string) {
	if m == nil {
		return
	}
	m.eventsDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) Notification(channel, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(channel, status).Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}

// Transition учитывает исход перехода; результат выводится из ошибки
func (m *Metrics) Transition(entity, transition string, err error) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(entity, transition, TransitionResult(err)).Inc()
}

// TransitionResult сворачивает ошибку в метку result
func TransitionResult(err error) string {
	var verr *models.ValidationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &verr):
		return "validation"
	case errors.Is(err, models.ErrForbidden):
		return "forbidden"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, models.ErrConflict):
		return "conflict"
	}
	return "error"
}

// GinMiddleware измеряет длительность запросов по шаблону маршрута
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
