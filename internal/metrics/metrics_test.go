package metrics

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.EventEmitted("new-incident", "broadcast")
	m.EventEmitted("new-incident", "broadcast")
	m.EventDropped("buffer_full")
	m.Notification("email", "sent")
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.eventsEmitted.WithLabelValues("new-incident", "broadcast")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsDropped.WithLabelValues("buffer_full")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("email", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions))
}

func TestMetrics_Transition(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Transition("help_request", "claim", nil)
	m.Transition("help_request", "claim", fmt.Errorf("wrap: %w", models.ErrConflict))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("help_request", "claim", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("help_request", "claim", "conflict")))
}

func TestTransitionResult(t *testing.T) {
	assert.Equal(t, "validation", TransitionResult(&models.ValidationError{}))
	assert.Equal(t, "forbidden", TransitionResult(models.ErrForbidden))
	assert.Equal(t, "not_found", TransitionResult(models.ErrNotFound))
	assert.Equal(t, "invalid_state", TransitionResult(models.ErrInvalidState))
	assert.Equal(t, "error", TransitionResult(fmt.Errorf("boom")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.EventEmitted("x", "y")
		m.EventDropped("x")
		m.Notification("x", "y")
		m.SessionOpened()
		m.SessionClosed()
		m.Transition("x", "y", nil)
	})
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := New(reg)
	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/ping/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/42", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}
