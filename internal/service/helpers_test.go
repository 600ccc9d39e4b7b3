package service_test

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/lifecycle"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/sirupsen/logrus"
)

// quietLogger отключает вывод логов в тестах
func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func callerAs(role models.Role) models.Caller {
	return models.Caller{ID: uuid.New(), Role: role}
}

func ptr[T any](v T) *T { return &v }

// recordingDispatcher запоминает отданные изменения
type recordingDispatcher struct {
	mu      sync.Mutex
	changes []lifecycle.Change
}

func (d *recordingDispatcher) Dispatch(_ context.Context, change lifecycle.Change, _ any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.changes = append(d.changes, change)
}

func (d *recordingDispatcher) count(change lifecycle.Change) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.changes {
		if c == change {
			n++
		}
	}
	return n
}

// recordingNotifier запоминает адресатов; err возвращается из каждого вызова
type recordingNotifier struct {
	mu       sync.Mutex
	verified [][]string
	claimed  []models.UserRef
	sms      [][]string
	err      error
}

func (n *recordingNotifier) NotifyIncidentVerified(_ context.Context, recipients []string, _ *models.Incident) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verified = append(n.verified, recipients)
	return n.err
}

func (n *recordingNotifier) NotifyRequestClaimed(_ context.Context, civilian, _ models.UserRef, _ *models.HelpRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.claimed = append(n.claimed, civilian)
	return n.err
}

func (n *recordingNotifier) NotifyAdminsSMSReport(_ context.Context, phones []string, _ *models.Incident) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sms = append(n.sms, phones)
	return n.err
}

func (n *recordingNotifier) claimedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.claimed)
}
