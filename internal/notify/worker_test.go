package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shenikar/crisis_connect/internal/metrics"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSender struct {
	calls    int
	failures int
}

func (s *countingSender) Send(context.Context, Job) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("smtp unavailable")
	}
	return nil
}

func newTestWorker(t *testing.T, senders map[Channel]Sender, attempts int) *Worker {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return NewWorker(nil, senders, WorkerConfig{MaxAttempts: attempts}, metrics.New(prometheus.NewRegistry()), logger)
}

func TestWorker_Process_SingleAttemptByDefault(t *testing.T) {
	// Подготовка
	sender := &countingSender{failures: 5}
	w := newTestWorker(t, map[Channel]Sender{ChannelEmail: sender}, 0)

	// Действие
	err := w.Process(context.Background(), Job{Channel: ChannelEmail, To: []string{"a@example.com"}})

	// Проверки
	require.Error(t, err)
	assert.Equal(t, 1, sender.calls)
}

func TestWorker_Process_RetriesUpToMax(t *testing.T) {
	sender := &countingSender{failures: 2}
	w := newTestWorker(t, map[Channel]Sender{ChannelSMS: sender}, 3)

	err := w.Process(context.Background(), Job{Channel: ChannelSMS})

	require.NoError(t, err)
	assert.Equal(t, 3, sender.calls)
}

func TestWorker_Process_MissingSenderIsSkipped(t *testing.T) {
	w := newTestWorker(t, map[Channel]Sender{}, 1)

	err := w.Process(context.Background(), Job{Channel: ChannelWebhook})

	assert.NoError(t, err)
}
