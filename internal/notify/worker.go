package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/crisis_connect/internal/metrics"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Sender отправляет задание через один канал
type Sender interface {
	Send(ctx context.Context, job Job) error
}

// WorkerConfig - параметры доставки
type WorkerConfig struct {
	// MaxAttempts - 1 означает ровно одну попытку, без повторов
	MaxAttempts int
	BaseDelay   time.Duration
	// PerSecond ограничивает частоту отправок во внешние сервисы
	PerSecond float64
}

// Worker разбирает очередь уведомлений
type Worker struct {
	redisClient *redis.Client
	senders     map[Channel]Sender
	cfg         WorkerConfig
	limiter     *rate.Limiter
	metrics     *metrics.Metrics
	logger      *logrus.Logger
}

// NewWorker создает Worker. Канал без отправителя пропускается с предупреждением.
func NewWorker(redisClient *redis.Client, senders map[Channel]Sender, cfg WorkerConfig, m *metrics.Metrics, logger *logrus.Logger) *Worker {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	limit := rate.Inf
	if cfg.PerSecond > 0 {
		limit = rate.Limit(cfg.PerSecond)
	}
	return &Worker{
		redisClient: redisClient,
		senders:     senders,
		cfg:         cfg,
		limiter:     rate.NewLimiter(limit, 1),
		metrics:     m,
		logger:      logger,
	}
}

// Start запускает горутину обработки очереди
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting notification worker...")
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("Stopping notification worker.")
				return
			default:
				// BRPOP - блокирующее извлечение из правой части списка, 0 - без таймаута
				result, err := w.redisClient.BRPop(ctx, 0, queueKey).Result()
				if err != nil {
					if errors.Is(err, context.Canceled) {
						continue
					}
					w.logger.WithError(err).Error("Failed to pop notification job from Redis")
					sleep(ctx, time.Second)
					continue
				}

				// result[0] - ключ, result[1] - значение
				var job Job
				if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
					w.logger.WithError(err).Error("Failed to unmarshal notification job from Redis")
					continue
				}
				w.Process(ctx, job)
			}
		}
	}()
}

// Process доставляет одно задание с ограниченным числом попыток
func (w *Worker) Process(ctx context.Context, job Job) error {
	log := w.logger.WithFields(logrus.Fields{
		"component": "notify",
		"job_id":    job.ID,
		"channel":   job.Channel,
		"kind":      job.Kind,
	})

	sender, ok := w.senders[job.Channel]
	if !ok {
		w.metrics.Notification(string(job.Channel), "skipped")
		log.Warn("No sender configured for channel. Skipping notification.")
		return nil
	}

	delay := w.cfg.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		if err := w.limiter.Wait(ctx); err != nil {
			lastErr = err
			break
		}
		lastErr = sender.Send(ctx, job)
		if lastErr == nil {
			w.metrics.Notification(string(job.Channel), "sent")
			log.Info("Notification delivered successfully.")
			return nil
		}
		if attempt < w.cfg.MaxAttempts {
			log.WithError(lastErr).Warnf("Notification delivery failed. Retrying in %v. Attempts left: %d", delay, w.cfg.MaxAttempts-attempt)
			sleep(ctx, delay)
			delay *= 2 // Экспоненциальная задержка
		}
	}

	w.metrics.Notification(string(job.Channel), "failed")
	log.WithError(lastErr).Errorf("Failed to deliver notification after %d attempts.", w.cfg.MaxAttempts)
	return fmt.Errorf("notify: %s delivery failed: %w", job.Channel, lastErr)
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
