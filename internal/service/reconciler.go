package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shenikar/crisis_connect/internal/lifecycle"
	"github.com/shenikar/crisis_connect/internal/metrics"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/query"
	"github.com/sirupsen/logrus"
)

// Reconciler периодически сверяет taskStatus профилей с последней задачей
// волонтера и исправляет расхождения
type Reconciler struct {
	tasks      TaskRepository
	volunteers VolunteerRepository
	metrics    *metrics.Metrics
	logger     *logrus.Logger
	interval   time.Duration
}

func NewReconciler(tasks TaskRepository, volunteers VolunteerRepository, interval time.Duration, m *metrics.Metrics, logger *logrus.Logger) *Reconciler {
	return &Reconciler{
		tasks:      tasks,
		volunteers: volunteers,
		metrics:    m,
		logger:     logger,
		interval:   interval,
	}
}

// Run блокируется до отмены контекста. Нулевой интервал отключает сверку.
func (r *Reconciler) Run(ctx context.Context) error {
	if r.interval <= 0 {
		r.logger.Info("Task status reconciler disabled")
		return nil
	}
	r.logger.WithField("interval", r.interval.String()).Info("Starting task status reconciler...")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Stopping task status reconciler.")
			return nil
		case <-ticker.C:
			if _, err := r.ReconcileOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.WithError(err).Error("Task status reconciliation failed")
			}
		}
	}
}

// ReconcileOnce - один проход; возвращает число исправленных профилей.
// Профили читаются раньше задач: назначение, записанное между чтениями,
// меняет taskStatus, и условная запись с устаревшим from не проходит.
func (r *Reconciler) ReconcileOnce(ctx context.Context) (int, error) {
	profiles, err := r.volunteers.List(ctx, query.VolunteerFilter{})
	if err != nil {
		return 0, fmt.Errorf("service: could not list volunteer profiles: %w", err)
	}
	latest, err := r.tasks.LatestStatusByVolunteer(ctx)
	if err != nil {
		return 0, fmt.Errorf("service: could not load latest task statuses: %w", err)
	}

	repaired := 0
	for _, p := range profiles {
		want := models.VolunteerAvailable
		if status, ok := latest[p.ID]; ok {
			want = lifecycle.ProjectTaskStatus(status)
		}
		if p.TaskStatus == want {
			continue
		}

		log := r.logger.WithFields(logrus.Fields{
			"component":  "reconciler",
			"profile_id": p.ID,
			"from":       int(p.TaskStatus),
			"to":         int(want),
		})
		err := r.volunteers.SetTaskStatus(ctx, p.ID, p.TaskStatus, want)
		r.metrics.Transition("volunteer", "reconcile", err)
		if err != nil {
			if errors.Is(err, models.ErrConflict) {
				// профиль изменился между чтением и записью, следующий проход увидит новое состояние
				log.Debug("Skipped profile changed during reconciliation")
				continue
			}
			log.WithError(err).Error("Failed to repair volunteer task status")
			continue
		}
		repaired++
		log.Warn("Repaired volunteer task status drift")
	}
	return repaired, nil
}
