package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/query"
	"github.com/shenikar/crisis_connect/internal/service"
)

type AlertRepository struct {
	db *pgxpool.Pool
}

func NewAlertRepository(db *pgxpool.Pool) service.AlertRepository {
	return &AlertRepository{db: db}
}

func alertSelect() sq.SelectBuilder {
	return psql.Select(
		"a.id", "a.title", "a.message", "a.type", "a.target_audience",
		"a.is_active", "a.created_by", "a.created_at", "a.updated_at",
	).From("alerts a")
}

func scanAlert(row pgx.Row) (*models.Alert, error) {
	a := &models.Alert{}
	err := row.Scan(&a.ID, &a.Title, &a.Message, &a.Type, &a.TargetAudience,
		&a.IsActive, &a.CreatedBy.ID, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	query := `
		INSERT INTO alerts (id, title, message, type, target_audience, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.db.Exec(ctx, query,
		alert.ID,
		alert.Title,
		alert.Message,
		string(alert.Type),
		string(alert.TargetAudience),
		alert.IsActive,
		alert.CreatedBy.ID,
		alert.CreatedAt,
		alert.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

func (r *AlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	return queryOne(ctx, r.db, alertSelect().Where(sq.Eq{"a.id": id.String()}), "alert", id, scanAlert)
}

func (r *AlertRepository) List(ctx context.Context, filter query.AlertFilter) ([]*models.Alert, error) {
	b := query.ApplyAlert(alertSelect().OrderBy("a.created_at DESC"), filter)
	alerts, err := queryRows(ctx, r.db, b, scanAlert)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

func (r *AlertRepository) Update(ctx context.Context, alert *models.Alert) error {
	query := `
		UPDATE alerts SET
			title = $1,
			message = $2,
			type = $3,
			target_audience = $4,
			is_active = $5,
			updated_at = $6
		WHERE id = $7;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		alert.Title,
		alert.Message,
		string(alert.Type),
		string(alert.TargetAudience),
		alert.IsActive,
		alert.UpdatedAt,
		alert.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return notFound("alert", alert.ID)
	}
	return nil
}

// Deactivate(мягкое удаление) устанавливает is_active = false
func (r *AlertRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE alerts SET is_active = FALSE, updated_at = NOW() WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate alert: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return notFound("alert", id)
	}
	return nil
}
