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

type IncidentRepository struct {
	db *pgxpool.Pool
}

func NewIncidentRepository(db *pgxpool.Pool) service.IncidentRepository {
	return &IncidentRepository{db: db}
}

func incidentSelect() sq.SelectBuilder {
	return psql.Select(
		"i.id",
		"i.location",
		"i.type",
		"i.severity",
		"i.description",
		"ST_Y(i.coordinates::geometry) AS latitude",
		"ST_X(i.coordinates::geometry) AS longitude",
		"i.status",
		"i.reported_by",
		"i.verified_by",
		"i.verified_at",
		"i.created_at",
		"i.updated_at",
	).From("incidents i")
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	inc := &models.Incident{}
	var verifiedBy *uuid.UUID
	err := row.Scan(
		&inc.ID,
		&inc.Location,
		&inc.Type,
		&inc.Severity,
		&inc.Description,
		&inc.Latitude,
		&inc.Longitude,
		&inc.Status,
		&inc.ReportedBy.ID,
		&verifiedBy,
		&inc.VerifiedAt,
		&inc.CreatedAt,
		&inc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inc.Coordinates = models.NewGeoPoint(inc.Latitude, inc.Longitude)
	inc.VerifiedBy = refPtr(verifiedBy)
	return inc, nil
}

// Create создает новую запись об инциденте в бд
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (id, location, type, severity, description, coordinates, status, reported_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, ST_SetSRID(ST_MakePoint($6, $7), 4326), $8, $9, $10, $11);
	`
	_, err := r.db.Exec(ctx, query,
		incident.ID,
		incident.Location,
		incident.Type,
		incident.Severity,
		incident.Description,
		incident.Longitude,
		incident.Latitude,
		int(incident.Status),
		incident.ReportedBy.ID,
		incident.CreatedAt,
		incident.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по его UUID
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	return queryOne(ctx, r.db, incidentSelect().Where(sq.Eq{"i.id": id.String()}), "incident", id, scanIncident)
}

// List возвращает инциденты с учетом роли и фильтров
func (r *IncidentRepository) List(ctx context.Context, caller models.Caller, filter query.IncidentFilter) ([]*models.Incident, error) {
	b := query.ApplyIncident(incidentSelect(), caller, filter)
	if filter.BySeverity {
		b = b.OrderBy("i.severity DESC", "i.created_at DESC")
	} else {
		b = b.OrderBy("i.created_at DESC")
	}
	incidents, err := queryRows(ctx, r.db, b, scanIncident)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	return incidents, nil
}

// UpdateStatus записывает переход, только если статус в бд все еще from
func (r *IncidentRepository) UpdateStatus(ctx context.Context, incident *models.Incident, from models.IncidentStatus) error {
	query := `
		UPDATE incidents SET
			status = $1,
			verified_by = $2,
			verified_at = $3,
			updated_at = $4
		WHERE id = $5 AND status = $6;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		int(incident.Status),
		refID(incident.VerifiedBy),
		incident.VerifiedAt,
		incident.UpdatedAt,
		incident.ID,
		int(from),
	)
	if err != nil {
		return fmt.Errorf("failed to update incident: %w", err)
	}

	// RowsAffected() == 0: инцидента нет или его статус уже изменили
	if cmdTag.RowsAffected() == 0 {
		return missedWrite(ctx, r.db, "incidents", "incident", incident.ID)
	}
	return nil
}
