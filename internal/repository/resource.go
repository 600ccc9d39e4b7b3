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

type ResourceRepository struct {
	db *pgxpool.Pool
}

func NewResourceRepository(db *pgxpool.Pool) service.ResourceRepository {
	return &ResourceRepository{db: db}
}

func resourceSelect() sq.SelectBuilder {
	return psql.Select(
		"res.id",
		"res.name",
		"res.type",
		"res.description",
		"ST_Y(res.coordinates::geometry) AS latitude",
		"ST_X(res.coordinates::geometry) AS longitude",
		"res.address",
		"res.capacity",
		"res.current_occupancy",
		"res.contact_phone",
		"res.contact_email",
		"res.is_active",
		"res.created_by",
		"res.created_at",
		"res.updated_at",
	).From("resources res")
}

func scanResource(row pgx.Row) (*models.Resource, error) {
	res := &models.Resource{}
	err := row.Scan(
		&res.ID,
		&res.Name,
		&res.Type,
		&res.Description,
		&res.Location.Latitude,
		&res.Location.Longitude,
		&res.Location.Address,
		&res.Capacity,
		&res.CurrentOccupancy,
		&res.Contact.Phone,
		&res.Contact.Email,
		&res.IsActive,
		&res.CreatedBy.ID,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	return res, err
}

func (r *ResourceRepository) Create(ctx context.Context, res *models.Resource) error {
	query := `
		INSERT INTO resources (
			id, name, type, description, coordinates, address, capacity, current_occupancy,
			contact_phone, contact_email, is_active, created_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326), $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.db.Exec(ctx, query,
		res.ID,
		res.Name,
		string(res.Type),
		res.Description,
		res.Location.Longitude,
		res.Location.Latitude,
		res.Location.Address,
		res.Capacity,
		res.CurrentOccupancy,
		res.Contact.Phone,
		res.Contact.Email,
		res.IsActive,
		res.CreatedBy.ID,
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	return nil
}

func (r *ResourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	return queryOne(ctx, r.db, resourceSelect().Where(sq.Eq{"res.id": id.String()}), "resource", id, scanResource)
}

func (r *ResourceRepository) List(ctx context.Context, filter query.ResourceFilter) ([]*models.Resource, error) {
	b := query.ApplyResource(resourceSelect(), filter).OrderBy("res.created_at DESC")
	items, err := queryRows(ctx, r.db, b, scanResource)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return items, nil
}

func (r *ResourceRepository) Update(ctx context.Context, res *models.Resource) error {
	query := `
		UPDATE resources SET
			name = $1,
			type = $2,
			description = $3,
			coordinates = ST_SetSRID(ST_MakePoint($4, $5), 4326),
			address = $6,
			capacity = $7,
			current_occupancy = $8,
			contact_phone = $9,
			contact_email = $10,
			is_active = $11,
			updated_at = $12
		WHERE id = $13;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		res.Name,
		string(res.Type),
		res.Description,
		res.Location.Longitude,
		res.Location.Latitude,
		res.Location.Address,
		res.Capacity,
		res.CurrentOccupancy,
		res.Contact.Phone,
		res.Contact.Email,
		res.IsActive,
		res.UpdatedAt,
		res.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update resource: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return notFound("resource", res.ID)
	}
	return nil
}

func (r *ResourceRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE resources SET is_active = FALSE, updated_at = NOW() WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate resource: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return notFound("resource", id)
	}
	return nil
}
