package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/query"
	"github.com/shenikar/crisis_connect/internal/service"
)

// geofencePadding расширяет радиус SQL-отбора: ST_DWithin и формула гаверсинусов
// расходятся на границе, точный отбор делает query.Nearby
const geofencePadding = 1.01

type HelpRequestRepository struct {
	db *pgxpool.Pool
}

func NewHelpRequestRepository(db *pgxpool.Pool) service.HelpRequestRepository {
	return &HelpRequestRepository{db: db}
}

func requestSelect() sq.SelectBuilder {
	return psql.Select(
		"r.id",
		"r.title",
		"r.description",
		"r.civilian_id",
		"ST_Y(r.coordinates::geometry) AS latitude",
		"ST_X(r.coordinates::geometry) AS longitude",
		"r.address",
		"r.category",
		"r.priority",
		"r.status",
		"r.claimed_by",
		"r.is_verified",
		"r.verified_by",
		"r.notes",
		"r.version",
		"r.created_at",
		"r.updated_at",
	).From("help_requests r")
}

func scanRequest(row pgx.Row) (*models.HelpRequest, error) {
	req := &models.HelpRequest{}
	var claimedBy, verifiedBy *uuid.UUID
	err := row.Scan(
		&req.ID,
		&req.Title,
		&req.Description,
		&req.Civilian.ID,
		&req.Location.Latitude,
		&req.Location.Longitude,
		&req.Location.Address,
		&req.Category,
		&req.Priority,
		&req.Status,
		&claimedBy,
		&req.IsVerified,
		&verifiedBy,
		&req.Notes,
		&req.Version,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.Location.Coordinates = models.NewGeoPoint(req.Location.Latitude, req.Location.Longitude)
	req.ClaimedBy = refPtr(claimedBy)
	req.VerifiedBy = refPtr(verifiedBy)
	if req.Notes == nil {
		req.Notes = []models.Note{}
	}
	return req, nil
}

func (r *HelpRequestRepository) Create(ctx context.Context, req *models.HelpRequest) error {
	query := `
		INSERT INTO help_requests (
			id, title, description, civilian_id, coordinates, address, category, priority,
			status, claimed_by, is_verified, verified_by, notes, version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326), $7, $8, $9, $10, $11, $12, $13, $14, 1, $15, $16);
	`
	_, err := r.db.Exec(ctx, query,
		req.ID,
		req.Title,
		req.Description,
		req.Civilian.ID,
		req.Location.Longitude,
		req.Location.Latitude,
		req.Location.Address,
		string(req.Category),
		string(req.Priority),
		string(req.Status),
		refID(req.ClaimedBy),
		req.IsVerified,
		refID(req.VerifiedBy),
		req.Notes,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create help request: %w", err)
	}
	req.Version = 1
	return nil
}

func (r *HelpRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.HelpRequest, error) {
	return queryOne(ctx, r.db, requestSelect().Where(sq.Eq{"r.id": id.String()}), "help request", id, scanRequest)
}

func (r *HelpRequestRepository) List(ctx context.Context, caller models.Caller, filter query.RequestFilter) ([]*models.HelpRequest, error) {
	b := query.ApplyRequest(requestSelect(), caller, filter).OrderBy("r.created_at DESC")
	items, err := queryRows(ctx, r.db, b, scanRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to list help requests: %w", err)
	}
	return items, nil
}

// ListAvailable - pending без исполнителя; при заданном радиусе отбор по ST_DWithin
func (r *HelpRequestRepository) ListAvailable(ctx context.Context, fence query.Geofence) ([]*models.HelpRequest, error) {
	b := query.ApplyAvailable(requestSelect())
	if fence.Center != nil && fence.RadiusKm != nil {
		b = b.Where(
			"ST_DWithin(r.coordinates, "+pointSQL+", ?, false)",
			fence.Center.Lon, fence.Center.Lat, *fence.RadiusKm*1000*geofencePadding,
		)
	}
	items, err := queryRows(ctx, r.db, b.OrderBy("r.created_at DESC"), scanRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to list available help requests: %w", err)
	}
	return items, nil
}

// Claim - одна условная запись: победитель гонки обновляет строку, остальные получают 0 строк
func (r *HelpRequestRepository) Claim(ctx context.Context, id uuid.UUID, volunteer models.UserRef, at time.Time) (*models.HelpRequest, error) {
	query := `
		UPDATE help_requests SET
			status = $1,
			claimed_by = $2,
			updated_at = $3,
			version = version + 1
		WHERE id = $4 AND status = $5 AND claimed_by IS NULL;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		string(models.RequestClaimed),
		volunteer.ID,
		at,
		id,
		string(models.RequestPending),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim help request: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, r.claimMissed(ctx, id)
	}
	return r.GetByID(ctx, id)
}

// claimMissed: отмененная заявка - недопустимый переход, иначе ее уже кто-то взял
func (r *HelpRequestRepository) claimMissed(ctx context.Context, id uuid.UUID) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == models.RequestCancelled {
		return fmt.Errorf("help request %s is cancelled: %w", id, models.ErrInvalidState)
	}
	return fmt.Errorf("help request %s already claimed: %w", id, models.ErrConflict)
}

// Update записывает заявку при совпадении версии
func (r *HelpRequestRepository) Update(ctx context.Context, req *models.HelpRequest) error {
	query := `
		UPDATE help_requests SET
			title = $1,
			description = $2,
			coordinates = ST_SetSRID(ST_MakePoint($3, $4), 4326),
			address = $5,
			category = $6,
			priority = $7,
			status = $8,
			claimed_by = $9,
			is_verified = $10,
			verified_by = $11,
			updated_at = $12,
			version = version + 1
		WHERE id = $13 AND version = $14;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		req.Title,
		req.Description,
		req.Location.Longitude,
		req.Location.Latitude,
		req.Location.Address,
		string(req.Category),
		string(req.Priority),
		string(req.Status),
		refID(req.ClaimedBy),
		req.IsVerified,
		refID(req.VerifiedBy),
		req.UpdatedAt,
		req.ID,
		req.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update help request: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return missedWrite(ctx, r.db, "help_requests", "help request", req.ID)
	}
	req.Version++
	return nil
}

// AddNote дописывает заметку в конец журнала одной операцией
func (r *HelpRequestRepository) AddNote(ctx context.Context, id uuid.UUID, note models.Note) (*models.HelpRequest, error) {
	payload, err := json.Marshal([]models.Note{note})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal note: %w", err)
	}
	query := `
		UPDATE help_requests SET
			notes = notes || $1::jsonb,
			updated_at = $2,
			version = version + 1
		WHERE id = $3;
	`
	cmdTag, err := r.db.Exec(ctx, query, string(payload), note.AddedAt, id)
	if err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return nil, notFound("help request", id)
	}
	return r.GetByID(ctx, id)
}

// Delete - жесткое удаление
func (r *HelpRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM help_requests WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("failed to delete help request: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return notFound("help request", id)
	}
	return nil
}
