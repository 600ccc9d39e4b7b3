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

type VolunteerRepository struct {
	db *pgxpool.Pool
}

func NewVolunteerRepository(db *pgxpool.Pool) service.VolunteerRepository {
	return &VolunteerRepository{db: db}
}

func volunteerSelect() sq.SelectBuilder {
	return psql.Select(
		"v.id",
		"v.user_id",
		"v.skills",
		"v.id_proof",
		"v.experience_certificate",
		"v.application_status",
		"v.task_status",
		"v.bio",
		"v.availability",
		"v.created_at",
		"v.updated_at",
	).From("volunteer_profiles v")
}

func scanVolunteer(row pgx.Row) (*models.VolunteerProfile, error) {
	p := &models.VolunteerProfile{}
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Skills,
		&p.IDProof,
		&p.ExperienceCertificate,
		&p.ApplicationStatus,
		&p.TaskStatus,
		&p.Bio,
		&p.Availability,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return p, nil
}

func (r *VolunteerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.VolunteerProfile, error) {
	return queryOne(ctx, r.db, volunteerSelect().Where(sq.Eq{"v.id": id.String()}), "volunteer profile", id, scanVolunteer)
}

func (r *VolunteerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.VolunteerProfile, error) {
	return queryOne(ctx, r.db, volunteerSelect().Where(sq.Eq{"v.user_id": userID.String()}), "volunteer profile for user", userID, scanVolunteer)
}

func (r *VolunteerRepository) List(ctx context.Context, filter query.VolunteerFilter) ([]*models.VolunteerProfile, error) {
	b := query.ApplyVolunteer(volunteerSelect(), filter).OrderBy("v.created_at DESC")
	profiles, err := queryRows(ctx, r.db, b, scanVolunteer)
	if err != nil {
		return nil, fmt.Errorf("failed to list volunteer profiles: %w", err)
	}
	return profiles, nil
}

func (r *VolunteerRepository) Update(ctx context.Context, profile *models.VolunteerProfile) error {
	query := `
		UPDATE volunteer_profiles SET
			skills = $1,
			bio = $2,
			availability = $3,
			application_status = $4,
			updated_at = $5
		WHERE id = $6;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		profile.Skills,
		profile.Bio,
		profile.Availability,
		int(profile.ApplicationStatus),
		profile.UpdatedAt,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update volunteer profile: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return notFound("volunteer profile", profile.ID)
	}
	return nil
}

// SetTaskStatus - условная запись проекции taskStatus
func (r *VolunteerRepository) SetTaskStatus(ctx context.Context, id uuid.UUID, from, to models.VolunteerTaskStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE volunteer_profiles SET task_status = $1, updated_at = NOW() WHERE id = $2 AND task_status = $3;`,
		int(to), id, int(from),
	)
	if err != nil {
		return fmt.Errorf("failed to set volunteer task status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return missedWrite(ctx, r.db, "volunteer_profiles", "volunteer profile", id)
	}
	return nil
}
