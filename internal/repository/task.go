package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/crisis_connect/internal/lifecycle"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/query"
	"github.com/shenikar/crisis_connect/internal/service"
)

// errTransitionMissed откатывает транзакцию, когда статус задачи уже изменился
var errTransitionMissed = errors.New("task transition missed")

// TaskRepository пишет задачу и проекцию taskStatus профиля в одной транзакции
type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) service.TaskRepository {
	return &TaskRepository{db: db}
}

func taskSelect() sq.SelectBuilder {
	return psql.Select(
		"t.id",
		"t.task_type",
		"t.description",
		"t.incident_id",
		"t.volunteer_id",
		"t.status",
		"t.assigned_by",
		"t.assigned_at",
		"t.accepted_at",
		"t.completed_at",
		"t.extra_details",
		"t.notes",
		"t.created_at",
		"t.updated_at",
		"i.location",
		"i.type",
		"i.severity",
		"i.description",
		"ST_Y(i.coordinates::geometry)",
		"ST_X(i.coordinates::geometry)",
		"i.status",
	).From("tasks t").LeftJoin("incidents i ON i.id = t.incident_id")
}

func scanTask(row pgx.Row) (*models.Task, error) {
	t := &models.Task{}
	var (
		incLocation, incType, incDescription *string
		incSeverity, incStatus               *int
		incLat, incLon                       *float64
	)
	err := row.Scan(
		&t.ID,
		&t.TaskType,
		&t.Description,
		&t.IncidentID,
		&t.VolunteerID,
		&t.Status,
		&t.AssignedBy.ID,
		&t.AssignedAt,
		&t.AcceptedAt,
		&t.CompletedAt,
		&t.ExtraDetails,
		&t.Notes,
		&t.CreatedAt,
		&t.UpdatedAt,
		&incLocation,
		&incType,
		&incSeverity,
		&incDescription,
		&incLat,
		&incLon,
		&incStatus,
	)
	if err != nil {
		return nil, err
	}
	if t.IncidentID != nil && incLocation != nil {
		t.Incident = &models.IncidentSummary{
			ID:          *t.IncidentID,
			Location:    *incLocation,
			Type:        deref(incType),
			Severity:    deref(incSeverity),
			Description: deref(incDescription),
			Latitude:    deref(incLat),
			Longitude:   deref(incLon),
			Status:      models.IncidentStatus(deref(incStatus)),
		}
	}
	if t.ExtraDetails == nil {
		t.ExtraDetails = map[string]any{}
	}
	if t.Notes == nil {
		t.Notes = []models.Note{}
	}
	return t, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// Assign - вставка задачи и taskStatus=Assigned профиля как одна единица
func (r *TaskRepository) Assign(ctx context.Context, task *models.Task) error {
	return pgx.BeginTxFunc(ctx, r.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		insert := `
			INSERT INTO tasks (
				id, task_type, description, incident_id, volunteer_id, status, assigned_by,
				assigned_at, accepted_at, completed_at, extra_details, notes, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
		`
		_, err := tx.Exec(ctx, insert,
			task.ID,
			task.TaskType,
			task.Description,
			task.IncidentID,
			task.VolunteerID,
			int(task.Status),
			task.AssignedBy.ID,
			task.AssignedAt,
			task.AcceptedAt,
			task.CompletedAt,
			task.ExtraDetails,
			task.Notes,
			task.CreatedAt,
			task.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert task: %w", err)
		}

		cmdTag, err := tx.Exec(ctx,
			`UPDATE volunteer_profiles SET task_status = $1, updated_at = $2 WHERE id = $3;`,
			int(lifecycle.ProjectTaskStatus(task.Status)), task.UpdatedAt, task.VolunteerID,
		)
		if err != nil {
			return fmt.Errorf("failed to project task status: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return notFound("volunteer profile", task.VolunteerID)
		}
		return nil
	})
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return queryOne(ctx, r.db, taskSelect().Where(sq.Eq{"t.id": id.String()}), "task", id, scanTask)
}

func (r *TaskRepository) List(ctx context.Context, filter query.TaskFilter) ([]*models.Task, error) {
	b := query.ApplyTask(taskSelect(), filter).OrderBy("t.assigned_at DESC")
	tasks, err := queryRows(ctx, r.db, b, scanTask)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Transition - условная запись статуса задачи и, если задача последняя у волонтера,
// его проекции taskStatus, в одной транзакции
func (r *TaskRepository) Transition(ctx context.Context, task *models.Task, from models.TaskStatus) error {
	var missed bool
	err := pgx.BeginTxFunc(ctx, r.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		update := `
			UPDATE tasks SET
				status = $1,
				accepted_at = $2,
				completed_at = $3,
				updated_at = $4
			WHERE id = $5 AND status = $6;
		`
		cmdTag, err := tx.Exec(ctx, update,
			int(task.Status),
			task.AcceptedAt,
			task.CompletedAt,
			task.UpdatedAt,
			task.ID,
			int(from),
		)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			missed = true
			return errTransitionMissed
		}

		project := `
			UPDATE volunteer_profiles v SET
				task_status = $1,
				updated_at = $2
			WHERE v.id = $3
				AND NOT EXISTS (
					SELECT 1 FROM tasks t
					WHERE t.volunteer_id = v.id AND t.assigned_at > $4
				);
		`
		if _, err := tx.Exec(ctx, project,
			int(lifecycle.ProjectTaskStatus(task.Status)),
			task.UpdatedAt,
			task.VolunteerID,
			task.AssignedAt,
		); err != nil {
			return fmt.Errorf("failed to project task status: %w", err)
		}
		return nil
	})
	if missed {
		return missedWrite(ctx, r.db, "tasks", "task", task.ID)
	}
	return err
}

// LatestStatusByVolunteer - статус последней по assigned_at задачи каждого волонтера
func (r *TaskRepository) LatestStatusByVolunteer(ctx context.Context) (map[uuid.UUID]models.TaskStatus, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT ON (volunteer_id) volunteer_id, status
		FROM tasks
		ORDER BY volunteer_id, assigned_at DESC;
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest task statuses: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]models.TaskStatus)
	for rows.Next() {
		var (
			volunteerID uuid.UUID
			status      models.TaskStatus
		)
		if err := rows.Scan(&volunteerID, &status); err != nil {
			return nil, fmt.Errorf("failed to scan latest task status: %w", err)
		}
		out[volunteerID] = status
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return out, nil
}
