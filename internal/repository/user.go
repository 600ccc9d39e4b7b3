package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/service"
)

// UserRepository читает учетные записи; регистрация живет в другом сервисе
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) service.UserRepository {
	return &UserRepository{db: db}
}

func userSelect() sq.SelectBuilder {
	return psql.Select("u.id", "u.name", "u.email", "u.phone", "u.role", "u.created_at").From("users u")
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.CreatedAt)
	return u, err
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return queryOne(ctx, r.db, userSelect().Where(sq.Eq{"u.id": id.String()}), "user", id, scanUser)
}

// ListByIDs возвращает найденных пользователей; отсутствующие ID пропускаются
func (r *UserRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	users, err := queryRows(ctx, r.db, userSelect().Where(sq.Eq{"u.id": uuidStrings(ids)}), scanUser)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	b := userSelect().Where(sq.Eq{"u.role": string(role)}).OrderBy("u.name ASC", "u.id ASC")
	users, err := queryRows(ctx, r.db, b, scanUser)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	return users, nil
}
