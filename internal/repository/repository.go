// Package repository - хранилище сущностей на PostgreSQL/PostGIS и Redis-кеш инцидентов.
package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/crisis_connect/internal/models"
)

// psql - построитель запросов с плейсхолдерами $n
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// pointSQL - точка WGS84 из долготы и широты
const pointSQL = "ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography"

// notFound оборачивает ErrNotFound с указанием сущности
func notFound(entity string, id uuid.UUID) error {
	return fmt.Errorf("%s with id %s: %w", entity, id, models.ErrNotFound)
}

// missedWrite разбирает условную запись, не затронувшую строк:
// строки нет - ErrNotFound, строка есть, но условие не выполнено - ErrConflict
func missedWrite(ctx context.Context, db *pgxpool.Pool, table, entity string, id uuid.UUID) error {
	var exists bool
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)", table)
	if err := db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check %s existence: %w", entity, err)
	}
	if !exists {
		return notFound(entity, id)
	}
	return fmt.Errorf("%s %s was modified concurrently: %w", entity, id, models.ErrConflict)
}

// queryRows выполняет собранный squirrel-запрос и сканирует каждую строку
func queryRows[T any](ctx context.Context, db *pgxpool.Pool, b sq.SelectBuilder, scan func(pgx.Row) (T, error)) ([]T, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return items, nil
}

// queryOne - выборка одной строки; отсутствие строки дает ErrNotFound
func queryOne[T any](ctx context.Context, db *pgxpool.Pool, b sq.SelectBuilder, entity string, id uuid.UUID, scan func(pgx.Row) (T, error)) (T, error) {
	var zero T
	query, args, err := b.ToSql()
	if err != nil {
		return zero, fmt.Errorf("failed to build query: %w", err)
	}
	item, err := scan(db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, notFound(entity, id)
		}
		return zero, fmt.Errorf("failed to get %s by id: %w", entity, err)
	}
	return item, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

// refPtr - nullable ссылка на пользователя
func refPtr(id *uuid.UUID) *models.UserRef {
	if id == nil {
		return nil
	}
	return &models.UserRef{ID: *id}
}

func refID(ref *models.UserRef) *uuid.UUID {
	if ref == nil || ref.ID == uuid.Nil {
		return nil
	}
	id := ref.ID
	return &id
}
