// Package query - ролевая видимость и фильтры списков.
// Каждый фильтр существует в двух формах: предикат Match для хранилища в памяти
// и Apply, дописывающий условия в squirrel.SelectBuilder для Postgres.
// Обе формы должны давать одинаковый результат.
package query

import (
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/models"
)

// DateRange - включительный диапазон по created_at
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

func (r DateRange) Match(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

func (r DateRange) apply(b sq.SelectBuilder, column string) sq.SelectBuilder {
	if r.Start != nil {
		b = b.Where(sq.GtOrEq{column: *r.Start})
	}
	if r.End != nil {
		b = b.Where(sq.LtOrEq{column: *r.End})
	}
	return b
}

// containsFold - регистронезависимый поиск подстроки
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern экранирует спецсимволы LIKE, чтобы поиск был буквальной подстрокой
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func searchClause(search string, columns ...string) sq.Or {
	pattern := likePattern(search)
	or := sq.Or{}
	for _, c := range columns {
		or = append(or, sq.ILike{c: pattern})
	}
	return or
}

// ownerOnly - гражданин видит только свои сущности
func ownerOnly(caller models.Caller) (uuid.UUID, bool) {
	if caller.IsCivilian() {
		return caller.ID, true
	}
	return uuid.Nil, false
}
