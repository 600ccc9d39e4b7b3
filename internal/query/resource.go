package query

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/shenikar/crisis_connect/internal/models"
)

// ResourceFilter - выборка ресурсов
type ResourceFilter struct {
	ActiveOnly bool
	Type       *models.ResourceType
}

func MatchResource(f ResourceFilter, r *models.Resource) bool {
	if f.ActiveOnly && !r.IsActive {
		return false
	}
	if f.Type != nil && r.Type != *f.Type {
		return false
	}
	return true
}

func ApplyResource(b sq.SelectBuilder, f ResourceFilter) sq.SelectBuilder {
	if f.ActiveOnly {
		b = b.Where(sq.Eq{"res.is_active": true})
	}
	if f.Type != nil {
		b = b.Where(sq.Eq{"res.type": string(*f.Type)})
	}
	return b
}
