package query

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/shenikar/crisis_connect/internal/models"
)

// AlertFilter - выборка оповещений
type AlertFilter struct {
	ActiveOnly bool
	Audiences  []models.AlertAudience
	Limit      int
}

// AudiencesFor - какие оповещения видит роль: общие и адресованные ей
func AudiencesFor(caller models.Caller) []models.AlertAudience {
	switch caller.Role {
	case models.RoleVolunteer:
		return []models.AlertAudience{models.AudienceAll, models.AudienceVolunteers}
	case models.RoleCivilian:
		return []models.AlertAudience{models.AudienceAll, models.AudienceCivilians}
	}
	return nil
}

func MatchAlert(f AlertFilter, a *models.Alert) bool {
	if f.ActiveOnly && !a.IsActive {
		return false
	}
	if len(f.Audiences) > 0 {
		for _, aud := range f.Audiences {
			if a.TargetAudience == aud {
				return true
			}
		}
		return false
	}
	return true
}

func ApplyAlert(b sq.SelectBuilder, f AlertFilter) sq.SelectBuilder {
	if f.ActiveOnly {
		b = b.Where(sq.Eq{"a.is_active": true})
	}
	if len(f.Audiences) > 0 {
		auds := make([]string, 0, len(f.Audiences))
		for _, a := range f.Audiences {
			auds = append(auds, string(a))
		}
		b = b.Where(sq.Eq{"a.target_audience": auds})
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	return b
}
