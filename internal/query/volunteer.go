package query

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/models"
)

// VolunteerFilter - выборка профилей волонтеров
type VolunteerFilter struct {
	IDs               []uuid.UUID
	ApplicationStatus *models.ApplicationStatus
	// Skill сравнивается без учета регистра
	Skill     string
	Available *bool
}

func MatchVolunteer(f VolunteerFilter, p *models.VolunteerProfile) bool {
	if len(f.IDs) > 0 {
		found := false
		for _, id := range f.IDs {
			if id == p.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.ApplicationStatus != nil && p.ApplicationStatus != *f.ApplicationStatus {
		return false
	}
	if f.Available != nil && p.Availability != *f.Available {
		return false
	}
	if skill := strings.TrimSpace(f.Skill); skill != "" {
		for _, s := range p.Skills {
			if strings.EqualFold(strings.TrimSpace(s), skill) {
				return true
			}
		}
		return false
	}
	return true
}

func ApplyVolunteer(b sq.SelectBuilder, f VolunteerFilter) sq.SelectBuilder {
	if len(f.IDs) > 0 {
		ids := make([]string, 0, len(f.IDs))
		for _, id := range f.IDs {
			ids = append(ids, id.String())
		}
		b = b.Where(sq.Eq{"v.id": ids})
	}
	if f.ApplicationStatus != nil {
		b = b.Where(sq.Eq{"v.application_status": int(*f.ApplicationStatus)})
	}
	if f.Available != nil {
		b = b.Where(sq.Eq{"v.availability": *f.Available})
	}
	if skill := strings.TrimSpace(f.Skill); skill != "" {
		b = b.Where("EXISTS (SELECT 1 FROM unnest(v.skills) AS s WHERE lower(btrim(s)) = lower(?))", skill)
	}
	return b
}
