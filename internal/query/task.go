package query

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/models"
)

// TaskFilter - фильтры списка задач. Для волонтера VolunteerID подставляет сервис:
// волонтер видит только задачи своего профиля.
type TaskFilter struct {
	VolunteerID *uuid.UUID
	IncidentID  *uuid.UUID
	Status      *models.TaskStatus
}

func MatchTask(f TaskFilter, t *models.Task) bool {
	if f.VolunteerID != nil && t.VolunteerID != *f.VolunteerID {
		return false
	}
	if f.IncidentID != nil && (t.IncidentID == nil || *t.IncidentID != *f.IncidentID) {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	return true
}

func ApplyTask(b sq.SelectBuilder, f TaskFilter) sq.SelectBuilder {
	if f.VolunteerID != nil {
		b = b.Where(sq.Eq{"t.volunteer_id": f.VolunteerID.String()})
	}
	if f.IncidentID != nil {
		b = b.Where(sq.Eq{"t.incident_id": f.IncidentID.String()})
	}
	if f.Status != nil {
		b = b.Where(sq.Eq{"t.status": int(*f.Status)})
	}
	return b
}
