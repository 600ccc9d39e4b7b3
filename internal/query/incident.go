package query

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/shenikar/crisis_connect/internal/models"
)

// IncidentFilter - фильтры списка инцидентов, все условия через AND
type IncidentFilter struct {
	Search string
	Type   string
	Status *models.IncidentStatus
	// MinSeverity - нижняя граница severity включительно; 0 без ограничения
	MinSeverity int
	Created     DateRange
	// BySeverity - сортировка по убыванию severity, затем новые первыми
	BySeverity bool
}

// MatchIncident применяет ролевую видимость и фильтры к одному инциденту
func MatchIncident(caller models.Caller, f IncidentFilter, inc *models.Incident) bool {
	if owner, ok := ownerOnly(caller); ok && inc.ReportedBy.ID != owner {
		return false
	}
	if f.Search != "" &&
		!containsFold(inc.Type, f.Search) &&
		!containsFold(inc.Description, f.Search) &&
		!containsFold(inc.Location, f.Search) {
		return false
	}
	if f.Type != "" && inc.Type != f.Type {
		return false
	}
	if f.Status != nil && inc.Status != *f.Status {
		return false
	}
	if f.MinSeverity > 0 && inc.Severity < f.MinSeverity {
		return false
	}
	return f.Created.Match(inc.CreatedAt)
}

// ApplyIncident дописывает в запрос те же условия, что проверяет MatchIncident
func ApplyIncident(b sq.SelectBuilder, caller models.Caller, f IncidentFilter) sq.SelectBuilder {
	if owner, ok := ownerOnly(caller); ok {
		b = b.Where(sq.Eq{"i.reported_by": owner.String()})
	}
	if f.Search != "" {
		b = b.Where(searchClause(f.Search, "i.type", "i.description", "i.location"))
	}
	if f.Type != "" {
		b = b.Where(sq.Eq{"i.type": f.Type})
	}
	if f.Status != nil {
		b = b.Where(sq.Eq{"i.status": int(*f.Status)})
	}
	if f.MinSeverity > 0 {
		b = b.Where(sq.GtOrEq{"i.severity": f.MinSeverity})
	}
	return f.Created.apply(b, "i.created_at")
}
