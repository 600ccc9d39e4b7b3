package query

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/geo"
	"github.com/shenikar/crisis_connect/internal/models"
)

// RequestFilter - фильтры списка заявок
type RequestFilter struct {
	Search    string
	Category  *models.RequestCategory
	Priority  *models.RequestPriority
	Status    *models.RequestStatus
	ClaimedBy *uuid.UUID
	Created   DateRange
}

func MatchRequest(caller models.Caller, f RequestFilter, req *models.HelpRequest) bool {
	if owner, ok := ownerOnly(caller); ok && req.Civilian.ID != owner {
		return false
	}
	if f.Search != "" && !containsFold(req.Title, f.Search) && !containsFold(req.Description, f.Search) {
		return false
	}
	if f.Category != nil && req.Category != *f.Category {
		return false
	}
	if f.Priority != nil && req.Priority != *f.Priority {
		return false
	}
	if f.Status != nil && req.Status != *f.Status {
		return false
	}
	if f.ClaimedBy != nil && (req.Unclaimed() || req.ClaimedBy.ID != *f.ClaimedBy) {
		return false
	}
	return f.Created.Match(req.CreatedAt)
}

func ApplyRequest(b sq.SelectBuilder, caller models.Caller, f RequestFilter) sq.SelectBuilder {
	if owner, ok := ownerOnly(caller); ok {
		b = b.Where(sq.Eq{"r.civilian_id": owner.String()})
	}
	if f.Search != "" {
		b = b.Where(searchClause(f.Search, "r.title", "r.description"))
	}
	if f.Category != nil {
		b = b.Where(sq.Eq{"r.category": string(*f.Category)})
	}
	if f.Priority != nil {
		b = b.Where(sq.Eq{"r.priority": string(*f.Priority)})
	}
	if f.Status != nil {
		b = b.Where(sq.Eq{"r.status": string(*f.Status)})
	}
	if f.ClaimedBy != nil {
		b = b.Where(sq.Eq{"r.claimed_by": f.ClaimedBy.String()})
	}
	return f.Created.apply(b, "r.created_at")
}

// Geofence - выборка доступных заявок вокруг точки. Без Center сортировки нет,
// без RadiusKm ограничения по расстоянию нет.
type Geofence struct {
	Center   *geo.Point
	RadiusKm *float64
}

// Available - заявка ждет волонтера: pending и никем не взята
func Available(req *models.HelpRequest) bool {
	return req.Status == models.RequestPending && req.Unclaimed()
}

// ApplyAvailable - SQL-форма Available
func ApplyAvailable(b sq.SelectBuilder) sq.SelectBuilder {
	return b.Where(sq.Eq{"r.status": string(models.RequestPending), "r.claimed_by": nil})
}

// Nearby отбирает доступные заявки в радиусе, проставляет Distance
// и сортирует по возрастанию расстояния. При заданном центре заявки
// с координатами вне допустимых диапазонов пропускаются.
func Nearby(items []*models.HelpRequest, g Geofence) []*models.HelpRequest {
	out := make([]*models.HelpRequest, 0, len(items))
	for _, req := range items {
		if !Available(req) {
			continue
		}
		if g.Center == nil {
			out = append(out, req)
			continue
		}
		p := geo.Point{Lat: req.Location.Coordinates.Lat(), Lon: req.Location.Coordinates.Lon()}
		if !p.Valid() {
			continue
		}
		if g.RadiusKm != nil && !geo.Within(*g.Center, p, *g.RadiusKm) {
			continue
		}
		rounded := geo.RoundKm(geo.HaversineKm(*g.Center, p))
		req.Distance = &rounded
		out = append(out, req)
	}
	if g.Center != nil {
		center := *g.Center
		geo.SortByDistance(out, func(r *models.HelpRequest) float64 {
			return geo.HaversineKm(center, geo.Point{Lat: r.Location.Coordinates.Lat(), Lon: r.Location.Coordinates.Lon()})
		})
	}
	return out
}
