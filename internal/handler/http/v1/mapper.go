package v1

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/query"
	"github.com/shenikar/crisis_connect/internal/service"
)

const dateOnly = "2006-01-02"

// parseDateRange разбирает startDate и endDate. Дата без времени в endDate
// включает весь день.
func parseDateRange(start, end string, verr *models.ValidationError) query.DateRange {
	var r query.DateRange
	if start != "" {
		if t, ok := parseDate(start, false); ok {
			r.Start = &t
		} else {
			verr.Add("startDate", "datetime", "startDate must be RFC3339 or YYYY-MM-DD")
		}
	}
	if end != "" {
		if t, ok := parseDate(end, true); ok {
			r.End = &t
		} else {
			verr.Add("endDate", "datetime", "endDate must be RFC3339 or YYYY-MM-DD")
		}
	}
	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		verr.Add("endDate", "gtefield", "endDate must not precede startDate")
	}
	return r
}

func parseDate(s string, endOfDay bool) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, true
}

// parseCode принимает числовой код статуса или его имя
func parseCode[T ~int](raw string, valid func(T) bool, names map[string]T) (T, bool) {
	if n, err := strconv.Atoi(raw); err == nil {
		v := T(n)
		return v, valid(v)
	}
	v, ok := names[strings.ToLower(raw)]
	return v, ok
}

var incidentStatusNames = map[string]models.IncidentStatus{
	"pending":   models.IncidentPending,
	"verified":  models.IncidentVerified,
	"ongoing":   models.IncidentOngoing,
	"completed": models.IncidentCompleted,
}

var taskStatusNames = map[string]models.TaskStatus{
	"assigned":  models.TaskAssigned,
	"accepted":  models.TaskAccepted,
	"rejected":  models.TaskRejected,
	"completed": models.TaskCompleted,
}

var applicationStatusNames = map[string]models.ApplicationStatus{
	"pending":  models.ApplicationPending,
	"accepted": models.ApplicationAccepted,
	"rejected": models.ApplicationRejected,
}

// ToIncidentFilter преобразует параметры запроса в фильтр инцидентов
func ToIncidentFilter(q IncidentListQuery) (query.IncidentFilter, error) {
	verr := &models.ValidationError{}
	f := query.IncidentFilter{
		Search: strings.TrimSpace(q.Search),
		Type:   strings.TrimSpace(q.Type),
	}
	if q.Status != "" {
		if s, ok := parseCode(q.Status, models.IncidentStatus.Valid, incidentStatusNames); ok {
			f.Status = &s
		} else {
			verr.Add("status", "oneof", "status must be one of: 0 1 2 3")
		}
	}
	if q.MinSeverity != "" {
		if n, err := strconv.Atoi(q.MinSeverity); err == nil && n >= 1 && n <= 5 {
			f.MinSeverity = n
		} else {
			verr.Add("minSeverity", "range", "minSeverity must be an integer from 1 to 5")
		}
	}
	f.Created = parseDateRange(q.StartDate, q.EndDate, verr)
	return f, verr.OrNil()
}

// ToRequestFilter преобразует параметры запроса в фильтр заявок
func ToRequestFilter(q RequestListQuery) (query.RequestFilter, error) {
	verr := &models.ValidationError{}
	f := query.RequestFilter{Search: strings.TrimSpace(q.Search)}
	if q.Category != "" {
		c := models.RequestCategory(q.Category)
		if c.Valid() {
			f.Category = &c
		} else {
			verr.Add("category", "oneof", "category must be one of: medical shelter food rescue other")
		}
	}
	if q.Priority != "" {
		p := models.RequestPriority(q.Priority)
		if p.Valid() {
			f.Priority = &p
		} else {
			verr.Add("priority", "oneof", "priority must be one of: low medium high critical")
		}
	}
	if q.Status != "" {
		s := models.RequestStatus(q.Status)
		if s.Valid() {
			f.Status = &s
		} else {
			verr.Add("status", "oneof", "status must be one of: pending claimed in-progress resolved cancelled")
		}
	}
	f.Created = parseDateRange(q.StartDate, q.EndDate, verr)
	return f, verr.OrNil()
}

func ToNearbyInput(q NearbyQuery) service.NearbyInput {
	return service.NearbyInput{Latitude: q.Latitude, Longitude: q.Longitude, RadiusKm: q.Radius}
}

// ToTaskFilter преобразует параметры запроса в фильтр задач
func ToTaskFilter(q TaskListQuery) (query.TaskFilter, error) {
	verr := &models.ValidationError{}
	var f query.TaskFilter
	if q.VolunteerID != "" {
		if id, err := uuid.Parse(q.VolunteerID); err == nil {
			f.VolunteerID = &id
		} else {
			verr.Add("volunteerId", "uuid", "volunteerId must be a UUID")
		}
	}
	if q.IncidentID != "" {
		if id, err := uuid.Parse(q.IncidentID); err == nil {
			f.IncidentID = &id
		} else {
			verr.Add("incidentId", "uuid", "incidentId must be a UUID")
		}
	}
	if q.Status != "" {
		status, err := ToTaskStatus(q.Status)
		if err != nil {
			return f, err
		}
		f.Status = status
	}
	return f, verr.OrNil()
}

// ToTaskStatus разбирает необязательный фильтр статуса задачи
func ToTaskStatus(raw string) (*models.TaskStatus, error) {
	if raw == "" {
		return nil, nil
	}
	s, ok := parseCode(raw, models.TaskStatus.Valid, taskStatusNames)
	if !ok {
		return nil, &models.ValidationError{Fields: []models.FieldError{{
			Field: "status", Rule: "oneof", Message: "status must be one of: 1 2 3 4",
		}}}
	}
	return &s, nil
}

// ToVolunteerFilter преобразует параметры запроса в фильтр профилей
func ToVolunteerFilter(q VolunteerListQuery) (query.VolunteerFilter, error) {
	verr := &models.ValidationError{}
	f := query.VolunteerFilter{Skill: strings.TrimSpace(q.Skill)}
	if q.ApplicationStatus != "" {
		if s, ok := parseCode(q.ApplicationStatus, models.ApplicationStatus.Valid, applicationStatusNames); ok {
			f.ApplicationStatus = &s
		} else {
			verr.Add("applicationStatus", "oneof", "applicationStatus must be one of: 0 1 2")
		}
	}
	if q.Available != "" {
		if b, err := strconv.ParseBool(q.Available); err == nil {
			f.Available = &b
		} else {
			verr.Add("available", "boolean", "available must be true or false")
		}
	}
	return f, verr.OrNil()
}

func toLocation(dto *LocationRequest, verr *models.ValidationError) (lat, lon float64, ok bool) {
	if dto.Latitude == nil {
		verr.Add("location.latitude", "required", "latitude is required")
	}
	if dto.Longitude == nil {
		verr.Add("location.longitude", "required", "longitude is required")
	}
	if dto.Latitude == nil || dto.Longitude == nil {
		return 0, 0, false
	}
	return *dto.Latitude, *dto.Longitude, true
}

// ToRequestPatch преобразует DTO обновления заявки в доменный patch
func ToRequestPatch(dto UpdateHelpRequestRequest) (models.RequestPatch, error) {
	verr := &models.ValidationError{}
	patch := models.RequestPatch{
		Title:       dto.Title,
		Description: dto.Description,
		Category:    dto.Category,
		Priority:    dto.Priority,
		Status:      dto.Status,
		IsVerified:  dto.IsVerified,
	}
	if dto.Location != nil {
		if lat, lon, ok := toLocation(dto.Location, verr); ok {
			patch.Location = &models.RequestLocation{
				Latitude:    lat,
				Longitude:   lon,
				Address:     dto.Location.Address,
				Coordinates: models.NewGeoPoint(lat, lon),
			}
		}
	}
	return patch, verr.OrNil()
}

// ToResourcePatch преобразует DTO обновления ресурса в доменный patch
func ToResourcePatch(dto UpdateResourceRequest) (models.ResourcePatch, error) {
	verr := &models.ValidationError{}
	patch := models.ResourcePatch{
		Name:             dto.Name,
		Type:             dto.Type,
		Description:      dto.Description,
		Capacity:         dto.Capacity,
		CurrentOccupancy: dto.CurrentOccupancy,
		Contact:          dto.Contact,
		IsActive:         dto.IsActive,
	}
	if dto.Location != nil {
		if lat, lon, ok := toLocation(dto.Location, verr); ok {
			patch.Location = &models.ResourceLocation{Latitude: lat, Longitude: lon, Address: dto.Location.Address}
		}
	}
	return patch, verr.OrNil()
}

func ToAlertPatch(dto UpdateAlertRequest) models.AlertPatch {
	return models.AlertPatch{
		Title:          dto.Title,
		Message:        dto.Message,
		Type:           dto.Type,
		TargetAudience: dto.TargetAudience,
		IsActive:       dto.IsActive,
	}
}

func ToVolunteerPatch(dto UpdateVolunteerProfileRequest) models.VolunteerPatch {
	return models.VolunteerPatch{Skills: dto.Skills, Bio: dto.Bio, Availability: dto.Availability}
}
