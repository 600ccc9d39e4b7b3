package memory

import (
	"maps"
	"time"

	"github.com/shenikar/crisis_connect/internal/models"
)

// Хранилище отдает и принимает только копии: изменения вызывающего
// не должны попадать в хранилище в обход условных записей

func cloneRef(r *models.UserRef) *models.UserRef {
	if r == nil {
		return nil
	}
	return &models.UserRef{ID: r.ID}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneNotes(notes []models.Note) []models.Note {
	out := make([]models.Note, len(notes))
	for i, n := range notes {
		out[i] = models.Note{Text: n.Text, AddedBy: models.UserRef{ID: n.AddedBy.ID}, AddedAt: n.AddedAt}
	}
	return out
}

// Ссылки на пользователей хранятся только как ID, populate делает сервис
func cloneIncident(inc *models.Incident) *models.Incident {
	out := *inc
	out.ReportedBy = models.UserRef{ID: inc.ReportedBy.ID}
	out.VerifiedBy = cloneRef(inc.VerifiedBy)
	out.VerifiedAt = cloneTime(inc.VerifiedAt)
	return &out
}

func cloneRequest(req *models.HelpRequest) *models.HelpRequest {
	out := *req
	out.Civilian = models.UserRef{ID: req.Civilian.ID}
	out.ClaimedBy = cloneRef(req.ClaimedBy)
	out.VerifiedBy = cloneRef(req.VerifiedBy)
	out.Notes = cloneNotes(req.Notes)
	out.Distance = nil
	return &out
}

func cloneProfile(p *models.VolunteerProfile) *models.VolunteerProfile {
	out := *p
	out.User = nil
	out.Skills = append([]string{}, p.Skills...)
	return &out
}

func cloneTask(t *models.Task) *models.Task {
	out := *t
	if t.IncidentID != nil {
		id := *t.IncidentID
		out.IncidentID = &id
	}
	out.Volunteer = nil
	out.AssignedBy = models.UserRef{ID: t.AssignedBy.ID}
	out.AcceptedAt = cloneTime(t.AcceptedAt)
	out.CompletedAt = cloneTime(t.CompletedAt)
	out.ExtraDetails = maps.Clone(t.ExtraDetails)
	if out.ExtraDetails == nil {
		out.ExtraDetails = map[string]any{}
	}
	out.Notes = cloneNotes(t.Notes)
	return &out
}

func cloneResource(res *models.Resource) *models.Resource {
	out := *res
	if res.Capacity != nil {
		c := *res.Capacity
		out.Capacity = &c
	}
	out.CreatedBy = models.UserRef{ID: res.CreatedBy.ID}
	return &out
}
