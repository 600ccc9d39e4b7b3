package lifecycle

import (
	"fmt"
	"time"

	"github.com/shenikar/crisis_connect/internal/models"
)

var incidentTransitions = map[models.IncidentStatus]models.IncidentStatus{
	models.IncidentPending:  models.IncidentVerified,
	models.IncidentVerified: models.IncidentOngoing,
	models.IncidentOngoing:  models.IncidentCompleted,
}

// CanTransitionIncident - статус двигается только на один шаг вперед
func CanTransitionIncident(from, to models.IncidentStatus) bool {
	next, ok := incidentTransitions[from]
	return ok && next == to
}

// ReportIncident подготавливает новый инцидент: статус всегда Pending,
// независимо от того, что прислал клиент
func ReportIncident(inc *models.Incident, reporter models.UserRef, now time.Time) Change {
	inc.Status = models.IncidentPending
	inc.ReportedBy = reporter
	inc.VerifiedBy = nil
	inc.VerifiedAt = nil
	inc.Coordinates = models.NewGeoPoint(inc.Latitude, inc.Longitude)
	inc.CreatedAt = now
	inc.UpdatedAt = now
	return ChangeIncidentReported
}

// VerifyIncident переводит Pending -> Verified и проставляет verifiedBy/verifiedAt
func VerifyIncident(inc *models.Incident, verifier models.UserRef, now time.Time) (Change, error) {
	if inc.Status != models.IncidentPending {
		return ChangeNone, fmt.Errorf("%w: incident %s is %s, not pending", models.ErrInvalidState, inc.ID, inc.Status)
	}
	inc.Status = models.IncidentVerified
	inc.VerifiedBy = &verifier
	inc.VerifiedAt = &now
	inc.UpdatedAt = now
	return ChangeIncidentVerified, nil
}

// AdvanceIncident - явные переходы Verified -> Ongoing и Ongoing -> Completed
func AdvanceIncident(inc *models.Incident, to models.IncidentStatus, now time.Time) (Change, error) {
	if to != models.IncidentOngoing && to != models.IncidentCompleted {
		return ChangeNone, fmt.Errorf("%w: incident can only be advanced to ongoing or completed", models.ErrInvalidState)
	}
	if !CanTransitionIncident(inc.Status, to) {
		return ChangeNone, fmt.Errorf("%w: incident %s cannot move from %s to %s", models.ErrInvalidState, inc.ID, inc.Status, to)
	}
	inc.Status = to
	inc.UpdatedAt = now
	return ChangeIncidentAdvanced, nil
}
