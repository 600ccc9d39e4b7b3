package lifecycle

import (
	"fmt"
	"time"

	"github.com/shenikar/crisis_connect/internal/models"
)

var requestTransitions = map[models.RequestStatus][]models.RequestStatus{
	models.RequestPending:    {models.RequestClaimed, models.RequestCancelled},
	models.RequestClaimed:    {models.RequestInProgress, models.RequestResolved, models.RequestCancelled},
	models.RequestInProgress: {models.RequestResolved, models.RequestCancelled},
}

// CanTransitionRequest проверяет переход по таблице; resolved и cancelled терминальны
func CanTransitionRequest(from, to models.RequestStatus) bool {
	for _, s := range requestTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CreateHelpRequest принудительно выставляет pending и пустой claimedBy
func CreateHelpRequest(req *models.HelpRequest, civilian models.UserRef, now time.Time) Change {
	req.Civilian = civilian
	req.Status = models.RequestPending
	req.ClaimedBy = nil
	req.IsVerified = false
	req.VerifiedBy = nil
	if req.Category == "" {
		req.Category = models.CategoryOther
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	req.Location.Coordinates = models.NewGeoPoint(req.Location.Latitude, req.Location.Longitude)
	if req.Notes == nil {
		req.Notes = []models.Note{}
	}
	req.CreatedAt = now
	req.UpdatedAt = now
	return ChangeRequestCreated
}

// ClaimHelpRequest - compare-and-set {pending, никем не взята} -> {claimed, claimedBy=volunteer}.
// Заявка, которую уже взяли, дает ErrConflict; отмененная - ErrInvalidState.
func ClaimHelpRequest(req *models.HelpRequest, volunteer models.UserRef, now time.Time) (Change, error) {
	if req.Status == models.RequestCancelled {
		return ChangeNone, fmt.Errorf("%w: request %s is cancelled", models.ErrInvalidState, req.ID)
	}
	if req.Status != models.RequestPending || !req.Unclaimed() {
		return ChangeNone, fmt.Errorf("%w: request %s already claimed or resolved", models.ErrConflict, req.ID)
	}
	req.Status = models.RequestClaimed
	req.ClaimedBy = &volunteer
	req.UpdatedAt = now
	return ChangeRequestClaimed, nil
}

// PatchHelpRequest применяет частичное обновление. Статус меняется только по таблице
// переходов, перевод в claimed возможен только через ClaimHelpRequest. isVerified
// учитывается только от администратора.
func PatchHelpRequest(req *models.HelpRequest, patch models.RequestPatch, caller models.Caller, now time.Time) (Change, error) {
	verr := &models.ValidationError{}
	if patch.Title != nil && *patch.Title == "" {
		verr.Add("title", "required", "title must not be empty")
	}
	if patch.Description != nil && *patch.Description == "" {
		verr.Add("description", "required", "description must not be empty")
	}
	if patch.Category != nil && !patch.Category.Valid() {
		verr.Add("category", "oneof", "unknown category")
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		verr.Add("priority", "oneof", "unknown priority")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		verr.Add("status", "oneof", "unknown status")
	}
	if patch.Location != nil {
		validateRequestLocation(verr, *patch.Location)
	}
	if err := verr.OrNil(); err != nil {
		return ChangeNone, err
	}

	if patch.Status != nil && *patch.Status != req.Status {
		to := *patch.Status
		if to == models.RequestClaimed {
			return ChangeNone, fmt.Errorf("%w: use claim to take request %s", models.ErrInvalidState, req.ID)
		}
		if !CanTransitionRequest(req.Status, to) {
			return ChangeNone, fmt.Errorf("%w: request %s cannot move from %s to %s", models.ErrInvalidState, req.ID, req.Status, to)
		}
		req.Status = to
		if !to.Claimed() {
			req.ClaimedBy = nil
		}
	}
	if patch.Title != nil {
		req.Title = *patch.Title
	}
	if patch.Description != nil {
		req.Description = *patch.Description
	}
	if patch.Location != nil {
		loc := *patch.Location
		loc.Coordinates = models.NewGeoPoint(loc.Latitude, loc.Longitude)
		req.Location = loc
	}
	if patch.Category != nil {
		req.Category = *patch.Category
	}
	if patch.Priority != nil {
		req.Priority = *patch.Priority
	}
	if patch.IsVerified != nil && caller.IsAdmin() {
		req.IsVerified = *patch.IsVerified
		by := models.UserRef{ID: caller.ID}
		req.VerifiedBy = &by
	}
	req.UpdatedAt = now
	return ChangeRequestUpdated, nil
}

// ValidateRequestLocation: координаты обязательны, (0,0) считается "не захвачено"
func ValidateRequestLocation(loc models.RequestLocation) error {
	verr := &models.ValidationError{}
	validateRequestLocation(verr, loc)
	return verr.OrNil()
}

func validateRequestLocation(verr *models.ValidationError, loc models.RequestLocation) {
	if loc.Latitude < -90 || loc.Latitude > 90 {
		verr.Add("location.latitude", "latitude", "latitude must be within [-90, 90]")
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		verr.Add("location.longitude", "longitude", "longitude must be within [-180, 180]")
	}
	if loc.Latitude == 0 && loc.Longitude == 0 {
		verr.Add("location", "captured", "please capture your location, coordinates cannot be 0,0")
	}
}
