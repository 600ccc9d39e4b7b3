package query

import (
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/geo"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(lat, lon float64) *models.HelpRequest {
	return &models.HelpRequest{
		ID:     uuid.New(),
		Status: models.RequestPending,
		Location: models.RequestLocation{
			Latitude:    lat,
			Longitude:   lon,
			Coordinates: models.NewGeoPoint(lat, lon),
		},
	}
}

func TestNearby_RadiusAndOrder(t *testing.T) {
	// Подготовка
	center := geo.Point{Lat: 28.6139, Lon: 77.2090}
	radius := 10.0
	near := request(28.62, 77.21)
	far := request(28.70, 77.10)
	nineKm := request(28.6139+9.0/111.195, 77.2090)
	claimant := models.UserRef{ID: uuid.New()}
	claimed := request(28.614, 77.209)
	claimed.Status = models.RequestClaimed
	claimed.ClaimedBy = &claimant

	// Действие
	got := Nearby([]*models.HelpRequest{nineKm, far, claimed, near}, Geofence{Center: &center, RadiusKm: &radius})

	// Проверки
	require.Len(t, got, 2)
	assert.Equal(t, near.ID, got[0].ID)
	assert.Equal(t, nineKm.ID, got[1].ID)
	require.NotNil(t, got[0].Distance)
	assert.InDelta(t, 0.7, *got[0].Distance, 0.05)
	assert.InDelta(t, 9.0, *got[1].Distance, 0.05)
}

func TestNearby_UnclaimedRepresentations(t *testing.T) {
	absent := request(1, 1)
	zeroID := request(1, 1)
	zeroID.ClaimedBy = &models.UserRef{ID: uuid.Nil}

	got := Nearby([]*models.HelpRequest{absent, zeroID}, Geofence{})

	assert.Len(t, got, 2)
	assert.Nil(t, got[0].Distance)
}

func TestNearby_NoRadiusKeepsAllSorted(t *testing.T) {
	center := geo.Point{Lat: 0, Lon: 0}
	a := request(10, 10)
	b := request(1, 1)

	got := Nearby([]*models.HelpRequest{a, b}, Geofence{Center: &center})

	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID)
}

func TestNearby_SkipsOutOfRangeCoordinates(t *testing.T) {
	center := geo.Point{Lat: 0, Lon: 0}
	radius := 20000.0
	valid := request(1, 1)
	broken := request(95, 1)

	got := Nearby([]*models.HelpRequest{broken, valid}, Geofence{Center: &center, RadiusKm: &radius})

	require.Len(t, got, 1)
	assert.Equal(t, valid.ID, got[0].ID)
}

func TestMatchRequest(t *testing.T) {
	owner := uuid.New()
	volunteer := uuid.New()
	day := time.Date(2026, 5, 10, 10, 0, 0, 0, time.UTC)
	req := &models.HelpRequest{
		ID:          uuid.New(),
		Title:       "Need Insulin",
		Description: "Diabetic patient",
		Civilian:    models.UserRef{ID: owner},
		Category:    models.CategoryMedical,
		Priority:    models.PriorityHigh,
		Status:      models.RequestClaimed,
		ClaimedBy:   &models.UserRef{ID: volunteer},
		CreatedAt:   day,
	}
	medical := models.CategoryMedical
	food := models.CategoryFood
	start := day.Add(-time.Hour)
	end := day

	tests := []struct {
		name   string
		caller models.Caller
		filter RequestFilter
		want   bool
	}{
		{"owner sees own", models.Caller{ID: owner, Role: models.RoleCivilian}, RequestFilter{}, true},
		{"other civilian does not", models.Caller{ID: uuid.New(), Role: models.RoleCivilian}, RequestFilter{}, false},
		{"volunteer sees all", models.Caller{ID: uuid.New(), Role: models.RoleVolunteer}, RequestFilter{}, true},
		{"search is case insensitive", models.Caller{Role: models.RoleAdmin}, RequestFilter{Search: "insulin"}, true},
		{"search matches description", models.Caller{Role: models.RoleAdmin}, RequestFilter{Search: "DIABETIC"}, true},
		{"search misses", models.Caller{Role: models.RoleAdmin}, RequestFilter{Search: "water"}, false},
		{"category match", models.Caller{Role: models.RoleAdmin}, RequestFilter{Category: &medical}, true},
		{"category mismatch", models.Caller{Role: models.RoleAdmin}, RequestFilter{Category: &food}, false},
		{"inclusive end date", models.Caller{Role: models.RoleAdmin}, RequestFilter{Created: DateRange{Start: &start, End: &end}}, true},
		{"claimed by volunteer", models.Caller{Role: models.RoleAdmin}, RequestFilter{ClaimedBy: &volunteer}, true},
		{"claimed by someone else", models.Caller{Role: models.RoleAdmin}, RequestFilter{ClaimedBy: &owner}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchRequest(tt.caller, tt.filter, req))
		})
	}
}

func TestMatchIncident(t *testing.T) {
	reporter := uuid.New()
	inc := &models.Incident{
		Type:        "Flood",
		Description: "River overflow",
		Location:    "Sector 9",
		Severity:    4,
		Status:      models.IncidentVerified,
		ReportedBy:  models.UserRef{ID: reporter},
	}
	pending := models.IncidentPending
	admin := models.Caller{Role: models.RoleAdmin}

	assert.True(t, MatchIncident(models.Caller{ID: reporter, Role: models.RoleCivilian}, IncidentFilter{}, inc))
	assert.False(t, MatchIncident(models.Caller{ID: uuid.New(), Role: models.RoleCivilian}, IncidentFilter{}, inc))
	assert.True(t, MatchIncident(admin, IncidentFilter{Search: "sector"}, inc))
	assert.False(t, MatchIncident(admin, IncidentFilter{Status: &pending}, inc))
	assert.False(t, MatchIncident(admin, IncidentFilter{MinSeverity: 5}, inc))
}

func TestApplyRequest_SQL(t *testing.T) {
	owner := uuid.New()
	medical := models.CategoryMedical
	b := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).Select("r.id").From("help_requests r")

	sql, args, err := ApplyRequest(b, models.Caller{ID: owner, Role: models.RoleCivilian}, RequestFilter{
		Search:   "50%",
		Category: &medical,
	}).ToSql()

	require.NoError(t, err)
	assert.Contains(t, sql, "r.civilian_id = $1")
	assert.Contains(t, sql, "r.title ILIKE $2 OR r.description ILIKE $3")
	assert.Contains(t, sql, "r.category = $4")
	assert.Equal(t, []interface{}{owner.String(), `%50\%%`, `%50\%%`, "medical"}, args)
}

func TestApplyAvailable_SQL(t *testing.T) {
	b := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).Select("r.id").From("help_requests r")

	sql, args, err := ApplyAvailable(b).ToSql()

	require.NoError(t, err)
	assert.Contains(t, sql, "r.claimed_by IS NULL")
	assert.Contains(t, sql, "r.status = $1")
	assert.Equal(t, []interface{}{"pending"}, args)
}

func TestMatchTask(t *testing.T) {
	vol := uuid.New()
	accepted := models.TaskAccepted
	task := &models.Task{VolunteerID: vol, Status: models.TaskAssigned}

	assert.True(t, MatchTask(TaskFilter{VolunteerID: &vol}, task))
	assert.False(t, MatchTask(TaskFilter{Status: &accepted}, task))
	other := uuid.New()
	assert.False(t, MatchTask(TaskFilter{IncidentID: &other}, task))
}

func TestMatchVolunteer(t *testing.T) {
	accepted := models.ApplicationAccepted
	pending := models.ApplicationPending
	p := &models.VolunteerProfile{
		ID:                uuid.New(),
		Skills:            []string{" First Aid ", "driving"},
		ApplicationStatus: models.ApplicationAccepted,
		Availability:      true,
	}

	assert.True(t, MatchVolunteer(VolunteerFilter{ApplicationStatus: &accepted, Skill: "first aid"}, p))
	assert.False(t, MatchVolunteer(VolunteerFilter{ApplicationStatus: &pending}, p))
	assert.False(t, MatchVolunteer(VolunteerFilter{Skill: "cooking"}, p))
	assert.True(t, MatchVolunteer(VolunteerFilter{IDs: []uuid.UUID{uuid.New(), p.ID}}, p))
	assert.False(t, MatchVolunteer(VolunteerFilter{IDs: []uuid.UUID{uuid.New()}}, p))
}

func TestAlertAudience(t *testing.T) {
	volunteersOnly := &models.Alert{TargetAudience: models.AudienceVolunteers, IsActive: true}
	everyone := &models.Alert{TargetAudience: models.AudienceAll, IsActive: true}
	inactive := &models.Alert{TargetAudience: models.AudienceAll, IsActive: false}

	civilian := AlertFilter{ActiveOnly: true, Audiences: AudiencesFor(models.Caller{Role: models.RoleCivilian})}
	admin := AlertFilter{ActiveOnly: true, Audiences: AudiencesFor(models.Caller{Role: models.RoleAdmin})}

	assert.False(t, MatchAlert(civilian, volunteersOnly))
	assert.True(t, MatchAlert(civilian, everyone))
	assert.False(t, MatchAlert(civilian, inactive))
	assert.True(t, MatchAlert(admin, volunteersOnly))
}

func TestApplyAlert_SQL(t *testing.T) {
	b := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).Select("a.id").From("alerts a")

	sql, args, err := ApplyAlert(b, AlertFilter{
		ActiveOnly: true,
		Audiences:  []models.AlertAudience{models.AudienceAll, models.AudienceCivilians},
		Limit:      10,
	}).ToSql()

	require.NoError(t, err)
	assert.Contains(t, sql, "a.target_audience IN ($2,$3)")
	assert.Contains(t, sql, "LIMIT 10")
	assert.Equal(t, []interface{}{true, "all", "civilians"}, args)
}

func TestMatchResource(t *testing.T) {
	shelter := models.ResourceShelter
	r := &models.Resource{Type: models.ResourceFood, IsActive: true}

	assert.True(t, MatchResource(ResourceFilter{ActiveOnly: true}, r))
	assert.False(t, MatchResource(ResourceFilter{Type: &shelter}, r))
}
