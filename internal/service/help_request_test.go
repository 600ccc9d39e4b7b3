package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/lifecycle"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/query"
	"github.com/shenikar/crisis_connect/internal/repository/memory"
	"github.com/shenikar/crisis_connect/internal/service"
	"github.com/shenikar/crisis_connect/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// requestFixture - сервис заявок поверх хранилища в памяти
type requestFixture struct {
	store      *memory.Store
	svc        service.HelpRequestService
	dispatcher *recordingDispatcher
	notifier   *recordingNotifier
	civilian   models.Caller
	volunteer  models.Caller
	admin      models.Caller
}

func newRequestFixture(t *testing.T) *requestFixture {
	t.Helper()
	store := memory.New()
	f := &requestFixture{
		store:      store,
		dispatcher: &recordingDispatcher{},
		notifier:   &recordingNotifier{},
	}
	civ := store.AddUser(models.User{Name: "Meera", Email: "meera@example.org", Role: models.RoleCivilian})
	vol := store.AddUser(models.User{Name: "Kabir", Email: "kabir@example.org", Phone: "+911234", Role: models.RoleVolunteer})
	adm := store.AddUser(models.User{Name: "Admin", Email: "admin@example.org", Role: models.RoleAdmin})
	f.civilian = models.Caller{ID: civ.ID, Role: models.RoleCivilian}
	f.volunteer = models.Caller{ID: vol.ID, Role: models.RoleVolunteer}
	f.admin = models.Caller{ID: adm.ID, Role: models.RoleAdmin}

	f.svc = service.NewHelpRequestService(service.HelpRequestDeps{
		Repo:            store.HelpRequests(),
		Users:           store.Users(),
		Dispatcher:      f.dispatcher,
		Notifier:        f.notifier,
		Logger:          quietLogger(),
		NotifyTimeout:   time.Second,
		DefaultRadiusKm: 10,
	})
	return f
}

func (f *requestFixture) create(t *testing.T, title string, lat, lon float64) *models.HelpRequest {
	t.Helper()
	req, err := f.svc.CreateHelpRequest(context.Background(), f.civilian, service.HelpRequestInput{
		Title:       title,
		Description: "details",
		Location:    service.RequestLocationInput{Latitude: ptr(lat), Longitude: ptr(lon)},
		Category:    models.CategoryMedical,
	})
	require.NoError(t, err)
	return req
}

func TestCreateHelpRequest_ForcesPendingAndUnclaimed(t *testing.T) {
	// Подготовка
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockHelpRequestRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	dispatcher := mocks.NewMockDispatcher(ctrl)
	svc := service.NewHelpRequestService(service.HelpRequestDeps{
		Repo:       repo,
		Users:      users,
		Dispatcher: dispatcher,
		Logger:     quietLogger(),
	})
	ctx := context.Background()
	civilian := callerAs(models.RoleCivilian)

	// Ожидания
	repo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, req *models.HelpRequest) error {
			assert.Equal(t, models.RequestPending, req.Status)
			assert.True(t, req.Unclaimed())
			assert.Equal(t, models.PriorityMedium, req.Priority)
			assert.Equal(t, models.CategoryOther, req.Category)
			assert.Equal(t, models.GeoPoint{77.2090, 28.6139}, req.Location.Coordinates)
			return nil
		}).
		Times(1)
	users.EXPECT().ListByIDs(ctx, []uuid.UUID{civilian.ID}).Return(nil, nil).Times(1)
	dispatcher.EXPECT().Dispatch(ctx, lifecycle.ChangeRequestCreated, gomock.Any()).Times(1)

	// Действие
	req, err := svc.CreateHelpRequest(ctx, civilian, service.HelpRequestInput{
		Title:       "  Trapped on roof ",
		Description: "Two adults",
		Location:    service.RequestLocationInput{Latitude: ptr(28.6139), Longitude: ptr(77.2090)},
	})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, "Trapped on roof", req.Title)
	assert.Equal(t, civilian.ID, req.Civilian.ID)
}

func TestCreateHelpRequest_Validation(t *testing.T) {
	tests := []struct {
		name   string
		input  service.HelpRequestInput
		fields []string
	}{
		{
			name: "zero location",
			input: service.HelpRequestInput{
				Title:       "t",
				Description: "d",
				Location:    service.RequestLocationInput{Latitude: ptr(0.0), Longitude: ptr(0.0)},
			},
			fields: []string{"location"},
		},
		{
			name:   "missing everything",
			input:  service.HelpRequestInput{},
			fields: []string{"title", "description", "location.latitude", "location.longitude"},
		},
		{
			name: "bad enums and range",
			input: service.HelpRequestInput{
				Title:       "t",
				Description: "d",
				Location:    service.RequestLocationInput{Latitude: ptr(10.0), Longitude: ptr(200.0)},
				Category:    "weather",
				Priority:    "urgent",
			},
			fields: []string{"location.longitude", "category", "priority"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Подготовка
			f := newRequestFixture(t)

			// Действие
			_, err := f.svc.CreateHelpRequest(context.Background(), f.civilian, tt.input)

			// Проверки
			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			got := make([]string, 0, len(verr.Fields))
			for _, fe := range verr.Fields {
				got = append(got, fe.Field)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestCreateHelpRequest_OnlyCivilians(t *testing.T) {
	// Подготовка
	f := newRequestFixture(t)

	// Действие
	_, err := f.svc.CreateHelpRequest(context.Background(), f.volunteer, service.HelpRequestInput{})

	// Проверки
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestClaimHelpRequest_ConcurrentClaimsSingleWinner(t *testing.T) {
	// Подготовка
	f := newRequestFixture(t)
	req := f.create(t, "Insulin needed", 28.6139, 77.2090)

	const contenders = 12
	volunteers := make([]models.Caller, contenders)
	for i := range volunteers {
		u := f.store.AddUser(models.User{Name: "v", Role: models.RoleVolunteer})
		volunteers[i] = models.Caller{ID: u.ID, Role: models.RoleVolunteer}
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []uuid.UUID
		errs    []error
	)

	// Действие
	for _, v := range volunteers {
		wg.Add(1)
		go func(v models.Caller) {
			defer wg.Done()
			_, err := f.svc.ClaimHelpRequest(context.Background(), v, req.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners = append(winners, v.ID)
				return
			}
			errs = append(errs, err)
		}(v)
	}
	wg.Wait()

	// Проверки
	require.Len(t, winners, 1)
	require.Len(t, errs, contenders-1)
	for _, err := range errs {
		assert.ErrorIs(t, err, models.ErrConflict)
		assert.False(t, errors.Is(err, models.ErrInvalidState))
	}

	stored, err := f.svc.GetHelpRequest(context.Background(), f.admin, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestClaimed, stored.Status)
	assert.Equal(t, winners[0], stored.ClaimedBy.ID)
	assert.Equal(t, 1, f.notifier.claimedCount())
	assert.Equal(t, 1, f.dispatcher.count(lifecycle.ChangeRequestClaimed))
}

func TestClaimHelpRequest_NotifiesCivilian(t *testing.T) {
	// Подготовка
	f := newRequestFixture(t)
	req := f.create(t, "Food", 28.6139, 77.2090)

	// Действие
	claimed, err := f.svc.ClaimHelpRequest(context.Background(), f.volunteer, req.ID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, "Kabir", claimed.ClaimedBy.Name)
	require.Len(t, f.notifier.claimed, 1)
	assert.Equal(t, "meera@example.org", f.notifier.claimed[0].Email)
}

func TestClaimHelpRequest_NotificationFailureKeepsClaim(t *testing.T) {
	// Подготовка
	f := newRequestFixture(t)
	f.notifier.err = errors.New("queue unavailable")
	req := f.create(t, "Food", 28.6139, 77.2090)

	// Действие
	claimed, err := f.svc.ClaimHelpRequest(context.Background(), f.volunteer, req.ID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.RequestClaimed, claimed.Status)
}

func TestClaimHelpRequest_Cancelled(t *testing.T) {
	// Подготовка
	f := newRequestFixture(t)
	ctx := context.Background()
	req := f.create(t, "Shelter", 28.6139, 77.2090)
	_, err := f.svc.UpdateHelpRequest(ctx, f.civilian, req.ID, models.RequestPatch{Status: ptr(models.RequestCancelled)})
	require.NoError(t, err)

	// Действие
	_, err = f.svc.ClaimHelpRequest(ctx, f.volunteer, req.ID)

	// Проверки
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestClaimHelpRequest_OnlyVolunteers(t *testing.T) {
	// Подготовка
	f := newRequestFixture(t)
	req := f.create(t, "Shelter", 28.6139, 77.2090)

	// Действие
	_, err := f.svc.ClaimHelpRequest(context.Background(), f.admin, req.ID)

	// Проверки
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestClaimHelpRequest_Missing(t *testing.T) {
	// Подготовка
	f := newRequestFixture(t)

	// Действие
	_, err := f.svc.ClaimHelpRequest(context.Background(), f.volunteer, uuid.New())

	// Проверки
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateHelpRequest_Permissions(t *testing.T) {
	// Подготовка
	f := newRequestFixture(t)
	ctx := context.Background()
	req := f.create(t, "Rescue", 28.6139, 77.2090)
	_, err := f.svc.ClaimHelpRequest(ctx, f.volunteer, req.ID)
	require.NoError(t, err)
	stranger := f.store.AddUser(models.User{Role: models.RoleVolunteer})

	// Действие / Проверки
	_, err = f.svc.UpdateHelpRequest(ctx, f.volunteer, req.ID, models.RequestPatch{Title: ptr("renamed")})
	assert.ErrorIs(t, err, models.ErrForbidden, "claimant may only change status")

	_, err = f.svc.UpdateHelpRequest(ctx, models.Caller{ID: stranger.ID, Role: models.RoleVolunteer}, req.ID,
		models.RequestPatch{Status: ptr(models.RequestInProgress)})
	assert.ErrorIs(t, err, models.ErrForbidden)

	updated, err := f.svc.UpdateHelpRequest(ctx, f.volunteer, req.ID, models.RequestPatch{Status: ptr(models.RequestInProgress)})
	require.NoError(t, err)
	assert.Equal(t, models.RequestInProgress, updated.Status)
	assert.Equal(t, f.volunteer.ID, updated.ClaimedBy.ID)
}

func TestUpdateHelpRequest_StatusRules(t *testing.T) {
	// Подготовка
	f := newRequestFixture(t)
	ctx := context.Background()
	req := f.create(t, "Water", 28.6139, 77.2090)

	// Действие / Проверки
	_, err := f.svc.UpdateHelpRequest(ctx, f.admin, req.ID, models.RequestPatch{Status: ptr(models.RequestClaimed)})
	assert.ErrorIs(t, err, models.ErrInvalidState, "claim only through ClaimHelpRequest")

	_, err = f.svc.UpdateHelpRequest(ctx, f.admin, req.ID, models.RequestPatch{Status: ptr(models.RequestResolved)})
	assert.ErrorIs(t, err, models.ErrInvalidState)

	cancelled, err := f.svc.UpdateHelpRequest(ctx, f.civilian, req.ID, models.RequestPatch{Status: ptr(models.RequestCancelled)})
	require.NoError(t, err)
	assert.True(t, cancelled.Unclaimed())

	_, err = f.svc.UpdateHelpRequest(ctx, f.civilian, req.ID, models.RequestPatch{Status: ptr(models.RequestPending)})
	assert.ErrorIs(t, err, models.ErrInvalidState, "cancelled is terminal")
}

func TestUpdateHelpRequest_VerifiedOnlyByAdmin(t *testing.T) {
	// Подготовка
	f := newRequestFixture(t)
	ctx := context.Background()
	req := f.create(t, "Water", 28.6139, 77.2090)

	// Действие
	byOwner, err := f.svc.UpdateHelpRequest(ctx, f.civilian, req.ID, models.RequestPatch{IsVerified: ptr(true)})
	require.NoError(t, err)
	byAdmin, err := f.svc.UpdateHelpRequest(ctx, f.admin, req.ID, models.RequestPatch{IsVerified: ptr(true)})
	require.NoError(t, err)

	// Проверки
	assert.False(t, byOwner.IsVerified)
	assert.True(t, byAdmin.IsVerified)
	require.NotNil(t, byAdmin.VerifiedBy)
	assert.Equal(t, "Admin", byAdmin.VerifiedBy.Name)
}

func TestListNearbyRequests_RadiusAndOrder(t *testing.T) {
	// Подготовка
	f := newRequestFixture(t)
	ctx := context.Background()
	nine := f.create(t, "nine km north", 28.6948, 77.2090)
	f.create(t, "fourteen km away", 28.70, 77.10)
	near := f.create(t, "one km away", 28.62, 77.21)
	claimed := f.create(t, "claimed nearby", 28.615, 77.209)
	_, err := f.svc.ClaimHelpRequest(ctx, f.volunteer, claimed.ID)
	require.NoError(t, err)

	// Действие
	items, err := f.svc.ListNearbyRequests(ctx, f.volunteer, service.NearbyInput{
		Latitude:  ptr(28.6139),
		Longitude: ptr(77.2090),
		RadiusKm:  ptr(10.0),
	})

	// Проверки
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, near.ID, items[0].ID)
	assert.Equal(t, nine.ID, items[1].ID)
	require.NotNil(t, items[0].Distance)
	assert.Less(t, *items[0].Distance, 1.5)
	assert.InDelta(t, 9.0, *items[1].Distance, 0.2)
}

func TestListNearbyRequests_DefaultRadiusAndValidation(t *testing.T) {
	// Подготовка
	f := newRequestFixture(t)
	ctx := context.Background()
	f.create(t, "near", 28.62, 77.21)
	f.create(t, "far", 19.0760, 72.8777)

	// Действие
	items, err := f.svc.ListNearbyRequests(ctx, f.admin, service.NearbyInput{Latitude: ptr(28.6139), Longitude: ptr(77.2090)})
	_, verr := f.svc.ListNearbyRequests(ctx, f.admin, service.NearbyInput{Latitude: ptr(28.6139)})
	_, forbidden := f.svc.ListNearbyRequests(ctx, f.civilian, service.NearbyInput{Latitude: ptr(28.6139), Longitude: ptr(77.2090)})

	// Проверки
	require.NoError(t, err)
	assert.Len(t, items, 1)
	var validation *models.ValidationError
	assert.ErrorAs(t, verr, &validation)
	assert.ErrorIs(t, forbidden, models.ErrForbidden)
}

func TestListHelpRequests_CivilianSeesOwn(t *testing.T) {
	// Подготовка
	f := newRequestFixture(t)
	ctx := context.Background()
	f.create(t, "mine", 28.62, 77.21)
	other := f.store.AddUser(models.User{Role: models.RoleCivilian})
	otherCaller := models.Caller{ID: other.ID, Role: models.RoleCivilian}
	_, err := f.svc.CreateHelpRequest(ctx, otherCaller, service.HelpRequestInput{
		Title:       "theirs",
		Description: "d",
		Location:    service.RequestLocationInput{Latitude: ptr(28.6), Longitude: ptr(77.2)},
	})
	require.NoError(t, err)

	// Действие
	mine, err := f.svc.ListHelpRequests(ctx, f.civilian, query.RequestFilter{})
	require.NoError(t, err)
	all, err := f.svc.ListHelpRequests(ctx, f.admin, query.RequestFilter{})
	require.NoError(t, err)

	// Проверки
	require.Len(t, mine, 1)
	assert.Equal(t, "mine", mine[0].Title)
	assert.Equal(t, "Meera", mine[0].Civilian.Name)
	assert.Len(t, all, 2)
}

func TestAddRequestNote(t *testing.T) {
	// Подготовка
	f := newRequestFixture(t)
	ctx := context.Background()
	req := f.create(t, "Medicine", 28.62, 77.21)

	// Действие
	_, emptyErr := f.svc.AddRequestNote(ctx, f.civilian, req.ID, "   ")
	_, strangerErr := f.svc.AddRequestNote(ctx, f.volunteer, req.ID, "hello")
	updated, err := f.svc.AddRequestNote(ctx, f.civilian, req.ID, "Gate code 1234")

	// Проверки
	var verr *models.ValidationError
	assert.ErrorAs(t, emptyErr, &verr)
	assert.ErrorIs(t, strangerErr, models.ErrForbidden)
	require.NoError(t, err)
	require.Len(t, updated.Notes, 1)
	assert.Equal(t, "Gate code 1234", updated.Notes[0].Text)
	assert.Equal(t, "Meera", updated.Notes[0].AddedBy.Name)
}

func TestDeleteHelpRequest(t *testing.T) {
	// Подготовка
	f := newRequestFixture(t)
	ctx := context.Background()
	req := f.create(t, "Blankets", 28.62, 77.21)

	// Действие
	forbidden := f.svc.DeleteHelpRequest(ctx, f.volunteer, req.ID)
	err := f.svc.DeleteHelpRequest(ctx, f.civilian, req.ID)
	_, getErr := f.svc.GetHelpRequest(ctx, f.admin, req.ID)

	// Проверки
	assert.ErrorIs(t, forbidden, models.ErrForbidden)
	require.NoError(t, err)
	assert.ErrorIs(t, getErr, models.ErrNotFound)
	assert.Equal(t, 1, f.dispatcher.count(lifecycle.ChangeRequestDeleted))
}

func TestListClaimsByVolunteer(t *testing.T) {
	// Подготовка
	f := newRequestFixture(t)
	ctx := context.Background()
	req := f.create(t, "Rescue", 28.62, 77.21)
	f.create(t, "Unclaimed", 28.62, 77.21)
	_, err := f.svc.ClaimHelpRequest(ctx, f.volunteer, req.ID)
	require.NoError(t, err)

	// Действие
	claims, err := f.svc.ListClaimsByVolunteer(ctx, f.volunteer, f.volunteer.ID)
	_, forbidden := f.svc.ListClaimsByVolunteer(ctx, callerAs(models.RoleVolunteer), f.volunteer.ID)

	// Проверки
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, req.ID, claims[0].ID)
	assert.ErrorIs(t, forbidden, models.ErrForbidden)
}

func TestVolunteerClaimStats(t *testing.T) {
	// Подготовка
	f := newRequestFixture(t)
	ctx := context.Background()
	claimed := f.create(t, "Claimed", 28.62, 77.21)
	working := f.create(t, "Working", 28.62, 77.21)
	done := f.create(t, "Done", 28.62, 77.21)
	dropped := f.create(t, "Dropped", 28.62, 77.21)
	f.create(t, "Unclaimed", 28.62, 77.21)
	for _, req := range []*models.HelpRequest{claimed, working, done, dropped} {
		_, err := f.svc.ClaimHelpRequest(ctx, f.volunteer, req.ID)
		require.NoError(t, err)
	}
	advance := func(id uuid.UUID, statuses ...models.RequestStatus) {
		for _, st := range statuses {
			_, err := f.svc.UpdateHelpRequest(ctx, f.admin, id, models.RequestPatch{Status: ptr(st)})
			require.NoError(t, err)
		}
	}
	advance(working.ID, models.RequestInProgress)
	advance(done.ID, models.RequestInProgress, models.RequestResolved)
	advance(dropped.ID, models.RequestCancelled)

	// Действие
	own, err := f.svc.VolunteerClaimStats(ctx, f.volunteer, f.volunteer.ID)
	require.NoError(t, err)
	byAdmin, err := f.svc.VolunteerClaimStats(ctx, f.admin, f.volunteer.ID)
	require.NoError(t, err)
	_, otherErr := f.svc.VolunteerClaimStats(ctx, callerAs(models.RoleVolunteer), f.volunteer.ID)
	_, civilianErr := f.svc.VolunteerClaimStats(ctx, f.civilian, f.civilian.ID)

	// Проверки
	// отмена снимает исполнителя, поэтому dropped не считается
	want := service.ClaimStats{TotalClaims: 3, ActiveClaims: 2, ResolvedClaims: 1}
	assert.Equal(t, want, own)
	assert.Equal(t, want, byAdmin)
	assert.ErrorIs(t, otherErr, models.ErrForbidden)
	assert.ErrorIs(t, civilianErr, models.ErrForbidden)
}

func TestVolunteerClaimStats_NoClaims(t *testing.T) {
	f := newRequestFixture(t)

	stats, err := f.svc.VolunteerClaimStats(context.Background(), f.volunteer, f.volunteer.ID)

	require.NoError(t, err)
	assert.Equal(t, service.ClaimStats{}, stats)
}
