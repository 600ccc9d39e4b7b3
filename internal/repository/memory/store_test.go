package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingRequest(civilian uuid.UUID, at time.Time) *models.HelpRequest {
	return &models.HelpRequest{
		ID:          uuid.New(),
		Title:       "Need water",
		Description: "Family of four",
		Civilian:    models.UserRef{ID: civilian},
		Location:    models.RequestLocation{Latitude: 28.6139, Longitude: 77.2090, Coordinates: models.NewGeoPoint(28.6139, 77.2090)},
		Category:    models.CategoryFood,
		Priority:    models.PriorityHigh,
		Status:      models.RequestPending,
		Notes:       []models.Note{},
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func TestRequestClaim_ExactlyOneWinner(t *testing.T) {
	// Подготовка
	store := New()
	repo := store.HelpRequests()
	ctx := context.Background()
	req := newPendingRequest(uuid.New(), time.Now().UTC())
	require.NoError(t, repo.Create(ctx, req))

	const contenders = 16
	var (
		wg        sync.WaitGroup
		wins      atomic.Int32
		conflicts atomic.Int32
	)

	// Действие
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Claim(ctx, req.ID, models.UserRef{ID: uuid.New()}, time.Now().UTC())
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, models.ErrConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected claim error: %v", err)
			}
		}()
	}
	wg.Wait()

	// Проверки
	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(contenders-1), conflicts.Load())
	stored, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestClaimed, stored.Status)
	require.NotNil(t, stored.ClaimedBy)
}

func TestRequestClaim_Cancelled(t *testing.T) {
	// Подготовка
	store := New()
	repo := store.HelpRequests()
	ctx := context.Background()
	req := newPendingRequest(uuid.New(), time.Now().UTC())
	req.Status = models.RequestCancelled
	require.NoError(t, repo.Create(ctx, req))

	// Действие
	_, err := repo.Claim(ctx, req.ID, models.UserRef{ID: uuid.New()}, time.Now().UTC())

	// Проверки
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestRequestUpdate_StaleVersion(t *testing.T) {
	// Подготовка
	store := New()
	repo := store.HelpRequests()
	ctx := context.Background()
	req := newPendingRequest(uuid.New(), time.Now().UTC())
	require.NoError(t, repo.Create(ctx, req))

	first, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)

	// Действие
	first.Title = "first"
	require.NoError(t, repo.Update(ctx, first))
	second.Title = "second"
	err = repo.Update(ctx, second)

	// Проверки
	assert.ErrorIs(t, err, models.ErrConflict)
	stored, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", stored.Title)
	assert.Equal(t, first.Version, stored.Version)
}

func TestRequestAddNote_KeepsHistory(t *testing.T) {
	// Подготовка
	store := New()
	repo := store.HelpRequests()
	ctx := context.Background()
	req := newPendingRequest(uuid.New(), time.Now().UTC())
	require.NoError(t, repo.Create(ctx, req))
	author := uuid.New()

	// Действие
	_, err := repo.AddNote(ctx, req.ID, models.Note{Text: "on my way", AddedBy: models.UserRef{ID: author}, AddedAt: time.Now().UTC()})
	require.NoError(t, err)
	updated, err := repo.AddNote(ctx, req.ID, models.Note{Text: "arrived", AddedBy: models.UserRef{ID: author}, AddedAt: time.Now().UTC()})

	// Проверки
	require.NoError(t, err)
	require.Len(t, updated.Notes, 2)
	assert.Equal(t, "on my way", updated.Notes[0].Text)
	assert.Equal(t, "arrived", updated.Notes[1].Text)
}

func TestStore_ReturnsCopies(t *testing.T) {
	// Подготовка
	store := New()
	repo := store.HelpRequests()
	ctx := context.Background()
	req := newPendingRequest(uuid.New(), time.Now().UTC())
	require.NoError(t, repo.Create(ctx, req))

	// Действие
	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	got.Status = models.RequestResolved
	got.Civilian.Name = "leaked"

	// Проверки
	again, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, again.Status)
	assert.Empty(t, again.Civilian.Name)
}

func TestTaskTransition_ProjectsOnlyLatestTask(t *testing.T) {
	// Подготовка
	store := New()
	ctx := context.Background()
	profile := store.AddVolunteerProfile(models.VolunteerProfile{UserID: uuid.New()})
	tasks := store.Tasks()
	now := time.Now().UTC()

	older := &models.Task{ID: uuid.New(), VolunteerID: profile.ID, Status: models.TaskAssigned, AssignedAt: now, UpdatedAt: now}
	require.NoError(t, tasks.Assign(ctx, older))
	newer := &models.Task{ID: uuid.New(), VolunteerID: profile.ID, Status: models.TaskAssigned, AssignedAt: now.Add(time.Minute), UpdatedAt: now.Add(time.Minute)}
	require.NoError(t, tasks.Assign(ctx, newer))

	// Действие
	older.Status = models.TaskRejected
	require.NoError(t, tasks.Transition(ctx, older, models.TaskAssigned))

	// Проверки
	stored, err := store.Volunteers().GetByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VolunteerAssigned, stored.TaskStatus)

	latest, err := tasks.LatestStatusByVolunteer(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.TaskAssigned, latest[profile.ID])
}

func TestTaskTransition_StaleFrom(t *testing.T) {
	// Подготовка
	store := New()
	ctx := context.Background()
	profile := store.AddVolunteerProfile(models.VolunteerProfile{UserID: uuid.New()})
	tasks := store.Tasks()
	now := time.Now().UTC()
	task := &models.Task{ID: uuid.New(), VolunteerID: profile.ID, Status: models.TaskAssigned, AssignedAt: now}
	require.NoError(t, tasks.Assign(ctx, task))

	task.Status = models.TaskAccepted
	require.NoError(t, tasks.Transition(ctx, task, models.TaskAssigned))

	// Действие
	task.Status = models.TaskRejected
	err := tasks.Transition(ctx, task, models.TaskAssigned)

	// Проверки
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestTaskAssign_UnknownVolunteer(t *testing.T) {
	// Подготовка
	store := New()

	// Действие
	err := store.Tasks().Assign(context.Background(), &models.Task{ID: uuid.New(), VolunteerID: uuid.New()})

	// Проверки
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTaskGetByID_IncidentSummary(t *testing.T) {
	// Подготовка
	store := New()
	ctx := context.Background()
	incident := &models.Incident{ID: uuid.New(), Type: "flood", Location: "Sector 5", Severity: 4, Status: models.IncidentVerified}
	require.NoError(t, store.Incidents().Create(ctx, incident))
	profile := store.AddVolunteerProfile(models.VolunteerProfile{UserID: uuid.New()})
	task := &models.Task{ID: uuid.New(), VolunteerID: profile.ID, IncidentID: &incident.ID, Status: models.TaskAssigned, AssignedAt: time.Now().UTC()}
	require.NoError(t, store.Tasks().Assign(ctx, task))

	// Действие
	got, err := store.Tasks().GetByID(ctx, task.ID)

	// Проверки
	require.NoError(t, err)
	require.NotNil(t, got.Incident)
	assert.Equal(t, "flood", got.Incident.Type)
	assert.Equal(t, 4, got.Incident.Severity)
}

func TestIncidentUpdateStatus_CompareAndSet(t *testing.T) {
	// Подготовка
	store := New()
	repo := store.Incidents()
	ctx := context.Background()
	incident := &models.Incident{ID: uuid.New(), Status: models.IncidentPending}
	require.NoError(t, repo.Create(ctx, incident))

	// Действие
	incident.Status = models.IncidentVerified
	first := repo.UpdateStatus(ctx, incident, models.IncidentPending)
	second := repo.UpdateStatus(ctx, incident, models.IncidentPending)

	// Проверки
	require.NoError(t, first)
	assert.ErrorIs(t, second, models.ErrConflict)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, &models.Incident{ID: uuid.New()}, models.IncidentPending), models.ErrNotFound)
}

func TestIncidentList_BySeverity(t *testing.T) {
	// Подготовка
	store := New()
	repo := store.Incidents()
	ctx := context.Background()
	now := time.Now().UTC()
	for i, severity := range []int{2, 5, 3} {
		require.NoError(t, repo.Create(ctx, &models.Incident{
			ID:        uuid.New(),
			Severity:  severity,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		}))
	}
	admin := models.Caller{ID: uuid.New(), Role: models.RoleAdmin}

	// Действие
	items, err := repo.List(ctx, admin, query.IncidentFilter{BySeverity: true})

	// Проверки
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []int{5, 3, 2}, []int{items[0].Severity, items[1].Severity, items[2].Severity})
}

func TestAlertList_Limit(t *testing.T) {
	// Подготовка
	store := New()
	repo := store.Alerts()
	ctx := context.Background()
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.Alert{
			ID:             uuid.New(),
			IsActive:       true,
			TargetAudience: models.AudienceAll,
			CreatedAt:      now.Add(time.Duration(i) * time.Second),
		}))
	}

	// Действие
	items, err := repo.List(ctx, query.AlertFilter{ActiveOnly: true, Limit: 2})

	// Проверки
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.True(t, items[0].CreatedAt.After(items[1].CreatedAt))
}

func TestIncidentCache(t *testing.T) {
	// Подготовка
	cache := NewIncidentCache()
	ctx := context.Background()
	incident := &models.Incident{ID: uuid.New(), Type: "fire"}

	// Действие
	miss, missErr := cache.GetIncidentFromCache(ctx, incident.ID)
	require.NoError(t, cache.SetIncidentCache(ctx, incident))
	hit, hitErr := cache.GetIncidentFromCache(ctx, incident.ID)
	require.NoError(t, cache.InvalidateIncidentCache(ctx, incident.ID))
	gone, _ := cache.GetIncidentFromCache(ctx, incident.ID)

	// Проверки
	assert.NoError(t, missErr)
	assert.Nil(t, miss)
	assert.NoError(t, hitErr)
	assert.Equal(t, "fire", hit.Type)
	assert.Nil(t, gone)
}
