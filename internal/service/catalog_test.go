package service_test

import (
	"context"
	"testing"

	"github.com/shenikar/crisis_connect/internal/lifecycle"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/query"
	"github.com/shenikar/crisis_connect/internal/repository/memory"
	"github.com/shenikar/crisis_connect/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlerts_AudienceAndLifecycle(t *testing.T) {
	// Подготовка
	store := memory.New()
	dispatcher := &recordingDispatcher{}
	svc := service.NewAlertService(store.Alerts(), store.Users(), dispatcher, quietLogger())
	ctx := context.Background()
	admin := store.AddUser(models.User{Name: "Ops", Role: models.RoleAdmin})
	adminCaller := models.Caller{ID: admin.ID, Role: models.RoleAdmin}

	// Действие
	_, forbidden := svc.CreateAlert(ctx, callerAs(models.RoleVolunteer), service.AlertInput{Title: "t", Message: "m"})
	general, err := svc.CreateAlert(ctx, adminCaller, service.AlertInput{Title: "Heat wave", Message: "Stay indoors"})
	require.NoError(t, err)
	forVolunteers, err := svc.CreateAlert(ctx, adminCaller, service.AlertInput{
		Title: "Briefing", Message: "18:00 at base", Type: models.AlertWarning, TargetAudience: models.AudienceVolunteers,
	})
	require.NoError(t, err)

	civilianView, err := svc.ListActiveAlerts(ctx, callerAs(models.RoleCivilian))
	require.NoError(t, err)
	volunteerView, err := svc.ListActiveAlerts(ctx, callerAs(models.RoleVolunteer))
	require.NoError(t, err)
	_, hidden := svc.GetAlert(ctx, callerAs(models.RoleCivilian), forVolunteers.ID)

	require.NoError(t, svc.DeleteAlert(ctx, adminCaller, general.ID))
	afterDelete, err := svc.ListActiveAlerts(ctx, callerAs(models.RoleCivilian))
	require.NoError(t, err)
	everything, err := svc.ListAllAlerts(ctx, adminCaller)
	require.NoError(t, err)

	// Проверки
	assert.ErrorIs(t, forbidden, models.ErrForbidden)
	assert.Equal(t, models.AlertInfo, general.Type)
	assert.Equal(t, models.AudienceAll, general.TargetAudience)
	assert.Equal(t, "Ops", general.CreatedBy.Name)
	assert.Len(t, civilianView, 1)
	assert.Len(t, volunteerView, 2)
	assert.ErrorIs(t, hidden, models.ErrForbidden)
	assert.Empty(t, afterDelete)
	assert.Len(t, everything, 2)
	assert.Equal(t, 2, dispatcher.count(lifecycle.ChangeAlertCreated))
	assert.Equal(t, 1, dispatcher.count(lifecycle.ChangeAlertDeleted))
}

func TestAlerts_UpdateValidation(t *testing.T) {
	// Подготовка
	store := memory.New()
	svc := service.NewAlertService(store.Alerts(), store.Users(), &recordingDispatcher{}, quietLogger())
	ctx := context.Background()
	admin := callerAs(models.RoleAdmin)
	alert, err := svc.CreateAlert(ctx, admin, service.AlertInput{Title: "t", Message: "m"})
	require.NoError(t, err)

	// Действие
	_, invalid := svc.UpdateAlert(ctx, admin, alert.ID, models.AlertPatch{Title: ptr(" "), Type: ptr(models.AlertType("loud"))})
	updated, err := svc.UpdateAlert(ctx, admin, alert.ID, models.AlertPatch{Type: ptr(models.AlertDanger)})

	// Проверки
	var verr *models.ValidationError
	require.ErrorAs(t, invalid, &verr)
	assert.Len(t, verr.Fields, 2)
	require.NoError(t, err)
	assert.Equal(t, models.AlertDanger, updated.Type)
}

func TestResources_ActiveOnlyForReaders(t *testing.T) {
	// Подготовка
	store := memory.New()
	dispatcher := &recordingDispatcher{}
	svc := service.NewResourceService(store.Resources(), store.Users(), dispatcher, quietLogger())
	ctx := context.Background()
	admin := callerAs(models.RoleAdmin)
	input := service.ResourceInput{
		Name:             "Community hall",
		Type:             models.ResourceShelter,
		Location:         service.ResourceLocationInput{Latitude: ptr(28.61), Longitude: ptr(77.20)},
		Capacity:         ptr(100),
		CurrentOccupancy: 40,
	}

	// Действие
	hall, err := svc.CreateResource(ctx, admin, input)
	require.NoError(t, err)
	_, overfull := svc.UpdateResource(ctx, admin, hall.ID, models.ResourcePatch{CurrentOccupancy: ptr(120)})
	require.NoError(t, svc.DeleteResource(ctx, admin, hall.ID))
	readerView, err := svc.ListResources(ctx, callerAs(models.RoleCivilian), query.ResourceFilter{})
	require.NoError(t, err)
	adminView, err := svc.ListResources(ctx, admin, query.ResourceFilter{})
	require.NoError(t, err)
	_, hidden := svc.GetResource(ctx, callerAs(models.RoleVolunteer), hall.ID)

	// Проверки
	var verr *models.ValidationError
	assert.ErrorAs(t, overfull, &verr)
	assert.Empty(t, readerView)
	assert.Len(t, adminView, 1)
	assert.ErrorIs(t, hidden, models.ErrNotFound)
	assert.Equal(t, 1, dispatcher.count(lifecycle.ChangeResourceDeleted))
}

func TestResources_CreateValidation(t *testing.T) {
	// Подготовка
	store := memory.New()
	svc := service.NewResourceService(store.Resources(), store.Users(), &recordingDispatcher{}, quietLogger())

	// Действие
	_, err := svc.CreateResource(context.Background(), callerAs(models.RoleAdmin), service.ResourceInput{
		Type:             "castle",
		Location:         service.ResourceLocationInput{Latitude: ptr(10.0), Longitude: ptr(10.0)},
		Capacity:         ptr(5),
		CurrentOccupancy: 2,
	})

	// Проверки
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"name", "type"}, fields)
}
