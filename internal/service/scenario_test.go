package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/lifecycle"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/query"
	"github.com/shenikar/crisis_connect/internal/repository/memory"
	"github.com/shenikar/crisis_connect/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// platform - все сервисы над одним хранилищем в памяти
type platform struct {
	store      *memory.Store
	incidents  service.IncidentService
	tasks      service.TaskService
	volunteers service.VolunteerService
	dispatcher *recordingDispatcher
	notifier   *recordingNotifier

	civilian models.Caller
	admin    models.Caller
}

type volunteerAccount struct {
	caller  models.Caller
	profile *models.VolunteerProfile
}

func newPlatform(t *testing.T) *platform {
	t.Helper()
	store := memory.New()
	p := &platform{
		store:      store,
		dispatcher: &recordingDispatcher{},
		notifier:   &recordingNotifier{},
	}
	logger := quietLogger()
	p.incidents = service.NewIncidentService(service.IncidentDeps{
		Repo:          store.Incidents(),
		Cache:         memory.NewIncidentCache(),
		Volunteers:    store.Volunteers(),
		Users:         store.Users(),
		Dispatcher:    p.dispatcher,
		Notifier:      p.notifier,
		Logger:        logger,
		NotifyTimeout: time.Second,
	})
	p.tasks = service.NewTaskService(service.TaskDeps{
		Repo:       store.Tasks(),
		Incidents:  store.Incidents(),
		Volunteers: store.Volunteers(),
		Users:      store.Users(),
		Dispatcher: p.dispatcher,
		Logger:     logger,
	})
	p.volunteers = service.NewVolunteerService(store.Volunteers(), store.Users(), nil, logger)

	civ := store.AddUser(models.User{Name: "Nisha", Email: "nisha@example.org", Role: models.RoleCivilian})
	adm := store.AddUser(models.User{Name: "Ops", Email: "ops@example.org", Role: models.RoleAdmin})
	p.civilian = models.Caller{ID: civ.ID, Role: models.RoleCivilian}
	p.admin = models.Caller{ID: adm.ID, Role: models.RoleAdmin}
	return p
}

func (p *platform) addVolunteer(name, email string, status models.ApplicationStatus, skills ...string) volunteerAccount {
	u := p.store.AddUser(models.User{Name: name, Email: email, Role: models.RoleVolunteer})
	profile := p.store.AddVolunteerProfile(models.VolunteerProfile{
		UserID:            u.ID,
		Skills:            skills,
		ApplicationStatus: status,
		Availability:      true,
	})
	return volunteerAccount{caller: models.Caller{ID: u.ID, Role: models.RoleVolunteer}, profile: profile}
}

func (p *platform) taskStatus(t *testing.T, profileID uuid.UUID) models.VolunteerTaskStatus {
	t.Helper()
	profile, err := p.store.Volunteers().GetByID(context.Background(), profileID)
	require.NoError(t, err)
	return profile.TaskStatus
}

func TestScenario_ReportVerifyAssignRejectReassign(t *testing.T) {
	// Подготовка
	p := newPlatform(t)
	ctx := context.Background()
	first := p.addVolunteer("Arjun", "arjun@example.org", models.ApplicationAccepted, "first aid")
	second := p.addVolunteer("Leela", "leela@example.org", models.ApplicationAccepted, "boat")
	p.addVolunteer("Pending", "pending@example.org", models.ApplicationPending)

	// Действие: гражданин сообщает об инциденте
	incident, err := p.incidents.ReportIncident(ctx, p.civilian, service.IncidentInput{
		Location:    "Yamuna bank",
		Type:        "flood",
		Severity:    ptr(5),
		Description: "Rising water",
		Latitude:    ptr(28.65),
		Longitude:   ptr(77.25),
	})
	require.NoError(t, err)
	assert.Equal(t, models.IncidentPending, incident.Status)
	assert.Equal(t, "Nisha", incident.ReportedBy.Name)

	// До проверки задачу назначить нельзя
	_, err = p.tasks.AssignTask(ctx, p.admin, service.TaskInput{
		TaskType: "evacuation", Description: "Move families", IncidentID: &incident.ID, VolunteerID: first.profile.ID,
	})
	assert.ErrorIs(t, err, models.ErrInvalidState)

	// Администратор подтверждает: письма получают только принятые волонтеры
	verified, err := p.incidents.VerifyIncident(ctx, p.admin, incident.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IncidentVerified, verified.Status)
	assert.Equal(t, "Ops", verified.VerifiedBy.Name)
	require.Len(t, p.notifier.verified, 1)
	assert.ElementsMatch(t, []string{"arjun@example.org", "leela@example.org"}, p.notifier.verified[0])

	// Повторная проверка - недопустимый переход, второго уведомления нет
	_, err = p.incidents.VerifyIncident(ctx, p.admin, incident.ID)
	assert.ErrorIs(t, err, models.ErrInvalidState)
	assert.Len(t, p.notifier.verified, 1)

	// Назначение первому волонтеру
	task, err := p.tasks.AssignTask(ctx, p.admin, service.TaskInput{
		TaskType: "evacuation", Description: "Move families", IncidentID: &incident.ID, VolunteerID: first.profile.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskAssigned, task.Status)
	require.NotNil(t, task.Incident)
	assert.Equal(t, "flood", task.Incident.Type)
	assert.Equal(t, "Arjun", task.Volunteer.Name)
	assert.Equal(t, models.VolunteerAssigned, p.taskStatus(t, first.profile.ID))

	// Чужой волонтер не может ответить на задачу
	_, err = p.tasks.RespondToTask(ctx, second.caller, first.profile.ID, task.ID, models.DecisionAccept)
	assert.ErrorIs(t, err, models.ErrForbidden)
	_, err = p.tasks.RespondToTask(ctx, second.caller, second.profile.ID, task.ID, models.DecisionAccept)
	assert.ErrorIs(t, err, models.ErrForbidden)

	// Первый отказывается и сразу становится доступен
	rejected, err := p.tasks.RespondToTask(ctx, first.caller, first.profile.ID, task.ID, models.DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, models.TaskRejected, rejected.Status)
	assert.Nil(t, rejected.AcceptedAt)
	assert.Equal(t, models.VolunteerAvailable, p.taskStatus(t, first.profile.ID))

	// Ответ на уже отклоненную задачу
	_, err = p.tasks.RespondToTask(ctx, first.caller, first.profile.ID, task.ID, models.DecisionAccept)
	assert.ErrorIs(t, err, models.ErrInvalidState)

	// Переназначение второму, он принимает, администратор завершает
	reassigned, err := p.tasks.AssignTask(ctx, p.admin, service.TaskInput{
		TaskType: "evacuation", Description: "Move families", IncidentID: &incident.ID, VolunteerID: second.profile.ID,
	})
	require.NoError(t, err)
	accepted, err := p.tasks.RespondToTask(ctx, second.caller, second.profile.ID, reassigned.ID, models.DecisionAccept)
	require.NoError(t, err)
	require.NotNil(t, accepted.AcceptedAt)
	assert.Equal(t, models.VolunteerAccepted, p.taskStatus(t, second.profile.ID))

	_, err = p.tasks.CompleteTask(ctx, second.caller, reassigned.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)
	completed, err := p.tasks.CompleteTask(ctx, p.admin, reassigned.ID)
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedAt)
	assert.Nil(t, completed.AcceptedAt)
	stored, err := p.store.Tasks().GetByID(ctx, reassigned.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AcceptedAt)

	// Проверки
	assert.Equal(t, models.VolunteerCompleted, p.taskStatus(t, second.profile.ID))
	assert.Equal(t, 2, p.dispatcher.count(lifecycle.ChangeTaskAssigned))
	assert.Equal(t, 2, p.dispatcher.count(lifecycle.ChangeTaskResponded))
	assert.Equal(t, 1, p.dispatcher.count(lifecycle.ChangeTaskCompleted))

	all, err := p.tasks.ListTasks(ctx, p.admin, query.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	own, err := p.tasks.ListTasks(ctx, first.caller, query.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, task.ID, own[0].ID)
}

func TestScenario_AssignWithoutIncident(t *testing.T) {
	// Подготовка
	p := newPlatform(t)
	ctx := context.Background()
	v := p.addVolunteer("Sam", "sam@example.org", models.ApplicationPending)

	// Действие
	task, err := p.tasks.AssignTask(ctx, p.admin, service.TaskInput{
		TaskType:     "logistics",
		Description:  "Sort donations",
		VolunteerID:  v.profile.ID,
		ExtraDetails: map[string]any{"warehouse": "B"},
	})

	// Проверки
	require.NoError(t, err)
	assert.Nil(t, task.IncidentID)
	assert.Equal(t, "B", task.ExtraDetails["warehouse"])
	assert.Equal(t, "Ops", task.AssignedBy.Name)
}

func TestScenario_AssignValidation(t *testing.T) {
	// Подготовка
	p := newPlatform(t)
	ctx := context.Background()

	// Действие
	_, validationErr := p.tasks.AssignTask(ctx, p.admin, service.TaskInput{})
	_, missingErr := p.tasks.AssignTask(ctx, p.admin, service.TaskInput{TaskType: "x", Description: "y", VolunteerID: uuid.New()})
	_, forbiddenErr := p.tasks.AssignTask(ctx, p.civilian, service.TaskInput{})

	// Проверки
	var verr *models.ValidationError
	require.ErrorAs(t, validationErr, &verr)
	assert.Len(t, verr.Fields, 3)
	assert.ErrorIs(t, missingErr, models.ErrNotFound)
	assert.ErrorIs(t, forbiddenErr, models.ErrForbidden)
}

func TestScenario_RespondRejectsUnknownDecision(t *testing.T) {
	// Подготовка
	p := newPlatform(t)
	v := p.addVolunteer("Sam", "sam@example.org", models.ApplicationAccepted)

	// Действие
	_, err := p.tasks.RespondToTask(context.Background(), v.caller, v.profile.ID, uuid.New(), models.TaskDecision(4))

	// Проверки
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestScenario_ListVolunteerTasksByStatus(t *testing.T) {
	// Подготовка
	p := newPlatform(t)
	ctx := context.Background()
	v := p.addVolunteer("Sam", "sam@example.org", models.ApplicationAccepted)
	for i := 0; i < 2; i++ {
		_, err := p.tasks.AssignTask(ctx, p.admin, service.TaskInput{TaskType: "t", Description: "d", VolunteerID: v.profile.ID})
		require.NoError(t, err)
	}
	assigned := models.TaskAssigned
	completed := models.TaskCompleted

	// Действие
	open, err := p.tasks.ListVolunteerTasks(ctx, v.caller, v.profile.ID, &assigned)
	require.NoError(t, err)
	done, err := p.tasks.ListVolunteerTasks(ctx, p.admin, v.profile.ID, &completed)
	require.NoError(t, err)
	_, forbidden := p.tasks.ListVolunteerTasks(ctx, callerAs(models.RoleVolunteer), v.profile.ID, nil)

	// Проверки
	assert.Len(t, open, 2)
	assert.Empty(t, done)
	assert.ErrorIs(t, forbidden, models.ErrForbidden)
}
