package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/lifecycle"
	"github.com/shenikar/crisis_connect/internal/metrics"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/query"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=task.go -destination=mocks/task_mocks.go -package=mocks

// TaskRepository - хранилище задач. Задача и проекция taskStatus профиля
// пишутся одной транзакцией.
type TaskRepository interface {
	// Assign сохраняет задачу и выставляет профилю taskStatus=Assigned
	Assign(ctx context.Context, task *models.Task) error
	// GetByID возвращает задачу с заполненной сводкой инцидента
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	List(ctx context.Context, filter query.TaskFilter) ([]*models.Task, error)
	// Transition - условная запись статуса задачи (ErrConflict, если статус уже не from).
	// Проекция профиля обновляется, только если задача последняя у волонтера.
	Transition(ctx context.Context, task *models.Task, from models.TaskStatus) error
	// LatestStatusByVolunteer - статус самой поздней задачи каждого волонтера с задачами
	LatestStatusByVolunteer(ctx context.Context) (map[uuid.UUID]models.TaskStatus, error)
}

// TaskService - назначение задач и ответы волонтеров
type TaskService interface {
	AssignTask(ctx context.Context, caller models.Caller, input TaskInput) (*models.Task, error)
	RespondToTask(ctx context.Context, caller models.Caller, volunteerID, taskID uuid.UUID, decision models.TaskDecision) (*models.Task, error)
	CompleteTask(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Task, error)
	ListTasks(ctx context.Context, caller models.Caller, filter query.TaskFilter) ([]*models.Task, error)
	ListVolunteerTasks(ctx context.Context, caller models.Caller, volunteerID uuid.UUID, status *models.TaskStatus) ([]*models.Task, error)
}

// TaskInput - назначение задачи администратором
type TaskInput struct {
	TaskType     string         `json:"task_type" validate:"required"`
	Description  string         `json:"description" validate:"required"`
	IncidentID   *uuid.UUID     `json:"incident_id"`
	VolunteerID  uuid.UUID      `json:"volunteer_id" validate:"required"`
	ExtraDetails map[string]any `json:"extra_details"`
}

type taskService struct {
	repo       TaskRepository
	incidents  IncidentRepository
	volunteers VolunteerRepository
	populate   populator
	dispatcher Dispatcher
	validate   *validator.Validate
	metrics    *metrics.Metrics
	logger     *logrus.Logger
	now        Clock
}

// TaskDeps - зависимости сервиса задач
type TaskDeps struct {
	Repo       TaskRepository
	Incidents  IncidentRepository
	Volunteers VolunteerRepository
	Users      UserRepository
	Dispatcher Dispatcher
	Metrics    *metrics.Metrics
	Logger     *logrus.Logger
	Clock      Clock
}

func NewTaskService(deps TaskDeps) TaskService {
	now := deps.Clock
	if now == nil {
		now = utcNow
	}
	return &taskService{
		repo:       deps.Repo,
		incidents:  deps.Incidents,
		volunteers: deps.Volunteers,
		populate:   populator{users: deps.Users},
		dispatcher: deps.Dispatcher,
		validate:   newValidator(),
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        now,
	}
}

// AssignTask создает задачу в статусе Assigned. Любой существующий профиль
// подходит; инцидент, если указан, должен быть Verified.
func (s *taskService) AssignTask(ctx context.Context, caller models.Caller, input TaskInput) (*models.Task, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "task",
		"method":       "AssignTask",
		"volunteer_id": input.VolunteerID,
	})
	log.Info("Attempting to assign task")

	if !caller.IsAdmin() {
		s.metrics.Transition("task", "assign", models.ErrForbidden)
		return nil, models.ErrForbidden
	}
	if err := validateInput(s.validate, input); err != nil {
		log.WithError(err).Warn("Task assignment rejected")
		s.metrics.Transition("task", "assign", err)
		return nil, err
	}

	profile, err := s.volunteers.GetByID(ctx, input.VolunteerID)
	if err != nil {
		s.metrics.Transition("task", "assign", err)
		return nil, fmt.Errorf("service: could not get volunteer profile: %w", err)
	}
	var incident *models.Incident
	if input.IncidentID != nil {
		incident, err = s.incidents.GetByID(ctx, *input.IncidentID)
		if err != nil {
			s.metrics.Transition("task", "assign", err)
			return nil, fmt.Errorf("service: could not get incident: %w", err)
		}
	}

	task := &models.Task{
		ID:           uuid.New(),
		TaskType:     strings.TrimSpace(input.TaskType),
		Description:  strings.TrimSpace(input.Description),
		VolunteerID:  profile.ID,
		ExtraDetails: input.ExtraDetails,
	}
	change, err := lifecycle.AssignTask(task, incident, models.UserRef{ID: caller.ID}, s.now())
	if err != nil {
		log.WithError(err).Warn("Task assignment rejected")
		s.metrics.Transition("task", "assign", err)
		return nil, err
	}

	if err := s.repo.Assign(ctx, task); err != nil {
		log.WithError(err).Error("Failed to assign task in repository")
		s.metrics.Transition("task", "assign", err)
		return nil, fmt.Errorf("service: could not assign task: %w", err)
	}
	s.metrics.Transition("task", "assign", nil)

	s.populateTasks(ctx, log, task)
	s.dispatcher.Dispatch(ctx, change, task)
	log.WithField("task_id", task.ID).Info("Task assigned successfully")
	return task, nil
}

// RespondToTask - волонтер принимает (2) или отклоняет (3) задачу.
// volunteerID из пути обязан совпадать с волонтером задачи.
func (s *taskService) RespondToTask(ctx context.Context, caller models.Caller, volunteerID, taskID uuid.UUID, decision models.TaskDecision) (*models.Task, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":      "task",
		"method":       "RespondToTask",
		"task_id":      taskID,
		"volunteer_id": volunteerID,
		"decision":     int(decision),
	})
	log.Info("Attempting to respond to task")

	if err := lifecycle.ValidateDecision(decision); err != nil {
		s.metrics.Transition("task", "respond", err)
		return nil, err
	}
	if !caller.IsAdmin() && !caller.IsVolunteer() {
		s.metrics.Transition("task", "respond", models.ErrForbidden)
		return nil, models.ErrForbidden
	}

	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		s.metrics.Transition("task", "respond", err)
		return nil, fmt.Errorf("service: could not get task: %w", err)
	}
	if task.VolunteerID != volunteerID {
		log.Warn("Task volunteer does not match path volunteer")
		s.metrics.Transition("task", "respond", models.ErrForbidden)
		return nil, models.ErrForbidden
	}
	if !caller.IsAdmin() {
		if err := s.ownsProfile(ctx, caller, volunteerID); err != nil {
			s.metrics.Transition("task", "respond", err)
			return nil, err
		}
	}

	from := task.Status
	change, err := lifecycle.RespondToTask(task, decision, s.now())
	if err != nil {
		log.WithError(err).Warn("Task response rejected")
		s.metrics.Transition("task", "respond", err)
		return nil, err
	}
	if err := s.repo.Transition(ctx, task, from); err != nil {
		log.WithError(err).Warn("Failed to record task response")
		s.metrics.Transition("task", "respond", err)
		return nil, fmt.Errorf("service: could not update task: %w", err)
	}
	s.metrics.Transition("task", "respond", nil)

	s.populateTasks(ctx, log, task)
	s.dispatcher.Dispatch(ctx, change, task)
	log.WithField("status", task.Status.String()).Info("Task response recorded")
	return task, nil
}

// CompleteTask - Accepted -> Completed, только администратор
func (s *taskService) CompleteTask(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.Task, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "task",
		"method":  "CompleteTask",
		"task_id": id,
	})
	log.Info("Attempting to complete task")

	if !caller.IsAdmin() {
		s.metrics.Transition("task", "complete", models.ErrForbidden)
		return nil, models.ErrForbidden
	}
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.metrics.Transition("task", "complete", err)
		return nil, fmt.Errorf("service: could not get task: %w", err)
	}
	from := task.Status
	change, err := lifecycle.CompleteTask(task, s.now())
	if err != nil {
		s.metrics.Transition("task", "complete", err)
		return nil, err
	}
	if err := s.repo.Transition(ctx, task, from); err != nil {
		log.WithError(err).Warn("Failed to complete task")
		s.metrics.Transition("task", "complete", err)
		return nil, fmt.Errorf("service: could not update task: %w", err)
	}
	s.metrics.Transition("task", "complete", nil)

	s.populateTasks(ctx, log, task)
	s.dispatcher.Dispatch(ctx, change, task)
	log.Info("Task completed successfully")
	return task, nil
}

// ListTasks: администратор видит все задачи, волонтер только задачи своего профиля
func (s *taskService) ListTasks(ctx context.Context, caller models.Caller, filter query.TaskFilter) ([]*models.Task, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "task",
		"method":  "ListTasks",
		"role":    caller.Role,
	})

	switch {
	case caller.IsAdmin():
	case caller.IsVolunteer():
		profile, err := s.volunteers.GetByUserID(ctx, caller.ID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return []*models.Task{}, nil
			}
			return nil, fmt.Errorf("service: could not get volunteer profile: %w", err)
		}
		filter.VolunteerID = &profile.ID
	default:
		return nil, models.ErrForbidden
	}

	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list tasks from repository")
		return nil, fmt.Errorf("service: could not list tasks: %w", err)
	}
	s.populateTasks(ctx, log, tasks...)
	log.WithField("count", len(tasks)).Info("Tasks listed successfully")
	return tasks, nil
}

// ListVolunteerTasks - задачи конкретного профиля, с необязательным статусом
func (s *taskService) ListVolunteerTasks(ctx context.Context, caller models.Caller, volunteerID uuid.UUID, status *models.TaskStatus) ([]*models.Task, error) {
	if !caller.IsAdmin() {
		if !caller.IsVolunteer() {
			return nil, models.ErrForbidden
		}
		if err := s.ownsProfile(ctx, caller, volunteerID); err != nil {
			return nil, err
		}
	}
	tasks, err := s.repo.List(ctx, query.TaskFilter{VolunteerID: &volunteerID, Status: status})
	if err != nil {
		return nil, fmt.Errorf("service: could not list volunteer tasks: %w", err)
	}
	s.populateTasks(ctx, s.logger.WithField("method", "ListVolunteerTasks"), tasks...)
	return tasks, nil
}

// ownsProfile: чужой или несуществующий профиль дают одинаковый отказ
func (s *taskService) ownsProfile(ctx context.Context, caller models.Caller, profileID uuid.UUID) error {
	profile, err := s.volunteers.GetByID(ctx, profileID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrForbidden
		}
		return fmt.Errorf("service: could not get volunteer profile: %w", err)
	}
	if profile.UserID != caller.ID {
		return models.ErrForbidden
	}
	return nil
}

// populateTasks заполняет волонтера (через профиль) и назначившего администратора
func (s *taskService) populateTasks(ctx context.Context, log *logrus.Entry, tasks ...*models.Task) {
	if len(tasks) == 0 {
		return
	}
	ids := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.VolunteerID)
	}
	profiles, err := s.volunteers.List(ctx, query.VolunteerFilter{IDs: ids})
	if err != nil {
		log.WithError(err).Warn("Failed to load volunteer profiles for tasks")
		return
	}
	userByProfile := make(map[uuid.UUID]uuid.UUID, len(profiles))
	for _, p := range profiles {
		userByProfile[p.ID] = p.UserID
	}

	refs := make([]*models.UserRef, 0, len(tasks)*2)
	for _, t := range tasks {
		if userID, ok := userByProfile[t.VolunteerID]; ok {
			t.Volunteer = &models.UserRef{ID: userID}
			refs = append(refs, t.Volunteer)
		}
		refs = append(refs, &t.AssignedBy)
		for i := range t.Notes {
			refs = append(refs, &t.Notes[i].AddedBy)
		}
	}
	if err := s.populate.refs(ctx, refs...); err != nil {
		log.WithError(err).Warn("Failed to populate tasks")
	}
}
