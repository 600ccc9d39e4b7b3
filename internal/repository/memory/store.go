// Package memory - хранилище сущностей в памяти процесса с той же семантикой
// условных записей, что и PostgreSQL. Используется в режиме разработки и в тестах.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/lifecycle"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/query"
	"github.com/shenikar/crisis_connect/internal/service"
)

// Store держит все коллекции под одним мьютексом: запись задачи и проекции
// профиля видна читателям только целиком
type Store struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]*models.User
	incidents  map[uuid.UUID]*models.Incident
	requests   map[uuid.UUID]*models.HelpRequest
	volunteers map[uuid.UUID]*models.VolunteerProfile
	tasks      map[uuid.UUID]*models.Task
	alerts     map[uuid.UUID]*models.Alert
	resources  map[uuid.UUID]*models.Resource
}

func New() *Store {
	return &Store{
		users:      make(map[uuid.UUID]*models.User),
		incidents:  make(map[uuid.UUID]*models.Incident),
		requests:   make(map[uuid.UUID]*models.HelpRequest),
		volunteers: make(map[uuid.UUID]*models.VolunteerProfile),
		tasks:      make(map[uuid.UUID]*models.Task),
		alerts:     make(map[uuid.UUID]*models.Alert),
		resources:  make(map[uuid.UUID]*models.Resource),
	}
}

func notFound(entity string, id uuid.UUID) error {
	return fmt.Errorf("%s with id %s: %w", entity, id, models.ErrNotFound)
}

func conflict(entity string, id uuid.UUID) error {
	return fmt.Errorf("%s %s was modified concurrently: %w", entity, id, models.ErrConflict)
}

// AddUser регистрирует учетную запись; регистрация вне сервиса, здесь только засев
func (s *Store) AddUser(u models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = &u
	out := u
	return &out
}

// AddVolunteerProfile засевает профиль волонтера
func (s *Store) AddVolunteerProfile(p models.VolunteerProfile) *models.VolunteerProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Skills == nil {
		p.Skills = []string{}
	}
	s.volunteers[p.ID] = cloneProfile(&p)
	return cloneProfile(&p)
}

func (s *Store) Users() service.UserRepository               { return userRepo{s} }
func (s *Store) Incidents() service.IncidentRepository       { return incidentRepo{s} }
func (s *Store) HelpRequests() service.HelpRequestRepository { return requestRepo{s} }
func (s *Store) Volunteers() service.VolunteerRepository     { return volunteerRepo{s} }
func (s *Store) Tasks() service.TaskRepository               { return taskRepo{s} }
func (s *Store) Alerts() service.AlertRepository             { return alertRepo{s} }
func (s *Store) Resources() service.ResourceRepository       { return resourceRepo{s} }

// newestFirst сортирует по убыванию времени создания
func newestFirst[T any](items []T, created func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return created(items[i]).After(created(items[j]))
	})
}

// --- users ---

type userRepo struct{ s *Store }

func (r userRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	out := *u
	return &out, nil
}

func (r userRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r userRepo) ListByRole(_ context.Context, role models.Role) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.User, 0)
	for _, u := range r.s.users {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// --- incidents ---

type incidentRepo struct{ s *Store }

func (r incidentRepo) Create(_ context.Context, inc *models.Incident) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.incidents[inc.ID]; ok {
		return fmt.Errorf("incident %s already exists", inc.ID)
	}
	r.s.incidents[inc.ID] = cloneIncident(inc)
	return nil
}

func (r incidentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Incident, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	inc, ok := r.s.incidents[id]
	if !ok {
		return nil, notFound("incident", id)
	}
	return cloneIncident(inc), nil
}

func (r incidentRepo) List(_ context.Context, caller models.Caller, filter query.IncidentFilter) ([]*models.Incident, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.Incident, 0)
	for _, inc := range r.s.incidents {
		if query.MatchIncident(caller, filter, inc) {
			out = append(out, cloneIncident(inc))
		}
	}
	newestFirst(out, func(i *models.Incident) time.Time { return i.CreatedAt })
	if filter.BySeverity {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Severity > out[j].Severity })
	}
	return out, nil
}

func (r incidentRepo) UpdateStatus(_ context.Context, inc *models.Incident, from models.IncidentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.incidents[inc.ID]
	if !ok {
		return notFound("incident", inc.ID)
	}
	if current.Status != from {
		return conflict("incident", inc.ID)
	}
	current.Status = inc.Status
	current.VerifiedBy = cloneRef(inc.VerifiedBy)
	current.VerifiedAt = cloneTime(inc.VerifiedAt)
	current.UpdatedAt = inc.UpdatedAt
	return nil
}

// IncidentCache - кеш инцидентов в памяти, без срока жизни
type IncidentCache struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.Incident
}

func NewIncidentCache() *IncidentCache {
	return &IncidentCache{items: make(map[uuid.UUID]*models.Incident)}
}

func (c *IncidentCache) GetIncidentFromCache(_ context.Context, id uuid.UUID) (*models.Incident, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	inc, ok := c.items[id]
	if !ok {
		return nil, nil
	}
	return cloneIncident(inc), nil
}

func (c *IncidentCache) SetIncidentCache(_ context.Context, inc *models.Incident) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[inc.ID] = cloneIncident(inc)
	return nil
}

func (c *IncidentCache) InvalidateIncidentCache(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	return nil
}

// --- help requests ---

type requestRepo struct{ s *Store }

func (r requestRepo) Create(_ context.Context, req *models.HelpRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[req.ID]; ok {
		return fmt.Errorf("help request %s already exists", req.ID)
	}
	req.Version = 1
	r.s.requests[req.ID] = cloneRequest(req)
	return nil
}

func (r requestRepo) GetByID(_ context.Context, id uuid.UUID) (*models.HelpRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, notFound("help request", id)
	}
	return cloneRequest(req), nil
}

func (r requestRepo) List(_ context.Context, caller models.Caller, filter query.RequestFilter) ([]*models.HelpRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.HelpRequest, 0)
	for _, req := range r.s.requests {
		if query.MatchRequest(caller, filter, req) {
			out = append(out, cloneRequest(req))
		}
	}
	newestFirst(out, func(r *models.HelpRequest) time.Time { return r.CreatedAt })
	return out, nil
}

// ListAvailable отдает всех кандидатов; радиус применяет query.Nearby
func (r requestRepo) ListAvailable(_ context.Context, _ query.Geofence) ([]*models.HelpRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.HelpRequest, 0)
	for _, req := range r.s.requests {
		if query.Available(req) {
			out = append(out, cloneRequest(req))
		}
	}
	newestFirst(out, func(r *models.HelpRequest) time.Time { return r.CreatedAt })
	return out, nil
}

func (r requestRepo) Claim(_ context.Context, id uuid.UUID, volunteer models.UserRef, at time.Time) (*models.HelpRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, notFound("help request", id)
	}
	if req.Status == models.RequestCancelled {
		return nil, fmt.Errorf("help request %s is cancelled: %w", id, models.ErrInvalidState)
	}
	if req.Status != models.RequestPending || !req.Unclaimed() {
		return nil, fmt.Errorf("help request %s already claimed: %w", id, models.ErrConflict)
	}
	req.Status = models.RequestClaimed
	req.ClaimedBy = &models.UserRef{ID: volunteer.ID}
	req.UpdatedAt = at
	req.Version++
	return cloneRequest(req), nil
}

func (r requestRepo) Update(_ context.Context, req *models.HelpRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.requests[req.ID]
	if !ok {
		return notFound("help request", req.ID)
	}
	if current.Version != req.Version {
		return conflict("help request", req.ID)
	}
	next := cloneRequest(req)
	next.Notes = current.Notes
	next.CreatedAt = current.CreatedAt
	next.Version++
	r.s.requests[req.ID] = next
	req.Version = next.Version
	return nil
}

func (r requestRepo) AddNote(_ context.Context, id uuid.UUID, note models.Note) (*models.HelpRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, notFound("help request", id)
	}
	note.AddedBy = models.UserRef{ID: note.AddedBy.ID}
	req.Notes = append(req.Notes, note)
	req.UpdatedAt = note.AddedAt
	req.Version++
	return cloneRequest(req), nil
}

func (r requestRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[id]; !ok {
		return notFound("help request", id)
	}
	delete(r.s.requests, id)
	return nil
}

// --- volunteer profiles ---

type volunteerRepo struct{ s *Store }

func (r volunteerRepo) GetByID(_ context.Context, id uuid.UUID) (*models.VolunteerProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.volunteers[id]
	if !ok {
		return nil, notFound("volunteer profile", id)
	}
	return cloneProfile(p), nil
}

func (r volunteerRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*models.VolunteerProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.volunteers {
		if p.UserID == userID {
			return cloneProfile(p), nil
		}
	}
	return nil, notFound("volunteer profile for user", userID)
}

func (r volunteerRepo) List(_ context.Context, filter query.VolunteerFilter) ([]*models.VolunteerProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.VolunteerProfile, 0)
	for _, p := range r.s.volunteers {
		if query.MatchVolunteer(filter, p) {
			out = append(out, cloneProfile(p))
		}
	}
	newestFirst(out, func(p *models.VolunteerProfile) time.Time { return p.CreatedAt })
	return out, nil
}

func (r volunteerRepo) Update(_ context.Context, p *models.VolunteerProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.volunteers[p.ID]
	if !ok {
		return notFound("volunteer profile", p.ID)
	}
	current.Skills = append([]string(nil), p.Skills...)
	current.Bio = p.Bio
	current.Availability = p.Availability
	current.ApplicationStatus = p.ApplicationStatus
	current.UpdatedAt = p.UpdatedAt
	return nil
}

func (r volunteerRepo) SetTaskStatus(_ context.Context, id uuid.UUID, from, to models.VolunteerTaskStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.volunteers[id]
	if !ok {
		return notFound("volunteer profile", id)
	}
	if p.TaskStatus != from {
		return conflict("volunteer profile", id)
	}
	p.TaskStatus = to
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// --- tasks ---

type taskRepo struct{ s *Store }

func (r taskRepo) Assign(_ context.Context, task *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.volunteers[task.VolunteerID]
	if !ok {
		return notFound("volunteer profile", task.VolunteerID)
	}
	if _, ok := r.s.tasks[task.ID]; ok {
		return fmt.Errorf("task %s already exists", task.ID)
	}
	r.s.tasks[task.ID] = cloneTask(task)
	p.TaskStatus = lifecycle.ProjectTaskStatus(task.Status)
	p.UpdatedAt = task.UpdatedAt
	return nil
}

func (r taskRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, notFound("task", id)
	}
	return r.withIncident(t), nil
}

func (r taskRepo) List(_ context.Context, filter query.TaskFilter) ([]*models.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.Task, 0)
	for _, t := range r.s.tasks {
		if query.MatchTask(filter, t) {
			out = append(out, r.withIncident(t))
		}
	}
	newestFirst(out, func(t *models.Task) time.Time { return t.AssignedAt })
	return out, nil
}

// withIncident - копия задачи со свежей сводкой инцидента; вызывать под мьютексом
func (r taskRepo) withIncident(t *models.Task) *models.Task {
	out := cloneTask(t)
	out.Incident = nil
	if t.IncidentID != nil {
		if inc, ok := r.s.incidents[*t.IncidentID]; ok {
			out.Incident = inc.Summary()
		}
	}
	return out
}

func (r taskRepo) Transition(_ context.Context, task *models.Task, from models.TaskStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.tasks[task.ID]
	if !ok {
		return notFound("task", task.ID)
	}
	if current.Status != from {
		return conflict("task", task.ID)
	}
	current.Status = task.Status
	current.AcceptedAt = cloneTime(task.AcceptedAt)
	current.CompletedAt = cloneTime(task.CompletedAt)
	current.UpdatedAt = task.UpdatedAt

	for _, other := range r.s.tasks {
		if other.VolunteerID == current.VolunteerID && other.AssignedAt.After(current.AssignedAt) {
			return nil
		}
	}
	if p, ok := r.s.volunteers[current.VolunteerID]; ok {
		p.TaskStatus = lifecycle.ProjectTaskStatus(current.Status)
		p.UpdatedAt = task.UpdatedAt
	}
	return nil
}

func (r taskRepo) LatestStatusByVolunteer(_ context.Context) (map[uuid.UUID]models.TaskStatus, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	latest := make(map[uuid.UUID]*models.Task)
	for _, t := range r.s.tasks {
		if cur, ok := latest[t.VolunteerID]; !ok || t.AssignedAt.After(cur.AssignedAt) {
			latest[t.VolunteerID] = t
		}
	}
	out := make(map[uuid.UUID]models.TaskStatus, len(latest))
	for id, t := range latest {
		out[id] = t.Status
	}
	return out, nil
}

// ForceTaskStatus перезаписывает проекцию профиля в обход транзакции.
// Нужна, чтобы воспроизвести расхождение, которое исправляет сверка.
func (s *Store) ForceTaskStatus(profileID uuid.UUID, status models.VolunteerTaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.volunteers[profileID]; ok {
		p.TaskStatus = status
	}
}

// --- alerts ---

type alertRepo struct{ s *Store }

func (r alertRepo) Create(_ context.Context, a *models.Alert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *a
	r.s.alerts[a.ID] = &cp
	return nil
}

func (r alertRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Alert, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.alerts[id]
	if !ok {
		return nil, notFound("alert", id)
	}
	cp := *a
	return &cp, nil
}

func (r alertRepo) List(_ context.Context, filter query.AlertFilter) ([]*models.Alert, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.Alert, 0)
	for _, a := range r.s.alerts {
		if query.MatchAlert(filter, a) {
			cp := *a
			out = append(out, &cp)
		}
	}
	newestFirst(out, func(a *models.Alert) time.Time { return a.CreatedAt })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r alertRepo) Update(_ context.Context, a *models.Alert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.alerts[a.ID]; !ok {
		return notFound("alert", a.ID)
	}
	cp := *a
	r.s.alerts[a.ID] = &cp
	return nil
}

func (r alertRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.alerts[id]
	if !ok {
		return notFound("alert", id)
	}
	a.IsActive = false
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// --- resources ---

type resourceRepo struct{ s *Store }

func (r resourceRepo) Create(_ context.Context, res *models.Resource) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.resources[res.ID] = cloneResource(res)
	return nil
}

func (r resourceRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Resource, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	res, ok := r.s.resources[id]
	if !ok {
		return nil, notFound("resource", id)
	}
	return cloneResource(res), nil
}

func (r resourceRepo) List(_ context.Context, filter query.ResourceFilter) ([]*models.Resource, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*models.Resource, 0)
	for _, res := range r.s.resources {
		if query.MatchResource(filter, res) {
			out = append(out, cloneResource(res))
		}
	}
	newestFirst(out, func(r *models.Resource) time.Time { return r.CreatedAt })
	return out, nil
}

func (r resourceRepo) Update(_ context.Context, res *models.Resource) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.resources[res.ID]; !ok {
		return notFound("resource", res.ID)
	}
	r.s.resources[res.ID] = cloneResource(res)
	return nil
}

func (r resourceRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.resources[id]
	if !ok {
		return notFound("resource", id)
	}
	res.IsActive = false
	res.UpdatedAt = time.Now().UTC()
	return nil
}
