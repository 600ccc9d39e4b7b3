package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/metrics"
	"github.com/shenikar/crisis_connect/internal/models"
	"github.com/shenikar/crisis_connect/internal/query"
	"github.com/shenikar/crisis_connect/internal/realtime"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=volunteer.go -destination=mocks/volunteer_mocks.go -package=mocks

// VolunteerRepository - хранилище профилей волонтеров
type VolunteerRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.VolunteerProfile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.VolunteerProfile, error)
	List(ctx context.Context, filter query.VolunteerFilter) ([]*models.VolunteerProfile, error)
	// Update записывает skills, bio, availability и applicationStatus; taskStatus не трогает
	Update(ctx context.Context, profile *models.VolunteerProfile) error
	// SetTaskStatus - условная запись проекции taskStatus: ErrConflict, если текущее значение не from
	SetTaskStatus(ctx context.Context, id uuid.UUID, from, to models.VolunteerTaskStatus) error
}

// VolunteerService - операции над профилями волонтеров
type VolunteerService interface {
	GetVolunteerProfile(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.VolunteerProfile, error)
	GetVolunteerProfileByUser(ctx context.Context, caller models.Caller, userID uuid.UUID) (*models.VolunteerProfile, error)
	ListVolunteerProfiles(ctx context.Context, caller models.Caller, filter query.VolunteerFilter) ([]*models.VolunteerProfile, error)
	// ListVolunteerUsers - учетные записи с ролью volunteer, только для администратора
	ListVolunteerUsers(ctx context.Context, caller models.Caller) ([]*models.User, error)
	UpdateApplicationStatus(ctx context.Context, caller models.Caller, id uuid.UUID, status models.ApplicationStatus) (*models.VolunteerProfile, error)
	UpdateSkills(ctx context.Context, caller models.Caller, id uuid.UUID, skills []string) (*models.VolunteerProfile, error)
	UpdateVolunteerProfile(ctx context.Context, caller models.Caller, id uuid.UUID, patch models.VolunteerPatch) (*models.VolunteerProfile, error)
	ListSkills(ctx context.Context, caller models.Caller) ([]string, error)
	ListVolunteersBySkill(ctx context.Context, caller models.Caller, skill string) ([]*models.VolunteerProfile, error)
	// CanJoin проверяет вход сессии в комнату realtime
	CanJoin(ctx context.Context, caller models.Caller, room string) error
}

type volunteerService struct {
	repo     VolunteerRepository
	users    UserRepository
	populate populator
	metrics  *metrics.Metrics
	logger   *logrus.Logger
	now      Clock
}

func NewVolunteerService(repo VolunteerRepository, users UserRepository, m *metrics.Metrics, logger *logrus.Logger) VolunteerService {
	return &volunteerService{
		repo:     repo,
		users:    users,
		populate: populator{users: users},
		metrics:  m,
		logger:   logger,
		now:      utcNow,
	}
}

func (s *volunteerService) GetVolunteerProfile(ctx context.Context, caller models.Caller, id uuid.UUID) (*models.VolunteerProfile, error) {
	profile, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get volunteer profile: %w", err)
	}
	return s.visible(ctx, caller, profile)
}

func (s *volunteerService) GetVolunteerProfileByUser(ctx context.Context, caller models.Caller, userID uuid.UUID) (*models.VolunteerProfile, error) {
	if !caller.IsAdmin() && caller.ID != userID {
		return nil, models.ErrForbidden
	}
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: could not get volunteer profile: %w", err)
	}
	return s.visible(ctx, caller, profile)
}

// visible: администратор видит любой профиль, волонтер только свой
func (s *volunteerService) visible(ctx context.Context, caller models.Caller, profile *models.VolunteerProfile) (*models.VolunteerProfile, error) {
	if !caller.IsAdmin() && profile.UserID != caller.ID {
		return nil, models.ErrForbidden
	}
	s.populateProfiles(ctx, profile)
	return profile, nil
}

func (s *volunteerService) ListVolunteerProfiles(ctx context.Context, caller models.Caller, filter query.VolunteerFilter) ([]*models.VolunteerProfile, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "volunteer",
		"method":  "ListVolunteerProfiles",
	})
	if !caller.IsAdmin() {
		return nil, models.ErrForbidden
	}
	profiles, err := s.repo.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list volunteer profiles")
		return nil, fmt.Errorf("service: could not list volunteer profiles: %w", err)
	}
	s.populateProfiles(ctx, profiles...)
	log.WithField("count", len(profiles)).Info("Volunteer profiles listed successfully")
	return profiles, nil
}

func (s *volunteerService) ListVolunteerUsers(ctx context.Context, caller models.Caller) ([]*models.User, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "volunteer",
		"method":  "ListVolunteerUsers",
	})
	if !caller.IsAdmin() {
		return nil, models.ErrForbidden
	}
	users, err := s.users.ListByRole(ctx, models.RoleVolunteer)
	if err != nil {
		log.WithError(err).Error("Failed to list volunteer users")
		return nil, fmt.Errorf("service: could not list volunteers: %w", err)
	}
	log.WithField("count", len(users)).Info("Volunteer users listed successfully")
	return users, nil
}

// UpdateApplicationStatus - решение администратора по заявке волонтера
func (s *volunteerService) UpdateApplicationStatus(ctx context.Context, caller models.Caller, id uuid.UUID, status models.ApplicationStatus) (*models.VolunteerProfile, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "volunteer",
		"method":     "UpdateApplicationStatus",
		"profile_id": id,
		"status":     status.String(),
	})
	log.Info("Attempting to update application status")

	if !caller.IsAdmin() {
		s.metrics.Transition("volunteer", "application_status", models.ErrForbidden)
		return nil, models.ErrForbidden
	}
	if !status.Valid() {
		verr := &models.ValidationError{}
		verr.Add("application_status", "oneof", "application_status must be 0, 1 or 2")
		s.metrics.Transition("volunteer", "application_status", verr)
		return nil, verr
	}

	profile, err := s.update(ctx, id, func(p *models.VolunteerProfile) {
		p.ApplicationStatus = status
	})
	s.metrics.Transition("volunteer", "application_status", err)
	if err != nil {
		log.WithError(err).Warn("Failed to update application status")
		return nil, err
	}
	log.Info("Application status updated successfully")
	return profile, nil
}

// UpdateSkills заменяет набор навыков; пустые после trim отбрасываются
func (s *volunteerService) UpdateSkills(ctx context.Context, caller models.Caller, id uuid.UUID, skills []string) (*models.VolunteerProfile, error) {
	if !caller.IsAdmin() {
		return nil, models.ErrForbidden
	}
	profile, err := s.update(ctx, id, func(p *models.VolunteerProfile) {
		p.Skills = normalizeSkills(skills)
	})
	if err != nil {
		s.logger.WithError(err).WithField("profile_id", id).Warn("Failed to update skills")
		return nil, err
	}
	return profile, nil
}

// UpdateVolunteerProfile - правка профиля владельцем или администратором
func (s *volunteerService) UpdateVolunteerProfile(ctx context.Context, caller models.Caller, id uuid.UUID, patch models.VolunteerPatch) (*models.VolunteerProfile, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":    "volunteer",
		"method":     "UpdateVolunteerProfile",
		"profile_id": id,
	})

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get volunteer profile: %w", err)
	}
	if !caller.IsAdmin() && current.UserID != caller.ID {
		return nil, models.ErrForbidden
	}

	if patch.Skills != nil {
		current.Skills = normalizeSkills(patch.Skills)
	}
	if patch.Bio != nil {
		current.Bio = strings.TrimSpace(*patch.Bio)
	}
	if patch.Availability != nil {
		current.Availability = *patch.Availability
	}
	current.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, current); err != nil {
		log.WithError(err).Error("Failed to update volunteer profile in repository")
		return nil, fmt.Errorf("service: could not update volunteer profile: %w", err)
	}
	s.populateProfiles(ctx, current)
	log.Info("Volunteer profile updated successfully")
	return current, nil
}

func (s *volunteerService) update(ctx context.Context, id uuid.UUID, apply func(*models.VolunteerProfile)) (*models.VolunteerProfile, error) {
	profile, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: could not get volunteer profile: %w", err)
	}
	apply(profile)
	profile.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("service: could not update volunteer profile: %w", err)
	}
	s.populateProfiles(ctx, profile)
	return profile, nil
}

// ListSkills - различные навыки принятых волонтеров, по алфавиту
func (s *volunteerService) ListSkills(ctx context.Context, caller models.Caller) ([]string, error) {
	if !caller.IsAdmin() {
		return nil, models.ErrForbidden
	}
	accepted := models.ApplicationAccepted
	profiles, err := s.repo.List(ctx, query.VolunteerFilter{ApplicationStatus: &accepted})
	if err != nil {
		return nil, fmt.Errorf("service: could not list skills: %w", err)
	}
	seen := make(map[string]struct{})
	skills := make([]string, 0)
	for _, p := range profiles {
		for _, skill := range normalizeSkills(p.Skills) {
			if _, ok := seen[skill]; ok {
				continue
			}
			seen[skill] = struct{}{}
			skills = append(skills, skill)
		}
	}
	sort.Strings(skills)
	return skills, nil
}

// ListVolunteersBySkill - принятые волонтеры с навыком, без учета регистра
func (s *volunteerService) ListVolunteersBySkill(ctx context.Context, caller models.Caller, skill string) ([]*models.VolunteerProfile, error) {
	if !caller.IsAdmin() {
		return nil, models.ErrForbidden
	}
	skill = strings.TrimSpace(skill)
	if skill == "" {
		verr := &models.ValidationError{}
		verr.Add("skill", "required", "skill is required")
		return nil, verr
	}
	accepted := models.ApplicationAccepted
	profiles, err := s.repo.List(ctx, query.VolunteerFilter{ApplicationStatus: &accepted, Skill: skill})
	if err != nil {
		return nil, fmt.Errorf("service: could not list volunteers by skill: %w", err)
	}
	s.populateProfiles(ctx, profiles...)
	return profiles, nil
}

// CanJoin: в volunteers входят волонтеры и администраторы,
// в volunteer-<id> только администратор или владелец профиля
func (s *volunteerService) CanJoin(ctx context.Context, caller models.Caller, room string) error {
	if caller.IsAdmin() {
		return nil
	}
	if room == realtime.RoomVolunteers {
		if caller.IsVolunteer() {
			return nil
		}
		return realtime.ErrRoomDenied
	}
	profileID, ok := realtime.ParseVolunteerRoom(room)
	if !ok || !caller.IsVolunteer() {
		return realtime.ErrRoomDenied
	}
	profile, err := s.repo.GetByID(ctx, profileID)
	if err != nil || profile.UserID != caller.ID {
		return realtime.ErrRoomDenied
	}
	return nil
}

func (s *volunteerService) populateProfiles(ctx context.Context, profiles ...*models.VolunteerProfile) {
	refs := make([]*models.UserRef, 0, len(profiles))
	for _, p := range profiles {
		p.User = &models.UserRef{ID: p.UserID}
		refs = append(refs, p.User)
	}
	if err := s.populate.refs(ctx, refs...); err != nil {
		s.logger.WithError(err).Warn("Failed to populate volunteer profiles")
	}
}

func normalizeSkills(in []string) []string {
	out := make([]string, 0, len(in))
	for _, skill := range in {
		if skill = strings.TrimSpace(skill); skill != "" {
			out = append(out, skill)
		}
	}
	return out
}
