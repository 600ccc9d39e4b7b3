package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/crisis_connect/internal/lifecycle"
	"github.com/shenikar/crisis_connect/internal/models"
)

//go:generate mockgen -source=service.go -destination=mocks/service_mocks.go -package=mocks

// Dispatcher раздает зафиксированные изменения подключенным клиентам
type Dispatcher interface {
	Dispatch(ctx context.Context, change lifecycle.Change, payload any)
}

// Notifier - побочный канал уведомлений. Ошибки только логируются.
type Notifier interface {
	NotifyIncidentVerified(ctx context.Context, recipients []string, inc *models.Incident) error
	NotifyRequestClaimed(ctx context.Context, civilian, volunteer models.UserRef, req *models.HelpRequest) error
	NotifyAdminsSMSReport(ctx context.Context, phones []string, inc *models.Incident) error
}

// UserRepository - чтение учетных записей для populate
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error)
	// ListByRole - учетные записи роли по имени
	ListByRole(ctx context.Context, role models.Role) ([]*models.User, error)
}

// Clock возвращает текущее время; подменяется в тестах
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }
