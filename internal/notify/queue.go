// Package notify - побочный канал уведомлений. Сервисы ставят задания в очередь
// Redis, воркер разбирает их и отправляет по email, SMS и вебхуку.
// Отправка best-effort: сбой канала никогда не откатывает изменение.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/crisis_connect/internal/models"
)

const (
	queueKey = "notification_jobs"
)

type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelSMS     Channel = "sms"
	ChannelWebhook Channel = "webhook"
)

// Job - одно задание на отправку
type Job struct {
	ID        string          `json:"id"`
	Channel   Channel         `json:"channel"`
	Kind      string          `json:"kind"`
	To        []string        `json:"to,omitempty"`
	Subject   string          `json:"subject,omitempty"`
	Body      string          `json:"body,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

const (
	KindIncidentVerified = "incident-verified"
	KindRequestClaimed   = "request-claimed"
	KindSMSReport        = "sms-report"
)

// QueueNotifier ставит задания в очередь Redis
type QueueNotifier struct {
	redisClient    *redis.Client
	timeout        time.Duration
	webhookEnabled bool
}

// NewQueueNotifier создает QueueNotifier. timeout ограничивает постановку в очередь,
// чтобы медленный Redis не задерживал ответ вызывающему.
func NewQueueNotifier(client *redis.Client, timeout time.Duration, webhookEnabled bool) *QueueNotifier {
	return &QueueNotifier{
		redisClient:    client,
		timeout:        timeout,
		webhookEnabled: webhookEnabled,
	}
}

// NotifyIncidentVerified - письмо всем принятым волонтерам о подтвержденном инциденте
func (n *QueueNotifier) NotifyIncidentVerified(ctx context.Context, recipients []string, inc *models.Incident) error {
	jobs := make([]Job, 0, 2)
	if len(recipients) > 0 {
		jobs = append(jobs, Job{
			Channel: ChannelEmail,
			Kind:    KindIncidentVerified,
			To:      recipients,
			Subject: fmt.Sprintf("Verified incident: %s at %s", inc.Type, inc.Location),
			Body: fmt.Sprintf(
				"A new incident has been verified and needs volunteers.\n\nType: %s\nLocation: %s\nSeverity: %d/5\nDescription: %s\n",
				inc.Type, inc.Location, inc.Severity, inc.Description,
			),
		})
	}
	if n.webhookEnabled {
		job, err := webhookJob(KindIncidentVerified, inc)
		if err != nil {
			return &models.NotificationError{Channel: string(ChannelWebhook), Err: err}
		}
		jobs = append(jobs, job)
	}
	return n.enqueue(ctx, jobs...)
}

// NotifyRequestClaimed - письмо гражданину о том, что его заявку взял волонтер
func (n *QueueNotifier) NotifyRequestClaimed(ctx context.Context, civilian, volunteer models.UserRef, req *models.HelpRequest) error {
	jobs := make([]Job, 0, 2)
	if civilian.Email != "" {
		jobs = append(jobs, Job{
			Channel: ChannelEmail,
			Kind:    KindRequestClaimed,
			To:      []string{civilian.Email},
			Subject: fmt.Sprintf("Your request %q has been claimed", req.Title),
			Body: fmt.Sprintf(
				"Hello %s,\n\nVolunteer %s has claimed your help request %q and will contact you soon.\nContact: %s %s\n",
				civilian.Name, volunteer.Name, req.Title, volunteer.Email, volunteer.Phone,
			),
		})
	}
	if n.webhookEnabled {
		job, err := webhookJob(KindRequestClaimed, req)
		if err != nil {
			return &models.NotificationError{Channel: string(ChannelWebhook), Err: err}
		}
		jobs = append(jobs, job)
	}
	return n.enqueue(ctx, jobs...)
}

// NotifyAdminsSMSReport - SMS администраторам о входящем SMS-отчете
func (n *QueueNotifier) NotifyAdminsSMSReport(ctx context.Context, phones []string, inc *models.Incident) error {
	if len(phones) == 0 {
		return nil
	}
	return n.enqueue(ctx, Job{
		Channel: ChannelSMS,
		Kind:    KindSMSReport,
		To:      phones,
		Body:    fmt.Sprintf("New SMS incident: %s at %s. %s", inc.Type, inc.Location, truncate(inc.Description, 100)),
	})
}

func webhookJob(kind string, v any) (Job, error) {
	payload, err := json.Marshal(map[string]any{"event": kind, "data": v})
	if err != nil {
		return Job{}, fmt.Errorf("failed to marshal webhook payload: %w", err)
	}
	return Job{Channel: ChannelWebhook, Kind: kind, Payload: payload}, nil
}

func (n *QueueNotifier) enqueue(ctx context.Context, jobs ...Job) error {
	if len(jobs) == 0 {
		return nil
	}
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	values := make([]any, 0, len(jobs))
	for _, job := range jobs {
		job.ID = uuid.NewString()
		job.CreatedAt = time.Now().UTC()
		payload, err := json.Marshal(job)
		if err != nil {
			return &models.NotificationError{Channel: string(job.Channel), Err: fmt.Errorf("failed to marshal job: %w", err)}
		}
		values = append(values, payload)
	}

	// LPUSH в левую часть, воркер забирает справа
	if err := n.redisClient.LPush(ctx, queueKey, values...).Err(); err != nil {
		channels := make([]string, 0, len(jobs))
		for _, job := range jobs {
			channels = append(channels, string(job.Channel))
		}
		return &models.NotificationError{
			Channel: strings.Join(channels, ","),
			Err:     fmt.Errorf("failed to enqueue notification: %w", err),
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
