package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPConfig - параметры почтового сервера
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPSender отправляет письма через SMTP. При нескольких получателях
// адреса уходят в Bcc, чтобы волонтеры не видели адреса друг друга.
type SMTPSender struct {
	from string
	send func(ctx context.Context, msg *mail.Msg) error
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return &SMTPSender{
		from: cfg.From,
		send: func(ctx context.Context, msg *mail.Msg) error {
			return client.DialAndSendWithContext(ctx, msg)
		},
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, job Job) error {
	if len(job.To) == 0 {
		return nil
	}
	msg, err := buildMessage(s.from, job)
	if err != nil {
		return err
	}
	if err := s.send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// buildMessage собирает письмо; заголовки кодируются по RFC 2047
func buildMessage(from string, job Job) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", from, err)
	}
	if len(job.To) == 1 {
		if err := msg.To(job.To[0]); err != nil {
			return nil, fmt.Errorf("invalid recipient address: %w", err)
		}
	} else {
		if err := msg.To(from); err != nil {
			return nil, fmt.Errorf("invalid sender address %q: %w", from, err)
		}
		if err := msg.Bcc(job.To...); err != nil {
			return nil, fmt.Errorf("invalid recipient address: %w", err)
		}
	}
	msg.Subject(job.Subject)
	msg.SetBodyString(mail.TypeTextPlain, job.Body)
	return msg, nil
}
