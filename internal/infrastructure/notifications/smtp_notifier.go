package notifications

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"leadrouter.backend/internal/config"
	"leadrouter.backend/internal/domain/gateways"
)

// SMTPNotifier delivers templated HTML email over SMTP
type SMTPNotifier struct {
	cfg     config.SMTPConfig
	deliver func(ctx context.Context, msg *gomail.Msg) error
}

// NewSMTPNotifier creates a notifier for the configured SMTP server.
func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	n := &SMTPNotifier{cfg: cfg}
	n.deliver = n.dialAndSend
	return n
}

func (n *SMTPNotifier) Send(ctx context.Context, notification gateways.Notification) error {
	msg, err := n.buildMessage(notification)
	if err != nil {
		return err
	}
	return n.deliver(ctx, msg)
}

func (n *SMTPNotifier) buildMessage(notification gateways.Notification) (*gomail.Msg, error) {
	content, err := renderTemplate(notification.Template, notification.Data)
	if err != nil {
		return nil, err
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(n.cfg.FromName, n.cfg.FromEmail); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if notification.ToName != "" {
		err = msg.AddToFormat(notification.ToName, notification.To)
	} else {
		err = msg.To(notification.To)
	}
	if err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subjectFor(notification))
	msg.SetBodyString(gomail.TypeTextHTML, content)
	return msg, nil
}

func (n *SMTPNotifier) dialAndSend(ctx context.Context, msg *gomail.Msg) error {
	opts := []gomail.Option{
		gomail.WithPort(n.cfg.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
	}
	if n.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(n.cfg.Username),
			gomail.WithPassword(n.cfg.Password),
		)
	}

	client, err := gomail.NewClient(n.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
