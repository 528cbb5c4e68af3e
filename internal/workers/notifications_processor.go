// internal/workers/notifications_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/ammerola/flowershop-pos/internal/core/domain"
)

// MailSender matches smtp.SendMail
type MailSender func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// NotificationConfig addresses stock alerts
type NotificationConfig struct {
	To       string
	From     string
	SMTPHost string
	SMTPPort string
	// DryRun logs messages instead of sending them
	DryRun bool
}

// NotificationProcessor emails staff when stock runs critically low
type NotificationProcessor struct {
	cfg    NotificationConfig
	send   MailSender
	logger *slog.Logger
}

// NewNotificationProcessor creates a new notification processor
func NewNotificationProcessor(cfg NotificationConfig, logger *slog.Logger) *NotificationProcessor {
	return &NotificationProcessor{
		cfg:    cfg,
		send:   smtp.SendMail,
		logger: logger.With(slog.String("processor", "notification")),
	}
}

// WithSender replaces the SMTP transport
func (p *NotificationProcessor) WithSender(send MailSender) *NotificationProcessor {
	p.send = send
	return p
}

// SendLowStockAlert emails the list of products at the critical level
func (p *NotificationProcessor) SendLowStockAlert(ctx context.Context, t *asynq.Task) error {
	var payload LowStockAlertPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	if len(payload.Entries) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Low stock: %d product(s) need restocking", len(payload.Entries))
	body := lowStockBody(payload)

	if p.cfg.To == "" || p.cfg.DryRun {
		p.logger.InfoContext(ctx, "low stock alert not mailed",
			slog.String("subject", subject),
			slog.String("body", body))
		return nil
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		p.cfg.From, p.cfg.To, subject, strings.ReplaceAll(body, "\n", "\r\n"),
	))

	addr := net.JoinHostPort(p.cfg.SMTPHost, p.cfg.SMTPPort)
	if err := p.send(addr, nil, p.cfg.From, []string{p.cfg.To}, msg); err != nil {
		return fmt.Errorf("failed to send low stock alert: %w", err)
	}

	p.logger.InfoContext(ctx, "low stock alert sent",
		slog.String("to", p.cfg.To),
		slog.Int("products", len(payload.Entries)))

	return nil
}

func lowStockBody(payload LowStockAlertPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Detected at %s\n\n", payload.DetectedAt.Format("2006-01-02 15:04:05 MST"))
	for _, e := range payload.Entries {
		if e.Product == nil {
			continue
		}
		status := e.Status
		if status == "" {
			status = domain.StockCritical
		}
		fmt.Fprintf(&b, "[%s] #%d %s: %d left\n", status, e.Product.ID, e.Product.Name, e.Product.StockQuantity)
	}
	return b.String()
}
