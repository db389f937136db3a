package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"statuswatch/internal/config"
	"statuswatch/internal/model"
)

// EmailNotifier sends run results as plain-text email over SMTP.
type EmailNotifier struct {
	cfg  config.EmailConfig
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailNotifier creates an SMTP email notifier.
func NewEmailNotifier(cfg config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		cfg:  cfg,
		send: smtp.SendMail,
	}
}

// Name implements Notifier.
func (n *EmailNotifier) Name() string {
	return "email"
}

// Send implements Notifier.
func (n *EmailNotifier) Send(_ context.Context, result *model.RunResult) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPServer, n.cfg.SMTPPort)

	var auth smtp.Auth
	if n.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", n.cfg.SMTPUsername, n.cfg.SMTPPassword, n.cfg.SMTPServer)
	}

	msg := buildEmailMessage(n.cfg.From, n.cfg.To, result)
	if err := n.send(addr, auth, n.cfg.From, n.cfg.To, msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

// buildEmailMessage renders the message headers and a plain-text body
// listing the findings in severity bucket order.
func buildEmailMessage(from string, to []string, result *model.RunResult) []byte {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	sb.WriteString(fmt.Sprintf("Subject: [%s] statuswatch %s check\r\n", result.Level, result.Check))
	sb.WriteString("\r\n")

	sb.WriteString(fmt.Sprintf("Check: %s\n", result.Check))
	sb.WriteString(fmt.Sprintf("Level: %s\n", result.Level))
	sb.WriteString(fmt.Sprintf("Summary: %s\n\n", result.Summary))

	for _, sev := range []model.Severity{model.SeverityCritical, model.SeverityHigh, model.SeverityWarning} {
		findings := result.BySeverity(sev)
		if len(findings) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s (%d):\n", sev, len(findings)))
		for _, f := range findings {
			sb.WriteString(fmt.Sprintf("  - %s\n", f.Reason))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Analyzed: %d\n", result.Analyzed))
	sb.WriteString(fmt.Sprintf("Timestamp: %s\n", result.Timestamp.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString("\n---\nThis is an automated alert from statuswatch.\n")

	return []byte(sb.String())
}
