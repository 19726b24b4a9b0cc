// Package notify delivers user-facing notifications such as the welcome
// e-mail sent after a first-time bootstrap.
package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/logging"
	"github.com/resend/resend-go/v2"
)

// Notifier sends the welcome message to a newly onboarded user.
type Notifier interface {
	SendWelcome(ctx context.Context, email, name string) error
}

// New returns a Resend-backed notifier, or a log-only one when apiKey is empty.
func New(apiKey, from string, logger logging.Logger) Notifier {
	if apiKey == "" {
		return NewLogNotifier(logger)
	}
	return NewResendNotifier(apiKey, from, logger)
}

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendNotifier sends e-mail through the Resend API.
type ResendNotifier struct {
	emails emailSender
	from   string
	logger logging.Logger
}

func NewResendNotifier(apiKey, from string, logger logging.Logger) *ResendNotifier {
	client := resend.NewClient(apiKey)
	return &ResendNotifier{emails: client.Emails, from: from, logger: logger.With("module", "notify")}
}

func (n *ResendNotifier) SendWelcome(ctx context.Context, email, name string) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{email},
		Subject: "Welcome to TaskFlow AI",
		Html:    welcomeHTML(name),
	}

	sent, err := n.emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	n.logger.Info(ctx, "welcome email sent", "id", sent.Id)
	return nil
}

func welcomeHTML(name string) string {
	return fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
			<h2 style="color: #14b8a6;">Welcome to TaskFlow AI, %s!</h2>
			<p>Your workspace is ready. We added six short tutorial tasks to your dashboard to show you around.</p>
			<p style="color: #888; font-size: 14px;">You can restart the tutorial at any time from the settings page.</p>
		</div>
	`, html.EscapeString(name))
}

// LogNotifier writes the notification to the log instead of sending it.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("module", "notify")}
}

func (n *LogNotifier) SendWelcome(ctx context.Context, email, name string) error {
	n.logger.Info(ctx, "welcome email skipped, RESEND_API_KEY not set", "to", email, "name", name)
	return nil
}
