// Package notify surfaces terminally failed jobs to an operator. Terminal
// jobs require manual intervention; nothing in the pipeline will retry them.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FUFU222/LIVAPON-FullfillmentSystem-sub001/internal/domain"
	"github.com/resend/resend-go/v2"
)

type Notifier interface {
	TerminalFailure(ctx context.Context, job *domain.Job, cause string)
}

// LogNotifier only logs — used in ENV=local or when no alert address is
// configured.
type LogNotifier struct {
	logger *slog.Logger
}

func (n *LogNotifier) TerminalFailure(_ context.Context, job *domain.Job, cause string) {
	n.logger.Warn("terminal job failure (alerting disabled)",
		"job_id", job.ID, "kind", job.Kind, "attempts", job.Attempts+1, "error", cause)
}

// ResendNotifier emails the operator via the Resend API.
type ResendNotifier struct {
	client *resend.Client
	from   string
	to     string
	logger *slog.Logger
}

func (n *ResendNotifier) TerminalFailure(ctx context.Context, job *domain.Job, cause string) {
	subject := fmt.Sprintf("[fulfillment] job %s failed permanently", job.ID)
	body := fmt.Sprintf(
		`<p>Job <code>%s</code> (kind <code>%s</code>) exhausted its retry budget after %d attempts.</p><p>Last error:</p><pre>%s</pre>`,
		job.ID, job.Kind, job.Attempts+1, cause,
	)

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.to},
		Subject: subject,
		Html:    body,
	}
	if _, err := n.client.Emails.SendWithContext(ctx, params); err != nil {
		// Alert delivery must never turn into a pipeline failure.
		n.logger.Error("send terminal-failure alert", "job_id", job.ID, "error", err)
	}
}

// NewNotifier returns a LogNotifier for ENV=local or incomplete Resend
// settings, a ResendNotifier otherwise.
func NewNotifier(env, apiKey, from, to string, logger *slog.Logger) Notifier {
	if env == "local" || apiKey == "" || from == "" || to == "" {
		return &LogNotifier{logger: logger}
	}
	return &ResendNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
		logger: logger,
	}
}
