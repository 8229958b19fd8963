package worker

// notification_worker.go
// Processes notification jobs from QueueNotification: status-transition
// notices to the ISO contact and plain emails (password resets).

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ctoutbank/portal-outbank-sub005/internal/infra"
)

// TransitionNotice tells the ISO contact that a link changed status.
type TransitionNotice struct {
	LinkID         string `json:"link_id"`
	IsoName        string `json:"iso_name"`
	ContactEmail   string `json:"contact_email"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	Reason         string `json:"reason,omitempty"`
}

// MailJob is a plain email envelope.
type MailJob struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type NotificationWorker struct {
	mailer *infra.Mailer
}

func NewNotificationWorker(mailer *infra.Mailer) *NotificationWorker {
	return &NotificationWorker{mailer: mailer}
}

// ProcessNotice emails the ISO contact about a status transition.
func (w *NotificationWorker) ProcessNotice(_ context.Context, raw json.RawMessage) {
	var notice TransitionNotice
	if err := json.Unmarshal(raw, &notice); err != nil {
		log.Error().Err(err).Msg("notification_worker: invalid notice payload")
		return
	}
	if notice.ContactEmail == "" {
		log.Warn().Str("link_id", notice.LinkID).Msg("notification_worker: ISO has no contact email — skipping")
		return
	}

	subject := fmt.Sprintf("Rate table %s", notice.NewStatus)
	body := fmt.Sprintf("Hello %s,\n\nyour rate table link %s moved from %s to %s.",
		notice.IsoName, notice.LinkID, notice.PreviousStatus, notice.NewStatus)
	if notice.Reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", notice.Reason)
	}

	if err := w.mailer.Send(notice.ContactEmail, subject, body, ""); err != nil {
		log.Error().Err(err).Str("to", notice.ContactEmail).Msg("notification_worker: failed to send notice")
		return
	}
	log.Info().Str("to", notice.ContactEmail).Str("status", notice.NewStatus).Msg("notification_worker: notice sent")
}

// ProcessMail sends a plain email.
func (w *NotificationWorker) ProcessMail(_ context.Context, raw json.RawMessage) {
	var mail MailJob
	if err := json.Unmarshal(raw, &mail); err != nil {
		log.Error().Err(err).Msg("notification_worker: invalid mail payload")
		return
	}
	if mail.ToEmail == "" {
		log.Warn().Msg("notification_worker: empty to_email — skipping")
		return
	}

	if err := w.mailer.Send(mail.ToEmail, mail.Subject, mail.Body, ""); err != nil {
		log.Error().Err(err).Str("to", mail.ToEmail).Msg("notification_worker: failed to send mail")
		return
	}
	log.Info().Str("to", mail.ToEmail).Msg("notification_worker: mail sent")
}
