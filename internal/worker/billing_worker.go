package worker

// billing_worker.go
// Pushes link lifecycle events to the billing system. The push is advisory —
// billing reads rates from cost_snapshots — so after the retry budget is
// spent the job is dropped with a log line, not dead-lettered.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ctoutbank/portal-outbank-sub005/internal/infra"
)

const billingMaxAttempts = 3

// BillingSyncJob is the job envelope sent to QueueBillingSync.
type BillingSyncJob struct {
	LinkID string `json:"link_id"`
	IsoID  string `json:"iso_id"`
	Status string `json:"status"`
}

type BillingWorker struct {
	client *infra.BillingClient
}

func NewBillingWorker(client *infra.BillingClient) *BillingWorker {
	return &BillingWorker{client: client}
}

// Process posts the event with in-worker retries and backoff.
func (w *BillingWorker) Process(ctx context.Context, raw json.RawMessage) {
	var job BillingSyncJob
	if err := json.Unmarshal(raw, &job); err != nil {
		log.Error().Err(err).Msg("billing_worker: invalid payload")
		return
	}
	if !w.client.Enabled() {
		return
	}

	payload := infra.BillingSyncPayload{LinkID: job.LinkID, IsoID: job.IsoID, Status: job.Status}
	var err error
	for attempt := 1; attempt <= billingMaxAttempts; attempt++ {
		if err = w.client.Sync(ctx, payload); err == nil {
			log.Info().Str("link_id", job.LinkID).Str("status", job.Status).Msg("billing_worker: synced")
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * 2 * time.Second):
		}
	}
	log.Error().Err(err).Str("link_id", job.LinkID).Msg("billing_worker: giving up after retries")
}
