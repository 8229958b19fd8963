package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// BillingSyncPayload advises the downstream billing system that a link
// entered or left the billable status. Billing reads the actual rates from
// the cost_snapshots table; this call is a wake-up, not the data channel.
type BillingSyncPayload struct {
	LinkID string `json:"link_id"`
	IsoID  string `json:"iso_id"`
	Status string `json:"status"`
}

// BillingClient posts link lifecycle events to the billing system. Calls go
// through a circuit breaker so a billing outage cannot pile up goroutines
// behind a dead endpoint.
type BillingClient struct {
	webhookURL string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewBillingClient(webhookURL string, cb *CircuitBreaker) *BillingClient {
	return &BillingClient{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cb:         cb,
	}
}

// Enabled reports whether a webhook URL is configured. Deployments without a
// billing endpoint simply skip the sync.
func (c *BillingClient) Enabled() bool { return c.webhookURL != "" }

// Sync posts the payload through the circuit breaker.
func (c *BillingClient) Sync(ctx context.Context, payload BillingSyncPayload) error {
	if !c.Enabled() {
		return nil
	}
	return c.cb.Execute(func() error {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("billing: marshal payload: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("billing: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("billing: webhook unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return fmt.Errorf("billing: webhook returned %d", resp.StatusCode)
		}
		return nil
	})
}
