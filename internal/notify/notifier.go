// Package notify delivers request lifecycle events to the external
// messaging/notification pipeline. Delivery is best-effort by contract: the
// booking transition that produced an event has already committed, and a
// delivery failure must never surface as a transition failure.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/horseshare/backend/internal/domain"
)

// Notifier publishes a request lifecycle event. Implementations must be safe
// for concurrent use; the service layer calls Publish from a goroutine.
type Notifier interface {
	Publish(ctx context.Context, event domain.RequestEvent) error
}

// WebhookNotifier POSTs each event as JSON to a configured endpoint, with a
// short fibonacci backoff for transient failures. The pipeline behind the
// webhook is expected to be idempotent on request_id + status.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier constructs a WebhookNotifier for the given endpoint URL.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Publish delivers the event, retrying transient failures for a few seconds.
// 4xx responses are not retried — resending the same payload will not help.
func (n *WebhookNotifier) Publish(ctx context.Context, event domain.RequestEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify.WebhookNotifier.Publish: marshal: %w", err)
	}

	backoff := retry.WithMaxDuration(15*time.Second, retry.NewFibonacci(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode < 300:
			return nil
		case resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("webhook returned %d", resp.StatusCode))
		default:
			return fmt.Errorf("webhook returned %d", resp.StatusCode)
		}
	})
	if err != nil {
		return fmt.Errorf("notify.WebhookNotifier.Publish: %w", err)
	}
	return nil
}

// Nop is a Notifier that discards every event. Used when no webhook is
// configured and as the default in tests.
type Nop struct{}

func (Nop) Publish(context.Context, domain.RequestEvent) error { return nil }
