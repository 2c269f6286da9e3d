package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// =============================================================================
// WebhookNotifier
// =============================================================================

// Webhook delivery defaults.
const (
	DefaultWebhookTimeout = 10 * time.Second
	DefaultWebhookRetries = 2
)

// WebhookNotifier posts events as JSON to an HTTP endpoint.
type WebhookNotifier struct {
	URL     string
	Headers map[string]string
	Client  *http.Client

	// Events limits delivery to the listed types. Empty means all.
	Events []EventType
}

// NewWebhookNotifier creates a webhook notifier. Connection errors and 5xx
// responses are retried DefaultWebhookRetries times with backoff.
func NewWebhookNotifier(url string, headers map[string]string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:     url,
		Headers: headers,
		Client:  retryingClient(DefaultWebhookRetries, 200*time.Millisecond, 2*time.Second),
	}
}

// WithRetry replaces the client with one that makes up to retries extra attempts,
// waiting between waitMin and waitMax.
func (n *WebhookNotifier) WithRetry(retries int, waitMin, waitMax time.Duration) *WebhookNotifier {
	n.Client = retryingClient(retries, waitMin, waitMax)
	return n
}

func retryingClient(retries int, waitMin, waitMax time.Duration) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retries
	rc.RetryWaitMin = waitMin
	rc.RetryWaitMax = waitMax
	rc.Logger = nil
	rc.HTTPClient.Timeout = DefaultWebhookTimeout
	return rc.StandardClient()
}

// Notify implements Notifier.
func (n *WebhookNotifier) Notify(ctx context.Context, event Event) error {
	if !n.wants(event.Type) {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "mlkit-notify")
	for k, v := range n.Headers {
		req.Header.Set(k, v)
	}

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook %s returned %d for %s", n.URL, resp.StatusCode, event.Type)
	}

	return nil
}

func (n *WebhookNotifier) wants(t EventType) bool {
	if len(n.Events) == 0 {
		return true
	}
	for _, e := range n.Events {
		if e == t {
			return true
		}
	}
	return false
}
