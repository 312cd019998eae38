package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/models"
	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// IdempotencyHeader carries the snapshot id so the receiving service can
// drop retried duplicates
const IdempotencyHeader = "Idempotency-Key"

// HTTPConfig configures an HTTPClient
type HTTPConfig struct {
	OrderURL       string
	ReservationURL string
	Timeout        time.Duration // per attempt
	MaxRetries     uint          // attempts after the first; zero disables retrying
	InitialBackoff time.Duration
}

// StatusError is returned when the service answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.StatusCode, e.Body)
}

// HTTPClient posts snapshots as JSON to the order and reservation services.
// Transport errors and 5xx responses are retried with exponential backoff;
// 4xx responses are final.
type HTTPClient struct {
	cfg    HTTPConfig
	client *http.Client
	log    *slog.Logger
}

// NewHTTPClient creates a client with an instrumented transport
func NewHTTPClient(cfg HTTPConfig, log *slog.Logger) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}

	return &HTTPClient{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
}

// SubmitOrder posts the order snapshot to the order service
func (c *HTTPClient) SubmitOrder(ctx context.Context, order models.OrderSnapshot) error {
	return c.post(ctx, c.cfg.OrderURL, order.ID, order)
}

// SubmitReservation posts the reservation request to the reservation service
func (c *HTTPClient) SubmitReservation(ctx context.Context, req models.ReservationRequest) error {
	return c.post(ctx, c.cfg.ReservationURL, req.ID, req)
}

func (c *HTTPClient) post(ctx context.Context, url, key string, payload interface{}) error {
	if url == "" {
		return fmt.Errorf("no service URL configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.InitialBackoff

	attempt := 0
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		return struct{}{}, c.send(ctx, url, key, body)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.cfg.MaxRetries+1),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.log.Warn("submission attempt failed, retrying",
				"url", url,
				"idempotency_key", key,
				"attempt", attempt,
				"retry_in", next.String(),
				"error", err,
			)
		}),
	)
	return err
}

func (c *HTTPClient) send(ctx context.Context, url, key string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(IdempotencyHeader, key)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return statusErr
	}
	return backoff.Permanent(statusErr)
}
