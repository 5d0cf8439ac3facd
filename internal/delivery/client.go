// Package delivery sends signed stats snapshots to the analytics desk.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	v1 "github.com/socialdesk-lab/socialdesk/internal/api/v1"
	"github.com/socialdesk-lab/socialdesk/internal/core/signature"
	"github.com/socialdesk-lab/socialdesk/internal/core/window"
)

const (
	// defaultTimeout bounds the outbound POST so a stuck desk cannot stall
	// the reporting scheduler.
	defaultTimeout = 10 * time.Second

	// maxResponseBytes caps how much of an error body we keep for diagnostics.
	maxResponseBytes = 8 * 1024
)

// Result reports the outcome of a single delivery attempt.
// Failed deliveries are not retried here; the next scheduled tick reports a
// fresh window instead.
type Result struct {
	OK         bool
	StatusCode int
	Body       string
	Err        error
}

// Client performs the authenticated webhook POST to the desk's ingestion
// endpoint. One outbound call per Deliver invocation, no retries.
type Client struct {
	httpClient  *http.Client
	endpointURL string
	platformID  string
	secret      string
	bearerToken string
}

// NewClient creates a delivery client for one platform/desk pair.
// timeout <= 0 falls back to the 10s default.
func NewClient(endpointURL, platformID, secret, bearerToken string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		endpointURL: endpointURL,
		platformID:  platformID,
		secret:      secret,
		bearerToken: bearerToken,
	}
}

// Deliver serializes the snapshot, signs the exact bytes going on the wire
// and POSTs them to the desk. Network failures and non-2xx responses come
// back as a failed Result carrying whatever diagnostics are available.
func (c *Client) Deliver(ctx context.Context, w window.Window, totals v1.Totals, topPosts []v1.TopPost) Result {
	payload := v1.StatsPayload{
		Platform:    c.platformID,
		PeriodStart: w.Start,
		PeriodEnd:   w.End,
		Totals:      totals,
		TopKPosts:   topPosts,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Err: fmt.Errorf("failed to marshal stats payload: %w", err)}
	}

	// Sign the marshalled bytes, not a re-serialization: the desk verifies
	// over the exact bytes it receives.
	sig := signature.Sign(body, c.secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL, bytes.NewReader(body))
	if err != nil {
		return Result{Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", sig)
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{Err: fmt.Errorf("failed to deliver stats: %w", err)}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
			Err:        fmt.Errorf("desk rejected stats: status %d", resp.StatusCode),
		}
	}

	return Result{OK: true, StatusCode: resp.StatusCode, Body: string(respBody)}
}
