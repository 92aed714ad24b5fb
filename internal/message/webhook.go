// internal/message/webhook.go
//
// Outbound webhook delivery.
//
// Context
//   Accepted form payloads leave the service as a JSON POST to an automation
//   webhook.  Any 2xx answer is success and the body is ignored.  Everything
//   else, including a deadline from the caller's context, is an error.  The
//   error text carries the status but never the response body, which could
//   reveal backend configuration.
//
// Notes
//   •  Callers set the deadline; the default client has no timeout of its own.
//   •  Latency and outcome go to metrics.WebhookDuration, labelled by Name.
//
//------------------------------------------------------------------------------

package message

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yanizio/legacyfilm/internal/metrics"
)

// maxDrain caps how much of a response body is read before closing.
const maxDrain = 64 << 10

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("webhook: HTTP %d", e.Code) }

// Webhook posts JSON to URL.  It implements form.Submitter.
type Webhook struct {
	Name   string // Metric label, e.g. "lead".
	URL    string
	Client *http.Client
}

// Submit posts payload as JSON.
func (w *Webhook) Submit(ctx context.Context, payload any) error {
	_, err := w.post(ctx, payload)
	return err
}

// post sends payload and returns up to maxDrain bytes of a 2xx body.
func (w *Webhook) post(ctx context.Context, payload any) (body []byte, err error) {
	if w.URL == "" {
		return nil, fmt.Errorf("webhook %s: no URL configured", w.Name)
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	outcome := "error"
	defer func() {
		metrics.WebhookDuration.WithLabelValues(w.Name, outcome).Observe(time.Since(start).Seconds())
	}()

	resp, err := w.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook %s: %w", w.Name, err)
	}
	defer resp.Body.Close()

	body, _ = io.ReadAll(io.LimitReader(resp.Body, maxDrain))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "rejected"
		return nil, &StatusError{Code: resp.StatusCode}
	}
	outcome = "ok"
	return body, nil
}

func (w *Webhook) client() *http.Client {
	if w.Client != nil {
		return w.Client
	}
	return http.DefaultClient
}
