package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/yanizio/legacyfilm/internal/form"
	"github.com/yanizio/legacyfilm/internal/metrics"
)

// maxBody caps request bodies; the largest form is a few hundred bytes.
const maxBody = 64 << 10

// Outcome labels for metrics.SubmissionsTotal.
const (
	outcomeAccepted      = "accepted"
	outcomeInvalid       = "invalid"
	outcomeRateLimited   = "rate_limited"
	outcomeFailed        = "failed"
	outcomeNotConfigured = "not_configured"
	outcomeBusy          = "busy"
	outcomeBadToken      = "bad_token"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Debugw("json write failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps a Controller.Submit result onto an HTTP status.
func statusFor(err error) int {
	var (
		ve *form.ValidationError
		re *form.RateLimitError
		te *form.TransportError
		ce *form.ConfigurationError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.As(err, &re):
		return http.StatusTooManyRequests
	case errors.As(err, &te):
		return http.StatusBadGateway
	case errors.As(err, &ce):
		return http.StatusServiceUnavailable
	case errors.Is(err, form.ErrNotIdle):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// observe records one submit attempt.  Only form and field names reach the
// labels, never visitor input.
func observe(formID string, err error) {
	var (
		ve *form.ValidationError
		re *form.RateLimitError
		te *form.TransportError
		ce *form.ConfigurationError
	)
	outcome := outcomeAccepted
	switch {
	case err == nil:
	case errors.As(err, &ve):
		outcome = outcomeInvalid
		for field := range ve.Fields {
			metrics.ValidationErrorsTotal.WithLabelValues(formID, field).Inc()
		}
	case errors.As(err, &re):
		outcome = outcomeRateLimited
		metrics.RateLimitedTotal.WithLabelValues(formID).Inc()
	case errors.As(err, &te):
		outcome = outcomeFailed
	case errors.As(err, &ce):
		outcome = outcomeNotConfigured
	default:
		outcome = outcomeBusy
	}
	metrics.SubmissionsTotal.WithLabelValues(formID, outcome).Inc()
}

// setRetryAfter adds Retry-After for rate-limit refusals.
func setRetryAfter(w http.ResponseWriter, err error) int {
	var re *form.RateLimitError
	if !errors.As(err, &re) {
		return 0
	}
	s := re.Seconds()
	w.Header().Set("Retry-After", strconv.Itoa(s))
	return s
}
