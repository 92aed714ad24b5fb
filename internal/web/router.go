// internal/web/router.go
//
// HTTP surface of the service.
//
/*
Context
--------
One chi router serves the two pages, the JSON form API, the availability
and pricing lookups, and the operational endpoints.  Every request passes
through:

  1. chi Recoverer – a panicking handler becomes a 500.
  2. requestinfo   – client IP, UA, and optional geo in the context.
  3. accessLog     – one debug line per request with status and latency.
  4. Security      – response headers.

ForceHTTPS wraps the whole router when `http.force_https` is set.

Each submit builds a fresh form.Controller.  Its limiter key is the form's
rate key plus the client IP, so one visitor cannot exhaust another's budget
and the lead and booking forms are limited separately.
*/
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/legacyfilm/internal/config"
	"github.com/yanizio/legacyfilm/internal/form"
	"github.com/yanizio/legacyfilm/internal/middleware"
	"github.com/yanizio/legacyfilm/internal/ratelimit"
	"github.com/yanizio/legacyfilm/internal/requestinfo"
	"github.com/yanizio/legacyfilm/internal/view"
)

// Payments opens a deposit payment intent.  *message.PaymentIntents
// satisfies it.
type Payments interface {
	Create(ctx context.Context, amountCents int64, packageName string) (string, error)
}

// Deps is everything the router needs.  Lead, Booking, and Payments may be
// nil; the matching endpoints then answer 503.  A nil Config means every
// request reads config.Get(), so a reload takes effect without a restart.
type Deps struct {
	Config   *config.Config
	Store    ratelimit.Store
	Lead     form.Submitter
	Booking  form.Submitter
	Payments Payments
	Tokens   *form.Tokens
	Geo      requestinfo.GeoLookup
	Views    *view.Engine
	Now      func() time.Time
}

type handlers struct {
	fixed    *config.Config
	store    ratelimit.Store
	subs     map[string]form.Submitter
	payments Payments
	tokens   *form.Tokens
	views    *view.Engine
	now      func() time.Time
}

// NewRouter wires every route.
func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	cfg := d.Config
	if cfg == nil {
		cfg = config.Get()
	}
	if d.Tokens == nil {
		d.Tokens = form.NewTokens([]byte(cfg.Forms.TokenSecret))
	}
	if d.Views == nil {
		d.Views = view.New("")
	}
	if d.Store == nil {
		d.Store = ratelimit.NewMemoryStore(0)
	}
	h := &handlers{
		fixed: d.Config,
		store: d.Store,
		subs: map[string]form.Submitter{
			form.PayloadLead:    d.Lead,
			form.PayloadBooking: d.Booking,
		},
		payments: d.Payments,
		tokens:   d.Tokens,
		views:    d.Views,
		now:      d.Now,
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(requestinfo.Enricher{Geo: d.Geo, TrustProxy: cfg.HTTP.TrustProxy}.Enrich)
	r.Use(accessLog)
	r.Use(middleware.Security)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.home)
	r.Get("/free-questions", h.leadPage)
	r.Post("/free-questions", h.leadPost)

	r.Route("/api", func(r chi.Router) {
		r.Get("/form-token", h.formToken)
		r.Post("/lead", h.submitAPI("lead"))
		r.Post("/booking", h.submitAPI("booking"))
		r.Get("/availability", h.availability)
		r.Get("/calendar", h.calendar)
		r.Get("/packages", h.packages)
		r.Post("/payment-intent", h.paymentIntent)
	})

	var out http.Handler = r
	if cfg.HTTP.ForceHTTPS {
		out = middleware.ForceHTTPS(cfg.HTTP.TrustProxy, out)
	}
	return out
}

// conf returns the fixed config or, when none was given, the live one.
func (h *handlers) conf() *config.Config {
	if h.fixed != nil {
		return h.fixed
	}
	return config.Get()
}

func (h *handlers) location() *time.Location { return h.conf().Booking.Location() }

// newController builds the per-request controller for fd.
func (h *handlers) newController(r *http.Request, fd *form.FormDef) *form.Controller {
	cfg := h.conf()
	key := fd.RateKey + ":" + requestinfo.FromContext(r.Context()).ClientKey()
	lim := ratelimit.New(h.store, key, cfg.RateLimit.Max, cfg.RateLimit.Window, ratelimit.WithClock(h.now))
	return form.NewController(fd, lim, h.subs[fd.Payload],
		form.WithClock(h.now),
		form.WithLocation(cfg.Booking.Location()),
		form.WithTimeout(cfg.Forms.SubmitTimeout),
	)
}

// accessLog writes one debug line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.S().Debugw("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"ip", requestinfo.FromContext(r.Context()).ClientKey(),
			"ms", time.Since(start).Milliseconds(),
		)
	})
}
