package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/legacyfilm/internal/availability"
	"github.com/yanizio/legacyfilm/internal/form"
	"github.com/yanizio/legacyfilm/internal/message"
	"github.com/yanizio/legacyfilm/internal/pricing"
	"github.com/yanizio/legacyfilm/internal/requestinfo"
	"github.com/yanizio/legacyfilm/internal/view"
)

// MsgPaymentsUnavailable is shown when no publishable key is configured.
const MsgPaymentsUnavailable = "Online deposits are not available right now. Please contact us to book."

// -----------------------------------------------------------------------------
// Pages
// -----------------------------------------------------------------------------

func (h *handlers) home(w http.ResponseWriter, r *http.Request) {
	head := view.NewHead("Legacy Film | Cinematic Family Story Interviews")
	head.Meta("description", "Cinematic interview films that preserve your family's stories.")
	_ = head.JSONLD(map[string]string{
		"@context": "https://schema.org",
		"@type":    "LocalBusiness",
		"name":     "Legacy Film",
	})
	payments := h.conf().Payment.PublishableKey != ""
	if payments {
		head.Script("https://js.stripe.com/v3/")
	}
	_ = h.views.Render(w, http.StatusOK, "home", &view.Page{
		Head: head,
		Info: requestinfo.FromContext(r.Context()),
		Data: view.HomeData{Packages: pricing.All(), PaymentsEnabled: payments},
	})
}

// -----------------------------------------------------------------------------
// Availability
// -----------------------------------------------------------------------------

type availabilityResponse struct {
	Date       string              `json:"date"`
	Selectable bool                `json:"selectable"`
	Slots      []availability.Slot `json:"slots"`
}

// availability answers GET /api/availability?date=YYYY-MM-DD.  Slots are
// listed only for selectable days.
func (h *handlers) availability(w http.ResponseWriter, r *http.Request) {
	d, err := availability.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	resp := availabilityResponse{
		Date:       d.String(),
		Selectable: availability.IsDateSelectable(d, h.now().In(h.location())),
		Slots:      []availability.Slot{},
	}
	if resp.Selectable {
		resp.Slots = availability.SlotsFor(d)
	}
	writeJSON(w, http.StatusOK, resp)
}

type calendarCell struct {
	Date       string `json:"date"`
	Selectable bool   `json:"selectable"`
}

type calendarResponse struct {
	Month string          `json:"month"`
	Cells []*calendarCell `json:"cells"`
}

// calendar answers GET /api/calendar?month=YYYY-MM.  Empty cells are null.
// Without a month the current one in the business zone is used.
func (h *handlers) calendar(w http.ResponseWriter, r *http.Request) {
	loc := h.location()
	now := h.now().In(loc)
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	if q := r.URL.Query().Get("month"); q != "" {
		m, err := time.ParseInLocation("2006-01", q, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "month must be YYYY-MM")
			return
		}
		month = m
	}

	grid := availability.MonthGrid(month.Year(), month.Month())
	resp := calendarResponse{Month: month.Format("2006-01"), Cells: make([]*calendarCell, len(grid))}
	for i, d := range grid {
		if d == nil {
			continue
		}
		resp.Cells[i] = &calendarCell{Date: d.String(), Selectable: availability.IsDateSelectable(*d, now)}
	}
	writeJSON(w, http.StatusOK, resp)
}

// -----------------------------------------------------------------------------
// Pricing and payments
// -----------------------------------------------------------------------------

type packageView struct {
	pricing.Package
	DepositCents int64 `json:"depositCents"`
}

func (h *handlers) packages(w http.ResponseWriter, _ *http.Request) {
	all := pricing.All()
	out := make([]packageView, 0, len(all))
	for _, p := range all {
		dep, err := p.DepositCents()
		if err != nil {
			zap.S().Errorw("package price unparseable", "package", p.ID, "err", err)
			continue
		}
		out = append(out, packageView{Package: p, DepositCents: dep})
	}
	writeJSON(w, http.StatusOK, out)
}

type intentRequest struct {
	PackageID string `json:"packageId"`
}

type intentResponse struct {
	ClientSecret   string `json:"clientSecret"`
	PublishableKey string `json:"publishableKey"`
	Amount         int64  `json:"amount"`
}

// paymentIntent opens a 50% deposit intent for the chosen package.
func (h *handlers) paymentIntent(w http.ResponseWriter, r *http.Request) {
	cfg := h.conf()
	if cfg.Payment.PublishableKey == "" || h.payments == nil {
		writeError(w, http.StatusServiceUnavailable, MsgPaymentsUnavailable)
		return
	}

	var req intentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	pkg, err := pricing.Lookup(req.PackageID)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, form.MsgPackageNeeded)
		return
	}
	amount, err := pkg.DepositCents()
	if err != nil {
		zap.S().Errorw("package price unparseable", "package", pkg.ID, "err", err)
		writeError(w, http.StatusInternalServerError, form.MsgGeneric)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), cfg.Forms.SubmitTimeout)
	defer cancel()
	secret, err := h.payments.Create(ctx, amount, pkg.Name)
	switch {
	case errors.Is(err, message.ErrPaymentNotConfigured):
		writeError(w, http.StatusServiceUnavailable, MsgPaymentsUnavailable)
		return
	case err != nil:
		zap.S().Warnw("payment intent failed", "package", pkg.ID, "err", err)
		writeError(w, http.StatusBadGateway, form.MsgGeneric)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, intentResponse{
		ClientSecret:   secret,
		PublishableKey: cfg.Payment.PublishableKey,
		Amount:         amount,
	})
}
