package web

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/legacyfilm/internal/availability"
	"github.com/yanizio/legacyfilm/internal/form"
	"github.com/yanizio/legacyfilm/internal/metrics"
	"github.com/yanizio/legacyfilm/internal/requestinfo"
	"github.com/yanizio/legacyfilm/internal/view"
)

// submitRequest is the JSON body of /api/lead and /api/booking.  The
// schedule fields are read for booking only.
type submitRequest struct {
	Fields    map[string]string `json:"fields"`
	PackageID string            `json:"packageId,omitempty"`
	Date      string            `json:"date,omitempty"`
	Time      string            `json:"time,omitempty"`
	FormToken string            `json:"formToken,omitempty"`
}

type submitResponse struct {
	State      form.State        `json:"state"`
	Errors     map[string]string `json:"errors"`
	RetryAfter int               `json:"retryAfter,omitempty"`
}

// -----------------------------------------------------------------------------
// JSON API
// -----------------------------------------------------------------------------

func (h *handlers) submitAPI(formID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fd, ok := form.GetFormDef(formID)
		if !ok {
			http.NotFound(w, r)
			return
		}
		countBot(r)

		var req submitRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		if h.conf().Forms.RequireToken {
			if err := h.tokens.Verify(req.FormToken); err != nil {
				metrics.SubmissionsTotal.WithLabelValues(fd.ID, outcomeBadToken).Inc()
				writeJSON(w, http.StatusForbidden, submitResponse{
					State:  form.Idle,
					Errors: map[string]string{form.SubmitKey: form.TokenMessage(err)},
				})
				return
			}
		}

		c := h.newController(r, fd)
		for name, val := range req.Fields {
			c.OnFieldChange(name, val)
		}
		if fd.Schedule {
			applySchedule(c, req)
		}

		err := c.Submit(r.Context())
		observe(fd.ID, err)
		logSubmit(r, fd.ID, err)

		resp := submitResponse{State: c.State(), Errors: c.Errors()}
		resp.RetryAfter = setRetryAfter(w, err)
		writeJSON(w, statusFor(err), resp)
	}
}

// applySchedule copies the booking selections onto c.  An unknown package
// or malformed date is left unselected so Submit reports it as a field
// error.
func applySchedule(c *form.Controller, req submitRequest) {
	if req.PackageID != "" {
		_ = c.SelectPackage(req.PackageID)
	}
	if req.Date != "" {
		if d, err := availability.ParseDate(req.Date); err == nil {
			c.SelectDate(d)
		}
	}
	if req.Time != "" {
		c.SelectTime(req.Time)
	}
}

func (h *handlers) formToken(w http.ResponseWriter, _ *http.Request) {
	tok, err := h.tokens.Issue()
	if err != nil {
		writeError(w, http.StatusInternalServerError, form.MsgGeneric)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

// -----------------------------------------------------------------------------
// Server-rendered lead page
// -----------------------------------------------------------------------------

func (h *handlers) leadPage(w http.ResponseWriter, r *http.Request) {
	fd, _ := form.GetFormDef("lead")
	h.renderLead(w, r, http.StatusOK, fd, nil, nil, false)
}

func (h *handlers) leadPost(w http.ResponseWriter, r *http.Request) {
	fd, _ := form.GetFormDef("lead")
	countBot(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form body", http.StatusBadRequest)
		return
	}

	c := h.newController(r, fd)
	for _, f := range fd.Fields {
		c.OnFieldChange(f.Name, r.PostFormValue(f.Name))
	}

	if h.conf().Forms.RequireToken {
		if err := h.tokens.Verify(r.PostFormValue("form_token")); err != nil {
			metrics.SubmissionsTotal.WithLabelValues(fd.ID, outcomeBadToken).Inc()
			h.renderLead(w, r, http.StatusForbidden, fd, c.Fields(),
				map[string]string{form.SubmitKey: form.TokenMessage(err)}, false)
			return
		}
	}

	err := c.Submit(r.Context())
	observe(fd.ID, err)
	logSubmit(r, fd.ID, err)
	setRetryAfter(w, err)

	h.renderLead(w, r, statusFor(err), fd, c.Fields(), c.Errors(), err == nil)
}

// renderLead draws free-questions.html with prefill, errors, and a fresh
// token.
func (h *handlers) renderLead(w http.ResponseWriter, r *http.Request, status int, fd *form.FormDef, data form.FormData, errs map[string]string, success bool) {
	tok, err := h.tokens.Issue()
	if err != nil {
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}
	fields, err := form.RenderFields(fd, data, errs, tok)
	if err != nil {
		zap.S().Errorw("render fields", "form", fd.ID, "err", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	head := view.NewHead(fd.Title + " | Legacy Film")
	head.Meta("description", "Free interview questions to help you capture a loved one's story.")
	w.Header().Set("Cache-Control", "no-store")
	_ = h.views.Render(w, status, "free-questions", &view.Page{
		Head: head,
		Info: requestinfo.FromContext(r.Context()),
		Data: view.LeadData{
			Title:       fd.Title,
			Fields:      fields,
			SubmitError: errs[form.SubmitKey],
			Success:     success,
		},
	})
}

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

func countBot(r *http.Request) {
	if ri := requestinfo.FromContext(r.Context()); ri != nil && ri.UA.IsBot {
		metrics.BotRequestsTotal.Inc()
	}
}

// logSubmit records the outcome.  Field values are never logged.
func logSubmit(r *http.Request, formID string, err error) {
	ri := requestinfo.FromContext(r.Context())
	bot := ri != nil && ri.UA.IsBot
	if err != nil {
		zap.S().Infow("submit refused", "form", formID, "ip", ri.ClientKey(), "bot", bot, "status", statusFor(err), "err", err)
		return
	}
	zap.S().Infow("submit accepted", "form", formID, "ip", ri.ClientKey(), "bot", bot)
}
