// components/contact/contact.go
//
// Contact component – POST /api/contact.
//
// Context
//   The page script and the Go client both post one JSON Submission here.
//   The handler validates it against the shared contact form definition and
//   answers with one of three bodies:
//
//     200  {"success":true,  "message":"Thank you …"}
//     400  {"success":false, "message":"Invalid form data", "errors":[…]}
//     500  {"success":false, "message":"An error occurred …"}
//
//   Nothing is stored or sent.  The form’s “log” action writes accepted
//   values to the request-scoped logger, and counters in internal/metrics
//   track outcomes.  Identical requests get identical, independent answers.
//
// Workflow
//   1. Cap the body at http.max_body_bytes.
//   2. Attach a logger carrying a reference ID, the chi request ID, and
//      the requestinfo fields, so the log action and any failure share them.
//   3. form.HandleSubmitJSON decodes, validates, and runs actions.
//   4. Map the outcome to a status and write JSON.
//
//   A panic anywhere in 2–4 is recovered into the 500 body.
//
//------------------------------------------------------------------------------

package contact

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/milli/internal/component"
	"github.com/yanizio/milli/internal/contact"
	"github.com/yanizio/milli/internal/form"
	"github.com/yanizio/milli/internal/logger"
	"github.com/yanizio/milli/internal/metrics"
	"github.com/yanizio/milli/internal/requestinfo"
)

// compile-time assertions
var (
	_ component.Component   = (*Component)(nil)
	_ component.Initializer = (*Component)(nil)
)

const defaultMaxBody = 64 << 10

// Component serves the contact endpoint.  It holds no per-request state.
type Component struct {
	maxBody int64
}

func (c *Component) Name() string { return "contact" }

// Init reads the body limit and confirms the form definition is loaded.
func (c *Component) Init(d component.Deps) error {
	if _, ok := form.GetFormDef(contact.FormID); !ok {
		return fmt.Errorf("form %s not registered", contact.FormID)
	}
	c.maxBody = defaultMaxBody
	if d.Config != nil && d.Config.HTTP.MaxBodyBytes > 0 {
		c.maxBody = d.Config.HTTP.MaxBodyBytes
	}
	return nil
}

func (c *Component) Routes(r chi.Router) {
	r.Post(contact.Endpoint, c.submit)
}

func init() {
	component.Register(&Component{})
}

/*──────────────────────────── handler ──────────────────────────────────────*/

func (c *Component) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := requestLogger(r)
	r = r.WithContext(logger.WithContext(ctx, log))

	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if rec == http.ErrAbortHandler {
			panic(rec)
		}
		log.Errorw("contact handler panic", "panic", fmt.Sprint(rec))
		metrics.ContactSubmissions.WithLabelValues(metrics.OutcomeError).Inc()
		writeJSON(w, log, http.StatusInternalServerError, contact.Unexpected())
	}()

	limit := c.maxBody
	if limit <= 0 {
		limit = defaultMaxBody
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	_, err := form.HandleSubmitJSON(contact.FormID, r)
	switch {
	case err == nil:
		metrics.ContactSubmissions.WithLabelValues(metrics.OutcomeSuccess).Inc()
		writeJSON(w, log, http.StatusOK, contact.Success())

	case form.IsValidationError(err):
		errs := form.FieldErrors(err)
		metrics.ContactSubmissions.WithLabelValues(metrics.OutcomeInvalid).Inc()
		for _, e := range errs {
			metrics.ContactFieldErrors.WithLabelValues(fieldLabel(e.Field)).Inc()
		}
		log.Infow("contact submission rejected", "violations", codes(errs))
		writeJSON(w, log, http.StatusBadRequest, contact.Invalid(errs))

	default:
		var tooLarge *http.MaxBytesError
		log.Errorw("contact submission failed", "err", err, "too_large", errors.As(err, &tooLarge))
		metrics.ContactSubmissions.WithLabelValues(metrics.OutcomeError).Inc()
		writeJSON(w, log, http.StatusInternalServerError, contact.Unexpected())
	}
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

// requestLogger derives the per-request logger.  ref is returned to nobody;
// it only ties log lines of one submission together.
func requestLogger(r *http.Request) *zap.SugaredLogger {
	kv := []any{
		"component", "contact",
		"ref", uuid.NewString(),
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		kv = append(kv, "request_id", id)
	}
	kv = append(kv, requestinfo.FromContext(r.Context()).LogFields()...)
	return logger.FromContext(r.Context()).With(kv...)
}

func writeJSON(w http.ResponseWriter, log *zap.SugaredLogger, status int, body contact.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Warnw("write response", "err", err)
	}
}

// fieldLabel maps form-level violations to a fixed label value.
func fieldLabel(f string) string {
	if f == "" {
		return "_form"
	}
	return f
}

func codes(errs []form.ErrorField) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[fieldLabel(e.Field)] = e.Code
	}
	return out
}
