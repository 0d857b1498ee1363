package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yanizio/milli/internal/component"
	"github.com/yanizio/milli/internal/config"
	"github.com/yanizio/milli/internal/contact"
	"github.com/yanizio/milli/internal/form"
	"github.com/yanizio/milli/internal/logger"
	"github.com/yanizio/milli/internal/metrics"
)

const validBody = `{"firstName":"Al","lastName":"Ex","email":"a@b.com","service":"chatbots","message":"Hello there!"}`

// newRouter mounts a fresh Component behind chi's RequestID middleware.
// Every request carries logs, an observer-backed logger.
func newRouter(t *testing.T, maxBody int64) (http.Handler, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core).Sugar()

	c := &Component{}
	cfg := &config.Config{HTTP: config.HTTP{MaxBodyBytes: maxBody}}
	require.NoError(t, c.Init(component.Deps{Config: cfg, Log: log}))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(logger.WithContext(req.Context(), log)))
		})
	})
	c.Routes(r)
	return r, logs
}

func post(h http.Handler, body string) (*httptest.ResponseRecorder, contact.Response) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, contact.Endpoint, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rec, req)

	var out contact.Response
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func fieldsOf(errs []form.ErrorField) []string {
	var out []string
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestSubmit_Success(t *testing.T) {
	h, logs := newRouter(t, 0)
	rec, res := post(h, validBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t,
		`{"success":true,"message":"Thank you for contacting us. We'll get back to you soon."}`,
		rec.Body.String())
	assert.True(t, res.Success)

	entries := logs.FilterMessage("contact form submission").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "a@b.com", ctx["email"])
	assert.Equal(t, "contact/contact", ctx["form"])
	assert.NotEmpty(t, ctx["request_id"])
	assert.NotEmpty(t, ctx["ref"])
}

func TestSubmit_InvalidEmail(t *testing.T) {
	h, _ := newRouter(t, 0)
	rec, res := post(h, strings.Replace(validBody, "a@b.com", "not-an-email", 1))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, res.Success)
	assert.Equal(t, contact.MsgInvalid, res.Message)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, form.ErrorField{
		Field: "email", Code: form.CodeEmail, Message: "Please enter a valid email address.",
	}, res.Errors[0])
}

func TestSubmit_ShortMessage(t *testing.T) {
	h, _ := newRouter(t, 0)
	rec, res := post(h, strings.Replace(validBody, "Hello there!", "short", 1))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"message"}, fieldsOf(res.Errors))
	assert.Equal(t, form.CodeMin, res.Errors[0].Code)
}

func TestSubmit_Boundaries(t *testing.T) {
	h, _ := newRouter(t, 0)
	cases := []struct {
		name   string
		from   string
		to     string
		status int
	}{
		{"first name 2", `"Al"`, `"Jo"`, http.StatusOK},
		{"first name 1", `"Al"`, `"J"`, http.StatusBadRequest},
		{"message 10", `"Hello there!"`, `"0123456789"`, http.StatusOK},
		{"message 9", `"Hello there!"`, `"012345678"`, http.StatusBadRequest},
		{"multibyte name", `"Al"`, `"Zoë"`, http.StatusOK},
		{"unknown service", `"chatbots"`, `"astrology"`, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := post(h, strings.Replace(validBody, tc.from, tc.to, 1))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestSubmit_AllViolationsReported(t *testing.T) {
	h, _ := newRouter(t, 0)
	rec, res := post(h, `{"company":"Acme"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"firstName", "lastName", "email", "service", "message"}, fieldsOf(res.Errors))
}

func TestSubmit_BodyShapes(t *testing.T) {
	h, logs := newRouter(t, 0)

	t.Run("malformed", func(t *testing.T) {
		rec, res := post(h, `{"firstName":`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"`+contact.MsgUnexpected+`"}`, rec.Body.String())
		assert.False(t, res.Success)
	})

	t.Run("trailing data", func(t *testing.T) {
		for _, body := range []string{validBody + " garbage", validBody + validBody, validBody + "}"} {
			rec, res := post(h, body)
			assert.Equal(t, http.StatusInternalServerError, rec.Code, body)
			assert.False(t, res.Success, body)
			assert.Equal(t, contact.MsgUnexpected, res.Message, body)
		}
		assert.Equal(t, 0, logs.FilterMessage("contact form submission").Len())
	})

	t.Run("array", func(t *testing.T) {
		rec, res := post(h, `[1,2]`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, form.CodeInvalidBody, res.Errors[0].Code)
		assert.Empty(t, res.Errors[0].Field)
	})

	t.Run("null", func(t *testing.T) {
		rec, _ := post(h, `null`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong type", func(t *testing.T) {
		rec, res := post(h, strings.Replace(validBody, `"Al"`, `42`, 1))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, form.ErrorField{
			Field: "firstName", Code: form.CodeInvalidType, Message: "First name must be at least 2 characters.",
		}, res.Errors[0])
	})

	t.Run("unknown keys ignored", func(t *testing.T) {
		rec, _ := post(h, strings.Replace(validBody, `{`, `{"extra":[1],`, 1))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSubmit_TooLarge(t *testing.T) {
	h, _ := newRouter(t, 1024)
	rec, _ := post(h, strings.Replace(validBody, "Hello there!", strings.Repeat("x", 2048), 1))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSubmit_Idempotent(t *testing.T) {
	h, logs := newRouter(t, 0)
	a, _ := post(h, validBody)
	b, _ := post(h, validBody)

	assert.Equal(t, http.StatusOK, a.Code)
	assert.Equal(t, a.Code, b.Code)
	assert.Equal(t, a.Body.String(), b.Body.String())
	assert.Equal(t, 2, logs.FilterMessage("contact form submission").Len())
}

func TestSubmit_Concurrent(t *testing.T) {
	h, _ := newRouter(t, 0)
	bad := strings.Replace(validBody, "a@b.com", "nope", 1)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body, want := validBody, http.StatusOK
			if i%2 == 1 {
				body, want = bad, http.StatusBadRequest
			}
			rec, _ := post(h, body)
			assert.Equal(t, want, rec.Code)
		}(i)
	}
	wg.Wait()
}

// panicReader blows up on the first read.
type panicReader struct{}

func (panicReader) Read([]byte) (int, error) { panic("reader exploded") }

func TestSubmit_PanicRecovered(t *testing.T) {
	h, logs := newRouter(t, 0)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, contact.Endpoint, panicReader{}))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"`+contact.MsgUnexpected+`"}`, rec.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("contact handler panic").Len())
}

func TestSubmit_Metrics(t *testing.T) {
	h, _ := newRouter(t, 0)
	ok := testutil.ToFloat64(metrics.ContactSubmissions.WithLabelValues(metrics.OutcomeSuccess))
	bad := testutil.ToFloat64(metrics.ContactSubmissions.WithLabelValues(metrics.OutcomeInvalid))
	email := testutil.ToFloat64(metrics.ContactFieldErrors.WithLabelValues("email"))

	post(h, validBody)
	post(h, strings.Replace(validBody, "a@b.com", "nope", 1))

	assert.Equal(t, ok+1, testutil.ToFloat64(metrics.ContactSubmissions.WithLabelValues(metrics.OutcomeSuccess)))
	assert.Equal(t, bad+1, testutil.ToFloat64(metrics.ContactSubmissions.WithLabelValues(metrics.OutcomeInvalid)))
	assert.Equal(t, email+1, testutil.ToFloat64(metrics.ContactFieldErrors.WithLabelValues("email")))
}

func TestSubmit_ClientRoundTrip(t *testing.T) {
	h, _ := newRouter(t, 0)
	srv := httptest.NewServer(h)
	defer srv.Close()

	s := contact.Submission{
		FirstName: "Al", LastName: "Ex", Email: "a@b.com",
		Service: contact.ServiceChatbots, Message: "Hello there!",
	}
	res, err := contact.NewClient(srv.URL).Submit(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, contact.MsgSuccess, res.Message)
}

func TestInit_DefaultLimit(t *testing.T) {
	c := &Component{}
	require.NoError(t, c.Init(component.Deps{Log: zap.NewNop().Sugar()}))
	assert.EqualValues(t, defaultMaxBody, c.maxBody)
	assert.Equal(t, "contact", c.Name())
}
