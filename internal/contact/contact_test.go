package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/milli/internal/form"
)

func valid() Submission {
	return Submission{
		FirstName: "Al",
		LastName:  "Ex",
		Email:     "a@b.com",
		Service:   ServiceChatbots,
		Message:   "Hello there!",
	}
}

func TestSubmission_Validate(t *testing.T) {
	assert.Nil(t, valid().Validate())

	cases := []struct {
		name  string
		edit  func(*Submission)
		field string
		msg   string
	}{
		{"short first name", func(s *Submission) { s.FirstName = "A" }, "firstName", "First name must be at least 2 characters."},
		{"short last name", func(s *Submission) { s.LastName = "E" }, "lastName", "Last name must be at least 2 characters."},
		{"bad email", func(s *Submission) { s.Email = "not-an-email" }, "email", "Please enter a valid email address."},
		{"empty service", func(s *Submission) { s.Service = "" }, "service", "Please select a service."},
		{"short message", func(s *Submission) { s.Message = "short" }, "message", "Message must be at least 10 characters."},
		{"empty first name", func(s *Submission) { s.FirstName = "" }, "firstName", "First name must be at least 2 characters."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := valid()
			tc.edit(&s)
			got := s.Validate()
			assert.Equal(t, map[string]string{tc.field: tc.msg}, got)
			assert.True(t, form.IsValidationError(s.Check()))
		})
	}
}

func TestSubmission_Boundaries(t *testing.T) {
	s := valid()
	s.FirstName = "Jo"
	s.Message = "0123456789"
	assert.Nil(t, s.Validate())

	s.FirstName = "J"
	assert.Contains(t, s.Validate(), "firstName")

	s = valid()
	s.Message = "012345678"
	assert.Contains(t, s.Validate(), "message")
}

func TestSubmission_AllInvalidAtOnce(t *testing.T) {
	got := Submission{}.Validate()
	assert.Len(t, got, 5)
	assert.NotContains(t, got, "company")
}

func TestSubmission_LooseService(t *testing.T) {
	s := valid()
	s.Service = "something-else"
	assert.Nil(t, s.Validate())
}

func TestSubmission_ValuesRoundTrip(t *testing.T) {
	s := valid()
	s.Company = "Acme"
	assert.Equal(t, s, FromValues(s.Values()))
	assert.NotContains(t, valid().Values(), "company")
}

func TestServices(t *testing.T) {
	var ids []string
	for _, o := range Services() {
		ids = append(ids, o.Value)
	}
	assert.Equal(t, []string{
		ServiceWorkflowAutomation, ServiceEnterpriseSolutions, ServiceChatbots, ServiceOther,
	}, ids)
}

// countingServer answers every request with status and body and counts hits.
func countingServer(t *testing.T, status int, body any) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, Endpoint, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got Submission
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestClient_SubmitSuccess(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK, Success())

	res, err := NewClient(srv.URL+"/", WithHTTPClient(srv.Client())).Submit(context.Background(), valid())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, MsgSuccess, res.Message)
	assert.EqualValues(t, 1, hits.Load())
}

func TestClient_InvalidNeverSends(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK, Success())

	s := valid()
	s.Email = "not-an-email"
	res, err := NewClient(srv.URL).Submit(context.Background(), s)
	assert.Nil(t, res)
	require.True(t, form.IsValidationError(err))
	assert.Equal(t, "email", form.FieldErrors(err)[0].Field)
	assert.EqualValues(t, 0, hits.Load())
}

func TestClient_FailureNoRetry(t *testing.T) {
	srv, hits := countingServer(t, http.StatusInternalServerError, Unexpected())

	res, err := NewClient(srv.URL).Submit(context.Background(), valid())
	var se *SubmitError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Status)
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Contains(t, err.Error(), MsgUnexpected)
	assert.EqualValues(t, 1, hits.Load())
}

func TestClient_NonJSONFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL).Submit(context.Background(), valid())
	assert.Nil(t, res)
	var se *SubmitError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Status)
	assert.True(t, strings.HasSuffix(se.Error(), "502"))
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Submit(context.Background(), valid())
	require.Error(t, err)
	var se *SubmitError
	assert.False(t, form.IsValidationError(err))
	assert.NotErrorAs(t, err, &se)
}
