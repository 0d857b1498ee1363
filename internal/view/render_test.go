package view

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/milli/internal/form"
	"github.com/yanizio/milli/internal/requestinfo"
)

var pages = fstest.MapFS{
	"templates/layout.html": {Data: []byte(`{{ define "layout" }}<main>{{ template "body" . }}</main>{{ end }}`)},
	"templates/home.html":   {Data: []byte(`{{ define "body" }}hi {{ .Name }} {{ device .Info }}{{ end }}{{ template "layout" . }}`)},
}

func TestEngine_RenderToString(t *testing.T) {
	e := New("site", pages, "")
	got, err := e.RenderToString("home", map[string]any{"Name": "Ann", "Info": (*requestinfo.RequestInfo)(nil)})
	require.NoError(t, err)
	assert.Equal(t, "<main>hi Ann </main>", string(got))
}

func TestEngine_Render(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, New("site", pages, "").Render(rec, "home", map[string]any{"Name": "<b>", "Info": (*requestinfo.RequestInfo)(nil)}))
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "hi &lt;b&gt;")
}

func TestEngine_Missing(t *testing.T) {
	_, err := New("site", pages, "").RenderToString("nope", nil)
	assert.Error(t, err)
}

func TestEngine_Override(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "site", "templates"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site", "templates", "home.html"), []byte(`custom {{ .Name }}`), 0o644))

	got, err := New("site", pages, dir).RenderToString("home", map[string]any{"Name": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "custom Ann", string(got))
}

func TestFormFunc(t *testing.T) {
	fd, err := form.ParseFormDef([]byte(`
id: view/ping
fields:
  - name: note
    label: Note
    type: text
    required: true
`), "view_test")
	require.NoError(t, err)
	form.Register(fd)

	got := formFunc("view/ping", dict("Action", "/api/ping", "Submit", "Go"))
	assert.Contains(t, string(got), `action="/api/ping"`)
	assert.Contains(t, string(got), `>Go</button>`)

	assert.Equal(t, "<!-- form error -->", string(formFunc("view/none", nil)))
}
