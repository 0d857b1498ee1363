// internal/view/render.go
//
// Central view engine: template lookup, override chain, func-map injection,
// and an LRU of parsed *template.Template* sets.
//
// Public helpers
// --------------
//   - Render         – write rendered HTML to an http.ResponseWriter.
//   - RenderToString – return template.HTML (partials, tests).
//
// Lookup precedence (first hit wins):
//  1. <override>/<comp>/templates/<tpl>.html   (site operators, optional)
//  2. templates/<tpl>.html in the component’s embedded FS
//
// All templates in the same directory are parsed as one set so sub-templates
// ({{ template "layout" . }}) work out-of-the-box.
package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/yanizio/milli/internal/cache"
)

// Engine renders one component’s templates.  Safe for concurrent use.
type Engine struct {
	comp     string
	embedded fs.FS
	override string
	funcs    template.FuncMap
	sets     *cache.LRU[string, *template.Template]
}

// New returns an Engine for component comp.  embedded must hold a
// templates/ directory; overrideDir may be empty.
func New(comp string, embedded fs.FS, overrideDir string) *Engine {
	return &Engine{
		comp:     comp,
		embedded: embedded,
		override: overrideDir,
		funcs:    FuncMap(),
		sets:     cache.New[string, *template.Template](64),
	}
}

// Render executes template name and streams it to w.  Output is buffered
// so a failing template never leaves a half-written page.
func (e *Engine) Render(w http.ResponseWriter, name string, data any) error {
	html, err := e.RenderToString(name, data)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = w.Write([]byte(html))
	return err
}

// RenderToString executes template name and returns the HTML.
func (e *Engine) RenderToString(name string, data any) (template.HTML, error) {
	t, err := e.load(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, execName(t, name), data); err != nil {
		return "", fmt.Errorf("view: execute %s/%s: %w", e.comp, name, err)
	}
	return template.HTML(buf.String()), nil
}

// load finds and, on a cache miss, parses the set holding name.
func (e *Engine) load(name string) (*template.Template, error) {
	if t, ok := e.sets.Get(name); ok {
		return t, nil
	}

	fsys, dir := e.embedded, "templates"
	if e.override != "" {
		odir := filepath.Join(e.override, e.comp, "templates")
		if _, err := os.Stat(filepath.Join(odir, name+".html")); err == nil {
			fsys, dir = os.DirFS(odir), "."
		}
	}

	t, err := template.New(name).Funcs(e.funcs).ParseFS(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("view: parse %s/%s: %w", e.comp, name, err)
	}
	if t.Lookup(name+".html") == nil && t.Lookup(name) == nil {
		return nil, fmt.Errorf("view: template %s/%s: %w", e.comp, name, fs.ErrNotExist)
	}
	e.sets.Add(name, t)
	return t, nil
}

// execName picks the template name to execute.
//
// Priority:
//  1. If the set has "<name>.html" (file-based template), run that.
//  2. Otherwise, fall back to "<name>" (root template defined via define).
func execName(t *template.Template, name string) string {
	if t.Lookup(name+".html") != nil {
		return name + ".html"
	}
	return name
}
