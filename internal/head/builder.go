// internal/head/builder.go
//
// The Builder collects everything that belongs inside a page’s <head>
// element.  It is scoped to a single render call: the page handler pushes
// tags, then the layout template emits them through Render.
//
// Features
// --------
//   - SetTitle          – single <title> tag (last call wins).
//   - Meta, Property    – <meta name=…> and <meta property=…> pairs, deduped
//     by key so a later call replaces an earlier one.
//   - Stylesheet/Script – asset tags, deduped by URL.
//   - JSONLD            – marshals any value into
//     <script type="application/ld+json">…</script>.
package head

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
)

// Builder is not safe for concurrent use; one page render owns one Builder.
type Builder struct {
	title string

	metaKeys []string
	metas    map[string]string

	styles  []string
	scripts []string
	seen    map[string]struct{}

	jsonLD []string
}

func New() *Builder {
	return &Builder{
		metas: make(map[string]string),
		seen:  make(map[string]struct{}),
	}
}

// SetTitle overrides the page <title>.  The last caller wins.
func (b *Builder) SetTitle(t string) { b.title = t }

// Meta sets <meta name="name" content="content">.
func (b *Builder) Meta(name, content string) { b.setMeta("name", name, content) }

// Property sets <meta property="prop" content="content"> (Open Graph).
func (b *Builder) Property(prop, content string) { b.setMeta("property", prop, content) }

func (b *Builder) setMeta(attr, key, content string) {
	k := attr + "=" + key
	if _, ok := b.metas[k]; !ok {
		b.metaKeys = append(b.metaKeys, k)
	}
	b.metas[k] = content
}

// Stylesheet adds a <link rel="stylesheet">.
func (b *Builder) Stylesheet(href string) {
	if b.once("css:" + href) {
		b.styles = append(b.styles, href)
	}
}

// Script adds a deferred <script src>.
func (b *Builder) Script(src string) {
	if b.once("js:" + src) {
		b.scripts = append(b.scripts, src)
	}
}

// JSONLD marshals v as a structured-data block.
func (b *Builder) JSONLD(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("head: json-ld: %w", err)
	}
	if b.once("ld:" + string(raw)) {
		b.jsonLD = append(b.jsonLD, string(raw))
	}
	return nil
}

func (b *Builder) once(key string) bool {
	if _, dup := b.seen[key]; dup {
		return false
	}
	b.seen[key] = struct{}{}
	return true
}

// Render emits every collected tag in a stable order: title, metas,
// stylesheets, scripts, JSON-LD.
func (b *Builder) Render() template.HTML {
	var sb strings.Builder
	esc := template.HTMLEscapeString

	if b.title != "" {
		sb.WriteString("<title>" + esc(b.title) + "</title>")
	}
	for _, k := range b.metaKeys {
		attr, key, _ := strings.Cut(k, "=")
		fmt.Fprintf(&sb, `<meta %s="%s" content="%s">`, attr, esc(key), esc(b.metas[k]))
	}
	for _, href := range b.styles {
		fmt.Fprintf(&sb, `<link rel="stylesheet" href="%s">`, esc(href))
	}
	for _, src := range b.scripts {
		fmt.Fprintf(&sb, `<script src="%s" defer></script>`, esc(src))
	}
	for _, js := range b.jsonLD {
		// json.Marshal escapes <, > and & so the payload cannot close the tag.
		sb.WriteString(`<script type="application/ld+json">` + js + `</script>`)
	}
	return template.HTML(sb.String())
}
