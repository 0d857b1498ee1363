// components/site/site.go
//
// Site component – the single scrolling page and its static assets.
//
// Routes
//   GET /           hero, services, about, roadmap, and the contact form
//   GET /static/*   embedded CSS and the contact script
//
// The contact form markup comes from the shared form definition through the
// view engine’s `form` helper, so the browser checks the same rules the
// endpoint enforces.  Service cards are built from the same option list.
package site

import (
	"embed"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/milli/internal/component"
	"github.com/yanizio/milli/internal/config"
	"github.com/yanizio/milli/internal/contact"
	"github.com/yanizio/milli/internal/head"
	"github.com/yanizio/milli/internal/logger"
	"github.com/yanizio/milli/internal/requestinfo"
	"github.com/yanizio/milli/internal/view"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// compile-time assertions
var (
	_ component.Component   = (*Component)(nil)
	_ component.Initializer = (*Component)(nil)
)

// Component renders the home page.
type Component struct {
	site   config.Site
	engine *view.Engine
}

func (c *Component) Name() string { return "site" }

// Init captures the site strings and builds the view engine.  Templates may
// be overridden under <forms.override_dir>/components/site/templates/.
func (c *Component) Init(d component.Deps) error {
	override := ""
	if d.Config != nil {
		c.site = d.Config.Site
		if dir := d.Config.FormsDir(); dir != "" {
			override = filepath.Join(dir, "components")
		}
	}
	if c.site.Title == "" {
		c.site.Title = "Milli Intelligent"
	}
	c.engine = view.New("site", templatesFS, override)
	return nil
}

func (c *Component) Routes(r chi.Router) {
	r.Get("/", c.home)

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
}

func init() {
	component.Register(&Component{})
}

/*──────────────────────────── page data ────────────────────────────────────*/

// Service is one card in the services section.
type Service struct {
	ID          string
	Title       string
	Description string
}

// blurbs holds card copy keyed by service option value.  Options without a
// blurb (such as “other”) are not shown as cards.
var blurbs = map[string]string{
	contact.ServiceWorkflowAutomation:  "Automate repetitive work with AI agents wired into the tools your team already uses.",
	contact.ServiceEnterpriseSolutions: "Strategy, architecture, and delivery of AI systems that fit enterprise constraints.",
	contact.ServiceChatbots:            "Assistants that answer customers and staff from your own knowledge, day and night.",
}

// Milestone is one roadmap entry.
type Milestone struct {
	Phase string
	Title string
	Body  string
}

var roadmap = []Milestone{
	{"01", "Discovery", "We map your workflows and pick the processes where AI pays off first."},
	{"02", "Prototype", "A working pilot on real data within weeks, not quarters."},
	{"03", "Integration", "We connect the pilot to your systems and harden it for production."},
	{"04", "Scale", "Monitoring, training, and iteration as usage grows."},
}

func services() []Service {
	var out []Service
	for _, o := range contact.Services() {
		if b, ok := blurbs[o.Value]; ok {
			out = append(out, Service{ID: o.Value, Title: o.Label, Description: b})
		}
	}
	return out
}

/*──────────────────────────── handler ──────────────────────────────────────*/

func (c *Component) home(w http.ResponseWriter, r *http.Request) {
	h := head.New()
	h.SetTitle(c.site.Title)
	h.Meta("viewport", "width=device-width, initial-scale=1")
	if c.site.Description != "" {
		h.Meta("description", c.site.Description)
		h.Property("og:description", c.site.Description)
	}
	h.Property("og:title", c.site.Title)
	h.Stylesheet("/static/site.css")
	h.Script("/static/contact.js")

	org := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     c.site.Title,
	}
	if c.site.Email != "" {
		org["email"] = c.site.Email
	}
	if c.site.Phone != "" {
		org["telephone"] = c.site.Phone
	}

	log := logger.FromContext(r.Context())
	if err := h.JSONLD(org); err != nil {
		log.Warnw("json-ld", "err", err)
	}

	data := map[string]any{
		"Head":     h,
		"Site":     c.site,
		"Info":     requestinfo.FromContext(r.Context()),
		"Services": services(),
		"Roadmap":  roadmap,
		"FormID":   contact.FormID,
		"Endpoint": contact.Endpoint,
		"Year":     time.Now().Year(),
	}
	if err := c.engine.Render(w, "home", data); err != nil {
		log.Errorw("render home", zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
