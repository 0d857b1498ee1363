// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  The router calls Init()
// on components that implement Initializer, then lets every component add
// its routes to the one shared chi.Router.
package component

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/milli/internal/config"
)

// Deps exposes process-wide resources to Components during Init.
type Deps struct {
	Config *config.Config
	Log    *zap.SugaredLogger
}

// Initializer is optional.  If a Component implements it, Mount calls
// Init(deps) once before Routes.
type Initializer interface {
	Init(Deps) error
}

// Component contract.
//
// Routes adds BOTH page and API endpoints directly onto r, e.g.:
//
//	r.Get("/", home)
//	r.Post("/api/contact", submit)
type Component interface {
	Name() string
	Routes(r chi.Router)
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.  A second
// registration under the same name replaces the first.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component ordered by name.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Mount initialises every registered component and adds its routes to r.
// A nil deps.Log falls back to the global logger.
func Mount(r chi.Router, deps Deps) error {
	if deps.Log == nil {
		deps.Log = zap.S()
	}
	for _, c := range All() {
		if in, ok := c.(Initializer); ok {
			if err := in.Init(deps); err != nil {
				return fmt.Errorf("component %s: init: %w", c.Name(), err)
			}
		}
		c.Routes(r)
		deps.Log.Debugw("component mounted", "component", c.Name())
	}
	return nil
}
