// internal/config/model.go
//
// Typed configuration model for the site.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                    – dotenv values,
//   • `conf/global.yaml`                      – primary static file,
//   • `MILLI_`-prefixed environment overrides – highest precedence.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import "path/filepath"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr   string `koanf:"listen_addr"    validate:"required,hostname_port"`
	ForceHTTPS   bool   `koanf:"force_https"`
	MaxBodyBytes int64  `koanf:"max_body_bytes" validate:"gte=1024"`
}

//
// Log section
//

// Log selects verbosity and the directory for daily JSON files.  A relative
// Dir is resolved against Paths.Root.
type Log struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Dir   string `koanf:"dir"`
}

//
// Geo section
//

// Geo points at an optional MaxMind GeoLite2-City database.  Empty disables
// geo hints in submission logs.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Forms section
//

// Forms lets operators override the embedded form definitions with YAML
// files laid out as `<override_dir>/components/<comp>/forms/*.yaml`.
type Forms struct {
	OverrideDir string `koanf:"override_dir"`
}

//
// Site section
//

// Site carries the few page-level strings the template needs.
type Site struct {
	Title       string `koanf:"title"       validate:"required"`
	Description string `koanf:"description"`
	Email       string `koanf:"email"       validate:"omitempty,email"`
	Phone       string `koanf:"phone"`
	Location    string `koanf:"location"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // MILLI_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP  HTTP  `koanf:"http"`
	Log   Log   `koanf:"log"`
	Geo   Geo   `koanf:"geo"`
	Forms Forms `koanf:"forms"`
	Site  Site  `koanf:"site"`
	Paths Paths `koanf:"-"`
}

// LogDir returns Log.Dir resolved against the root.
func (c *Config) LogDir() string {
	return c.resolve(c.Log.Dir)
}

// FormsDir returns the override directory resolved against the root, or ""
// when none is configured.
func (c *Config) FormsDir() string {
	if c.Forms.OverrideDir == "" {
		return ""
	}
	return c.resolve(c.Forms.OverrideDir)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.Root, p)
}

// applyDefaults fills zero values the YAML may leave out.
func (c *Config) applyDefaults() {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	if c.HTTP.MaxBodyBytes == 0 {
		c.HTTP.MaxBodyBytes = 64 << 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	if c.Site.Title == "" {
		c.Site.Title = "Milli Intelligent"
	}
}
