// internal/form/definition.go
//
// Forms subsystem: YAML definition loader.
//
// Context
//   Each form on the site is declared in a YAML file.  The file defines the
//   form’s identifier, title, fields, multi-step structure, and any
//   post-submit actions.  The same FormDef drives every consumer: the HTML
//   renderer emits its constraints as HTML5 attributes, the Go client checks
//   a submission before sending it, and the server re-checks what it
//   receives.  Keeping one definition means the three can never drift.
//
// Workflow
//   •  Structs mirror the YAML schema: FormDef → StepDef → FieldDef /
//      OptionDef / ActionDef.
//   •  ParseFormDef parses raw YAML and validates structural rules.
//      LoadFormDef does the same for a file on disk.
//   •  RegisterFS registers every “*.yaml” found under a directory of an
//      fs.FS (used for definitions embedded in the binary).  RegisterForms
//      walks “components/*/forms/” under operator override directories.
//      Later registrations replace earlier ones with the same ID.
//   •  GetFormDef offers safe, read-only access to a parsed form by ID.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// FormDef represents one form definition loaded from YAML.
//
// The form is uniquely identified by ID which should be namespaced by
// component, e.g. “contact/contact”.  A form is defined EITHER by a flat
// Field list OR by a Steps list (multi-step wizard).  Actions run after
// successful validation.
type FormDef struct {
	ID      string      `yaml:"id"`
	Title   string      `yaml:"title"`
	Fields  []FieldDef  `yaml:"fields"`
	Steps   []StepDef   `yaml:"steps"`
	Actions []ActionDef `yaml:"actions"`
}

// FieldDef describes a single input control on the form.  Validation
// metadata lives inline so the server enforces the same rules the client
// checks.
type FieldDef struct {
	Name          string      `yaml:"name"`           // Submission key.  Required.
	Label         string      `yaml:"label"`          // Human-readable label.  Required.
	Type          string      `yaml:"type"`           // text, email, textarea, select, etc.
	Placeholder   string      `yaml:"placeholder"`    // Optional placeholder text.
	Required      bool        `yaml:"required"`       // True if input is mandatory.
	MinLength     int         `yaml:"minlength"`      // ≥ 0, 0 means unset.
	MaxLength     int         `yaml:"maxlength"`      // ≥ 0, 0 means unset.
	Pattern       string      `yaml:"pattern"`        // Regex pattern string.
	Options       []OptionDef `yaml:"options"`        // For select/radio.
	StrictOptions bool        `yaml:"strict_options"` // Reject values outside Options.
	Rows          int         `yaml:"rows"`           // Textarea height hint.
	ErrorMsg      string      `yaml:"error"`          // Custom error message, optional.

	re   *regexp.Regexp // compiled Pattern
	rule string         // validator tag compiled from the constraints
}

// OptionDef is one choice of a select or radio field.  In YAML it may be a
// bare scalar (value doubles as label) or a {value, label} mapping.
type OptionDef struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// UnmarshalYAML accepts both option spellings.
func (o *OptionDef) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		o.Value, o.Label = n.Value, n.Value
		return nil
	}
	type plain OptionDef
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*o = OptionDef(p)
	if o.Label == "" {
		o.Label = o.Value
	}
	return nil
}

// StepDef groups fields into a wizard step.
type StepDef struct {
	ID     string     `yaml:"id"` // Unique per form.  If blank, we derive one.
	Title  string     `yaml:"title"`
	Fields []FieldDef `yaml:"fields"`
}

// ActionDef configures an automated action executed after validation.
// Params holds every other key of the YAML mapping.
type ActionDef struct {
	Type   string         `yaml:"type"`
	Params map[string]any `yaml:",inline"`
}

// AllFields returns every FieldDef regardless of step structure, in
// definition order.
func (fd *FormDef) AllFields() []FieldDef {
	if len(fd.Steps) == 0 {
		return fd.Fields
	}
	var out []FieldDef
	for _, s := range fd.Steps {
		out = append(out, s.Fields...)
	}
	return out
}

// Field returns the named FieldDef.
func (fd *FormDef) Field(name string) (FieldDef, bool) {
	for _, f := range fd.AllFields() {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*FormDef)
)

// GetFormDef returns a parsed FormDef by composite ID (“component/form”).
// The boolean is false when the ID is unknown.
func GetFormDef(id string) (*FormDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fd, ok := registry[id]
	return fd, ok
}

// Register inserts or replaces fd in the registry.  fd must come from
// ParseFormDef or LoadFormDef.
func Register(fd *FormDef) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[fd.ID] = fd
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// ParseFormDef parses raw YAML, validates its structure, and returns a
// populated FormDef.  origin names the source in error messages.  It NEVER
// mutates the global registry.
func ParseFormDef(raw []byte, origin string) (*FormDef, error) {
	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", origin, err)
	}
	if err := validateFormDef(&fd, origin); err != nil {
		return nil, err
	}
	return &fd, nil
}

// LoadFormDef reads and parses one YAML file.
func LoadFormDef(path string) (*FormDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form file %s: %w", path, err)
	}
	return ParseFormDef(raw, path)
}

// RegisterFS registers every “*.yaml” under dir in fsys.
func RegisterFS(fsys fs.FS, dir string) error {
	return fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || path.Ext(d.Name()) != ".yaml" {
			return nil
		}
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read form file %s: %w", p, err)
		}
		fd, err := ParseFormDef(raw, p)
		if err != nil {
			return err
		}
		Register(fd)
		return nil
	})
}

// MustRegisterFS is RegisterFS for package init() functions.
func MustRegisterFS(fsys fs.FS, dir string) {
	if err := RegisterFS(fsys, dir); err != nil {
		panic(err)
	}
}

// RegisterForms walks one or more base directories and loads every “*.yaml”
// under “components/*/forms/”.  Directories are processed in order, so the
// last one wins on duplicate IDs.  A missing components directory is not an
// error.
//
// Example:
//
//	err := form.RegisterForms([]string{"/usr/local/etc/milli"})
func RegisterForms(baseDirs []string) error {
	if len(baseDirs) == 0 {
		return errors.New("RegisterForms: no base directories provided")
	}

	for _, base := range baseDirs {
		root := filepath.Join(base, "components")
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".yaml") {
				return nil
			}
			if filepath.Base(filepath.Dir(p)) != "forms" {
				return nil
			}
			fd, err := LoadFormDef(p)
			if err != nil {
				return err
			}
			Register(fd)
			zap.S().Infow("form definition override", "form", fd.ID, "file", p)
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Structural validation
// -----------------------------------------------------------------------------

var knownTypes = map[string]bool{
	"text":     true,
	"email":    true,
	"textarea": true,
	"password": true,
	"number":   true,
	"date":     true,
	"select":   true,
	"radio":    true,
	"checkbox": true,
}

// validateFormDef enforces structural rules that cannot be expressed via
// YAML tags alone, and compiles per-field rules.
func validateFormDef(fd *FormDef, origin string) error {
	if fd.ID == "" {
		return fmt.Errorf("form definition %s: missing required 'id'", origin)
	}

	if len(fd.Fields) > 0 && len(fd.Steps) > 0 {
		return fmt.Errorf("form definition %s: cannot have both 'fields' and 'steps'", origin)
	}
	if len(fd.Fields) == 0 && len(fd.Steps) == 0 {
		return fmt.Errorf("form definition %s: must have 'fields' or 'steps'", origin)
	}

	seen := make(map[string]struct{})
	check := func(f *FieldDef) error {
		if err := validateField(f, origin); err != nil {
			return err
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", origin, f.Name)
		}
		seen[f.Name] = struct{}{}
		return nil
	}

	for i := range fd.Fields {
		if err := check(&fd.Fields[i]); err != nil {
			return err
		}
	}
	for si := range fd.Steps {
		s := &fd.Steps[si]
		if s.ID == "" {
			s.ID = fmt.Sprintf("step%d", si+1)
		}
		for fi := range s.Fields {
			if err := check(&s.Fields[fi]); err != nil {
				return err
			}
		}
	}

	// Unknown action types are tolerated but flagged so developers notice.
	for _, ac := range fd.Actions {
		if !knownActions[ac.Type] {
			zap.S().Warnw("unrecognized form action type", "form", fd.ID, "action", ac.Type)
		}
	}
	return nil
}

// validateField confirms that essential attributes are present and sane.
func validateField(f *FieldDef, origin string) error {
	if f.Name == "" {
		return fmt.Errorf("form %s: field missing 'name'", origin)
	}
	if f.Label == "" {
		return fmt.Errorf("form %s: field '%s' missing 'label'", origin, f.Name)
	}
	if !knownTypes[f.Type] {
		return fmt.Errorf("form %s: field '%s' has unsupported type %q", origin, f.Name, f.Type)
	}

	if f.Pattern != "" {
		re, err := regexp.Compile(f.Pattern)
		if err != nil {
			return fmt.Errorf("form %s: field '%s' invalid regex pattern: %v", origin, f.Name, err)
		}
		f.re = re
	}

	if f.MinLength < 0 || f.MaxLength < 0 {
		return fmt.Errorf("form %s: field '%s' minlength/maxlength cannot be negative", origin, f.Name)
	}
	if f.MaxLength > 0 && f.MinLength > f.MaxLength {
		return fmt.Errorf("form %s: field '%s' minlength greater than maxlength", origin, f.Name)
	}

	if (f.Type == "select" || f.Type == "radio") && len(f.Options) == 0 {
		return fmt.Errorf("form %s: field '%s' needs 'options'", origin, f.Name)
	}
	for _, o := range f.Options {
		if o.Value == "" {
			return fmt.Errorf("form %s: field '%s' has an option without a value", origin, f.Name)
		}
	}

	f.rule = compileRule(f)
	return nil
}
