// internal/form/validate.go
//
// Forms subsystem: field validation.
//
// Context
//   Validate is the single evaluator of a FormDef.  The contact handler calls
//   it on what the browser posted, and the Go client calls it before any
//   request leaves the process.  Rules come straight from the FieldDef:
//   required, length bounds, and email syntax run through
//   go-playground/validator, while pattern, strict options, and number/date
//   parsing are checked here.
//
// Workflow
//   •  Every FieldDef is visited in definition order.
//   •  Missing and empty values only fail when the field is required.
//   •  The first failing rule per field produces one ErrorField whose Code
//      names the rule and whose Message is the field’s `error` text, or a
//      default.
//   •  Values are checked as submitted.  Nothing is trimmed or escaped, so
//      the lengths users see are the lengths we count.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Violation codes carried by ErrorField.Code.
const (
	CodeRequired    = "required"
	CodeMin         = "min"
	CodeMax         = "max"
	CodeEmail       = "email"
	CodePattern     = "pattern"
	CodeOneOf       = "oneof"
	CodeInvalid     = "invalid"
	CodeInvalidType = "invalid_type"
	CodeInvalidBody = "invalid_body"
	CodeUnknownForm = "unknown_form"
)

// Values is a submission keyed by field name.  A missing key means the field
// was not submitted at all.
type Values map[string]string

// ErrorField describes a single validation failure.  Field is empty for
// form-level problems.
type ErrorField struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

var rules = validator.New()

// -----------------------------------------------------------------------------
// Public API
// -----------------------------------------------------------------------------

// Validate checks in against the registered form formID.  It returns the
// accepted values (declared fields only) and any violations.  A non-empty
// error slice means the submission must be rejected.
func Validate(formID string, in Values) (map[string]string, []ErrorField) {
	fd, ok := GetFormDef(formID)
	if !ok {
		return nil, []ErrorField{{Code: CodeUnknownForm, Message: "Unknown form."}}
	}
	return fd.Validate(in)
}

// Validate checks in against fd.  See the package-level Validate.
func (fd *FormDef) Validate(in Values) (map[string]string, []ErrorField) {
	clean := make(map[string]string)
	var errs []ErrorField

	for _, f := range fd.AllFields() {
		raw, present := in[f.Name]
		if code := f.check(raw, present); code != "" {
			errs = append(errs, ErrorField{Field: f.Name, Code: code, Message: f.message(code)})
			continue
		}
		if present {
			clean[f.Name] = raw
		}
	}
	return clean, errs
}

// -----------------------------------------------------------------------------
// Field-level helpers
// -----------------------------------------------------------------------------

// check returns the code of the first failing rule, or "".
func (f *FieldDef) check(raw string, present bool) string {
	if !present || raw == "" || (f.Type == "checkbox" && raw == "false") {
		if f.Required {
			return CodeRequired
		}
		return ""
	}

	if f.rule != "" {
		if err := rules.Var(raw, f.rule); err != nil {
			var ve validator.ValidationErrors
			if errors.As(err, &ve) && len(ve) > 0 {
				return ve[0].Tag()
			}
			return CodeInvalid
		}
	}

	if f.re != nil && !f.re.MatchString(raw) {
		return CodePattern
	}
	if f.StrictOptions && !f.hasOption(raw) {
		return CodeOneOf
	}

	switch f.Type {
	case "number":
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return CodeInvalid
		}
	case "date":
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return CodeInvalid
		}
	case "checkbox":
		if _, err := strconv.ParseBool(raw); err != nil && raw != "on" {
			return CodeInvalid
		}
	}
	return ""
}

// compileRule turns the length and syntax constraints of f into a validator
// tag.  Presence is handled by check, so the tag never contains "required".
func compileRule(f *FieldDef) string {
	var parts []string
	if f.MinLength > 0 {
		parts = append(parts, "min="+strconv.Itoa(f.MinLength))
	}
	if f.MaxLength > 0 {
		parts = append(parts, "max="+strconv.Itoa(f.MaxLength))
	}
	if f.Type == "email" {
		parts = append(parts, "email")
	}
	return strings.Join(parts, ",")
}

func (f *FieldDef) hasOption(v string) bool {
	for _, o := range f.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// message picks the user-facing text for a violation.
func (f *FieldDef) message(code string) string {
	if f.ErrorMsg != "" {
		return f.ErrorMsg
	}
	switch code {
	case CodeRequired:
		return "This field is required."
	case CodeMin:
		return fmt.Sprintf("Must be at least %d characters.", f.MinLength)
	case CodeMax:
		return fmt.Sprintf("Must be at most %d characters.", f.MaxLength)
	case CodeEmail:
		return "Please enter a valid email address."
	case CodePattern:
		return "Input does not match required format."
	case CodeOneOf:
		return "Please choose one of the listed options."
	case CodeInvalidType:
		return "Expected a text value."
	default:
		return "Invalid input."
	}
}
