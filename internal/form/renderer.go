// internal/form/renderer.go
//
// Forms subsystem: HTML renderer.
//
// Context
//   Given a registered FormDef this file converts the definition into plain,
//   accessible HTML.  Constraints become HTML5 validation attributes and each
//   field’s message is written to `data-error`, so the browser script checks
//   exactly the rules the server enforces before it sends anything.
//
// Workflow
//   •  RenderForm looks up the FormDef by ID, selects the requested step (if
//      multi-step), and writes each field via writeField.
//   •  Required, minlength, maxlength, pattern, and placeholder attributes are
//      attached where relevant.  Select/radio options come from the YAML
//      Options slice.
//   •  When RenderOptions.Action is set, the fields are wrapped in a <form>
//      with `novalidate` so the script, not the browser, shows the messages.
//   •  The caller receives template.HTML so the surrounding template does not
//      double-escape the markup.
//
// Style
//   Output HTML carries no framework classes.  Each input gets id="fld-{name}"
//   and is wrapped in <div class="form-field">.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strconv"
	"strings"
)

// RenderOptions bundles optional parameters influencing HTML output.
type RenderOptions struct {
	// Prefill provides initial field values keyed by field name.
	Prefill map[string]string
	// StepID indicates which step of a multi-step form to render.  Empty
	// string defaults to the first step.
	StepID string
	// Action, when set, wraps the fields in a <form> posting to this URL.
	Action string
	// Submit is the button label used with Action.  Defaults to “Send”.
	Submit string
}

// RenderForm returns the HTML markup for the specified form ID.
func RenderForm(formID string, opts RenderOptions) (template.HTML, error) {
	fd, ok := GetFormDef(formID)
	if !ok {
		return "", fmt.Errorf("RenderForm: unknown form %q", formID)
	}

	fields, stepIndex, err := selectFields(fd, opts.StepID)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if opts.Action != "" {
		buf.WriteString(`<form class="site-form" method="post" action="` + html.EscapeString(opts.Action) +
			`" data-form="` + html.EscapeString(fd.ID) + `" novalidate>` + "\n")
	}
	buf.WriteString(`<div class="form-fields">` + "\n")

	for _, f := range fields {
		if err := writeField(&buf, &f, opts.Prefill); err != nil {
			return "", err
		}
	}

	if stepIndex >= 0 {
		buf.WriteString(`<input type="hidden" name="current_step" value="` + html.EscapeString(fd.Steps[stepIndex].ID) + `">` + "\n")
	}
	buf.WriteString(`</div>` + "\n")

	if opts.Action != "" {
		label := opts.Submit
		if label == "" {
			label = "Send"
		}
		buf.WriteString(`<button type="submit">` + html.EscapeString(label) + `</button>` + "\n")
		buf.WriteString(`</form>`)
	}
	return template.HTML(buf.String()), nil
}

// selectFields returns the FieldDefs to render for the requested step.
func selectFields(fd *FormDef, stepID string) ([]FieldDef, int, error) {
	if len(fd.Steps) == 0 {
		return fd.Fields, -1, nil
	}
	if stepID == "" {
		return fd.Steps[0].Fields, 0, nil
	}
	for i, s := range fd.Steps {
		if s.ID == stepID {
			return s.Fields, i, nil
		}
	}
	return nil, -1, fmt.Errorf("RenderForm: step %q not found in form %q", stepID, fd.ID)
}

// writeField emits HTML for an individual field into buf.
func writeField(buf *bytes.Buffer, f *FieldDef, prefill map[string]string) error {
	val := prefill[f.Name] // nil map reads are fine
	name := html.EscapeString(f.Name)

	buf.WriteString(`<div class="form-field">` + "\n")
	buf.WriteString(`<label for="fld-` + name + `">` + html.EscapeString(f.Label) + `</label>` + "\n")

	common := `id="fld-` + name + `" name="` + name + `"` + constraintAttrs(f)

	switch f.Type {
	case "text", "email", "password", "number", "date":
		buf.WriteString(`<input ` + common + ` type="` + f.Type + `"`)
		if f.Placeholder != "" {
			buf.WriteString(` placeholder="` + html.EscapeString(f.Placeholder) + `"`)
		}
		if val != "" && f.Type != "password" {
			buf.WriteString(` value="` + html.EscapeString(val) + `"`)
		}
		buf.WriteString(`>` + "\n")

	case "textarea":
		buf.WriteString(`<textarea ` + common)
		if f.Rows > 0 {
			buf.WriteString(` rows="` + strconv.Itoa(f.Rows) + `"`)
		}
		if f.Placeholder != "" {
			buf.WriteString(` placeholder="` + html.EscapeString(f.Placeholder) + `"`)
		}
		buf.WriteString(`>` + html.EscapeString(val) + `</textarea>` + "\n")

	case "select":
		buf.WriteString(`<select ` + common + `>` + "\n")
		if f.Placeholder != "" {
			sel := ""
			if val == "" {
				sel = ` selected`
			}
			buf.WriteString(`<option value="" disabled` + sel + `>` + html.EscapeString(f.Placeholder) + `</option>` + "\n")
		}
		for _, opt := range f.Options {
			sel := ""
			if val == opt.Value {
				sel = ` selected`
			}
			buf.WriteString(`<option value="` + html.EscapeString(opt.Value) + `"` + sel + `>` +
				html.EscapeString(opt.Label) + `</option>` + "\n")
		}
		buf.WriteString(`</select>` + "\n")

	case "checkbox":
		checked := ""
		if val != "" && strings.ToLower(val) != "false" {
			checked = ` checked`
		}
		buf.WriteString(`<input ` + common + ` type="checkbox"` + checked + `>` + "\n")

	case "radio":
		for i, opt := range f.Options {
			radioID := fmt.Sprintf("fld-%s-%d", name, i)
			checked := ""
			if val == opt.Value {
				checked = ` checked`
			}
			buf.WriteString(`<div class="radio-option">` + "\n")
			buf.WriteString(`<input id="` + radioID + `" name="` + name + `" type="radio" value="` +
				html.EscapeString(opt.Value) + `"` + checked)
			if f.Required {
				buf.WriteString(` required`)
			}
			buf.WriteString(`>` + "\n")
			buf.WriteString(`<label for="` + radioID + `">` + html.EscapeString(opt.Label) + `</label>` + "\n")
			buf.WriteString(`</div>` + "\n")
		}

	default:
		return fmt.Errorf("writeField: unsupported field type %q in form field %s", f.Type, f.Name)
	}

	// Filled by the page script or a server re-render.
	buf.WriteString(`<span class="error" id="err-` + name + `" aria-live="polite"></span>` + "\n")
	buf.WriteString(`</div>` + "\n")
	return nil
}

// constraintAttrs renders the HTML5 mirror of the field’s server rules.
// Radio inputs carry `required` per option instead.
func constraintAttrs(f *FieldDef) string {
	var sb strings.Builder
	if f.Required && f.Type != "radio" {
		sb.WriteString(` required`)
	}
	if f.MinLength > 0 {
		sb.WriteString(` minlength="` + strconv.Itoa(f.MinLength) + `"`)
	}
	if f.MaxLength > 0 {
		sb.WriteString(` maxlength="` + strconv.Itoa(f.MaxLength) + `"`)
	}
	if f.Pattern != "" {
		sb.WriteString(` pattern="` + html.EscapeString(f.Pattern) + `"`)
	}
	sb.WriteString(` data-error="` + html.EscapeString(f.message(CodeInvalid)) + `"`)
	return sb.String()
}
