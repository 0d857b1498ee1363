// internal/form/submit.go
//
// Forms subsystem: JSON decoding and the consolidated submit helper.
//
// Context
//   Most handlers want one call that: reads the JSON body, validates input,
//   executes configured actions, and returns the clean map or a validation
//   error.  HandleSubmitJSON provides that so component code stays terse.
//
//   Two failure kinds leave this file.  A validation error (check with
//   IsValidationError, read details with FieldErrors) is the user’s to fix.
//   Anything else, such as a malformed body, is a system failure the caller
//   reports generically.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// validationError wraps []ErrorField and satisfies the error interface.
type validationError struct{ Fields []ErrorField }

func (ve validationError) Error() string { return "form validation failed" }

// IsValidationError reports whether err came from failed validation.
func IsValidationError(err error) bool {
	var ve validationError
	return errors.As(err, &ve)
}

// FieldErrors returns the violations carried by a validation error, or nil.
func FieldErrors(err error) []ErrorField {
	var ve validationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// Check validates in against formID and returns a validation error instead
// of a slice.
func Check(formID string, in Values) (map[string]string, error) {
	clean, errs := Validate(formID, in)
	if len(errs) > 0 {
		return nil, validationError{Fields: errs}
	}
	return clean, nil
}

// HandleSubmitJSON decodes r’s JSON body, validates it against formID, runs
// the form’s actions, and returns the accepted values.
func HandleSubmitJSON(formID string, r *http.Request) (map[string]string, error) {
	fd, ok := GetFormDef(formID)
	if !ok {
		return nil, fmt.Errorf("HandleSubmitJSON: unknown form %q", formID)
	}

	in, typeErrs, err := DecodeJSON(fd, r.Body)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, validationError{Fields: typeErrs}
	}

	clean, errs := fd.Validate(in)
	if errs = mergeErrors(fd, typeErrs, errs); len(errs) > 0 {
		return nil, validationError{Fields: errs}
	}

	ExecuteActions(r.Context(), fd, clean)
	return clean, nil
}

// DecodeJSON reads one JSON object from body and keeps the keys fd declares.
//
// Values that are not JSON strings come back as invalid_type violations (a
// checkbox also accepts a boolean).  A well-formed document that is not an
// object yields one form-level invalid_body violation.  Malformed JSON,
// anything but whitespace after the first value, and read failures are
// returned as the error.
func DecodeJSON(fd *FormDef, body io.Reader) (Values, []ErrorField, error) {
	dec := json.NewDecoder(body)

	var raw map[string]json.RawMessage
	err := dec.Decode(&raw)
	var te *json.UnmarshalTypeError
	if err != nil && !errors.As(err, &te) {
		return nil, nil, fmt.Errorf("decode form %s: %w", fd.ID, err)
	}
	if terr := expectEOF(dec); terr != nil {
		return nil, nil, fmt.Errorf("decode form %s: %w", fd.ID, terr)
	}
	if err != nil || raw == nil { // not an object, or literal null
		return nil, []ErrorField{bodyError()}, nil
	}

	in := make(Values)
	var errs []ErrorField
	for _, f := range fd.AllFields() {
		msg, ok := raw[f.Name]
		if !ok {
			continue
		}
		s, ok := decodeScalar(&f, msg)
		if !ok {
			errs = append(errs, ErrorField{Field: f.Name, Code: CodeInvalidType, Message: f.message(CodeInvalidType)})
			continue
		}
		in[f.Name] = s
	}
	return in, errs, nil
}

// errTrailingData reports bytes after the first JSON value.
var errTrailingData = errors.New("trailing data after JSON value")

// expectEOF fails unless only whitespace follows the decoded value.
func expectEOF(dec *json.Decoder) error {
	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		var se *json.SyntaxError
		if errors.As(err, &se) {
			return errTrailingData
		}
		return err
	default:
		return errTrailingData
	}
}

func decodeScalar(f *FieldDef, msg json.RawMessage) (string, bool) {
	if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return s, true
	}
	if f.Type == "checkbox" {
		var b bool
		if err := json.Unmarshal(msg, &b); err == nil {
			return strconv.FormatBool(b), true
		}
	}
	return "", false
}

func bodyError() ErrorField {
	return ErrorField{Code: CodeInvalidBody, Message: "Expected a JSON object."}
}

// mergeErrors orders violations by field definition, letting a type error
// replace whatever Validate reported for the same field.
func mergeErrors(fd *FormDef, typeErrs, errs []ErrorField) []ErrorField {
	if len(typeErrs) == 0 {
		return errs
	}
	byField := make(map[string]ErrorField, len(typeErrs))
	for _, e := range typeErrs {
		byField[e.Field] = e
	}

	var out []ErrorField
	for _, f := range fd.AllFields() {
		if e, ok := byField[f.Name]; ok {
			out = append(out, e)
			continue
		}
		for _, e := range errs {
			if e.Field == f.Name {
				out = append(out, e)
			}
		}
	}
	return out
}
