// Package contact holds the contact-form submission model, the JSON wire
// types of POST /api/contact, and a Go client for it.
//
// The rules a Submission must satisfy live in forms/contact.yaml, embedded
// below and registered with the form subsystem at init.  The server handler
// and Client both validate through form, so they cannot disagree.
package contact

import (
	"embed"

	"github.com/yanizio/milli/internal/form"
)

// FormID is the registry key of the contact form definition.
const FormID = "contact/contact"

// Endpoint is the path the page script and Client post to.
const Endpoint = "/api/contact"

//go:embed forms/*.yaml
var formsFS embed.FS

func init() { form.MustRegisterFS(formsFS, "forms") }

// Service identifiers offered by the contact form.
const (
	ServiceWorkflowAutomation  = "workflow-automation"
	ServiceEnterpriseSolutions = "enterprise-solutions"
	ServiceChatbots            = "chatbots"
	ServiceOther               = "other"
)

// Submission is one contact-form entry.  Company is optional.
type Submission struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Company   string `json:"company,omitempty"`
	Service   string `json:"service"`
	Message   string `json:"message"`
}

// Values converts s to form values.  An empty Company is left out, matching
// what the JSON encoding sends.
func (s Submission) Values() form.Values {
	v := form.Values{
		"firstName": s.FirstName,
		"lastName":  s.LastName,
		"email":     s.Email,
		"service":   s.Service,
		"message":   s.Message,
	}
	if s.Company != "" {
		v["company"] = s.Company
	}
	return v
}

// FromValues builds a Submission from validated form values.
func FromValues(v map[string]string) Submission {
	return Submission{
		FirstName: v["firstName"],
		LastName:  v["lastName"],
		Email:     v["email"],
		Company:   v["company"],
		Service:   v["service"],
		Message:   v["message"],
	}
}

// Validate returns a field → message map of every violation, or nil when s
// is valid.
func (s Submission) Validate() map[string]string {
	_, errs := form.Validate(FormID, s.Values())
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field] = e.Message
	}
	return out
}

// Check is Validate as an error.  The error satisfies form.IsValidationError
// and form.FieldErrors returns the ordered violations.
func (s Submission) Check() error {
	_, err := form.Check(FormID, s.Values())
	return err
}

// Services returns the offered service options in display order.
func Services() []form.OptionDef {
	fd, ok := form.GetFormDef(FormID)
	if !ok {
		return nil
	}
	f, _ := fd.Field("service")
	return f.Options
}
