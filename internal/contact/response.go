package contact

import "github.com/yanizio/milli/internal/form"

// Messages returned by POST /api/contact.
const (
	MsgSuccess    = "Thank you for contacting us. We'll get back to you soon."
	MsgInvalid    = "Invalid form data"
	MsgUnexpected = "An error occurred processing your request. Please try again later."
)

// Response is the JSON body of every POST /api/contact answer.  Errors is
// only present on 400.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  []form.ErrorField `json:"errors,omitempty"`
}

// Success is the 200 body.
func Success() Response { return Response{Success: true, Message: MsgSuccess} }

// Invalid is the 400 body.
func Invalid(errs []form.ErrorField) Response {
	return Response{Success: false, Message: MsgInvalid, Errors: errs}
}

// Unexpected is the 500 body.
func Unexpected() Response { return Response{Success: false, Message: MsgUnexpected} }
