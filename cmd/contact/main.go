// cmd/contact/main.go
//
// contact – submit the site’s contact form from a terminal.
//
//	contact --endpoint https://milli.example \
//	    --first-name Al --last-name Ex --email a@b.com \
//	    --service chatbots --message "Hello there!"
//
// The submission is validated locally with the same form definition the
// server uses; an invalid one is never sent.  Exactly one request is made.
// Exit status is 0 on success and 1 on any failure.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yanizio/milli/internal/contact"
	"github.com/yanizio/milli/internal/form"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		s        contact.Submission
		endpoint string
		timeout  time.Duration
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:           "contact",
		Short:         "Send a contact-form submission to the site",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := contact.NewClient(endpoint, contact.WithHTTPClient(&http.Client{Timeout: timeout}))
			res, err := c.Submit(cmd.Context(), s)
			return report(out, asJSON, res, err)
		},
	}

	f := cmd.Flags()
	f.StringVar(&endpoint, "endpoint", "http://localhost:8080", "site base URL")
	f.DurationVar(&timeout, "timeout", 15*time.Second, "request timeout")
	f.BoolVar(&asJSON, "json", false, "print the server response as JSON")
	f.StringVar(&s.FirstName, "first-name", "", "first name (min 2 characters)")
	f.StringVar(&s.LastName, "last-name", "", "last name (min 2 characters)")
	f.StringVar(&s.Email, "email", "", "email address")
	f.StringVar(&s.Company, "company", "", "company (optional)")
	f.StringVar(&s.Service, "service", "", fmt.Sprintf("service of interest (%s)", serviceList()))
	f.StringVar(&s.Message, "message", "", "message (min 10 characters)")
	return cmd
}

// report prints the outcome and returns a non-nil error for every failure.
func report(out io.Writer, asJSON bool, res *contact.Response, err error) error {
	if asJSON && res != nil {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(res)
		return err
	}

	var se *contact.SubmitError
	switch {
	case err == nil:
		fmt.Fprintln(out, res.Message)
		return nil

	case form.IsValidationError(err):
		printFieldErrors(out, form.FieldErrors(err))
		return err

	case errors.As(err, &se):
		if se.Response != nil {
			fmt.Fprintln(out, se.Response.Message)
			printFieldErrors(out, se.Response.Errors)
		} else {
			fmt.Fprintf(out, "server answered %d\n", se.Status)
		}
		return err

	default:
		fmt.Fprintf(out, "error: %v\n", err)
		return err
	}
}

func printFieldErrors(out io.Writer, errs []form.ErrorField) {
	for _, e := range errs {
		name := e.Field
		if name == "" {
			name = "form"
		}
		fmt.Fprintf(out, "  %s: %s\n", name, e.Message)
	}
}

func serviceList() string {
	var s string
	for i, o := range contact.Services() {
		if i > 0 {
			s += ", "
		}
		s += o.Value
	}
	return s
}
