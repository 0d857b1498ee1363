// internal/form/actions.go
//
// Forms subsystem: post-submit actions.
//
// Context
//   A FormDef may list actions to run after validation succeeds.  The site
//   only supports “log”, which writes the accepted values to the structured
//   log for operators.  Delivery actions (email, store, webhook) are not
//   part of this site; they are skipped with a warning so a copied
//   definition never fails silently.
//
//   Action params:
//     log:
//       message  log line text, default “form submission”
//       omit     list of field names left out of the log line
//
//------------------------------------------------------------------------------

package form

import (
	"context"

	"go.uber.org/zap"

	"github.com/yanizio/milli/internal/logger"
)

var knownActions = map[string]bool{
	"log": true,
}

// ExecuteActions performs all YAML-declared actions.  Failures are logged
// but never returned, keeping the user flow uninterrupted.
func ExecuteActions(ctx context.Context, fd *FormDef, data map[string]string) {
	log := logger.FromContext(ctx)
	for _, ac := range fd.Actions {
		switch ac.Type {
		case "log":
			runLog(log, fd, ac.Params, data)
		default:
			log.Warnw("form action skipped", "form", fd.ID, "action", ac.Type, "reason", "unsupported")
		}
	}
}

func runLog(log *zap.SugaredLogger, fd *FormDef, p map[string]any, data map[string]string) {
	msg, _ := p["message"].(string)
	if msg == "" {
		msg = "form submission"
	}

	omit := make(map[string]bool)
	if list, ok := p["omit"].([]any); ok {
		for _, v := range list {
			if s, ok := v.(string); ok {
				omit[s] = true
			}
		}
	}

	kv := []any{"form", fd.ID}
	for _, f := range fd.AllFields() {
		v, ok := data[f.Name]
		if !ok || omit[f.Name] {
			continue
		}
		kv = append(kv, f.Name, v)
	}
	log.Infow(msg, kv...)
}
