// internal/view/funcs.go
//
// Template helpers available to every Engine.
//
//	{{ form "contact/contact" (dict "Action" "/api/contact") }}
//	{{ device .Info }}  {{ if isBot .Info }}…{{ end }}
package view

import (
	"html/template"

	"github.com/yanizio/milli/internal/form"
	"github.com/yanizio/milli/internal/requestinfo"
)

// FuncMap returns the helper set.  UA helpers accept a nil
// *requestinfo.RequestInfo and return zero values.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dict": dict,
		"form": formFunc,
		"device": func(ri *requestinfo.RequestInfo) string {
			if ri == nil {
				return ""
			}
			return ri.UA.Device
		},
		"isBot": func(ri *requestinfo.RequestInfo) bool { return ri != nil && ri.UA.IsBot },
		"lang": func(ri *requestinfo.RequestInfo) string {
			if ri == nil || ri.UA.PrimaryLang == "" {
				return "en"
			}
			return ri.UA.PrimaryLang
		},
	}
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}

// formFunc renders a registered form.  Recognised params are Action, Submit,
// and Step.  Errors surface as an HTML comment so a broken definition never
// takes the page down.
func formFunc(id string, params map[string]any) template.HTML {
	opts := form.RenderOptions{}
	opts.Action, _ = params["Action"].(string)
	opts.Submit, _ = params["Submit"].(string)
	opts.StepID, _ = params["Step"].(string)

	html, err := form.RenderForm(id, opts)
	if err != nil {
		return template.HTML("<!-- form error -->")
	}
	return html
}
