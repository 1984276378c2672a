package util

import (
	"bytes"
	"strings"
	"text/template"
)

// none is the sentinel the prompt and the tools use for an absent value.
const none = "None"

// promptFuncs are available inside every prompt template.
var promptFuncs = template.FuncMap{
	// default returns fallback when v is empty or the "None" sentinel.
	"default": func(fallback, v any) any {
		if s, ok := v.(string); ok && (s == "" || s == none) {
			return fallback
		}
		if v == nil {
			return fallback
		}
		return v
	},
	// present reports whether v carries a value.
	"present": func(v any) bool {
		s, ok := v.(string)
		return v != nil && (!ok || (s != "" && s != none))
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}

// Prompt is a parsed prompt template. Keys missing from the variables
// render as their zero value.
type Prompt struct {
	text string
	tmpl *template.Template // nil for plain text
}

// ParsePrompt parses text once so it can be rendered per request.
func ParsePrompt(text string) (*Prompt, error) {
	if !strings.Contains(text, "{{") {
		return &Prompt{text: text}, nil
	}
	tmpl, err := template.New("prompt").Option("missingkey=zero").Funcs(promptFuncs).Parse(text)
	if err != nil {
		return nil, err
	}
	return &Prompt{text: text, tmpl: tmpl}, nil
}

// Render executes the prompt against vars.
func (p *Prompt) Render(vars map[string]any) (string, error) {
	if p.tmpl == nil {
		return p.text, nil
	}
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderTemplate parses and renders text in one step.
func RenderTemplate(text string, vars map[string]any) (string, error) {
	p, err := ParsePrompt(text)
	if err != nil {
		return "", err
	}
	return p.Render(vars)
}
