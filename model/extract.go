package model

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/hupe1980/fashionagent/core"
)

// Field is one string-valued attribute of an extraction Shape.
type Field struct {
	Name        string
	Description string
}

// Shape describes the structure to extract from free text.
type Shape struct {
	Name        string
	Description string
	Fields      []Field
}

// Schema renders the shape as a JSON schema with optional string properties.
func (s Shape) Schema() map[string]any {
	props := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Name] = map[string]any{
			"type":        "string",
			"description": f.Description,
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
	}
}

// Extraction is the outcome of a structured extraction. Found is false when
// no field carried a value; this is never reported as an error.
type Extraction struct {
	Values map[string]string
	Found  bool
}

// Get returns the value of a field, or "".
func (e Extraction) Get(name string) string { return e.Values[name] }

// StructuredExtractor populates a Shape from text.
type StructuredExtractor interface {
	Extract(ctx context.Context, text string, shape Shape) (Extraction, error)
}

// absent reports whether an extracted value means "nothing found".
func absent(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "none") || strings.EqualFold(v, "null")
}

// ModelExtractor extracts shapes through a tool-calling model: the shape is
// offered as the only tool, the model is forced to call it and the call
// arguments become the values.
type ModelExtractor struct {
	model Model
}

var _ StructuredExtractor = (*ModelExtractor)(nil)

// NewModelExtractor creates an extractor backed by m.
func NewModelExtractor(m Model) *ModelExtractor { return &ModelExtractor{model: m} }

// Extract implements StructuredExtractor.
func (x *ModelExtractor) Extract(ctx context.Context, text string, shape Shape) (Extraction, error) {
	req := Request{
		Instructions: fmt.Sprintf(
			"Extract the %s from the user's text by calling the %s tool. Leave a field empty when the text does not contain it.",
			shape.Description, shape.Name),
		Messages: []core.Message{core.NewUserMessage(text)},
		Tools:      []ToolDefinition{NewToolDefinition(shape.Name, shape.Description, shape.Schema())},
		ToolChoice: shape.Name,
	}

	resp, err := Invoke(ctx, x.model, req)
	if err != nil {
		return Extraction{}, err
	}

	for _, call := range resp.Message.ToolCalls {
		if call.Name != shape.Name {
			continue
		}
		var raw map[string]any
		if len(call.Arguments) > 0 {
			if err := json.Unmarshal(call.Arguments, &raw); err != nil {
				return Extraction{}, core.E("model.extract", core.KindUpstream, fmt.Errorf("decode %s arguments: %w", shape.Name, err))
			}
		}
		return collect(shape, func(name string) string {
			s, _ := raw[name].(string)
			return s
		}), nil
	}

	return Extraction{Values: map[string]string{}}, nil
}

func collect(shape Shape, value func(string) string) Extraction {
	out := Extraction{Values: make(map[string]string, len(shape.Fields))}
	for _, f := range shape.Fields {
		v := value(f.Name)
		if absent(v) {
			continue
		}
		out.Values[f.Name] = strings.TrimSpace(v)
		out.Found = true
	}
	return out
}

// PatternExtractor fills each field with the first match of a regular
// expression. It needs no model round trip.
type PatternExtractor struct {
	patterns map[string]*regexp.Regexp
}

var _ StructuredExtractor = (*PatternExtractor)(nil)

// S3URIPattern matches s3://bucket/key references.
var S3URIPattern = regexp.MustCompile(`s3://[a-z0-9][a-z0-9.\-]{1,61}[a-z0-9]/[^\s"'<>]+`)

// NewPatternExtractor maps field names to patterns.
func NewPatternExtractor(patterns map[string]*regexp.Regexp) *PatternExtractor {
	return &PatternExtractor{patterns: patterns}
}

// Extract implements StructuredExtractor.
func (x *PatternExtractor) Extract(_ context.Context, text string, shape Shape) (Extraction, error) {
	return collect(shape, func(name string) string {
		re, ok := x.patterns[name]
		if !ok {
			return ""
		}
		return strings.TrimRight(re.FindString(text), ".,;:!?)")
	}), nil
}
