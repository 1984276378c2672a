// Package tool implements the closed set of fashion assistant tools. Each
// tool is a tagged variant with a typed argument struct; Decode maps a model
// tool call to its variant and Toolset.Execute runs it, converting every
// failure into a core.ToolResult.
package tool

import (
	"fmt"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/internal/util"
	"github.com/hupe1980/fashionagent/model"
)

// Wire names of the tools.
const (
	NameWeather       = "weather"
	NameImageGenerate = "image_generate"
	NameInpaint       = "inpaint"
	NameOutpaint      = "outpaint"
	NameImageLookup   = "image_lookup"
	NameHumanInput    = "human_input"
)

// None is the sentinel for an absent optional argument.
const None = "None"

// HTTP-like result codes.
const (
	CodeOK         = 200
	CodeBadRequest = 400
	CodeNotFound   = 404
	CodeInternal   = 500
)

// ToolError codes.
const (
	ErrCodeInvalidTool = "INVALID_TOOL"
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeExecution   = "EXECUTION_ERROR"
	ErrCodePanic       = "PANIC"
)

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur while resolving or executing a tool call.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// Is matches ErrUnknownTool by code and classifies resolution and
// validation failures as core.ErrInvalidInput.
func (e *ToolError) Is(target error) bool {
	switch t := target.(type) {
	case *ToolError:
		return t.Tool == "" && t.Code == e.Code
	case *core.Error:
		return t == core.ErrInvalidInput && (e.Code == ErrCodeInvalidTool || e.Code == ErrCodeValidation)
	}
	return false
}

// Unwrap exposes an error carried in Details.
func (e *ToolError) Unwrap() error {
	err, _ := e.Details.(error)
	return err
}

// Status maps the error code to a result code.
func (e *ToolError) Status() int {
	if e.Code == ErrCodePanic || e.Code == ErrCodeExecution {
		return CodeInternal
	}
	return CodeBadRequest
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// PanicError wraps a recovered panic value.
func PanicError(tool string, r any) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: fmt.Sprintf("panic recovered: %v", r),
		Code:    ErrCodePanic,
	}
}

// ErrUnknownTool matches, under errors.Is, any ToolError for an unknown tool name.
var ErrUnknownTool = &ToolError{Code: ErrCodeInvalidTool}

// Definitions returns the tool catalog offered to the reasoning model in a
// stable order. human_input is only listed when includeHuman is set.
func Definitions(includeHuman bool) []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(registry))
	for _, name := range order {
		if name == NameHumanInput && !includeHuman {
			continue
		}
		s := registry[name]
		defs = append(defs, model.NewToolDefinition(name, s.description, s.schema))
	}
	return defs
}

// Names returns the wire names of all tools.
func Names() []string { return append([]string(nil), order...) }

func success(call core.ToolCall, output string) core.ToolResult {
	return core.ToolResult{CallID: call.ID, Name: call.Name, Output: output, Status: core.StatusSuccess, Code: CodeOK}
}

func failure(call core.ToolCall, code int, output string) core.ToolResult {
	return core.ToolResult{CallID: call.ID, Name: call.Name, Output: output, Status: core.StatusFailure, Code: code}
}

// ErrorResult converts err into a failure result for call.
func ErrorResult(call core.ToolCall, err error) core.ToolResult {
	code := CodeInternal
	if te, ok := err.(*ToolError); ok {
		code = te.Status()
	}
	return failure(call, code, err.Error())
}
