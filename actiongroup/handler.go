// Package actiongroup serves the fashion tools through the non-agentic
// action-group protocol: an external agent runtime names an API path and
// passes flat string parameters, and the handler answers with an explicit
// HTTP-like status code. No reasoning model is involved.
package actiongroup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/logging"
	"github.com/hupe1980/fashionagent/tool"
)

// MessageVersion is the protocol version of every Response.
const MessageVersion = "1.0"

// ContentType is the single response body content type.
const ContentType = "application/json"

// Routes maps API paths to tool names.
var Routes = map[string]string{
	"/imageGeneration": tool.NameImageGenerate,
	"/weather":         tool.NameWeather,
	"/image_lookup":    tool.NameImageLookup,
	"/inpaint":         tool.NameInpaint,
	"/outpaint":        tool.NameOutpaint,
}

// Parameter is one named request parameter.
type Parameter struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Value string `json:"value"`
}

// Event is an action-group invocation.
type Event struct {
	MessageVersion string      `json:"messageVersion,omitempty"`
	SessionID      string      `json:"sessionId,omitempty"`
	InputText      string      `json:"inputText,omitempty"`
	ActionGroup    string      `json:"actionGroup"`
	APIPath        string      `json:"apiPath"`
	HTTPMethod     string      `json:"httpMethod"`
	Parameters     []Parameter `json:"parameters,omitempty"`
}

// Param returns the value of the named parameter.
func (e Event) Param(name string) (string, bool) {
	for _, p := range e.Parameters {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Body is the payload for one content type.
type Body struct {
	Body string `json:"body"`
}

// ActionResponse is the inner response of an action-group reply.
type ActionResponse struct {
	ActionGroup    string          `json:"actionGroup"`
	APIPath        string          `json:"apiPath"`
	HTTPMethod     string          `json:"httpMethod"`
	HTTPStatusCode int             `json:"httpStatusCode"`
	ResponseBody   map[string]Body `json:"responseBody"`
}

// Response is the reply to an Event.
type Response struct {
	MessageVersion string         `json:"messageVersion"`
	Response       ActionResponse `json:"response"`
}

// StatusCode returns the HTTP-like status of the response.
func (r Response) StatusCode() int { return r.Response.HTTPStatusCode }

// BodyText returns the application/json body.
func (r Response) BodyText() string { return r.Response.ResponseBody[ContentType].Body }

// ToolExecutor runs one tool call. tool.Toolset implements it.
type ToolExecutor interface {
	Execute(ctx context.Context, call core.ToolCall) core.ToolResult
}

// Handler routes action-group events to tools.
type Handler struct {
	tools  ToolExecutor
	logger logging.Logger
}

// NewHandler creates a Handler. A nil logger selects NoOpLogger.
func NewHandler(tools ToolExecutor, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Handler{tools: tools, logger: logger}
}

// Handle processes ev. It never fails: every error is reported through the
// response status code.
func (h *Handler) Handle(ctx context.Context, ev Event) Response {
	h.logger.Info("actiongroup.request", "action_group", ev.ActionGroup, "api_path", ev.APIPath)

	name, ok := Routes[ev.APIPath]
	if !ok {
		h.logger.Warn("actiongroup.unknown_path", "api_path", ev.APIPath)
		return h.respond(ev, tool.CodeBadRequest, "Unknown API path")
	}

	args := make(map[string]string, len(ev.Parameters))
	for _, p := range ev.Parameters {
		args[p.Name] = p.Value
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return h.respond(ev, tool.CodeBadRequest, fmt.Sprintf("encode parameters: %v", err))
	}

	res := h.tools.Execute(ctx, core.ToolCall{ID: core.NewID(), Name: name, Arguments: raw})

	code := res.Code
	if code == 0 {
		code = tool.CodeOK
		if !res.Succeeded() {
			code = tool.CodeBadRequest
		}
	}

	return h.respond(ev, code, res.Output)
}

func (h *Handler) respond(ev Event, code int, body string) Response {
	resp := Response{
		MessageVersion: MessageVersion,
		Response: ActionResponse{
			ActionGroup:    ev.ActionGroup,
			APIPath:        ev.APIPath,
			HTTPMethod:     ev.HTTPMethod,
			HTTPStatusCode: code,
			ResponseBody:   map[string]Body{ContentType: {Body: body}},
		},
	}
	h.logger.Info("actiongroup.response", "api_path", ev.APIPath, "status", code)
	return resp
}

// ServeHTTP accepts a JSON Event in the request body and writes the JSON
// Response. The transport status is 200 whenever the event could be
// decoded; the tool outcome is carried in httpStatusCode.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var ev Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, fmt.Sprintf("invalid event: %v", err), http.StatusBadRequest)
		return
	}

	resp := h.Handle(r.Context(), ev)

	w.Header().Set("Content-Type", ContentType)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("actiongroup.encode.failed", "error", err)
	}
}
