package flow

import (
	"context"
	"time"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/logging"
	"github.com/hupe1980/fashionagent/tool"
)

// ToolExecutor runs one tool call and converts every failure into a result.
type ToolExecutor interface {
	Execute(ctx context.Context, call core.ToolCall) core.ToolResult
}

// Dispatcher executes the tool calls of one assistant message strictly in
// order, one result per call. Results are never reordered and a failing call
// does not stop the remaining ones.
type Dispatcher struct {
	executor ToolExecutor
	logger   logging.Logger
}

// NewDispatcher creates a Dispatcher. A nil logger selects NoOpLogger.
func NewDispatcher(executor ToolExecutor, logger logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Dispatcher{executor: executor, logger: logger}
}

// Execute runs calls sequentially and returns their results in call order.
func (d *Dispatcher) Execute(ctx context.Context, calls []core.ToolCall) []core.ToolResult {
	results := make([]core.ToolResult, 0, len(calls))
	for _, call := range calls {
		results = append(results, d.executeOne(ctx, call))
	}
	return results
}

func (d *Dispatcher) executeOne(ctx context.Context, call core.ToolCall) (result core.ToolResult) {
	d.logger.Info("tool.call.start", "tool", call.Name, "call_id", call.ID)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tool.call.panic", "tool", call.Name, "recover", r)
			result = tool.ErrorResult(call, tool.PanicError(call.Name, r))
		}
		if result.CallID == "" {
			result.CallID = call.ID
		}
		if result.Name == "" {
			result.Name = call.Name
		}
		d.logger.Info(
			"tool.call.executed",
			"tool", call.Name,
			"call_id", call.ID,
			"status", result.Status,
			"code", result.Code,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	return d.executor.Execute(ctx, call)
}
