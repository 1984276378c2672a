package flow

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/internal/testutil"
	"github.com/hupe1980/fashionagent/tool"
)

// recordingExecutor echoes the call name and records execution order.
type recordingExecutor struct {
	mu      sync.Mutex
	order   []string
	panicOn string
}

func (r *recordingExecutor) Execute(_ context.Context, call core.ToolCall) core.ToolResult {
	r.mu.Lock()
	r.order = append(r.order, call.ID)
	r.mu.Unlock()
	if call.Name == r.panicOn {
		panic("boom")
	}
	return core.ToolResult{CallID: call.ID, Name: call.Name, Output: "ran " + call.Name, Status: core.StatusSuccess, Code: 200}
}

func TestDispatcher_SequentialInOrder(t *testing.T) {
	exec := &recordingExecutor{}
	d := NewDispatcher(exec, nil)

	msg := testutil.NewMessageBuilder().
		Call("weather", `{}`).
		Call("image_generate", `{}`).
		Call("image_lookup", `{}`).
		Build()

	results := d.Execute(context.Background(), msg.ToolCalls)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"call-1", "call-2", "call-3"}, exec.order)
	for i, r := range results {
		assert.Equal(t, msg.ToolCalls[i].ID, r.CallID)
		assert.Equal(t, "ran "+msg.ToolCalls[i].Name, r.Output)
	}
}

func TestDispatcher_PanicBecomesResult(t *testing.T) {
	exec := &recordingExecutor{panicOn: "inpaint"}
	d := NewDispatcher(exec, nil)

	msg := testutil.NewMessageBuilder().Call("inpaint", `{}`).Call("weather", `{}`).Build()

	results := d.Execute(context.Background(), msg.ToolCalls)
	require.Len(t, results, 2)
	assert.False(t, results[0].Succeeded())
	assert.Equal(t, tool.CodeInternal, results[0].Code)
	assert.Contains(t, results[0].Output, "panic recovered")
	assert.Equal(t, "call-1", results[0].CallID)
	assert.True(t, results[1].Succeeded())
}

func TestDispatcher_UnknownToolWithToolset(t *testing.T) {
	d := NewDispatcher(tool.NewToolset(), nil)

	msg := testutil.NewMessageBuilder().Call("teleport", `{"to":"Paris"}`).Build()

	results := d.Execute(context.Background(), msg.ToolCalls)
	require.Len(t, results, 1)
	assert.False(t, results[0].Succeeded())
	assert.Equal(t, tool.CodeBadRequest, results[0].Code)
	assert.True(t, strings.HasPrefix(results[0].Output, "tool error [INVALID_TOOL]"), results[0].Output)
}

func TestDispatcher_Empty(t *testing.T) {
	d := NewDispatcher(&recordingExecutor{}, nil)
	assert.Empty(t, d.Execute(context.Background(), nil))
}
