package flow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/internal/testutil"
	"github.com/hupe1980/fashionagent/model"
)

func TestInstructionsProcessor(t *testing.T) {
	p := NewInstructionsProcessor("image={{ default \"None\" .input_image }} db={{ .database }}")
	st := testutil.NewStateBuilder("s").Image("s3://b/k.jpg").Database("catalog").Build()

	var req model.Request
	require.NoError(t, p.ProcessRequest(context.Background(), st, &req))
	assert.Equal(t, "image=s3://b/k.jpg db=catalog", req.Instructions)
	assert.Equal(t, "instructions", p.Name())
}

func TestInstructionsProcessor_BadTemplate(t *testing.T) {
	p := NewInstructionsProcessor("{{ .input_image ")
	var req model.Request
	err := p.ProcessRequest(context.Background(), core.NewConversationState("s"), &req)
	assert.Error(t, err)
}

func TestContentsProcessor(t *testing.T) {
	b := testutil.NewMessageBuilder
	st := testutil.NewStateBuilder("s").Messages(
		b().User("hi").Build(),
		b().Call("weather", `{"location_name":"Oslo"}`).Build(),
		b().Result("call-1", "weather", "cold", core.StatusSuccess).Build(),
		b().Assistant("wear a coat").Build(),
		b().User("and for tomorrow?").Build(),
	).Build()

	var req model.Request
	require.NoError(t, NewContentsProcessor(0).ProcessRequest(context.Background(), st, &req))
	assert.Len(t, req.Messages, 5)

	require.NoError(t, NewContentsProcessor(3).ProcessRequest(context.Background(), st, &req))
	require.Len(t, req.Messages, 4, "window extends so it does not start with a tool result")
	assert.Equal(t, core.RoleAssistant, req.Messages[0].Role)
	assert.True(t, req.Messages[0].HasToolCalls())
}

func TestContentsProcessor_KeepsCurrentUserMessage(t *testing.T) {
	b := testutil.NewMessageBuilder
	st := testutil.NewStateBuilder("s").Messages(
		b().User("an outfit for Seattle").Build(),
		b().Call("weather", `{"location_name":"Seattle"}`).Call("image_generate", `{"input_query":"coat"}`).Build(),
		b().Result("call-1", "weather", "rain", core.StatusSuccess).Build(),
		b().Result("call-2", "image_generate", "s3://b/OutputImages/gen_image_1.jpg", core.StatusSuccess).Build(),
	).Build()

	var req model.Request
	require.NoError(t, NewContentsProcessor(3).ProcessRequest(context.Background(), st, &req))
	require.Len(t, req.Messages, 4)
	assert.Equal(t, core.RoleUser, req.Messages[0].Role)
	assert.Equal(t, "an outfit for Seattle", req.Messages[0].Content)

	require.NoError(t, NewContentsProcessor(1).ProcessRequest(context.Background(), st, &req))
	assert.Len(t, req.Messages, 4)
}
