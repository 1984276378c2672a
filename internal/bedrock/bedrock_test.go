package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvokeJSON(t *testing.T) {
	var gotModel string
	var gotBody map[string]any
	inv := InvokerFunc(func(_ context.Context, in *bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
		gotModel = aws.ToString(in.ModelId)
		require.NoError(t, json.Unmarshal(in.Body, &gotBody))
		return &bedrockruntime.InvokeModelOutput{Body: []byte(`{"ok":true}`)}, nil
	})

	var out struct {
		OK bool `json:"ok"`
	}
	err := InvokeJSON(context.Background(), inv, "model-x", map[string]any{"a": 1}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, "model-x", gotModel)
	assert.Equal(t, float64(1), gotBody["a"])
}

func TestInvokeJSON_Errors(t *testing.T) {
	failing := InvokerFunc(func(context.Context, *bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
		return nil, errors.New("throttled")
	})
	var out map[string]any
	err := InvokeJSON(context.Background(), failing, "m", map[string]any{}, &out)
	assert.ErrorContains(t, err, "throttled")

	garbage := InvokerFunc(func(context.Context, *bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
		return &bedrockruntime.InvokeModelOutput{Body: []byte("not json")}, nil
	})
	err = InvokeJSON(context.Background(), garbage, "m", map[string]any{}, &out)
	assert.ErrorContains(t, err, "decode m response")
}
