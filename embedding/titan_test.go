package embedding

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/internal/bedrock"
)

func vectorResponse(n int) []byte {
	v := make([]float32, n)
	for i := range v {
		v[i] = 0.5
	}
	b, _ := json.Marshal(map[string]any{"embedding": v})
	return b
}

func TestTitanEmbedder_ImageAndText(t *testing.T) {
	var captured map[string]any
	var model string
	inv := bedrock.InvokerFunc(func(_ context.Context, in *bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
		model = aws.ToString(in.ModelId)
		require.NoError(t, json.Unmarshal(in.Body, &captured))
		return &bedrockruntime.InvokeModelOutput{Body: vectorResponse(384)}, nil
	})

	emb, err := NewTitanEmbedder(inv, func(o *Options) { o.Dimensions = 384 })
	require.NoError(t, err)

	vec, err := emb.Embed(context.Background(), core.EmbeddingInput{Image: []byte("img"), Text: "red coat"})
	require.NoError(t, err)
	assert.Len(t, vec, 384)
	assert.Equal(t, DefaultModelID, model)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("img")), captured["inputImage"])
	assert.Equal(t, "red coat", captured["inputText"])
	assert.Equal(t, map[string]any{"outputEmbeddingLength": float64(384)}, captured["embeddingConfig"])
}

func TestTitanEmbedder_RejectsUnsupportedDimension(t *testing.T) {
	_, err := NewTitanEmbedder(bedrock.InvokerFunc(nil), func(o *Options) { o.Dimensions = 512 })
	assert.ErrorIs(t, err, core.ErrConfig)
}

func TestTitanEmbedder_EmptyInput(t *testing.T) {
	calls := 0
	inv := bedrock.InvokerFunc(func(context.Context, *bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
		calls++
		return nil, nil
	})
	emb, err := NewTitanEmbedder(inv)
	require.NoError(t, err)

	_, err = emb.Embed(context.Background(), core.EmbeddingInput{})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Zero(t, calls)
}

func TestTitanEmbedder_UpstreamErrors(t *testing.T) {
	failing := bedrock.InvokerFunc(func(context.Context, *bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
		return nil, errors.New("timeout")
	})
	emb, err := NewTitanEmbedder(failing)
	require.NoError(t, err)
	_, err = emb.Embed(context.Background(), core.EmbeddingInput{Text: "x"})
	assert.ErrorIs(t, err, core.ErrUpstream)

	short := bedrock.InvokerFunc(func(context.Context, *bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error) {
		return &bedrockruntime.InvokeModelOutput{Body: vectorResponse(3)}, nil
	})
	emb, err = NewTitanEmbedder(short)
	require.NoError(t, err)
	_, err = emb.Embed(context.Background(), core.EmbeddingInput{Text: "x"})
	assert.ErrorIs(t, err, core.ErrUpstream)
}

func TestIsSupportedDimension(t *testing.T) {
	for _, d := range []int{256, 384, 1024} {
		assert.True(t, IsSupportedDimension(d))
	}
	assert.False(t, IsSupportedDimension(768))
}
