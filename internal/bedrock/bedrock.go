// Package bedrock holds the narrow Bedrock runtime seam shared by the
// embedding and image synthesis clients.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// Invoker is the subset of the Bedrock runtime API used here.
// *bedrockruntime.Client satisfies it.
type Invoker interface {
	InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// InvokeJSON marshals payload, invokes modelID synchronously and decodes the
// response body into out.
func InvokeJSON(ctx context.Context, client Invoker, modelID string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", modelID, err)
	}

	resp, err := client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("invoke %s: %w", modelID, err)
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", modelID, err)
	}

	return nil
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, in *bedrockruntime.InvokeModelInput) (*bedrockruntime.InvokeModelOutput, error)

// InvokeModel implements Invoker.
func (f InvokerFunc) InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	return f(ctx, in)
}
