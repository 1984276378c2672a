package tool

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/internal/util"
)

// Invocation is a decoded tool call. The set of implementations is closed.
type Invocation interface {
	ToolName() string
	isInvocation()
}

// WeatherArgs are the arguments of the weather tool.
type WeatherArgs struct {
	LocationName string `json:"location_name" jsonschema_description:"Name of the city or place to get the current weather for"`
}

// ImageGenerateArgs are the arguments of the image_generate tool.
type ImageGenerateArgs struct {
	InputQuery string `json:"input_query" jsonschema_description:"The part of the user query that describes the details to be included in the image"`
	Weather    string `json:"weather,omitempty" jsonschema_description:"Output of the weather tool when the user mentioned a location, otherwise None"`
}

// InpaintArgs are the arguments of the inpaint tool.
type InpaintArgs struct {
	Text          string `json:"text" jsonschema_description:"How the user wants the outfit or clothes to look in the new image"`
	Mask          string `json:"mask" jsonschema_description:"The outfit or clothes in the current image that should be changed"`
	ImageLocation string `json:"image_location" jsonschema_description:"The S3 location URI of the user uploaded image"`
}

// OutpaintArgs are the arguments of the outpaint tool.
type OutpaintArgs struct {
	Text          string `json:"text" jsonschema_description:"The desired scene, environment or background for the outfit"`
	Mask          string `json:"mask" jsonschema_description:"The items to keep unchanged, described without instructions such as keep or unchanged"`
	ImageLocation string `json:"image_location" jsonschema_description:"The S3 location URI of the user uploaded image"`
}

// ImageLookupArgs are the arguments of the image_lookup tool.
type ImageLookupArgs struct {
	InputImage string `json:"input_image,omitempty" jsonschema_description:"S3 location URI of the user uploaded image, or None when no image was provided"`
	InputQuery string `json:"input_query,omitempty" jsonschema_description:"The part of the user query describing the item to find, or None"`
}

// HumanInputArgs are the arguments of the human_input tool.
type HumanInputArgs struct {
	Prompt string `json:"prompt" jsonschema_description:"The action or thought for which operator feedback is required"`
}

func (WeatherArgs) ToolName() string       { return NameWeather }
func (ImageGenerateArgs) ToolName() string { return NameImageGenerate }
func (InpaintArgs) ToolName() string       { return NameInpaint }
func (OutpaintArgs) ToolName() string      { return NameOutpaint }
func (ImageLookupArgs) ToolName() string   { return NameImageLookup }
func (HumanInputArgs) ToolName() string    { return NameHumanInput }

func (WeatherArgs) isInvocation()       {}
func (ImageGenerateArgs) isInvocation() {}
func (InpaintArgs) isInvocation()       {}
func (OutpaintArgs) isInvocation()      {}
func (ImageLookupArgs) isInvocation()   {}
func (HumanInputArgs) isInvocation()    {}

type spec struct {
	description string
	schema      map[string]any
	decode      func(raw []byte) (Invocation, error)
}

func decodeInto[T Invocation](normalize func(*T)) func([]byte) (Invocation, error) {
	return func(raw []byte) (Invocation, error) {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		if normalize != nil {
			normalize(&v)
		}
		return v, nil
	}
}

func orNone(s *string) {
	if *s == "" {
		*s = None
	}
}

var order = []string{NameWeather, NameImageGenerate, NameInpaint, NameOutpaint, NameImageLookup, NameHumanInput}

var registry = map[string]spec{
	NameWeather: {
		description: "Finds the current weather at a given location. Call it whenever the user mentions a location, before generating an image.",
		schema:      util.SchemaFor[WeatherArgs](),
		decode:      decodeInto[WeatherArgs](nil),
	},
	NameImageGenerate: {
		description: "Generates an image of clothing from the user's description. Pass the weather tool output as weather when a location was mentioned; otherwise use None.",
		schema:      util.SchemaFor[ImageGenerateArgs](),
		decode:      decodeInto(func(a *ImageGenerateArgs) { orNone(&a.Weather) }),
	},
	NameInpaint: {
		description: "Inpaints the outfit in an uploaded image to the desired style in the same scene. The mask names the clothes to change; the text describes the desired design.",
		schema:      util.SchemaFor[InpaintArgs](),
		decode:      decodeInto[InpaintArgs](nil),
	},
	NameOutpaint: {
		description: "Outpaints an uploaded image: keeps the masked outfit and replaces the surrounding scene, environment or background with the one described by text.",
		schema:      util.SchemaFor[OutpaintArgs](),
		decode:      decodeInto[OutpaintArgs](nil),
	},
	NameImageLookup: {
		description: "Searches the catalog for items similar to an input image and/or description. Use None for inputs that were not provided.",
		schema:      util.SchemaFor[ImageLookupArgs](),
		decode: decodeInto(func(a *ImageLookupArgs) {
			orNone(&a.InputImage)
			orNone(&a.InputQuery)
		}),
	},
	NameHumanInput: {
		description: "Asks the operator for input or feedback on an action or thought.",
		schema:      util.SchemaFor[HumanInputArgs](),
		decode:      decodeInto[HumanInputArgs](nil),
	},
}

// Decode resolves call to its typed Invocation. Unknown names yield a
// ToolError matching ErrUnknownTool; malformed or incomplete arguments yield
// a ToolError with code VALIDATION_ERROR.
func Decode(call core.ToolCall) (Invocation, error) {
	s, ok := registry[call.Name]
	if !ok {
		return nil, NewToolError(call.Name, "unknown tool", ErrCodeInvalidTool)
	}

	raw := []byte(call.Arguments)
	if len(raw) == 0 || string(raw) == "null" {
		raw = []byte("{}")
	}

	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, &ToolError{
			Tool:    call.Name,
			Message: fmt.Sprintf("arguments are not a JSON object: %v", err),
			Code:    ErrCodeValidation,
			Details: err,
		}
	}

	if err := util.ValidateParameters(args, s.schema); err != nil {
		return nil, &ToolError{
			Tool:    call.Name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    ErrCodeValidation,
			Details: err,
		}
	}

	inv, err := s.decode(raw)
	if err != nil {
		return nil, &ToolError{
			Tool:    call.Name,
			Message: fmt.Sprintf("decode arguments: %v", err),
			Code:    ErrCodeValidation,
			Details: err,
		}
	}

	return inv, nil
}
