package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleArgs struct {
	Location string `json:"location_name" jsonschema_description:"City to look up"`
	Weather  string `json:"weather,omitempty"`
}

func TestSchemaFor(t *testing.T) {
	schema := SchemaFor[sampleArgs]()

	assert.Equal(t, "object", schema["type"])
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "location_name")
	assert.Contains(t, props, "weather")

	loc := props["location_name"].(map[string]any)
	assert.Equal(t, "City to look up", loc["description"])
	assert.ElementsMatch(t, []string{"location_name"}, requiredFields(schema))
}

func TestSchemaFor_EmptyStruct(t *testing.T) {
	schema := SchemaFor[struct{}]()
	assert.Equal(t, "object", schema["type"])
	assert.NotNil(t, schema["properties"])
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		"required": []any{"x"},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"x": 5}, schema))

	err := ValidateParameters(map[string]any{}, schema)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "x", vErr.Field)

	err = ValidateParameters(map[string]any{"x": "not-int"}, schema)
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "expected type integer")
}

func TestRenderTemplate(t *testing.T) {
	out, err := RenderTemplate("image: {{default \"None\" .input_image}}", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "image: None", out)

	out, err = RenderTemplate("image: {{.input_image}} & more", map[string]any{"input_image": "s3://b/k.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "image: s3://b/k.jpg & more", out)

	out, err = RenderTemplate("plain", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain", out)
}

func TestPrompt_NoneAndPresent(t *testing.T) {
	p, err := ParsePrompt(`{{ default "no image" .input_image }}{{ if present .database }} db={{ .database }}{{ end }}`)
	require.NoError(t, err)

	out, err := p.Render(map[string]any{"input_image": "None", "database": ""})
	require.NoError(t, err)
	assert.Equal(t, "no image", out)

	out, err = p.Render(map[string]any{"input_image": "s3://b/a.jpg", "database": "catalog"})
	require.NoError(t, err)
	assert.Equal(t, "s3://b/a.jpg db=catalog", out)
}

func TestParsePrompt_Invalid(t *testing.T) {
	_, err := ParsePrompt("{{ .input_image ")
	assert.Error(t, err)
}
