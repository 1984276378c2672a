package tool

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fashionagent/artifact"
	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/internal/testutil"
	"github.com/hupe1980/fashionagent/retrieval"
)

// -------------------- Decoding & Catalog Tests --------------------

func call(name, args string) core.ToolCall {
	return core.ToolCall{ID: "call-1", Name: name, Arguments: []byte(args)}
}

func TestDefinitions(t *testing.T) {
	defs := Definitions(false)
	require.Len(t, defs, 5)
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Function.Name
		assert.Equal(t, "function", d.Type)
		assert.NotEmpty(t, d.Function.Description)
	}
	assert.Equal(t, []string{NameWeather, NameImageGenerate, NameInpaint, NameOutpaint, NameImageLookup}, names)

	assert.Len(t, Definitions(true), 6)

	props := defs[1].Function.Parameters["properties"].(map[string]any)
	assert.Contains(t, props, "input_query")
	assert.Contains(t, props, "weather")
	assert.ElementsMatch(t, []any{"input_query"}, defs[1].Function.Parameters["required"])
}

func TestDecode(t *testing.T) {
	inv, err := Decode(call(NameImageGenerate, `{"input_query":"a red wool coat"}`))
	require.NoError(t, err)
	assert.Equal(t, ImageGenerateArgs{InputQuery: "a red wool coat", Weather: None}, inv)

	inv, err = Decode(call(NameImageLookup, `{}`))
	require.NoError(t, err)
	assert.Equal(t, ImageLookupArgs{InputImage: None, InputQuery: None}, inv)

	inv, err = Decode(call(NameWeather, `{"location_name":"Paris"}`))
	require.NoError(t, err)
	assert.Equal(t, NameWeather, inv.ToolName())
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(call("teleport", `{}`))
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Contains(t, err.Error(), "tool error [INVALID_TOOL]")

	_, err = Decode(call(NameInpaint, `{"text":"add a scarf"}`))
	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrCodeValidation, te.Code)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = Decode(call(NameWeather, `{"location_name":42}`))
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrCodeValidation, te.Code)

	_, err = Decode(call(NameWeather, `not json`))
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CodeBadRequest, te.Status())
}

// -------------------- Tool Behaviour Tests --------------------

type fixture struct {
	store  *artifact.InMemoryStore
	synth  *testutil.Synthesizer
	emb    *testutil.Embedder
	index  *testutil.Index
	geo    *testutil.Geocoder
	wx     *testutil.Weather
	toolst *Toolset
}

func newFixture(t *testing.T, optFns ...func(o *Options)) *fixture {
	t.Helper()
	f := &fixture{
		store: artifact.NewInMemoryStore("s3://fashion-bucket"),
		synth: &testutil.Synthesizer{},
		emb:   &testutil.Embedder{},
		index: &testutil.Index{},
		geo:   &testutil.Geocoder{Places: map[string]core.Coordinates{"Paris": {Latitude: 48.85, Longitude: 2.35}}},
		wx:    &testutil.Weather{Observation: core.CurrentWeather{Temperature: 50.5, ConditionCode: 3}},
	}
	engine := retrieval.New(f.emb, f.index, f.store)
	f.toolst = NewToolset(append([]func(o *Options){func(o *Options) {
		o.Artifacts = f.store
		o.Synthesizer = f.synth
		o.Retriever = engine
		o.Geocoder = f.geo
		o.Weather = f.wx
		o.IntN = func(int) int { return 7 }
	}}, optFns...)...)
	return f
}

var genPattern = regexp.MustCompile(`^s3://fashion-bucket/OutputImages/gen_image_\d+\.jpg$`)

func TestImageGenerate_WritesOneArtifact(t *testing.T) {
	f := newFixture(t)

	res := f.toolst.Execute(context.Background(), call(NameImageGenerate, `{"input_query":"a red wool coat","weather":"None"}`))
	require.True(t, res.Succeeded(), res.Output)
	assert.Regexp(t, genPattern, res.Output)
	assert.Equal(t, CodeOK, res.Code)
	assert.Equal(t, "call-1", res.CallID)
	assert.Equal(t, 1, f.store.Len())

	require.Len(t, f.synth.Requests, 1)
	req := f.synth.Requests[0]
	assert.Equal(t, core.TaskTextToImage, req.TaskType)
	assert.Equal(t, "a red wool coat", req.Params["text"])
	assert.Equal(t, 1, req.Count)
	assert.Zero(t, req.Seed)
}

func TestImageGenerate_WeatherPrompt(t *testing.T) {
	f := newFixture(t)

	res := f.toolst.Execute(context.Background(), call(NameImageGenerate, `{"input_query":"a linen shirt","weather":"Clear sky"}`))
	require.True(t, res.Succeeded())
	assert.Equal(t, "a linen shirt.Make the clothing suitable for wearing in Clear sky weather conditions.", f.synth.Requests[0].Params["text"])
}

func TestImageGenerate_Failure(t *testing.T) {
	f := newFixture(t)
	f.synth.Err = errors.New("throttled")

	res := f.toolst.Execute(context.Background(), call(NameImageGenerate, `{"input_query":"a coat"}`))
	assert.False(t, res.Succeeded())
	assert.Equal(t, "Image cannot be generated, please try again: see error throttled", res.Output)
	assert.Zero(t, f.store.Len())
}

func TestInpaint_UnreachableSource(t *testing.T) {
	f := newFixture(t)

	res := f.toolst.Execute(context.Background(), call(NameInpaint,
		`{"text":"add a scarf","mask":"the coat","image_location":"s3://fashion-bucket/missing/photo.jpg"}`))
	assert.False(t, res.Succeeded())
	assert.True(t, strings.HasPrefix(res.Output, "Image cannot be inpainted"), res.Output)
	assert.Zero(t, f.store.Len())
	assert.Zero(t, f.synth.Calls())
}

func TestInpaint_WritesToSourceBaseName(t *testing.T) {
	f := newFixture(t)
	src, err := f.store.Put(context.Background(), "uploads/photo.jpg", []byte("original"))
	require.NoError(t, err)

	res := f.toolst.Execute(context.Background(), call(NameInpaint,
		`{"text":"a green dress","mask":"the dress","image_location":"`+src+`"}`))
	require.True(t, res.Succeeded(), res.Output)
	assert.Equal(t, "s3://fashion-bucket/OutputImages/photo.jpg", res.Output)

	req := f.synth.Requests[0]
	assert.Equal(t, core.TaskInpaint, req.TaskType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("original")), req.Params["image"])
	assert.Equal(t, "bad quality, low resolution", req.Params["negativeText"])
	assert.Equal(t, "the dress", req.Params["maskPrompt"])
	assert.Equal(t, "premium", req.Quality)
	assert.Equal(t, 7, req.Seed)
}

func TestOutpaint(t *testing.T) {
	f := newFixture(t)
	src, err := f.store.Put(context.Background(), "uploads/look.jpg", []byte("original"))
	require.NoError(t, err)

	res := f.toolst.Execute(context.Background(), call(NameOutpaint,
		`{"text":"a beach at sunset","mask":"the outfit","image_location":"`+src+`"}`))
	require.True(t, res.Succeeded(), res.Output)
	assert.Equal(t, "s3://fashion-bucket/OutputImages/look.jpg", res.Output)
	assert.Equal(t, "PRECISE", f.synth.Requests[0].Params["outPaintingMode"])

	f.synth.Err = errors.New("bad mask")
	res = f.toolst.Execute(context.Background(), call(NameOutpaint,
		`{"text":"a beach","mask":"x","image_location":"`+src+`"}`))
	assert.Equal(t, "Image cannot be outpainted, please try again: see error bad mask", res.Output)
}

func TestImageLookup_NoInputs(t *testing.T) {
	f := newFixture(t)

	res := f.toolst.Execute(context.Background(), call(NameImageLookup, `{"input_image":"None","input_query":"None"}`))
	assert.False(t, res.Succeeded())
	assert.Equal(t, CodeNotFound, res.Code)
	assert.Equal(t, msgNoInputs, res.Output)
	assert.Zero(t, f.emb.Calls())
	assert.Zero(t, f.index.Calls())
}

func TestImageLookup_NoDatabase(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Retriever = retrieval.New(&testutil.Embedder{}, nil, nil) })

	res := f.toolst.Execute(context.Background(), call(NameImageLookup, `{"input_query":"boots"}`))
	assert.Equal(t, CodeNotFound, res.Code)
	assert.Equal(t, msgNoDatabase, res.Output)
}

func TestImageLookup_StoresFirstHit(t *testing.T) {
	f := newFixture(t)
	f.index.Hits = []core.SimilarityHit{
		{ID: "a", Score: 0.9, Payload: []byte("best")},
		{ID: "b", Score: 0.5, Payload: []byte("second")},
	}

	res := f.toolst.Execute(context.Background(), call(NameImageLookup, `{"input_query":"leather boots"}`))
	require.True(t, res.Succeeded(), res.Output)
	assert.Equal(t, "s3://fashion-bucket/OutputImages/lookup_image_7.jpg", res.Output)

	data, err := f.store.Get(context.Background(), res.Output)
	require.NoError(t, err)
	assert.Equal(t, []byte("best"), data)
}

func TestImageLookup_EmptyResults(t *testing.T) {
	f := newFixture(t)
	f.index.Hits = []core.SimilarityHit{{ID: "a", Score: 0.1}}

	res := f.toolst.Execute(context.Background(), call(NameImageLookup, `{"input_query":"boots"}`))
	assert.Equal(t, CodeNotFound, res.Code)
	assert.Equal(t, msgNoSimilarItem, res.Output)

	src, err := f.store.Put(context.Background(), "uploads/boot.jpg", []byte("boot"))
	require.NoError(t, err)
	res = f.toolst.Execute(context.Background(), call(NameImageLookup, `{"input_image":"`+src+`"}`))
	assert.True(t, res.Succeeded())
	assert.Equal(t, src, res.Output)
}

func TestImageLookup_RetrievalError(t *testing.T) {
	f := newFixture(t)
	f.index.Err = testutil.ErrUnreachable

	res := f.toolst.Execute(context.Background(), call(NameImageLookup, `{"input_query":"boots"}`))
	assert.Equal(t, CodeBadRequest, res.Code)
	assert.Equal(t, msgLookupError, res.Output)
}

func TestWeather(t *testing.T) {
	f := newFixture(t)

	res := f.toolst.Execute(context.Background(), call(NameWeather, `{"location_name":"Paris"}`))
	require.True(t, res.Succeeded())
	assert.Equal(t, "Temperature is 50.5 in Fahrenheit. The weather description is Overcast", res.Output)

	res = f.toolst.Execute(context.Background(), call(NameWeather, `{"location_name":"Atlantis"}`))
	assert.Equal(t, CodeNotFound, res.Code)
	assert.Equal(t, "Error: Could not find location Atlantis", res.Output)

	f.wx.Err = testutil.ErrUnreachable
	res = f.toolst.Execute(context.Background(), call(NameWeather, `{"location_name":"Paris"}`))
	assert.Equal(t, CodeBadRequest, res.Code)
	assert.Equal(t, msgNoWeather, res.Output)
}

func TestWeather_UnknownCodeDegrades(t *testing.T) {
	f := newFixture(t)
	f.wx.Observation = core.CurrentWeather{Temperature: 70, ConditionCode: 42}

	res := f.toolst.Execute(context.Background(), call(NameWeather, `{"location_name":"Paris"}`))
	require.True(t, res.Succeeded())
	assert.Equal(t, "Temperature is 70 in Fahrenheit. The weather description is Unknown condition (code 42)", res.Output)
}

func TestHumanInput(t *testing.T) {
	var out bytes.Buffer
	f := newFixture(t, WithHumanInput(strings.NewReader("longer sleeves\nin navy\nq\nignored\n"), &out))
	assert.True(t, f.toolst.HumanInputEnabled())
	assert.Len(t, f.toolst.Definitions(), 6)

	res := f.toolst.Execute(context.Background(), call(NameHumanInput, `{"prompt":"Which color?"}`))
	require.True(t, res.Succeeded())
	assert.Equal(t, "longer sleeves\nin navy", res.Output)
	assert.Contains(t, out.String(), "Which color?")
}

func TestHumanInput_SharedReaderKeepsRemainder(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("crop top\nq\nnext question\n"))
	f := newFixture(t, WithHumanInput(in, nil))

	res := f.toolst.Execute(context.Background(), call(NameHumanInput, `{"prompt":"Style?"}`))
	require.True(t, res.Succeeded())
	assert.Equal(t, "crop top", res.Output)

	rest, err := in.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "next question\n", rest)
}

func TestHumanInput_Disabled(t *testing.T) {
	f := newFixture(t)
	assert.Len(t, f.toolst.Definitions(), 5)

	res := f.toolst.Execute(context.Background(), call(NameHumanInput, `{"prompt":"?"}`))
	assert.False(t, res.Succeeded())
}

type panicSynth struct{}

func (panicSynth) Synthesize(context.Context, core.SynthesisRequest) ([][]byte, error) {
	panic("nil image")
}

func TestExecute_RecoversPanics(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Synthesizer = panicSynth{} })

	res := f.toolst.Execute(context.Background(), call(NameImageGenerate, `{"input_query":"coat"}`))
	assert.False(t, res.Succeeded())
	assert.Equal(t, CodeInternal, res.Code)
	assert.Contains(t, res.Output, "panic recovered")
}

func TestExecute_UnknownTool(t *testing.T) {
	f := newFixture(t)

	res := f.toolst.Execute(context.Background(), call("teleport", `{}`))
	assert.False(t, res.Succeeded())
	assert.Equal(t, CodeBadRequest, res.Code)
	assert.Contains(t, res.Output, "INVALID_TOOL")
}
