package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hupe1980/fashionagent"
	"github.com/hupe1980/fashionagent/actiongroup"
	"github.com/hupe1980/fashionagent/config"
	"github.com/hupe1980/fashionagent/flow"
	"github.com/hupe1980/fashionagent/model"
	"github.com/hupe1980/fashionagent/tool"
)

// offlineConfig writes a configuration that builds without remote services.
func offlineConfig(t *testing.T) string {
	t.Helper()
	for _, k := range []string{config.EnvRegion, config.EnvBucket, config.EnvIndexHost, config.EnvIndexName, config.EnvEmbeddingSize} {
		t.Setenv(k, "")
	}
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Reasoning.Provider = config.ProviderScripted
	cfg.Index.Path = filepath.Join(dir, "catalog.db")
	cfg.Session.Path = filepath.Join(dir, "sessions.db")

	path := filepath.Join(dir, "fashionagent.yaml")
	require.NoError(t, cfg.Save(path))
	return path
}

func TestBuildEvent_FromParams(t *testing.T) {
	invokeParams = []string{"location_name=New York", "unit=f=x"}
	invokeEvent = ""
	invokeGroup = "fashion-tools"
	defer func() { invokeParams = nil }()

	ev, err := buildEvent(nil, []string{"/weather"})
	require.NoError(t, err)
	assert.Equal(t, "/weather", ev.APIPath)
	assert.Equal(t, "fashion-tools", ev.ActionGroup)

	v, ok := ev.Param("location_name")
	require.True(t, ok)
	assert.Equal(t, "New York", v)
	v, _ = ev.Param("unit")
	assert.Equal(t, "f=x", v)
}

func TestBuildEvent_Errors(t *testing.T) {
	invokeEvent = ""
	invokeParams = []string{"novalue"}
	defer func() { invokeParams = nil }()

	_, err := buildEvent(nil, []string{"/weather"})
	assert.ErrorContains(t, err, "invalid parameter")

	_, err = buildEvent(nil, nil)
	assert.Error(t, err)
}

func TestBuildEvent_FromStdin(t *testing.T) {
	invokeEvent = "-"
	defer func() { invokeEvent = "" }()

	ev, err := buildEvent(strings.NewReader(`{"actionGroup":"ag","apiPath":"/outpaint","httpMethod":"POST","parameters":[{"name":"mask","value":"shirt"}]}`), nil)
	require.NoError(t, err)
	assert.Equal(t, "/outpaint", ev.APIPath)
	v, _ := ev.Param("mask")
	assert.Equal(t, "shirt", v)
}

func TestInvokeCmd_UnknownPath(t *testing.T) {
	logger = zap.NewNop()
	configPath = offlineConfig(t)
	invokeEvent = ""
	invokeParams = nil

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())

	require.NoError(t, runInvoke(cmd, []string{"/teleport"}))

	var resp actiongroup.Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, tool.CodeBadRequest, resp.StatusCode())
	assert.Equal(t, "Unknown API path", resp.BodyText())
	assert.Equal(t, actiongroup.MessageVersion, resp.MessageVersion)
}

func TestReadCatalog(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dress.jpg"), []byte("jpg"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dress.txt"), []byte(" red summer dress \n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "shoes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shoes", "boot.PNG"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("skip"), 0o644))

	images, err := readCatalog(dir)
	require.NoError(t, err)
	require.Len(t, images, 2)

	assert.Equal(t, "dress", images[0].ID)
	assert.Equal(t, "red summer dress", images[0].Text)
	assert.Equal(t, "boot", images[1].ID)
	assert.Empty(t, images[1].Text)
}

func TestChatHandler(t *testing.T) {
	m := model.NewScriptedModel("scripted", model.Reply("Try a trench coat"))
	agent := fashionagent.New(m, tool.NewToolset(), func(o *fashionagent.Options) {
		o.Flow = []func(o *flow.Options){func(o *flow.Options) {
			o.Extractor = model.NewPatternExtractor(nil)
		}}
	})
	srv := httptest.NewServer(chatHandler(agent))
	defer srv.Close()

	resp, err := http.Post(srv.URL, "application/json", strings.NewReader(`{"session_id":"s1","text":"rainy day outfit"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body chatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Try a trench coat", body.Reply)
	assert.Equal(t, "s1", body.SessionID)

	bad, err := http.Post(srv.URL, "application/json", strings.NewReader(`{"text":"no session"}`))
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}
