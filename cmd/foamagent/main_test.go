package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"foamagent/internal/config"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func execute(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(config.MapEnvLookup(env))
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigGetReadsEnvironment(t *testing.T) {
	out, err := execute(t, map[string]string{"MODEL_PROVIDER": "bedrock"}, "config", "get", "model_provider")
	require.NoError(t, err)
	assert.Equal(t, "bedrock\n", out)

	out, err = execute(t, nil, "config", "get", "model_provider")
	require.NoError(t, err)
	assert.Equal(t, "openai\n", out)
}

func TestConfigGetUnknownKey(t *testing.T) {
	_, err := execute(t, nil, "config", "get", "max_loops")
	assert.ErrorContains(t, err, `unknown config key "max_loops"`)
}

func TestConfigSetOverridesEnvironment(t *testing.T) {
	out, err := execute(t, map[string]string{"MODEL_VERSION": "gpt-5-mini"},
		"config", "get", "model_version", "--set", "model_version=qwen2.5:32b-instruct")
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5:32b-instruct\n", out)

	_, err = execute(t, nil, "config", "get", "max_loop", "--set", "max_loop=many")
	assert.ErrorContains(t, err, "--set")
}

func TestConfigShowText(t *testing.T) {
	out, err := execute(t, map[string]string{"AZURE_OPENAI_API_VERSION": "2025-01-01"},
		"config", "show", "--set", "case_dir=cavity")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 17)
	assert.Regexp(t, `^azure_api_version\s+2025-01-01\s+environment$`, findLine(lines, "azure_api_version"))
	assert.Regexp(t, `^case_dir\s+cavity\s+override$`, findLine(lines, "case_dir"))
	assert.Regexp(t, `^max_loop\s+10\s+default$`, findLine(lines, "max_loop "))
	assert.Regexp(t, `^azure_endpoint\s+\(empty\)\s+default$`, findLine(lines, "azure_endpoint"))
}

func findLine(lines []string, prefix string) string {
	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

func TestConfigShowYAMLAndJSON(t *testing.T) {
	out, err := execute(t, nil, "config", "show", "-o", "yaml")
	require.NoError(t, err)
	var fromYAML config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))
	assert.Equal(t, 3600, fromYAML.MaxTimeLimit)
	assert.Equal(t, "runs", filepath.Base(fromYAML.RunDirectory))

	out, err = execute(t, nil, "config", "show", "-o", "json")
	require.NoError(t, err)
	var fromJSON map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &fromJSON))
	assert.Equal(t, 3000.0, fromJSON["file_dependency_threshold"])
	assert.Equal(t, "2024-12-01-preview", fromJSON["azure_api_version"])

	_, err = execute(t, nil, "config", "show", "-o", "toml")
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestConfigFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foamagent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_time_limit: 600\nmodel_version: from-file\n"), 0o600))

	out, err := execute(t, nil, "config", "show", "--config", path, "--set", "model_version=from-flag")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Regexp(t, `^max_time_limit\s+600\s+file$`, findLine(lines, "max_time_limit"))
	assert.Regexp(t, `^model_version\s+from-flag\s+override$`, findLine(lines, "model_version"))
}

func TestConfigFileFromInjectedEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foamagent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_loop: 77\n"), 0o600))

	out, err := execute(t, map[string]string{"FOAMAGENT_CONFIG": path}, "config", "get", "max_loop")
	require.NoError(t, err)
	assert.Equal(t, "77\n", out)

	other := filepath.Join(t.TempDir(), "other.yaml")
	require.NoError(t, os.WriteFile(other, []byte("max_loop: 5\n"), 0o600))
	out, err = execute(t, map[string]string{"FOAMAGENT_CONFIG": path}, "config", "get", "max_loop", "--config", other)
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)
}

func TestProcessEnvironmentIgnoredByInjectedLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foamagent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_loop: 77\n"), 0o600))
	t.Setenv("FOAMAGENT_CONFIG", path)
	t.Setenv("MODEL_PROVIDER", "ollama")

	out, err := execute(t, nil, "config", "show")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Regexp(t, `^max_loop\s+10\s+default$`, findLine(lines, "max_loop "))
	assert.Regexp(t, `^model_provider\s+openai\s+default$`, findLine(lines, "model_provider"))
}

func TestAPIKeyFollowsTrimmedProvider(t *testing.T) {
	c := &cli{env: config.MapEnvLookup(map[string]string{
		"OPENAI_API_KEY":       "sk-openai",
		"AZURE_OPENAI_API_KEY": "azure-key",
	})}

	assert.Equal(t, "azure-key", c.apiKey(config.Config{ModelProvider: " azure_openai "}))
	assert.Equal(t, "sk-openai", c.apiKey(config.Config{ModelProvider: "openai"}))
}

func TestConfigSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foamagent.yaml")

	out, err := execute(t, nil, "config", "save", "--config", path, "--set", "max_loop=30", "--set", "case_dir=pitzDaily")
	require.NoError(t, err)
	assert.Equal(t, "Saved max_loop, case_dir to "+path+"\n", out)

	out, err = execute(t, nil, "config", "get", "max_loop", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "30\n", out)

	_, err = execute(t, nil, "config", "save", "--set", "max_loop=30")
	assert.ErrorContains(t, err, "--config is required")

	_, err = execute(t, nil, "config", "save", "--config", path)
	assert.ErrorContains(t, err, "nothing to save")
}

func TestConfigEnvExports(t *testing.T) {
	out, err := execute(t, map[string]string{
		"MODEL_PROVIDER":        "azure_openai",
		"AZURE_OPENAI_ENDPOINT": "https://foam.openai.azure.com/",
	}, "config", "env", "--set", "azure_deployment_name=it's")
	require.NoError(t, err)

	assert.Contains(t, out, "export MODEL_PROVIDER='azure_openai'\n")
	assert.Contains(t, out, "export AZURE_OPENAI_ENDPOINT='https://foam.openai.azure.com/'\n")
	assert.Contains(t, out, `export AZURE_OPENAI_DEPLOYMENT_NAME='it'\''s'`+"\n")
	assert.NotContains(t, out, "AZURE_OPENAI_MODEL_NAME")
}

func TestConfigValidate(t *testing.T) {
	out, err := execute(t, nil, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "ok openai / gpt-5-mini")

	out, err = execute(t, map[string]string{"MODEL_PROVIDER": "azure_openai"}, "config", "validate")
	assert.ErrorContains(t, err, "configuration has 2 error(s)")
	assert.Contains(t, out, "error [azure-endpoint] missing azure_endpoint for azure_openai provider")
	assert.Contains(t, out, "warning [azure-model-name]")
}

func TestConfigValidateCheckClient(t *testing.T) {
	env := map[string]string{
		"MODEL_PROVIDER":                         "azure_openai",
		"AZURE_OPENAI_ENDPOINT":                  "https://foam.openai.azure.com/",
		"AZURE_OPENAI_DEPLOYMENT_NAME":           "chat",
		"AZURE_OPENAI_MODEL_NAME":                "gpt-4o-mini",
		"AZURE_OPENAI_EMBEDDING_DEPLOYMENT_NAME": "embed",
		"AZURE_OPENAI_API_KEY":                   "azure-secret-key-123",
	}
	out, err := execute(t, env, "config", "validate", "--check-client")
	require.NoError(t, err)
	assert.Contains(t, out, "ok azure_openai / chat")

	_, err = execute(t, map[string]string{"MODEL_PROVIDER": "bedrock"}, "config", "validate", "--check-client")
	assert.ErrorContains(t, err, "resolve bedrock client")
}

func TestTokensCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "controlDict")
	require.NoError(t, os.WriteFile(path, []byte("application simpleFoam;\nendTime 1000;\n"), 0o600))

	out, err := execute(t, nil, "tokens", path)
	require.NoError(t, err)
	fields := strings.Fields(out)
	require.Len(t, fields, 2)
	assert.NotEqual(t, "0", fields[0])
	assert.Equal(t, "gpt-5-mini", fields[1])

	out, err = execute(t, nil, "tokens", path, "--model", "gpt-4o")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "gpt-4o"))
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.Equal(t, "Version: dev\n", out)
}
