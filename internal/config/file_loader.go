package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadOverridesFile parses a YAML document keyed by the snake_case configuration names
// into Overrides. String values may reference environment variables as ${NAME}, resolved
// through lookup. A missing or empty file yields empty overrides.
func LoadOverridesFile(path string, readFile func(string) ([]byte, error), lookup EnvLookup) (Overrides, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Overrides{}, nil
	}
	if readFile == nil {
		readFile = os.ReadFile
	}

	data, err := readFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Overrides{}, nil
		}
		return Overrides{}, fmt.Errorf("read config file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Overrides{}, nil
	}

	parsed, err := parseOverridesYAML(data)
	if err != nil {
		return Overrides{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if lookup == nil {
		lookup = DefaultEnvLookup
	}
	return expandOverridesEnv(lookup, parsed), nil
}

func parseOverridesYAML(data []byte) (Overrides, error) {
	var parsed Overrides
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&parsed); err != nil {
		if errors.Is(err, io.EOF) {
			return Overrides{}, nil
		}
		return Overrides{}, err
	}
	return parsed, nil
}

func expandOverridesEnv(lookup EnvLookup, overrides Overrides) Overrides {
	expand := func(value *string) *string {
		if value == nil || !strings.Contains(*value, "$") {
			return value
		}
		expanded := os.Expand(*value, func(key string) string {
			resolved, _ := lookup(key)
			return resolved
		})
		return &expanded
	}

	overrides.DatabasePath = expand(overrides.DatabasePath)
	overrides.RunDirectory = expand(overrides.RunDirectory)
	overrides.CaseDir = expand(overrides.CaseDir)
	overrides.ModelProvider = expand(overrides.ModelProvider)
	overrides.ModelVersion = expand(overrides.ModelVersion)
	overrides.AzureEndpoint = expand(overrides.AzureEndpoint)
	overrides.AzureDeploymentName = expand(overrides.AzureDeploymentName)
	overrides.AzureAPIVersion = expand(overrides.AzureAPIVersion)
	overrides.AzureModelName = expand(overrides.AzureModelName)
	overrides.AzureEmbeddingDeploymentName = expand(overrides.AzureEmbeddingDeploymentName)
	return overrides
}
