package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SaveOverrides persists the non-nil fields of overrides to the YAML override file at
// path, merging them with any keys already present. It returns the keys it wrote.
func SaveOverrides(path string, overrides Overrides) ([]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("config path is required")
	}

	existing := map[string]any{}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &existing); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
		if existing == nil {
			existing = map[string]any{}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	encoded, err := yaml.Marshal(overrides)
	if err != nil {
		return nil, fmt.Errorf("encode overrides: %w", err)
	}
	var updates map[string]any
	if err := yaml.Unmarshal(encoded, &updates); err != nil {
		return nil, fmt.Errorf("decode overrides: %w", err)
	}

	var written []string
	for _, entry := range (Config{}).Entries() {
		value, ok := updates[entry.Key]
		if !ok || value == nil {
			continue
		}
		existing[entry.Key] = value
		written = append(written, entry.Key)
	}

	data, err := yaml.Marshal(existing)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("write config file: %w", err)
	}
	return written, nil
}
