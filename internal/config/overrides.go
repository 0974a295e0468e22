package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Set assigns a single override from its snake_case key and textual value.
func (o *Overrides) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))

	intField := func(target **int) error {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		*target = &parsed
		return nil
	}
	strField := func(target **string) error {
		v := value
		*target = &v
		return nil
	}

	switch key {
	case "max_loop":
		return intField(&o.MaxLoop)
	case "batchsize":
		return intField(&o.BatchSize)
	case "searchdocs":
		return intField(&o.SearchDocs)
	case "run_times":
		return intField(&o.RunTimes)
	case "max_time_limit":
		return intField(&o.MaxTimeLimit)
	case "file_dependency_threshold":
		return intField(&o.FileDependencyThreshold)
	case "temperature":
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return fmt.Errorf("parse %s: %q is not a finite number", key, value)
		}
		o.Temperature = &parsed
		return nil
	case "database_path":
		return strField(&o.DatabasePath)
	case "run_directory":
		return strField(&o.RunDirectory)
	case "case_dir":
		return strField(&o.CaseDir)
	case "model_provider":
		return strField(&o.ModelProvider)
	case "model_version":
		return strField(&o.ModelVersion)
	case "azure_endpoint":
		return strField(&o.AzureEndpoint)
	case "azure_deployment_name":
		return strField(&o.AzureDeploymentName)
	case "azure_api_version":
		return strField(&o.AzureAPIVersion)
	case "azure_model_name":
		return strField(&o.AzureModelName)
	case "azure_embedding_deployment_name":
		return strField(&o.AzureEmbeddingDeploymentName)
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
}

// ParseAssignments builds Overrides from key=value pairs.
func ParseAssignments(assignments []string) (Overrides, error) {
	var overrides Overrides
	for _, assignment := range assignments {
		key, value, ok := strings.Cut(assignment, "=")
		if !ok {
			return Overrides{}, fmt.Errorf("invalid assignment %q: expected key=value", assignment)
		}
		if err := overrides.Set(key, value); err != nil {
			return Overrides{}, err
		}
	}
	return overrides, nil
}
