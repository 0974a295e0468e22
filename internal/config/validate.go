package config

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	ID      string
	Message string
	Hint    string
}

// ValidationReport summarizes configuration validation findings.
type ValidationReport struct {
	Errors   []ValidationIssue
	Warnings []ValidationIssue
}

// HasErrors reports whether the validation report contains blocking errors.
func (r ValidationReport) HasErrors() bool {
	return len(r.Errors) > 0
}

// IsSupportedProvider reports whether provider names a backend the pipeline can dispatch to.
func IsSupportedProvider(provider string) bool {
	switch strings.TrimSpace(provider) {
	case ProviderOpenAI, ProviderAzureOpenAI, ProviderOllama, ProviderBedrock:
		return true
	default:
		return false
	}
}

// Validate checks cfg against the documented provider set and numeric ranges.
// New never calls it; callers opt in before dispatching work.
func Validate(cfg Config) ValidationReport {
	var report ValidationReport
	addError := func(id, message, hint string) {
		report.Errors = append(report.Errors, ValidationIssue{ID: id, Message: message, Hint: hint})
	}
	addWarning := func(id, message, hint string) {
		report.Warnings = append(report.Warnings, ValidationIssue{ID: id, Message: message, Hint: hint})
	}

	provider := strings.TrimSpace(cfg.ModelProvider)
	if !IsSupportedProvider(provider) {
		addError("model-provider",
			fmt.Sprintf("unsupported model_provider %q", cfg.ModelProvider),
			"Set MODEL_PROVIDER to one of openai, azure_openai, ollama, bedrock.")
	}

	if strings.TrimSpace(cfg.ModelVersion) == "" {
		addError("model-version", "model_version is required", "Set MODEL_VERSION.")
	} else if !slices.Contains(KnownModelVersions, cfg.ModelVersion) {
		addWarning("model-version",
			fmt.Sprintf("model_version %q has not been tested with this pipeline", cfg.ModelVersion),
			"Known versions: "+strings.Join(KnownModelVersions, ", "))
	}

	if provider == ProviderAzureOpenAI {
		if strings.TrimSpace(cfg.AzureEndpoint) == "" {
			addError("azure-endpoint",
				"missing azure_endpoint for azure_openai provider",
				"Set AZURE_OPENAI_ENDPOINT, e.g. https://your-resource.openai.azure.com/.")
		}
		if strings.TrimSpace(cfg.AzureDeploymentName) == "" {
			addError("azure-deployment",
				"missing azure_deployment_name for azure_openai provider",
				"Set AZURE_OPENAI_DEPLOYMENT_NAME to the deployment chosen in Azure.")
		}
		if strings.TrimSpace(cfg.AzureAPIVersion) == "" {
			addError("azure-api-version",
				"missing azure_api_version for azure_openai provider",
				"Set AZURE_OPENAI_API_VERSION or leave it unset for "+DefaultAzureAPIVersion+".")
		}
		if strings.TrimSpace(cfg.AzureModelName) == "" {
			addWarning("azure-model-name",
				"azure_model_name is not set; token accounting falls back to model_version",
				"Set AZURE_OPENAI_MODEL_NAME, e.g. gpt-4o-mini.")
		}
		if strings.TrimSpace(cfg.AzureEmbeddingDeploymentName) == "" {
			addWarning("azure-embedding-deployment",
				"azure_embedding_deployment_name is not set; embedding calls will fail",
				"Set AZURE_OPENAI_EMBEDDING_DEPLOYMENT_NAME, e.g. text-embedding-3-small.")
		}
	}

	positive := func(id, key string, value int) {
		if value <= 0 {
			addError(id, fmt.Sprintf("%s must be positive, got %d", key, value), "")
		}
	}
	nonNegative := func(id, key string, value int) {
		if value < 0 {
			addError(id, fmt.Sprintf("%s must not be negative, got %d", key, value), "")
		}
	}

	positive("max-loop", "max_loop", cfg.MaxLoop)
	positive("batchsize", "batchsize", cfg.BatchSize)
	positive("run-times", "run_times", cfg.RunTimes)
	positive("max-time-limit", "max_time_limit", cfg.MaxTimeLimit)
	nonNegative("searchdocs", "searchdocs", cfg.SearchDocs)
	nonNegative("file-dependency-threshold", "file_dependency_threshold", cfg.FileDependencyThreshold)

	if math.IsNaN(cfg.Temperature) || cfg.Temperature < 0 || cfg.Temperature > 2 {
		addError("temperature",
			fmt.Sprintf("temperature must be within [0, 2], got %s", formatFloat(cfg.Temperature)), "")
	}

	if strings.TrimSpace(cfg.DatabasePath) == "" {
		addError("database-path", "database_path is required", "")
	}
	if strings.TrimSpace(cfg.RunDirectory) == "" {
		addError("run-directory", "run_directory is required", "")
	}

	return report
}
