package config

import (
	"strconv"
	"time"
)

// ValueSource describes where a configuration value originated from.
type ValueSource string

const (
	SourceDefault  ValueSource = "default"
	SourceEnv      ValueSource = "environment"
	SourceFile     ValueSource = "file"
	SourceOverride ValueSource = "override"
)

// Supported model providers. Config does not enforce membership; see Validate.
const (
	ProviderOpenAI      = "openai"
	ProviderAzureOpenAI = "azure_openai"
	ProviderOllama      = "ollama"
	ProviderBedrock     = "bedrock"
)

const (
	DefaultMaxLoop                 = 10
	DefaultBatchSize               = 10
	DefaultSearchDocs              = 2
	DefaultRunTimes                = 1
	DefaultMaxTimeLimit            = 3600
	DefaultFileDependencyThreshold = 3000
	DefaultModelProvider           = ProviderOpenAI
	DefaultModelVersion            = "gpt-5-mini"
	DefaultTemperature             = 1.0
	DefaultAzureAPIVersion         = "2024-12-01-preview"

	databaseDirName = "database"
	runsDirName     = "runs"
)

// Environment variables consulted while constructing a Config.
const (
	EnvModelProvider                = "MODEL_PROVIDER"
	EnvModelVersion                 = "MODEL_VERSION"
	EnvAzureEndpoint                = "AZURE_OPENAI_ENDPOINT"
	EnvAzureDeploymentName          = "AZURE_OPENAI_DEPLOYMENT_NAME"
	EnvAzureAPIVersion              = "AZURE_OPENAI_API_VERSION"
	EnvAzureModelName               = "AZURE_OPENAI_MODEL_NAME"
	EnvAzureEmbeddingDeploymentName = "AZURE_OPENAI_EMBEDDING_DEPLOYMENT_NAME"
)

// KnownModelVersions lists the model versions the pipeline has been exercised with.
var KnownModelVersions = []string{
	"gpt-5-mini",
	"deepseek-r1:32b-qwen-distill-fp16",
	"qwen2.5:32b-instruct",
}

// Config holds every tunable of a single pipeline run.
//
// Values are resolved once by New and are read-only by convention afterwards.
type Config struct {
	MaxLoop    int `json:"max_loop" yaml:"max_loop"`
	BatchSize  int `json:"batchsize" yaml:"batchsize"`
	SearchDocs int `json:"searchdocs" yaml:"searchdocs"`
	// RunTimes is the current run number, used when naming run directories.
	RunTimes     int    `json:"run_times" yaml:"run_times"`
	DatabasePath string `json:"database_path" yaml:"database_path"`
	RunDirectory string `json:"run_directory" yaml:"run_directory"`
	CaseDir      string `json:"case_dir" yaml:"case_dir"`
	// MaxTimeLimit is the wall-clock budget, in seconds, before a running simulation is terminated.
	MaxTimeLimit int `json:"max_time_limit" yaml:"max_time_limit"`
	// FileDependencyThreshold is the similar-case length above which the planner generates from scratch.
	FileDependencyThreshold int     `json:"file_dependency_threshold" yaml:"file_dependency_threshold"`
	ModelProvider           string  `json:"model_provider" yaml:"model_provider"`
	ModelVersion            string  `json:"model_version" yaml:"model_version"`
	Temperature             float64 `json:"temperature" yaml:"temperature"`

	// Azure OpenAI settings, only consulted when ModelProvider is azure_openai.
	AzureEndpoint                string `json:"azure_endpoint" yaml:"azure_endpoint"`
	AzureDeploymentName          string `json:"azure_deployment_name" yaml:"azure_deployment_name"`
	AzureAPIVersion              string `json:"azure_api_version" yaml:"azure_api_version"`
	AzureModelName               string `json:"azure_model_name" yaml:"azure_model_name"`
	AzureEmbeddingDeploymentName string `json:"azure_embedding_deployment_name" yaml:"azure_embedding_deployment_name"`
}

// MaxTimeLimitDuration returns MaxTimeLimit as a time.Duration.
func (c Config) MaxTimeLimitDuration() time.Duration {
	return time.Duration(c.MaxTimeLimit) * time.Second
}

// Entry is a single rendered configuration value.
type Entry struct {
	Key   string
	Value string
}

// Entries renders the configuration as key/value pairs in declaration order.
func (c Config) Entries() []Entry {
	return []Entry{
		{"max_loop", strconv.Itoa(c.MaxLoop)},
		{"batchsize", strconv.Itoa(c.BatchSize)},
		{"searchdocs", strconv.Itoa(c.SearchDocs)},
		{"run_times", strconv.Itoa(c.RunTimes)},
		{"database_path", c.DatabasePath},
		{"run_directory", c.RunDirectory},
		{"case_dir", c.CaseDir},
		{"max_time_limit", strconv.Itoa(c.MaxTimeLimit)},
		{"file_dependency_threshold", strconv.Itoa(c.FileDependencyThreshold)},
		{"model_provider", c.ModelProvider},
		{"model_version", c.ModelVersion},
		{"temperature", formatFloat(c.Temperature)},
		{"azure_endpoint", c.AzureEndpoint},
		{"azure_deployment_name", c.AzureDeploymentName},
		{"azure_api_version", c.AzureAPIVersion},
		{"azure_model_name", c.AzureModelName},
		{"azure_embedding_deployment_name", c.AzureEmbeddingDeploymentName},
	}
}

// Lookup returns the rendered value for key.
func (c Config) Lookup(key string) (string, bool) {
	for _, entry := range c.Entries() {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return "", false
}

// Metadata contains provenance details for a constructed Config.
type Metadata struct {
	sources  map[string]ValueSource
	loadedAt time.Time
}

// Source returns the origin for the given configuration key.
func (m Metadata) Source(key string) ValueSource {
	if m.sources == nil {
		return SourceDefault
	}
	if src, ok := m.sources[key]; ok {
		return src
	}
	return SourceDefault
}

// LoadedAt returns the timestamp when the configuration was constructed.
func (m Metadata) LoadedAt() time.Time {
	return m.loadedAt
}

// Overrides conveys caller-specified values that win over environment and literal defaults.
// A nil field leaves the underlying value untouched.
type Overrides struct {
	MaxLoop                      *int     `yaml:"max_loop"`
	BatchSize                    *int     `yaml:"batchsize"`
	SearchDocs                   *int     `yaml:"searchdocs"`
	RunTimes                     *int     `yaml:"run_times"`
	DatabasePath                 *string  `yaml:"database_path"`
	RunDirectory                 *string  `yaml:"run_directory"`
	CaseDir                      *string  `yaml:"case_dir"`
	MaxTimeLimit                 *int     `yaml:"max_time_limit"`
	FileDependencyThreshold      *int     `yaml:"file_dependency_threshold"`
	ModelProvider                *string  `yaml:"model_provider"`
	ModelVersion                 *string  `yaml:"model_version"`
	Temperature                  *float64 `yaml:"temperature"`
	AzureEndpoint                *string  `yaml:"azure_endpoint"`
	AzureDeploymentName          *string  `yaml:"azure_deployment_name"`
	AzureAPIVersion              *string  `yaml:"azure_api_version"`
	AzureModelName               *string  `yaml:"azure_model_name"`
	AzureEmbeddingDeploymentName *string  `yaml:"azure_embedding_deployment_name"`
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
