package config

import (
	"os"
	"time"
)

// EnvLookup resolves the value for an environment variable.
type EnvLookup func(string) (string, bool)

// Option customises construction.
type Option func(*loadOptions)

type overrideLayer struct {
	values Overrides
	source ValueSource
}

type loadOptions struct {
	envLookup   EnvLookup
	installRoot string
	overrides   []overrideLayer
}

// WithEnv supplies a custom environment lookup implementation.
func WithEnv(lookup EnvLookup) Option {
	return func(o *loadOptions) {
		o.envLookup = lookup
	}
}

// WithOverrides applies caller overrides that take highest precedence.
func WithOverrides(overrides Overrides) Option {
	return WithOverridesFrom(overrides, SourceOverride)
}

// WithOverridesFrom applies overrides and records them under the given source.
// Layers are applied in the order the options are passed.
func WithOverridesFrom(overrides Overrides, source ValueSource) Option {
	return func(o *loadOptions) {
		o.overrides = append(o.overrides, overrideLayer{values: overrides, source: source})
	}
}

// WithInstallRoot replaces the directory used to derive database_path and run_directory.
func WithInstallRoot(root string) Option {
	return func(o *loadOptions) {
		o.installRoot = root
	}
}

// DefaultEnvLookup delegates to os.LookupEnv.
func DefaultEnvLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// New constructs a Config from literal defaults, the environment and caller overrides,
// in that order of increasing precedence. It never fails and never validates.
func New(opts ...Option) (Config, Metadata) {
	options := loadOptions{
		envLookup: DefaultEnvLookup,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.envLookup == nil {
		options.envLookup = DefaultEnvLookup
	}
	root := options.installRoot
	if root == "" {
		root = InstallRoot()
	}

	meta := Metadata{sources: map[string]ValueSource{}, loadedAt: time.Now()}

	cfg := Config{
		MaxLoop:                 DefaultMaxLoop,
		BatchSize:               DefaultBatchSize,
		SearchDocs:              DefaultSearchDocs,
		RunTimes:                DefaultRunTimes,
		DatabasePath:            DefaultDatabasePath(root),
		RunDirectory:            DefaultRunDirectory(root),
		MaxTimeLimit:            DefaultMaxTimeLimit,
		FileDependencyThreshold: DefaultFileDependencyThreshold,
		ModelProvider:           DefaultModelProvider,
		ModelVersion:            DefaultModelVersion,
		Temperature:             DefaultTemperature,
		AzureAPIVersion:         DefaultAzureAPIVersion,
	}

	applyEnv(&cfg, &meta, options.envLookup)

	for _, layer := range options.overrides {
		applyOverrides(&cfg, &meta, layer.values, layer.source)
	}

	return cfg, meta
}

func applyEnv(cfg *Config, meta *Metadata, lookup EnvLookup) {
	set := func(key, field string, target *string) {
		if value, ok := lookup(key); ok && value != "" {
			*target = value
			meta.sources[field] = SourceEnv
		}
	}

	set(EnvModelProvider, "model_provider", &cfg.ModelProvider)
	set(EnvModelVersion, "model_version", &cfg.ModelVersion)
	set(EnvAzureEndpoint, "azure_endpoint", &cfg.AzureEndpoint)
	set(EnvAzureDeploymentName, "azure_deployment_name", &cfg.AzureDeploymentName)
	set(EnvAzureAPIVersion, "azure_api_version", &cfg.AzureAPIVersion)
	set(EnvAzureModelName, "azure_model_name", &cfg.AzureModelName)
	set(EnvAzureEmbeddingDeploymentName, "azure_embedding_deployment_name", &cfg.AzureEmbeddingDeploymentName)
}

func applyOverrides(cfg *Config, meta *Metadata, overrides Overrides, source ValueSource) {
	if overrides.MaxLoop != nil {
		cfg.MaxLoop = *overrides.MaxLoop
		meta.sources["max_loop"] = source
	}
	if overrides.BatchSize != nil {
		cfg.BatchSize = *overrides.BatchSize
		meta.sources["batchsize"] = source
	}
	if overrides.SearchDocs != nil {
		cfg.SearchDocs = *overrides.SearchDocs
		meta.sources["searchdocs"] = source
	}
	if overrides.RunTimes != nil {
		cfg.RunTimes = *overrides.RunTimes
		meta.sources["run_times"] = source
	}
	if overrides.DatabasePath != nil {
		cfg.DatabasePath = *overrides.DatabasePath
		meta.sources["database_path"] = source
	}
	if overrides.RunDirectory != nil {
		cfg.RunDirectory = *overrides.RunDirectory
		meta.sources["run_directory"] = source
	}
	if overrides.CaseDir != nil {
		cfg.CaseDir = *overrides.CaseDir
		meta.sources["case_dir"] = source
	}
	if overrides.MaxTimeLimit != nil {
		cfg.MaxTimeLimit = *overrides.MaxTimeLimit
		meta.sources["max_time_limit"] = source
	}
	if overrides.FileDependencyThreshold != nil {
		cfg.FileDependencyThreshold = *overrides.FileDependencyThreshold
		meta.sources["file_dependency_threshold"] = source
	}
	if overrides.ModelProvider != nil {
		cfg.ModelProvider = *overrides.ModelProvider
		meta.sources["model_provider"] = source
	}
	if overrides.ModelVersion != nil {
		cfg.ModelVersion = *overrides.ModelVersion
		meta.sources["model_version"] = source
	}
	if overrides.Temperature != nil {
		cfg.Temperature = *overrides.Temperature
		meta.sources["temperature"] = source
	}
	if overrides.AzureEndpoint != nil {
		cfg.AzureEndpoint = *overrides.AzureEndpoint
		meta.sources["azure_endpoint"] = source
	}
	if overrides.AzureDeploymentName != nil {
		cfg.AzureDeploymentName = *overrides.AzureDeploymentName
		meta.sources["azure_deployment_name"] = source
	}
	if overrides.AzureAPIVersion != nil {
		cfg.AzureAPIVersion = *overrides.AzureAPIVersion
		meta.sources["azure_api_version"] = source
	}
	if overrides.AzureModelName != nil {
		cfg.AzureModelName = *overrides.AzureModelName
		meta.sources["azure_model_name"] = source
	}
	if overrides.AzureEmbeddingDeploymentName != nil {
		cfg.AzureEmbeddingDeploymentName = *overrides.AzureEmbeddingDeploymentName
		meta.sources["azure_embedding_deployment_name"] = source
	}
}
