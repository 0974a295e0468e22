package config

// ExportEnv renders the environment-derived fields of cfg back into the variables
// New reads them from, so a child process resolves the same provider settings.
// Empty values are omitted.
func ExportEnv(cfg Config) map[string]string {
	values := map[string]string{}

	set := func(key, value string) {
		if value == "" {
			return
		}
		values[key] = value
	}

	set(EnvModelProvider, cfg.ModelProvider)
	set(EnvModelVersion, cfg.ModelVersion)
	set(EnvAzureEndpoint, cfg.AzureEndpoint)
	set(EnvAzureDeploymentName, cfg.AzureDeploymentName)
	set(EnvAzureAPIVersion, cfg.AzureAPIVersion)
	set(EnvAzureModelName, cfg.AzureModelName)
	set(EnvAzureEmbeddingDeploymentName, cfg.AzureEmbeddingDeploymentName)

	return values
}
