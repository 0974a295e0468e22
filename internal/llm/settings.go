// Package llm derives model client settings from the runtime configuration.
//
// Every provider the pipeline talks to speaks the OpenAI wire protocol except
// bedrock, so settings are expressed as a go-openai ClientConfig.
package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"foamagent/internal/config"
	"foamagent/internal/logging"

	"github.com/sashabaranov/go-openai"
)

// DefaultOllamaBaseURL is the OpenAI-compatible endpoint of a local Ollama server.
const DefaultOllamaBaseURL = "http://localhost:11434/v1"

var (
	// ErrUnsupportedProvider is returned for providers without an OpenAI-compatible endpoint.
	ErrUnsupportedProvider = errors.New("unsupported model_provider")
	// ErrMissingAzureSetting is returned when azure_openai is selected without its endpoint or deployment.
	ErrMissingAzureSetting = errors.New("missing azure setting")
)

// Option customises settings resolution.
type Option func(*options)

type options struct {
	ollamaBaseURL string
	httpClient    *http.Client
	logger        logging.Logger
}

// WithOllamaBaseURL points the ollama provider at a non-default server.
func WithOllamaBaseURL(url string) Option {
	return func(o *options) {
		o.ollamaBaseURL = url
	}
}

// WithHTTPClient sets the HTTP client carried by the resulting ClientConfig.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets the logger used to report the resolved settings.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// ClientConfig resolves the go-openai client settings for cfg.ModelProvider.
func ClientConfig(cfg config.Config, apiKey string, opts ...Option) (openai.ClientConfig, error) {
	o := options{ollamaBaseURL: DefaultOllamaBaseURL}
	for _, opt := range opts {
		opt(&o)
	}
	logger := logging.OrNop(o.logger)

	var clientCfg openai.ClientConfig
	provider := strings.TrimSpace(cfg.ModelProvider)
	switch provider {
	case config.ProviderOpenAI:
		clientCfg = openai.DefaultConfig(apiKey)
	case config.ProviderAzureOpenAI:
		endpoint := strings.TrimRight(strings.TrimSpace(cfg.AzureEndpoint), "/")
		if endpoint == "" {
			return openai.ClientConfig{}, fmt.Errorf("%w: azure_endpoint for azure_openai provider", ErrMissingAzureSetting)
		}
		deployment := strings.TrimSpace(cfg.AzureDeploymentName)
		if deployment == "" {
			return openai.ClientConfig{}, fmt.Errorf("%w: azure_deployment_name for azure_openai provider", ErrMissingAzureSetting)
		}
		clientCfg = openai.DefaultAzureConfig(apiKey, endpoint)
		if version := strings.TrimSpace(cfg.AzureAPIVersion); version != "" {
			clientCfg.APIVersion = version
		}
		clientCfg.AzureModelMapperFunc = azureDeploymentMapper(deployment, strings.TrimSpace(cfg.AzureEmbeddingDeploymentName))
	case config.ProviderOllama:
		if apiKey == "" {
			apiKey = "ollama"
		}
		clientCfg = openai.DefaultConfig(apiKey)
		clientCfg.BaseURL = strings.TrimRight(o.ollamaBaseURL, "/")
	default:
		return openai.ClientConfig{}, fmt.Errorf("%w %q", ErrUnsupportedProvider, cfg.ModelProvider)
	}

	if o.httpClient != nil {
		clientCfg.HTTPClient = o.httpClient
	}

	logger.Debug("resolved %s client: base_url=%s api_version=%s key=%s",
		provider, clientCfg.BaseURL, clientCfg.APIVersion, logging.SanitizeAPIKey(apiKey))
	return clientCfg, nil
}

// NewClient builds a go-openai client for cfg. No request is made.
func NewClient(cfg config.Config, apiKey string, opts ...Option) (*openai.Client, error) {
	clientCfg, err := ClientConfig(cfg, apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return openai.NewClientWithConfig(clientCfg), nil
}

// ChatModel returns the model name to send with chat requests.
func ChatModel(cfg config.Config) string {
	if strings.TrimSpace(cfg.ModelProvider) == config.ProviderAzureOpenAI && cfg.AzureDeploymentName != "" {
		return cfg.AzureDeploymentName
	}
	return cfg.ModelVersion
}

// EmbeddingModel returns the model name to send with embedding requests.
func EmbeddingModel(cfg config.Config) string {
	if strings.TrimSpace(cfg.ModelProvider) == config.ProviderAzureOpenAI && cfg.AzureEmbeddingDeploymentName != "" {
		return cfg.AzureEmbeddingDeploymentName
	}
	return string(openai.SmallEmbedding3)
}

// azureDeploymentMapper routes every request to the configured deployment; Azure
// addresses deployments, not models. Embedding models go to the embedding deployment
// when one is set.
func azureDeploymentMapper(chat, embedding string) func(string) string {
	return func(model string) string {
		if embedding != "" && (model == embedding || strings.Contains(model, "embedding")) {
			return embedding
		}
		return chat
	}
}
