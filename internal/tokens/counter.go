// Package tokens provides token accounting for the configured model, backed by
// tiktoken-go. Encodings are resolved per model name, cached, and fall back to
// cl100k_base and then to a character heuristic when unavailable.
package tokens

import (
	"strings"
	"sync"

	"foamagent/internal/config"
	"foamagent/internal/logging"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkoukk/tiktoken-go"
)

const (
	fallbackEncoding = "cl100k_base"
	defaultCacheSize = 16
)

// AccountingModel returns the model name token usage is attributed to. Azure
// deployments are named by the operator, so azure_model_name carries the real
// model when it is set.
func AccountingModel(cfg config.Config) string {
	if strings.TrimSpace(cfg.ModelProvider) == config.ProviderAzureOpenAI {
		if name := strings.TrimSpace(cfg.AzureModelName); name != "" {
			return name
		}
	}
	return strings.TrimSpace(cfg.ModelVersion)
}

// Counter counts tokens for a default model. Safe for concurrent use.
type Counter struct {
	model     string
	logger    logging.Logger
	encodings *lru.Cache[string, *tiktoken.Tiktoken]

	fallbackOnce sync.Once
	fallback     *tiktoken.Tiktoken
}

// NewCounter returns a Counter attributing tokens to AccountingModel(cfg).
func NewCounter(cfg config.Config, logger logging.Logger) *Counter {
	cache, err := lru.New[string, *tiktoken.Tiktoken](defaultCacheSize)
	if err != nil {
		// Only reachable with a non-positive size.
		panic(err)
	}
	return &Counter{
		model:     AccountingModel(cfg),
		logger:    logging.OrNop(logger),
		encodings: cache,
	}
}

// Model returns the model tokens are attributed to by Count.
func (c *Counter) Model() string {
	return c.model
}

// Count returns the number of tokens text occupies for the counter's model.
func (c *Counter) Count(text string) int {
	return c.CountForModel(c.model, text)
}

// CountForModel returns the number of tokens text occupies for model.
func (c *Counter) CountForModel(model, text string) int {
	if text == "" {
		return 0
	}
	if enc := c.encodingFor(model); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return EstimateFast(text)
}

func (c *Counter) encodingFor(model string) *tiktoken.Tiktoken {
	if enc, ok := c.encodings.Get(model); ok {
		return enc
	}
	if model != "" {
		enc, err := tiktoken.EncodingForModel(model)
		if err == nil {
			c.encodings.Add(model, enc)
			return enc
		}
		c.logger.Debug("no tiktoken encoding for model %q, using %s: %v", model, fallbackEncoding, err)
	}
	enc := c.fallbackEncoding()
	if enc != nil {
		c.encodings.Add(model, enc)
	}
	return enc
}

func (c *Counter) fallbackEncoding() *tiktoken.Tiktoken {
	c.fallbackOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			c.logger.Warn("tiktoken unavailable, estimating token counts: %v", err)
			return
		}
		c.fallback = enc
	})
	return c.fallback
}

// EstimateFast returns a heuristic token estimate: max(runes/4, word_count).
func EstimateFast(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	runes := len([]rune(trimmed))
	words := len(strings.Fields(trimmed))
	estimate := runes / 4
	if estimate < words {
		estimate = words
	}
	if estimate == 0 {
		estimate = 1
	}
	return estimate
}
