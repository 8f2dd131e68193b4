package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/pmarkov/rectify/internal/llm"
	"github.com/pmarkov/rectify/internal/model"
	"github.com/pmarkov/rectify/internal/rectify"
	"github.com/pmarkov/rectify/internal/store"
	"github.com/pmarkov/rectify/internal/worker"
)

// loadConfig assembles the effective configuration: defaults, then config
// file / RECTIFY_* env values via viper. Flags are applied on top by the
// individual commands.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("store.mapping_file"); v != "" {
		cfg.Store.MappingFile = v
	}
	if v := viper.GetDuration("store.cache_ttl"); v > 0 {
		cfg.Store.CacheTTL = v
	}
	if viper.IsSet("llm.provider") {
		cfg.LLM.Provider = viper.GetString("llm.provider")
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := viper.GetInt("llm.timeout"); v > 0 {
		cfg.LLM.Timeout = v
	}
	if v := viper.GetInt("llm.max_tokens"); v > 0 {
		cfg.LLM.MaxTokens = v
	}
	if v := viper.GetInt("rectify.candidates"); v > 0 {
		cfg.Rectify.Candidates = v
	}
	if viper.IsSet("rectify.low_similarity") {
		cfg.Rectify.LowSimilarity = viper.GetFloat64("rectify.low_similarity")
	}
	if viper.IsSet("rectify.max_edit_fraction") {
		cfg.Rectify.MaxEditFraction = viper.GetFloat64("rectify.max_edit_fraction")
	}
	if v := viper.GetFloat64("rate.requests_per_second"); v > 0 {
		cfg.Rate.RequestsPerSecond = v
	}
	if v := viper.GetInt("rate.burst"); v > 0 {
		cfg.Rate.Burst = v
	}

	cfg.Output.Verbose = verbose
	return cfg
}

// resolveAPIKey fills in the API key (and LiteLLM proxy base URL) from the
// environment based on the selected provider. Keys never live in config
// files.
func resolveAPIKey(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			// LiteLLM proxy deployments use LLM_API_KEY / LLM_API_BASE
			cfg.LLM.APIKey = os.Getenv("LLM_API_KEY")
			if base := os.Getenv("LLM_API_BASE"); base != "" && cfg.LLM.BaseURL == "" {
				cfg.LLM.BaseURL = base
			}
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY (or LLM_API_KEY) environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if base := os.Getenv("OLLAMA_BASE_URL"); base != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = base
		}
	}
	return nil
}

// buildRunner wires the store, provider, corrector, and pipeline together.
func buildRunner(cfg *model.Config) (*worker.Runner, error) {
	var provider llm.Provider
	if cfg.LLM.Provider != "" {
		if err := resolveAPIKey(cfg); err != nil {
			return nil, err
		}
		p, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			return nil, fmt.Errorf("initialize LLM provider: %w", err)
		}
		provider = p
	}

	var limiter *rate.Limiter
	if provider != nil && cfg.Rate.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate.RequestsPerSecond), cfg.Rate.Burst)
	}

	corrector := rectify.NewCorrector(provider, limiter, cfg.Rectify, cfg.Output.Verbose)
	pipeline := rectify.NewPipeline(corrector, cfg.Rectify, cfg.Output.Verbose)
	st := store.New(cfg.Store)

	return worker.NewRunner(st, pipeline, cfg.Output.Verbose), nil
}

// budgetTimeout is how long the budget command waits on the proxy.
const budgetTimeout = 10 * time.Second
