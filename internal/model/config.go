package model

import "time"

// Config is the full application configuration. It is assembled from
// defaults, the config file, RECTIFY_* environment variables, and CLI
// flags (in increasing priority) and passed explicitly into every
// component that needs it.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	LLM     LLMConfig     `yaml:"llm"`
	Rectify RectifyConfig `yaml:"rectify"`
	Rate    RateConfig    `yaml:"rate"`
	Output  OutputConfig  `yaml:"output"`
}

// StoreConfig controls article lookup and persistence.
type StoreConfig struct {
	// MappingFile is the JSON file mapping article IDs to their
	// AI-generated, source, and rectified file paths.
	MappingFile string `yaml:"mapping_file"`

	// CacheTTL bounds how long article file contents are cached.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// LLMConfig holds completion service configuration.
type LLMConfig struct {
	// Provider name: "openai", "anthropic", "ollama", "" (disabled)
	Provider string `yaml:"provider"`

	// Model name (provider-specific)
	Model string `yaml:"model"`

	// APIKey for OpenAI/Anthropic (or a LiteLLM proxy key)
	APIKey string `yaml:"-"`

	// BaseURL for custom endpoints (LiteLLM proxy, Ollama)
	BaseURL string `yaml:"base_url"`

	// Timeout for a single completion request, in seconds
	Timeout int `yaml:"timeout"`

	// MaxTokens for response generation
	MaxTokens int `yaml:"max_tokens"`
}

// RectifyConfig holds the correction policy knobs.
type RectifyConfig struct {
	// Candidates is how many source sentences are retrieved per AI
	// sentence (k).
	Candidates int `yaml:"candidates"`

	// LowSimilarity is the 0-1 fraction below which a sentence with no
	// numeric span escalates to the model-assisted corrector.
	LowSimilarity float64 `yaml:"low_similarity"`

	// MaxEditFraction is the largest fraction of a sentence a
	// model-assisted correction may change before it is rejected.
	MaxEditFraction float64 `yaml:"max_edit_fraction"`
}

// RateConfig throttles completion requests.
type RateConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// OutputConfig controls CLI output behavior.
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			MappingFile: "article_mapping.json",
			CacheTTL:    10 * time.Minute,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Timeout:   30,
			MaxTokens: 300,
		},
		Rectify: RectifyConfig{
			Candidates:      3,
			LowSimilarity:   0.75,
			MaxEditFraction: 0.4,
		},
		Rate: RateConfig{
			RequestsPerSecond: 2,
			Burst:             2,
		},
	}
}
