package agent

import "time"

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
)

// Config holds completion provider parameters.
type Config struct {
	Provider     string   `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model        string   `json:"model,omitempty" yaml:"model,omitempty"`
	BaseURL      string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKey       string   `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	SystemPrompt string   `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens    int      `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	// TimeoutSeconds bounds each provider HTTP call. Zero means no timeout.
	TimeoutSeconds int `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
	// Window limits how many trailing messages reach the provider. Zero
	// passes the full history.
	Window int `json:"window,omitempty" yaml:"window,omitempty"`
}

// DefaultConfig returns the offline echo provider with the default sampling
// parameters used by the network providers.
func DefaultConfig() Config {
	temperature := defaultTemperature
	return Config{
		Provider:    ProviderEcho,
		Temperature: &temperature,
		MaxTokens:   defaultMaxTokens,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Provider != "" {
		c.Provider = source.Provider
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
	if source.Temperature != nil {
		temperature := *source.Temperature
		c.Temperature = &temperature
	}
	if source.MaxTokens > 0 {
		c.MaxTokens = source.MaxTokens
	}
	if source.TimeoutSeconds > 0 {
		c.TimeoutSeconds = source.TimeoutSeconds
	}
	if source.Window > 0 {
		c.Window = source.Window
	}
}

func (c *Config) temperature() float64 {
	if c.Temperature == nil {
		return defaultTemperature
	}
	return *c.Temperature
}

func (c *Config) timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
