package listings

import "time"

// Config holds settings for the external listings aggregator.
type Config struct {
	// BaseURL is the aggregator origin, e.g. https://internships-api.p.rapidapi.com
	BaseURL string `yaml:"base_url" json:"base_url"`
	// Endpoint is the path returning recently active postings
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	// APIKey is sent as x-rapidapi-key; an empty key disables upstream calls
	APIKey string `yaml:"api_key" json:"-"`
	// APIHost is sent as x-rapidapi-host
	APIHost string `yaml:"api_host" json:"api_host"`
	// Timeout is the per-request timeout
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
	// CircuitFailureThreshold opens circuit after this many consecutive failures
	CircuitFailureThreshold int `yaml:"circuit_failure_threshold" json:"circuit_failure_threshold"`
	// CircuitReset is the duration after which the circuit attempts to half-open
	CircuitReset time.Duration `yaml:"circuit_reset" json:"circuit_reset"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:                 "https://internships-api.p.rapidapi.com",
		Endpoint:                "/active-ats-7d",
		APIHost:                 "internships-api.p.rapidapi.com",
		Timeout:                 10 * time.Second,
		CircuitFailureThreshold: 3,
		CircuitReset:            5 * time.Minute,
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Endpoint == "" {
		c.Endpoint = d.Endpoint
	}
	if c.APIHost == "" {
		c.APIHost = d.APIHost
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.CircuitFailureThreshold <= 0 {
		c.CircuitFailureThreshold = d.CircuitFailureThreshold
	}
	if c.CircuitReset <= 0 {
		c.CircuitReset = d.CircuitReset
	}
	return c
}
