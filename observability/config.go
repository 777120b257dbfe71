package observability

import "github.com/kbukum/endpointkit/validation"

// Config configures OpenTelemetry export.
type Config struct {
	// Enabled turns on OTLP export. When false the global no-op providers are kept.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows insecure connections (for development).
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the trace sampling rate (0.0 to 1.0).
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
	// MetricInterval is the metric export interval in seconds.
	MetricInterval int `yaml:"metric_interval" mapstructure:"metric_interval"`
	// Environment is recorded as a resource attribute.
	Environment string `yaml:"environment" mapstructure:"environment"`
}

// ApplyDefaults sets development defaults for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricInterval == 0 {
		c.MetricInterval = 15
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	return validation.New().
		Custom(c.SampleRate >= 0 && c.SampleRate <= 1, "observability.sample_rate", "must be between 0 and 1").
		Min("observability.metric_interval", c.MetricInterval, 0).
		Err()
}
