package config

import (
	"fmt"

	"github.com/kbukum/endpointkit/endpoint"
	"github.com/kbukum/endpointkit/logger"
	"github.com/kbukum/endpointkit/validation"
)

// Environments accepted by ServiceConfig.Validate.
var Environments = []string{"development", "staging", "production"}

// ServiceConfig contains the essential configuration fields every service needs.
// Projects extend this by embedding it in their own config structs.
//
// Example:
//
//	type MyConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Server server.Config `yaml:"server" mapstructure:"server"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// GetServiceConfig returns the base ServiceConfig. When embedded, the method
// is promoted so the embedding struct satisfies bootstrap.Config.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values to the base configuration.
// Embedding structs call c.ServiceConfig.ApplyDefaults() first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
func (c *ServiceConfig) Validate() error {
	if err := validation.New().
		Required("name", c.Name).
		OneOf("environment", c.Environment, Environments).
		Err(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// ChunkConfig declares a chunk: a named endpoint table mounted under a root path.
type ChunkConfig struct {
	Name      string         `yaml:"name" mapstructure:"name"`
	RootPath  string         `yaml:"root_path" mapstructure:"root_path"`
	Endpoints endpoint.Table `yaml:"endpoints" mapstructure:"endpoints"`
}

// Validate checks the chunk is named and its table is well formed.
func (c ChunkConfig) Validate() error {
	if err := validation.New().Required("chunks.name", c.Name).Err(); err != nil {
		return err
	}
	if err := c.Endpoints.Validate(); err != nil {
		return fmt.Errorf("chunk %s: %w", c.Name, err)
	}
	return nil
}

// ValidateChunks validates each chunk and rejects duplicate names.
func ValidateChunks(chunks []ChunkConfig) error {
	seen := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		if err := c.Validate(); err != nil {
			return err
		}
		if seen[c.Name] {
			return fmt.Errorf("chunk %s declared more than once", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}
