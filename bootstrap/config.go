package bootstrap

import (
	"fmt"

	"github.com/kbukum/endpointkit/config"
	"github.com/kbukum/endpointkit/observability"
	"github.com/kbukum/endpointkit/server"
)

// Config is the constraint for application configuration types. Any struct
// embedding AppConfig satisfies it through promoted methods.
type Config interface {
	GetAppConfig() *AppConfig
	ApplyDefaults()
	Validate() error
}

// AppConfig is the configuration an endpointkit application runs from.
//
//	type MyConfig struct {
//	    bootstrap.AppConfig `yaml:",inline" mapstructure:",squash"`
//	    Users UsersConfig   `yaml:"users" mapstructure:"users"`
//	}
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Chunks        []config.ChunkConfig `yaml:"chunks" mapstructure:"chunks"`
}

// GetAppConfig returns c.
func (c *AppConfig) GetAppConfig() *AppConfig { return c }

// ApplyDefaults fills unset fields in every section.
func (c *AppConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	c.Observability.ApplyDefaults()
}

// Validate validates every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("config.observability: %w", err)
	}
	return config.ValidateChunks(c.Chunks)
}

// ChunkConfig returns the chunk declared under name.
func (c *AppConfig) ChunkConfig(name string) (config.ChunkConfig, bool) {
	for _, ch := range c.Chunks {
		if ch.Name == name {
			return ch, true
		}
	}
	return config.ChunkConfig{}, false
}
