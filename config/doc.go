// Package config loads service configuration from a config.yml file, an
// optional .env file and the process environment.
//
// Files are searched in the usual places (./cmd/<service>/config.yml,
// ./config/config.yml, ./config.yml) unless given explicitly. Environment
// variables override file values: LOGGING_LEVEL sets logging.level and
// SERVER_RATE_LIMIT sets server.rate_limit.
//
//	var cfg MyConfig
//	if err := config.LoadConfig("endpointd", &cfg); err != nil {
//	    return err
//	}
//
// ServiceConfig carries the fields every service needs and is meant to be
// embedded with mapstructure ",squash".
package config
