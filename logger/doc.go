// Package logger provides structured logging on zerolog.
//
// Components receive a *Logger explicitly and scope it with WithComponent;
// the package-level functions fall back to a global logger for code that has
// nothing injected.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.NewDefault("users-api").WithComponent("render")
//	log.Error("Endpoint registration failed", logger.Fields("endpoint", "list", "reason", "no method"))
package logger
