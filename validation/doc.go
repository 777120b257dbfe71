// Package validation checks configuration and endpoint tables.
//
// Struct tag validation runs on go-playground/validator and reports field
// names using their yaml tags, so messages line up with the config file:
//
//	type Definition struct {
//	    Name string `yaml:"name" validate:"required"`
//	}
//	if err := validation.Struct(def); err != nil { ... }
//
// Programmatic validation collects errors fluently:
//
//	v := validation.New()
//	v.Range("server.port", cfg.Port, 0, 65535)
//	if err := v.Validate(); err != nil { ... }
package validation
