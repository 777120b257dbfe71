package endpoint

import (
	"fmt"
	"strings"

	"github.com/kbukum/endpointkit/validation"
)

// DefaultVerb is used when a Definition does not declare an HTTP method.
const DefaultVerb = "get"

// Definition declares a single endpoint.
type Definition struct {
	Name       string `yaml:"name" mapstructure:"name" validate:"required"`
	HTTPMethod string `yaml:"method" mapstructure:"method"`
	URLSubpath string `yaml:"subpath" mapstructure:"subpath"`
}

// Verb returns the lowercase HTTP verb, defaulting to "get".
func (d Definition) Verb() string {
	return NormalizeVerb(d.HTTPMethod)
}

// NormalizeVerb lowercases a verb and applies the "get" default.
func NormalizeVerb(verb string) string {
	v := strings.ToLower(strings.TrimSpace(verb))
	if v == "" {
		return DefaultVerb
	}
	return v
}

// Table is an ordered set of endpoint definitions keyed by name.
// Iteration order is declaration order.
type Table []Definition

// tableShape lets the struct validator check the whole table at once.
type tableShape struct {
	Endpoints Table `validate:"unique=Name,dive"`
}

// Names returns endpoint names in declaration order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for _, d := range t {
		names = append(names, d.Name)
	}
	return names
}

// Lookup returns the definition for name.
func (t Table) Lookup(name string) (Definition, bool) {
	for _, d := range t {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Validate checks that every definition is named and names are unique.
func (t Table) Validate() error {
	if appErr := validation.Struct(tableShape{Endpoints: t}); appErr != nil {
		return fmt.Errorf("endpoint table: %w", appErr)
	}
	return nil
}

// Clone returns a copy that shares no backing array with t.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	copy(out, t)
	return out
}
