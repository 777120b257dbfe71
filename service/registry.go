package service

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"strings"

	"github.com/kbukum/endpointkit/endpoint"
	"github.com/kbukum/endpointkit/instance"
	"github.com/kbukum/endpointkit/logger"
)

var (
	// ErrNoEndpointTable is returned when a registry is built without a table.
	ErrNoEndpointTable = errors.New("no endpoint table")
	// ErrInvalidTable is returned when the endpoint table fails validation.
	ErrInvalidTable = errors.New("invalid endpoint table")
	// ErrMissingMethod is returned when a declared endpoint has no method.
	ErrMissingMethod = errors.New("endpoint has no method")
)

// Mapper builds the name to method map from the endpoint table.
type Mapper[F any] func(table endpoint.Table) map[string]F

// Config configures a Registry.
type Config[F any] struct {
	// Endpoints is the endpoint table. A nil table leaves the registry invalid.
	Endpoints endpoint.Table
	// Methods maps endpoint names to methods. Ignored when Mapper is set.
	Methods map[string]F
	// Mapper overrides how the method map is built.
	Mapper Mapper[F]
	// Logger receives construction diagnostics. Defaults to the global logger.
	Logger *logger.Logger
}

// Registry owns an endpoint table and its method map.
// F is the method type: endpoint.ProcessFunc for rendered services,
// endpoint.Handler for self-registering app chunks.
type Registry[F any] struct {
	*instance.Named

	table   endpoint.Table
	methods map[string]F
	log     *logger.Logger
}

// Service is a registry of processing methods, the usual input to render.Mixin.
type Service = Registry[endpoint.ProcessFunc]

// NewService builds a Service. See New.
func NewService(name string, cfg Config[endpoint.ProcessFunc]) (*Service, error) {
	return New(name, cfg)
}

// New builds a registry and checks that every endpoint has a method.
//
// The returned registry is never nil. When err is non-nil the registry has
// been invalidated and will stay invalid.
func New[F any](name string, cfg Config[F]) (*Registry[F], error) {
	r := &Registry[F]{
		Named: instance.NewNamed(name),
		table: cfg.Endpoints.Clone(),
		log: logger.OrGlobal(cfg.Logger).
			WithComponent("service").
			WithFields(logger.Fields(logger.FieldService, name)),
	}

	if cfg.Endpoints == nil {
		err := fmt.Errorf("service %s: %w", name, ErrNoEndpointTable)
		r.invalidate(err)
		return r, err
	}
	if verr := r.table.Validate(); verr != nil {
		err := fmt.Errorf("service %s: %w: %w", name, ErrInvalidTable, verr)
		r.invalidate(err)
		return r, err
	}

	methods := cfg.Methods
	if cfg.Mapper != nil {
		methods = cfg.Mapper(r.table.Clone())
	}
	r.methods = maps.Clone(methods)

	if err := r.checkMethods(); err != nil {
		r.invalidate(err)
		return r, err
	}
	return r, nil
}

// checkMethods verifies every declared endpoint has a non-nil method.
// Each missing endpoint is logged.
func (r *Registry[F]) checkMethods() error {
	var missing []string
	for _, name := range r.table.Names() {
		fn, ok := r.methods[name]
		if !ok || isNil(fn) {
			missing = append(missing, name)
			r.log.Error("No method mapped for endpoint", logger.Fields(logger.FieldEndpoint, name))
		}
	}
	for name := range r.methods {
		if _, declared := r.table.Lookup(name); !declared {
			r.log.Warn("Method mapped for undeclared endpoint", logger.Fields(logger.FieldEndpoint, name))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("service %s: %w: %s", r.Name(), ErrMissingMethod, strings.Join(missing, ", "))
	}
	return nil
}

func (r *Registry[F]) invalidate(err error) {
	if r.Invalidate() {
		r.log.Error("Service marked invalid", logger.MergeWithError(nil, err))
	}
}

// EndpointNames returns endpoint names in declaration order.
func (r *Registry[F]) EndpointNames() ([]string, error) {
	if r.table == nil {
		return nil, fmt.Errorf("service %s: %w", r.Name(), ErrNoEndpointTable)
	}
	return r.table.Names(), nil
}

// EndpointDef returns the definition for name.
func (r *Registry[F]) EndpointDef(name string) (endpoint.Definition, bool) {
	return r.table.Lookup(name)
}

// MethodForEndpoint returns the method mapped to name.
func (r *Registry[F]) MethodForEndpoint(name string) (F, bool) {
	fn, ok := r.methods[name]
	if !ok || isNil(fn) {
		var zero F
		return zero, false
	}
	return fn, true
}

// Table returns a copy of the endpoint table.
func (r *Registry[F]) Table() endpoint.Table {
	return r.table.Clone()
}

// Logger returns the registry's scoped logger.
func (r *Registry[F]) Logger() *logger.Logger {
	return r.log
}

// isNil reports whether v is nil, including typed nil funcs and maps.
func isNil[F any](v F) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Func, reflect.Map, reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
