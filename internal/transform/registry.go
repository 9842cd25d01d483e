// Package transform holds the pure functions that normalize single field
// values (formatters) and derive clusters of output fields (mappers), plus the
// registry the form schema resolves them from by name.
package transform

import (
	"errors"
	"fmt"
	"sort"

	"github.com/garyjia/esign-wizard/internal/domain/form"
)

// Formatter normalizes a raw edit before it is stored
type Formatter func(raw string) string

// Mapper derives additional keys from the state. It returns a new state and
// leaves keys it does not own untouched.
type Mapper func(state form.State, fieldName string) form.State

var (
	// ErrUnknownTransform is returned when a schema names an unregistered transform
	ErrUnknownTransform = errors.New("unknown transform")

	// ErrDuplicateTransform is returned when a name is registered twice
	ErrDuplicateTransform = errors.New("transform already registered")
)

// Registry maps stable names to transform functions
type Registry struct {
	formatters map[string]Formatter
	mappers    map[string]Mapper
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
		mappers:    make(map[string]Mapper),
	}
}

// DefaultRegistry returns a registry holding every built-in transform
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.mustFormatter("cuitFormatter", CUIT)

	r.mustMapper("tipoDeTramiteMapper", TipoDeTramite)
	r.mustMapper("usoDeFirmaMapper", UsoDeFirma)
	r.mustMapper("emailMapper", SplitEmail)

	for _, n := range []string{"1", "2"} {
		r.mustMapper("representanteNombre"+n+"Mapper", CopyIfSet("RepresentanteNombre"+n, "Firmante"+n+"Nombre"))
		r.mustMapper("representanteApellido"+n+"Mapper", CopyIfSet("RepresentanteApellido"+n, "Firmante"+n+"Apellido"))
		r.mustMapper("representanteEmail"+n+"Mapper", CopyIfSet("RepresentanteEmail"+n, "Firmante"+n+"Email"))
	}
	return r
}

// RegisterFormatter adds a formatter under name
func (r *Registry) RegisterFormatter(name string, f Formatter) error {
	if _, exists := r.formatters[name]; exists {
		return fmt.Errorf("%w: formatter %q", ErrDuplicateTransform, name)
	}
	r.formatters[name] = f
	return nil
}

// RegisterMapper adds a mapper under name
func (r *Registry) RegisterMapper(name string, m Mapper) error {
	if _, exists := r.mappers[name]; exists {
		return fmt.Errorf("%w: mapper %q", ErrDuplicateTransform, name)
	}
	r.mappers[name] = m
	return nil
}

func (r *Registry) mustFormatter(name string, f Formatter) {
	if err := r.RegisterFormatter(name, f); err != nil {
		panic(err)
	}
}

func (r *Registry) mustMapper(name string, m Mapper) {
	if err := r.RegisterMapper(name, m); err != nil {
		panic(err)
	}
}

// Formatter returns the formatter registered under name
func (r *Registry) Formatter(name string) (Formatter, bool) {
	f, ok := r.formatters[name]
	return f, ok
}

// Mapper returns the mapper registered under name
func (r *Registry) Mapper(name string) (Mapper, bool) {
	m, ok := r.mappers[name]
	return m, ok
}

// Names lists the registered formatter and mapper names, sorted
func (r *Registry) Names() (formatters, mappers []string) {
	for n := range r.formatters {
		formatters = append(formatters, n)
	}
	for n := range r.mappers {
		mappers = append(mappers, n)
	}
	sort.Strings(formatters)
	sort.Strings(mappers)
	return formatters, mappers
}

// Resolve checks that every formatter and mapper the schema names is registered.
// All unresolved references are reported together.
func (r *Registry) Resolve(schema *form.Schema) error {
	var errs []error
	for _, f := range schema.Fields() {
		if f.Formatter != "" {
			if _, ok := r.formatters[f.Formatter]; !ok {
				errs = append(errs, fmt.Errorf("%w: field %q names formatter %q", ErrUnknownTransform, f.Name, f.Formatter))
			}
		}
		if f.Mapper != "" {
			if _, ok := r.mappers[f.Mapper]; !ok {
				errs = append(errs, fmt.Errorf("%w: field %q names mapper %q", ErrUnknownTransform, f.Name, f.Mapper))
			}
		}
	}
	return errors.Join(errs...)
}
