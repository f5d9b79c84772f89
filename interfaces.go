package dimple

// Package dimple provides a scoped service registry: factories are registered
// into a tree of named scopes and resolved into lazily built, cached instances.

// Setup is a definition source. It receives the live registry and may create
// scopes, move the definition cursor and register services.
type Setup func(r *Registry) error

// FactoryFunc builds a service instance. It may resolve further services
// through the registry it receives.
type FactoryFunc func(r *Registry) (any, error)

// Constructor builds an instance from dependencies resolved positionally.
type Constructor func(deps ...any) (any, error)

// Resolver maps a type identifier to a constructor and the ordered names of
// the services it depends on.
type Resolver interface {
	Resolve(id string) (Constructor, []string, error)
}

// definitionKind tags the variant held by a Definition.
type definitionKind string

const (
	// kindValue is a raw value returned as-is
	kindValue definitionKind = "value"
	// kindFactory is invoked once per scope cache lifetime
	kindFactory definitionKind = "factory"
)

// Definition is either a raw value or a factory.
type Definition struct {
	kind    definitionKind
	value   any
	factory FactoryFunc
}

// Value defines a service that resolves to v itself.
func Value(v any) Definition {
	return Definition{kind: kindValue, value: v}
}

// Factory defines a service built by fn on first retrieval.
func Factory(fn FactoryFunc) Definition {
	return Definition{kind: kindFactory, factory: fn}
}

// IsFactory reports whether the definition is built by a factory.
func (d Definition) IsFactory() bool {
	return d.kind == kindFactory
}

func (d Definition) validate(service string) error {
	switch d.kind {
	case kindValue:
		return nil
	case kindFactory:
		if d.factory == nil {
			return &InvalidDefinitionError{Service: service, Reason: "nil factory"}
		}
		return nil
	default:
		return &InvalidDefinitionError{Service: service, Reason: "empty definition"}
	}
}

func (d Definition) produce(r *Registry) (any, error) {
	if d.kind == kindFactory {
		return d.factory(r)
	}
	return d.value, nil
}
