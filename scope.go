package dimple

import "go.uber.org/zap"

// Scope is a named node in the scope tree. It owns its definitions and the
// instances built from them. The parent is kept by name and looked up in the
// owning registry.
type Scope struct {
	name        string
	parent      string
	owner       *Registry
	definitions map[string]Definition
	cache       map[string]any
}

func newScope(name, parent string, owner *Registry) *Scope {
	return &Scope{
		name:        name,
		parent:      parent,
		owner:       owner,
		definitions: make(map[string]Definition, 8),
		cache:       make(map[string]any, 8),
	}
}

// Name returns the name of the scope.
func (s *Scope) Name() string {
	return s.name
}

// ParentName returns the name of the parent scope, or "" when there is none.
func (s *Scope) ParentName() string {
	return s.parent
}

// Parent returns the parent scope, or nil for the root and orphaned scopes.
func (s *Scope) Parent() *Scope {
	if s.parent == "" {
		return nil
	}
	return s.owner.scopes[s.parent]
}

// Set stores a definition in this scope only. Cached instances are left alone.
func (s *Scope) Set(name string, def Definition) error {
	if err := def.validate(name); err != nil {
		return err
	}
	s.definitions[name] = def
	return nil
}

// Has reports whether this scope, not its ancestors, defines name.
func (s *Scope) Has(name string) bool {
	_, ok := s.definitions[name]
	return ok
}

// Cached reports whether an instance for name is cached in this scope.
func (s *Scope) Cached(name string) bool {
	_, ok := s.cache[name]
	return ok
}

// Get returns the instance for name, delegating to the parent when this scope
// does not define it. The instance is built at most once per cache lifetime
// and cached in the scope that owns the definition.
func (s *Scope) Get(name string) (any, error) {
	def, ok := s.definitions[name]
	if !ok {
		if parent := s.Parent(); parent != nil {
			return parent.Get(name)
		}
		return nil, &ScopeViolationError{Service: name, Scope: s.name}
	}

	if instance, ok := s.cache[name]; ok {
		s.owner.metrics.cacheHit(s.name)
		return instance, nil
	}

	instance, err := def.produce(s.owner)
	if err != nil {
		return nil, &ConstructionError{Service: name, Scope: s.name, Err: err}
	}
	s.cache[name] = instance
	if def.IsFactory() {
		s.owner.metrics.constructed(s.name)
		s.owner.logger.Debug("constructed service instance",
			zap.String("service", name), zap.String("scope", s.name))
	}
	return instance, nil
}

// Unset removes the definition and any cached instance for name.
func (s *Scope) Unset(name string) {
	delete(s.definitions, name)
	delete(s.cache, name)
}

// Clear drops every cached instance. Definitions are kept.
func (s *Scope) Clear() {
	s.cache = make(map[string]any, len(s.cache))
}
