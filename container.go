package dimple

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RootScope is the name of the scope every registry starts with.
const RootScope = "container"

// Registry owns the scope tree and two cursors: the definition cursor, which
// Set writes to, and the retrieval cursor, which Get starts its lookup from.
//
// A Registry is not safe for concurrent use. Factories call back into the
// registry on the same goroutine, so callers that share one across goroutines
// must serialize every call themselves.
type Registry struct {
	id               string
	scopes           map[string]*Scope
	definitionCursor string
	retrievalCursor  string
	logger           *zap.Logger
	metrics          *Metrics
}

// New creates a registry with the root scope, runs setup against it and
// leaves both cursors at the root. A nil setup registers nothing.
func New(setup Setup, opts ...Option) (*Registry, error) {
	r := &Registry{
		id:     uuid.NewString(),
		scopes: make(map[string]*Scope, 8),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.logger = r.logger.With(zap.String("registry", r.id))

	r.CreateScope(RootScope, "")
	r.Scope(RootScope)
	if err := r.Extend(setup); err != nil {
		return nil, err
	}
	r.EnterScope(RootScope)
	return r, nil
}

// ID returns the unique identifier of the registry, as used in its log lines.
func (r *Registry) ID() string {
	return r.id
}

// Extend runs an additional definition source against the live registry.
func (r *Registry) Extend(setup Setup) error {
	if setup == nil {
		return nil
	}
	if err := setup(r); err != nil {
		return fmt.Errorf("registry setup failed: %w", err)
	}
	return nil
}

// HasScope reports whether a scope named name exists.
func (r *Registry) HasScope(name string) bool {
	_, ok := r.scopes[name]
	return ok
}

// CreateScope declares a scope. An empty parent means the root scope. A parent
// that does not exist yields a scope with no parent at all. Declaring a scope
// that already exists replaces it, dropping its definitions and cache.
func (r *Registry) CreateScope(name, parent string) {
	if name == RootScope {
		parent = ""
	} else if parent == "" {
		parent = RootScope
	}

	if parent != "" && !r.HasScope(parent) {
		r.logger.Warn("parent scope not found, scope created without parent",
			zap.String("scope", name), zap.String("parent", parent))
		parent = ""
	}
	if parent != "" && r.descendsFrom(parent, name) {
		r.logger.Warn("parent scope descends from redeclared scope, scope created without parent",
			zap.String("scope", name), zap.String("parent", parent))
		parent = ""
	}
	if r.HasScope(name) {
		r.logger.Warn("scope redeclared, previous definitions discarded", zap.String("scope", name))
	}

	r.scopes[name] = newScope(name, parent, r)
	r.logger.Debug("scope created", zap.String("scope", name), zap.String("parent", parent))
}

// descendsFrom reports whether ancestor appears on the parent chain of name,
// name included.
func (r *Registry) descendsFrom(name, ancestor string) bool {
	for s := r.scopes[name]; s != nil; s = s.Parent() {
		if s.name == ancestor {
			return true
		}
	}
	return false
}

// ParentScope returns the name of the parent of scope name. The second result
// is false when the scope does not exist or has no parent.
func (r *Registry) ParentScope(name string) (string, bool) {
	s, ok := r.scopes[name]
	if !ok || s.parent == "" {
		return "", false
	}
	return s.parent, true
}

// ScopeNames returns the names of all scopes in lexical order.
func (r *Registry) ScopeNames() []string {
	names := make([]string, 0, len(r.scopes))
	for name := range r.scopes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the scope named name, or nil.
func (r *Registry) Lookup(name string) *Scope {
	return r.scopes[name]
}

// Scope moves the definition cursor. The name is not checked here; Set fails
// later if it does not exist.
func (r *Registry) Scope(name string) {
	r.definitionCursor = name
}

// CurrentDefinitionScope returns the scope Set currently writes to.
func (r *Registry) CurrentDefinitionScope() string {
	return r.definitionCursor
}

// EnterScope moves the retrieval cursor to name, wherever it is in the tree.
func (r *Registry) EnterScope(name string) {
	r.retrievalCursor = name
}

// LeaveScope clears the cache of the current retrieval scope and moves the
// retrieval cursor to its parent.
func (r *Registry) LeaveScope() error {
	current, ok := r.scopes[r.retrievalCursor]
	if !ok {
		return &UnknownScopeError{Scope: r.retrievalCursor}
	}
	if current.parent == "" {
		return &NoParentScopeError{Scope: current.name}
	}

	current.Clear()
	r.metrics.cleared(current.name)
	r.logger.Debug("left scope", zap.String("scope", current.name), zap.String("parent", current.parent))
	r.retrievalCursor = current.parent
	return nil
}

// CurrentScope returns the scope lookups start from.
func (r *Registry) CurrentScope() string {
	return r.retrievalCursor
}

// Set registers def under name in the scope under the definition cursor.
func (r *Registry) Set(name string, def Definition) error {
	s, ok := r.scopes[r.definitionCursor]
	if !ok {
		return &UnknownScopeError{Scope: r.definitionCursor}
	}
	return s.Set(name, def)
}

// SetValue registers a raw value.
func (r *Registry) SetValue(name string, v any) error {
	return r.Set(name, Value(v))
}

// SetFactory registers a factory.
func (r *Registry) SetFactory(name string, fn FactoryFunc) error {
	return r.Set(name, Factory(fn))
}

// Has reports whether the current retrieval scope itself defines name.
// Ancestors are not consulted.
func (r *Registry) Has(name string) bool {
	s, ok := r.scopes[r.retrievalCursor]
	return ok && s.Has(name)
}

// IsInScope reports whether name is defined in the current retrieval scope.
func (r *Registry) IsInScope(name string) bool {
	return r.Has(name)
}

// Get resolves name starting at the current retrieval scope and walking up
// through its ancestors. The instance is cached in the scope that defines it.
func (r *Registry) Get(name string) (any, error) {
	s := r.scopes[r.retrievalCursor]
	for s != nil && !s.Has(name) {
		s = s.Parent()
	}
	if s == nil {
		r.metrics.violation()
		return nil, &ScopeViolationError{Service: name, Scope: r.retrievalCursor}
	}
	return s.Get(name)
}

// MustGet is like Get but panics on error.
func (r *Registry) MustGet(name string) any {
	instance, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return instance
}

// Unset removes name from the current retrieval scope.
func (r *Registry) Unset(name string) {
	if s, ok := r.scopes[r.retrievalCursor]; ok {
		s.Unset(name)
	}
}

// Resolve retrieves name and asserts it to T.
// Returns TypeMismatchError if the instance is not a T.
func Resolve[T any](r *Registry, name string) (T, error) {
	var zero T
	instance, err := r.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &TypeMismatchError{
			Service:  name,
			Expected: reflect.TypeOf((*T)(nil)).Elem().String(),
			Got:      fmt.Sprintf("%T", instance),
		}
	}
	return typed, nil
}
