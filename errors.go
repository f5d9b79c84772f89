package dimple

import "fmt"

// ScopeViolationError represents a service that cannot be reached from the
// current retrieval scope or any of its ancestors.
type ScopeViolationError struct {
	Service string
	Scope   string
}

func (e *ScopeViolationError) Error() string {
	return fmt.Sprintf("service '%s' cannot be retrieved in current '%s' scope", e.Service, e.Scope)
}

// UnknownScopeError represents a cursor pointing at a scope that was never created.
type UnknownScopeError struct {
	Scope string
}

func (e *UnknownScopeError) Error() string {
	return fmt.Sprintf("scope not found: %s", e.Scope)
}

// NoParentScopeError represents an attempt to leave a scope that has no parent.
type NoParentScopeError struct {
	Scope string
}

func (e *NoParentScopeError) Error() string {
	return fmt.Sprintf("cannot leave scope %s: it has no parent", e.Scope)
}

// ConstructionError represents a factory failure.
type ConstructionError struct {
	Service string
	Scope   string
	Err     error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construction failed for service %s in scope %s: %v", e.Service, e.Scope, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// TypeMismatchError represents a type assertion failure.
type TypeMismatchError struct {
	Service  string
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch for service %s: expected %s, got %s", e.Service, e.Expected, e.Got)
}

// InvalidDefinitionError represents a definition that can never produce a value.
type InvalidDefinitionError struct {
	Service string
	Reason  string
}

func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("invalid definition for service %s: %s", e.Service, e.Reason)
}

// UnknownTypeError represents a type identifier the auto-wiring resolver does not know.
type UnknownTypeError struct {
	ID string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("no constructor registered for type: %s", e.ID)
}
