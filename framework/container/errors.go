package container

import (
	"fmt"
	"reflect"
	"strings"
)

// ── Errors ────────────────────────────────────────────────────────────────────

// ServiceNotFoundError reports a type with no matching registration and no
// default entry. Caller-recoverable.
type ServiceNotFoundError struct {
	Type reflect.Type
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("container: no registration matches type %s and no default is bound", e.Type)
}

// InjectorNotFoundError reports an injected field whose declared type has no
// registration anywhere in the container. This is a setup defect: the wiring
// is incomplete, not the caller's request.
type InjectorNotFoundError struct {
	Owner reflect.Type
	Field string
	Type  reflect.Type
}

func (e *InjectorNotFoundError) Error() string {
	return fmt.Sprintf(
		"container: cannot inject %s.%s: no registration for %s (setup defect)",
		e.Owner, e.Field, e.Type,
	)
}

// MissingPropError reports a prop field with no caller override and no
// declared default.
type MissingPropError struct {
	Owner reflect.Type
	Field string
	Prop  string
}

func (e *MissingPropError) Error() string {
	return fmt.Sprintf(
		"container: cannot construct %s: prop %q (field %s) has no override and no default",
		e.Owner, e.Prop, e.Field,
	)
}

// CircularDependencyError reports a type that directly or transitively
// injects itself.
type CircularDependencyError struct {
	Chain []reflect.Type
}

func (e *CircularDependencyError) Error() string {
	names := make([]string, 0, len(e.Chain))
	for _, t := range e.Chain {
		names = append(names, t.String())
	}
	return "container: circular dependency: " + strings.Join(names, " -> ")
}

// DeferredBindingError reports a deferred provider that, once loaded, never
// registered the type it promised in Provides(). Setup defect: the provider's
// Provides() list and its Register() disagree.
type DeferredBindingError struct {
	Type reflect.Type
}

func (e *DeferredBindingError) Error() string {
	return fmt.Sprintf(
		"container: deferred provider promised %s but its Register() never bound it (setup defect)",
		e.Type,
	)
}

// AsyncFactoryInSyncContext reports a synchronous Resolve call that selected
// an entry registered with a context-accepting factory. Programming defect:
// use ResolveTypeCtx for such entries.
type AsyncFactoryInSyncContext struct {
	Type reflect.Type
}

func (e *AsyncFactoryInSyncContext) Error() string {
	return fmt.Sprintf(
		"container: type %s is bound to a context-accepting factory; resolve it through the ctx path",
		e.Type,
	)
}
