package component

import (
	"context"
	"reflect"
)

// ── Render contracts ──────────────────────────────────────────────────────────

// Component is the synchronous render entrypoint. The rendering collaborator
// calls it on instances returned by the resolver; the core never does.
type Component interface {
	Render() (string, error)
}

// CtxComponent is the context-accepting render entrypoint. A type implementing
// it is treated as asynchronous: its Descriptor reports IsAsync and consumers
// must invoke RenderCtx instead of Render.
type CtxComponent interface {
	RenderCtx(ctx context.Context) (string, error)
}

var ctxComponentType = reflect.TypeOf((*CtxComponent)(nil)).Elem()

// ── Descriptor ────────────────────────────────────────────────────────────────

// Descriptor describes one registered component: its name, its underlying
// struct type, and whether its render entrypoint is asynchronous. The async
// flag is computed once here, never re-inspected during resolution.
type Descriptor struct {
	name    string
	typ     reflect.Type // struct type, pointer stripped
	isAsync bool
}

// newDescriptor builds a Descriptor for a struct type. typ must already be
// normalized to a non-pointer struct type.
func newDescriptor(name string, typ reflect.Type) *Descriptor {
	return &Descriptor{
		name:    name,
		typ:     typ,
		isAsync: reflect.PointerTo(typ).Implements(ctxComponentType),
	}
}

// Name returns the name the component was registered under.
func (d *Descriptor) Name() string { return d.name }

// Type returns the component's struct type (without pointer).
// Instances produced by the injector are pointers to this type.
func (d *Descriptor) Type() reflect.Type { return d.typ }

// IsAsync reports whether the component renders through CtxComponent.
func (d *Descriptor) IsAsync() bool { return d.isAsync }

// String implements fmt.Stringer for log output.
func (d *Descriptor) String() string { return d.name + " (" + d.typ.String() + ")" }

// normalizeType strips one level of pointer and reports whether the result is
// a struct type. Used by the registry's class-like check.
func normalizeType(t reflect.Type) (reflect.Type, bool) {
	if t == nil {
		return nil, false
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t, t.Kind() == reflect.Struct
}
