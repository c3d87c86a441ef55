package component

import (
	"reflect"

	"github.com/google/uuid"
)

// ── Props ─────────────────────────────────────────────────────────────────────

// Props is the keyword bag threaded through the middleware pipeline and used
// as construction overrides. A nil Props returned from a middleware is the
// halt signal.
type Props map[string]any

// Clone returns a shallow copy, or an empty Props when p is nil. Middleware
// that wants to add keys should clone first rather than mutate its input.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge returns a copy of p with every key of over laid on top.
func (p Props) Merge(over Props) Props {
	out := p.Clone()
	for k, v := range over {
		out[k] = v
	}
	return out
}

// ── ResolutionContext ─────────────────────────────────────────────────────────

// ResolutionContext is the ambient state of one resolution call: the current
// resource, the current location path, and any caller-supplied values. It is
// created per call, read-only during resolution, and discarded after.
type ResolutionContext struct {
	id       string
	resource any
	path     string
	values   map[string]any
}

// ContextOption configures a ResolutionContext at construction time.
type ContextOption func(*ResolutionContext)

// WithResource sets the current resource. Its concrete type is the resource
// category that variant discriminators match against.
func WithResource(resource any) ContextOption {
	return func(rc *ResolutionContext) { rc.resource = resource }
}

// WithPath sets the current location path, e.g. "/blog/2026/post".
func WithPath(path string) ContextOption {
	return func(rc *ResolutionContext) { rc.path = path }
}

// WithValue attaches an arbitrary key to the context.
func WithValue(key string, value any) ContextOption {
	return func(rc *ResolutionContext) { rc.values[key] = value }
}

// NewContext builds a fresh per-call context with a unique ID.
func NewContext(opts ...ContextOption) *ResolutionContext {
	rc := &ResolutionContext{
		id:     uuid.NewString(),
		values: make(map[string]any),
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// ID returns the unique identifier of this resolution call, for log
// correlation.
func (rc *ResolutionContext) ID() string { return rc.id }

// Resource returns the current resource, or nil.
func (rc *ResolutionContext) Resource() any { return rc.resource }

// ResourceType returns the concrete type of the current resource, or nil when
// no resource is set.
func (rc *ResolutionContext) ResourceType() reflect.Type {
	if rc == nil || rc.resource == nil {
		return nil
	}
	return reflect.TypeOf(rc.resource)
}

// Path returns the current location path ("" when unset).
func (rc *ResolutionContext) Path() string {
	if rc == nil {
		return ""
	}
	return rc.path
}

// Value returns a caller-attached value by key.
func (rc *ResolutionContext) Value(key string) (any, bool) {
	if rc == nil {
		return nil, false
	}
	v, ok := rc.values[key]
	return v, ok
}
