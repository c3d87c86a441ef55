// Package resolver is the single entry point consumers use: it turns a
// component name into a constructed, dependency-satisfied instance by
// orchestrating the registry, the middleware pipeline, and the container.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"reflect"

	"github.com/loomkit/loom/framework/component"
	"github.com/loomkit/loom/framework/container"
	"github.com/loomkit/loom/framework/logging"
	"github.com/loomkit/loom/framework/pipeline"
)

// ── Errors ────────────────────────────────────────────────────────────────────

// RegistryNotSetupError reports that the component registry itself is missing
// from the container. Setup defect: the kernel never wired the registry.
type RegistryNotSetupError struct{}

func (e *RegistryNotSetupError) Error() string {
	return "resolver: component registry is not bound in the container (setup defect)"
}

// ── Resolver ──────────────────────────────────────────────────────────────────

// Each call walks a fixed set of states. Terminal alternates: halted (a
// middleware returned the halt signal) and failed (typed error).
type state string

const (
	stateNameLookup    state = "name-lookup"
	statePreMiddleware state = "pre-middleware"
	stateAsyncDetect   state = "async-detect"
	stateConstruct     state = "construct"
	stateDone          state = "done"
)

// Resolver is the resolution facade. Construct it once per application (or
// per test) and pass it explicitly — there is no package-level instance.
type Resolver struct {
	c   *container.Container
	p   *pipeline.Pipeline
	log *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the structured logger resolution calls trace through.
func WithLogger(log *slog.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// New creates a resolver over c and p. The component registry and the
// injector are discovered from c at call time, so their absence surfaces as
// the setup-defect errors rather than at construction.
func New(c *container.Container, p *pipeline.Pipeline, opts ...Option) *Resolver {
	r := &Resolver{c: c, p: p, log: logging.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Halted reports whether a ResolveByName result is the halt signal: a
// middleware deliberately short-circuited the call. Distinct from every
// error, including "nothing found".
func Halted(instance any, err error) bool {
	return instance == nil && err == nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// ResolveByName resolves name on the synchronous path. overrides take the
// highest precedence for prop values. Returns the constructed instance, the
// halt signal (nil, nil), or a typed error.
func (r *Resolver) ResolveByName(name string, rc *component.ResolutionContext, overrides component.Props) (any, error) {
	return r.resolve(nil, name, rc, overrides)
}

// ResolveByNameCtx is ResolveByName on the ctx path: ctx middleware and
// context-accepting factories are awaited in place. The core imposes no
// timeout of its own — bound ctx if you need one.
func (r *Resolver) ResolveByNameCtx(ctx context.Context, name string, rc *component.ResolutionContext, overrides component.Props) (any, error) {
	return r.resolve(ctx, name, rc, overrides)
}

func (r *Resolver) resolve(ctx context.Context, name string, rc *component.ResolutionContext, overrides component.Props) (any, error) {
	log := r.log.With(slog.String("component", name), slog.String("resolution", contextID(rc)))

	// NameLookup
	log.Debug("resolution state", slog.String("state", string(stateNameLookup)))
	reg, err := r.registry()
	if err != nil {
		return nil, err
	}
	d, err := reg.Lookup(name)
	if err != nil {
		return nil, err
	}

	// PreMiddleware — global chain, then middleware scoped to this component.
	log.Debug("resolution state", slog.String("state", string(statePreMiddleware)))
	props := overrides.Clone()
	if ctx == nil {
		props, err = r.p.Execute(d, props, rc)
	} else {
		props, err = r.p.ExecuteCtx(ctx, d, props, rc)
	}
	if err != nil {
		return nil, err
	}
	if props == nil {
		log.Debug("resolution halted by middleware")
		return nil, nil
	}

	// AsyncDetect — cached on the descriptor at registration time.
	log.Debug("resolution state",
		slog.String("state", string(stateAsyncDetect)),
		slog.Bool("async", d.IsAsync()))

	// Construct — caller overrides outrank middleware-produced props.
	log.Debug("resolution state", slog.String("state", string(stateConstruct)))
	instance, err := r.construct(ctx, d, rc, props.Merge(overrides))
	if err != nil {
		return nil, err
	}

	log.Debug("resolution state", slog.String("state", string(stateDone)))
	return instance, nil
}

// construct delegates to the container when the component's type is bound
// there (values, factories, variants, scoped lifetimes all apply), and falls
// back to plain injector construction otherwise.
func (r *Resolver) construct(ctx context.Context, d *component.Descriptor, rc *component.ResolutionContext, props component.Props) (any, error) {
	for _, key := range []reflect.Type{d.Type(), reflect.PointerTo(d.Type())} {
		if r.c.Bound(key) {
			if ctx == nil {
				return r.c.ResolveType(key, rc, props)
			}
			return r.c.ResolveTypeCtx(ctx, key, rc, props)
		}
	}

	inj, err := r.injector()
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		return inj.Construct(d.Type(), rc, props)
	}
	return inj.ConstructCtx(ctx, d.Type(), rc, props)
}

// registry discovers the component registry from the container.
func (r *Resolver) registry() (*component.Registry, error) {
	reg, err := container.Resolve[*component.Registry](r.c, nil, nil)
	if err != nil {
		var nf *container.ServiceNotFoundError
		if errors.As(err, &nf) {
			return nil, &RegistryNotSetupError{}
		}
		return nil, err
	}
	return reg, nil
}

// injector discovers the construction engine from the container.
func (r *Resolver) injector() (*container.Injector, error) {
	inj, err := container.Resolve[*container.Injector](r.c, nil, nil)
	if err != nil {
		var nf *container.ServiceNotFoundError
		if errors.As(err, &nf) {
			injType := reflect.TypeOf((**container.Injector)(nil)).Elem()
			return nil, &container.InjectorNotFoundError{Owner: injType, Field: "-", Type: injType}
		}
		return nil, err
	}
	return inj, nil
}

func contextID(rc *component.ResolutionContext) string {
	if rc == nil {
		return ""
	}
	return rc.ID()
}
