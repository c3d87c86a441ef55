package container

import (
	"context"
	"reflect"
	"sync"

	"github.com/loomkit/loom/framework/component"
)

// ── Registration types ────────────────────────────────────────────────────────

// Lifetime determines how often a registration's product is built.
type Lifetime int

const (
	// Transient builds a fresh instance on every resolution.
	Transient Lifetime = iota
	// Singleton caches the first successfully built instance on the entry.
	Singleton
)

// Factory builds a concrete value from the container and the current
// resolution context.
type Factory func(c *Container, rc *component.ResolutionContext) (any, error)

// CtxFactory is a Factory that may block; it is only invoked on the ctx
// resolution path.
type CtxFactory func(ctx context.Context, c *Container, rc *component.ResolutionContext) (any, error)

// entry is one registration: a value, a factory, or a bare type built by the
// injector — plus its discriminator and monotonic sequence number. The
// sequence number breaks ties among equally specific entries: last wins.
type entry struct {
	typ        reflect.Type
	value      any
	hasValue   bool
	factory    Factory
	ctxFactory CtxFactory
	construct  bool
	disc       Discriminator
	seq        uint64
	lifetime   Lifetime

	buildMu sync.Mutex
	built   bool
	cached  any
}

// Option tunes a registration.
type Option func(*entry)

// AsSingleton caches the entry's product after the first successful
// resolution.
func AsSingleton() Option {
	return func(e *entry) { e.lifetime = Singleton }
}

// DiscriminatedBy attaches a discriminator to the registration.
func DiscriminatedBy(d Discriminator) Option {
	return func(e *entry) { e.disc = d }
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container stores registrations keyed by type and performs variant
// resolution. Registration is mutex-guarded and expected during boot;
// steady-state resolution takes only the read lock.
type Container struct {
	mu      sync.RWMutex
	entries map[reflect.Type][]*entry
	nextSeq uint64
}

// New creates an empty container.
func New() *Container {
	return &Container{entries: make(map[reflect.Type][]*entry)}
}

// add appends a registration under key with the next sequence number.
func (c *Container) add(key reflect.Type, e *entry, opts []Option) {
	for _, opt := range opts {
		opt(e)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSeq++
	e.seq = c.nextSeq
	e.typ = key
	c.entries[key] = append(c.entries[key], e)
}

// RegisterValue binds a pre-built instance under key. Values are inherently
// container-scoped: every resolution returns the same instance.
func (c *Container) RegisterValue(key reflect.Type, instance any) {
	c.add(key, &entry{value: instance, hasValue: true, lifetime: Singleton}, nil)
}

// RegisterFactory binds a factory under key. Transient unless AsSingleton is
// given.
func (c *Container) RegisterFactory(key reflect.Type, f Factory, opts ...Option) {
	c.add(key, &entry{factory: f}, opts)
}

// RegisterCtxFactory binds a context-accepting factory under key. Such
// entries resolve only on the ctx path; the sync path fails with
// AsyncFactoryInSyncContext.
func (c *Container) RegisterCtxFactory(key reflect.Type, f CtxFactory, opts ...Option) {
	c.add(key, &entry{ctxFactory: f}, opts)
}

// RegisterVariant binds a discriminated factory under key. The variant is
// selected when its discriminator matches the resolution context and is the
// most specific (and, among equals, most recent) match.
func (c *Container) RegisterVariant(key reflect.Type, f Factory, d Discriminator, opts ...Option) {
	c.add(key, &entry{factory: f, disc: d}, opts)
}

// RegisterType binds key to itself: resolution constructs it through the
// injector, honoring inject/prop tags. key must be a struct or pointer to
// struct type.
func (c *Container) RegisterType(key reflect.Type, opts ...Option) {
	c.add(key, &entry{construct: true}, opts)
}

// Bound reports whether key has at least one registration.
func (c *Container) Bound(key reflect.Type) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries[key]) > 0
}

// ── Resolution ────────────────────────────────────────────────────────────────

// ResolveType resolves key synchronously. Selection: filter entries whose
// discriminator matches rc, keep the most specific, break ties by recency,
// fall back to the undiscriminated default. overrides feed the injector's
// prop precedence when the selected entry is a constructed type.
func (c *Container) ResolveType(key reflect.Type, rc *component.ResolutionContext, overrides component.Props) (any, error) {
	return c.resolve(nil, key, rc, overrides, newBuildState())
}

// ResolveTypeCtx is ResolveType for the ctx path: context-accepting factories
// are awaited in place.
func (c *Container) ResolveTypeCtx(ctx context.Context, key reflect.Type, rc *component.ResolutionContext, overrides component.Props) (any, error) {
	return c.resolve(ctx, key, rc, overrides, newBuildState())
}

// resolve selects and builds an entry for key. ctx is nil on the sync path.
func (c *Container) resolve(ctx context.Context, key reflect.Type, rc *component.ResolutionContext, overrides component.Props, st *buildState) (any, error) {
	e, err := c.selectEntry(key, rc)
	if err != nil {
		return nil, err
	}
	return c.build(ctx, e, rc, overrides, st)
}

// selectEntry runs the variant selection algorithm under the read lock.
func (c *Container) selectEntry(key reflect.Type, rc *component.ResolutionContext) (*entry, error) {
	c.mu.RLock()
	entries := c.entries[key]

	var best *entry
	bestScore := -1
	for _, e := range entries {
		score := e.disc.specificity(rc)
		if score < 0 {
			continue
		}
		if score > bestScore || (score == bestScore && e.seq > best.seq) {
			best, bestScore = e, score
		}
	}
	c.mu.RUnlock()

	if best == nil {
		return nil, &ServiceNotFoundError{Type: key}
	}
	return best, nil
}

// build produces the entry's value, caching singletons on first success.
// A failed construction caches nothing: the next resolution retries, so a
// transient factory error or a sync-path touch of a ctx-factory singleton
// does not poison the entry.
func (c *Container) build(ctx context.Context, e *entry, rc *component.ResolutionContext, overrides component.Props, st *buildState) (any, error) {
	if e.lifetime == Singleton {
		e.buildMu.Lock()
		defer e.buildMu.Unlock()
		if e.built {
			return e.cached, nil
		}
		v, err := c.produce(ctx, e, rc, overrides, st)
		if err != nil {
			return nil, err
		}
		e.cached, e.built = v, true
		return v, nil
	}
	return c.produce(ctx, e, rc, overrides, st)
}

func (c *Container) produce(ctx context.Context, e *entry, rc *component.ResolutionContext, overrides component.Props, st *buildState) (any, error) {
	switch {
	case e.hasValue:
		return e.value, nil
	case e.factory != nil:
		return e.factory(c, rc)
	case e.ctxFactory != nil:
		if ctx == nil {
			return nil, &AsyncFactoryInSyncContext{Type: e.typ}
		}
		return e.ctxFactory(ctx, c, rc)
	default:
		inj, err := c.injectorService()
		if err != nil {
			return nil, err
		}
		return inj.construct(ctx, e.typ, rc, overrides, st)
	}
}

// injectorService resolves the construction engine from the container
// itself. Its absence is a setup defect.
func (c *Container) injectorService() (*Injector, error) {
	v, err := c.resolve(nil, injectorType, nil, nil, newBuildState())
	if err != nil {
		return nil, &InjectorNotFoundError{Owner: injectorType, Field: "-", Type: injectorType}
	}
	return v.(*Injector), nil
}

// ── Generic helpers ───────────────────────────────────────────────────────────

// KeyOf returns the service key for T. Shorthand for reflect.TypeFor when
// building discriminated bindings:
//
//	c.When(container.KeyOf[*theme]()).AtPath("/admin").GiveValue(...)
func KeyOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// RegisterValue binds instance under the static type T — handy for interface
// keys where reflect.TypeOf would yield the concrete type.
//
//	container.RegisterValue[Logger](c, &memLogger{})
func RegisterValue[T any](c *Container, instance T) {
	c.RegisterValue(reflect.TypeOf((*T)(nil)).Elem(), instance)
}

// RegisterFactory binds a typed factory under T.
func RegisterFactory[T any](c *Container, f func(*Container, *component.ResolutionContext) (T, error), opts ...Option) {
	c.RegisterFactory(reflect.TypeOf((*T)(nil)).Elem(), func(c *Container, rc *component.ResolutionContext) (any, error) {
		return f(c, rc)
	}, opts...)
}

// RegisterVariant binds a typed discriminated factory under T.
func RegisterVariant[T any](c *Container, f func(*Container, *component.ResolutionContext) (T, error), d Discriminator, opts ...Option) {
	c.RegisterVariant(reflect.TypeOf((*T)(nil)).Elem(), func(c *Container, rc *component.ResolutionContext) (any, error) {
		return f(c, rc)
	}, d, opts...)
}

// Resolve resolves T and type-asserts the result.
//
//	logger, err := container.Resolve[Logger](c, rc, nil)
func Resolve[T any](c *Container, rc *component.ResolutionContext, overrides component.Props) (T, error) {
	var zero T
	v, err := c.ResolveType(reflect.TypeOf((*T)(nil)).Elem(), rc, overrides)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, &ServiceNotFoundError{Type: reflect.TypeOf((*T)(nil)).Elem()}
	}
	return typed, nil
}
