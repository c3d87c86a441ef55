package container

import (
	"reflect"

	"github.com/loomkit/loom/framework/component"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider is the registration-phase driver: discovery layers (package
// scanners, manifests) package their findings as providers and hand them to a
// ProviderRegistry before the first resolution call.
//
// Every provider must implement at minimum Register().
// Boot() is called after ALL providers have been registered, making it safe
// to resolve other bindings inside Boot().
//
//	type ThemeProvider struct{ container.BaseProvider }
//
//	func (p *ThemeProvider) Register(c *container.Container) {
//	    container.RegisterValue[Theme](c, &DefaultTheme{})
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other bindings here — use Boot() for that.
	Register(c *Container)

	// Boot is called after all providers are registered.
	// Safe to resolve and use any binding here.
	Boot(c *Container)

	// Provides returns the type keys this provider registers.
	// Used for deferred (lazy) provider loading.
	// Return nil if the provider is always eager.
	Provides() []reflect.Type

	// IsDeferred returns true if this provider should be loaded lazily —
	// only when one of its Provides() types is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
// Embed it in your provider and only override what you need.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container)        {}
func (p *BaseProvider) Provides() []reflect.Type { return nil }
func (p *BaseProvider) IsDeferred() bool         { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
type ProviderRegistry struct {
	c          *Container
	eager      []ServiceProvider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to c.
func NewProviderRegistry(c *Container) *ProviderRegistry {
	return &ProviderRegistry{
		c:          c,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method (unless deferred).
func (r *ProviderRegistry) Register(provider ServiceProvider) {
	if r.registered[provider] {
		return
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		r.interceptDeferred(provider)
		return
	}

	provider.Register(r.c)
	r.eager = append(r.eager, provider)

	// If already booted, boot this provider immediately
	if r.booted {
		provider.Boot(r.c)
	}
}

// interceptDeferred registers a lazy factory for each deferred type. The
// first resolution triggers real registration; the real entries carry higher
// sequence numbers than the stub, so last-registered-wins routes every
// subsequent resolution past the stub. A provider whose Register() never
// binds a promised key would leave the stub as the selected entry and
// re-resolve itself forever, so that selection fails with
// DeferredBindingError instead.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) {
	loaded := false
	for _, key := range provider.Provides() {
		key := key
		stub := &entry{}
		stub.factory = func(c *Container, rc *component.ResolutionContext) (any, error) {
			if !loaded {
				loaded = true
				provider.Register(c)
				if r.booted {
					provider.Boot(c)
				}
			}
			if selected, err := c.selectEntry(key, rc); err != nil || selected == stub {
				return nil, &DeferredBindingError{Type: key}
			}
			return c.ResolveType(key, rc, nil)
		}
		r.c.add(key, stub, nil)
	}
}

// Boot calls Boot() on all eager providers.
// Must be called after ALL providers have been registered.
func (r *ProviderRegistry) Boot() {
	if r.booted {
		return
	}
	r.booted = true
	for _, provider := range r.eager {
		provider.Boot(r.c)
	}
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool { return r.booted }

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.eager }
