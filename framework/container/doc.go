// Package container provides the dependency container at the heart of loom:
// type-keyed registrations, discriminated variants, an injector that builds
// structs by reflection, and the service-provider boot lifecycle.
//
// # Container lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()        — safe to resolve everything after this
//  4. Resolve, concurrently, for the rest of the process
//
// # Registrations
//
//	// Pre-built value — same instance every resolution
//	container.RegisterValue[Logger](c, &memLogger{})
//
//	// Factory — fresh product each time, unless AsSingleton
//	container.RegisterFactory[*Cache](c, func(c *container.Container, rc *component.ResolutionContext) (*Cache, error) {
//	    return NewCache(), nil
//	}, container.AsSingleton())
//
//	// Injector-built type — fields with inject/prop tags drive construction
//	c.RegisterType(reflect.TypeFor[Widget]())
//
// # Variants
//
// Several registrations may share one type key, each carrying a
// discriminator: a resource type (exact match against the context's current
// resource) or a location path (prefix match, deepest wins). The most
// specific match is selected; among equally specific matches the most
// recently registered entry wins. An undiscriminated entry is the default
// fallback.
//
//	c.When(themeKey).ForResource(&Article{}).Give(articleTheme)
//	c.When(themeKey).AtPath("/docs").GiveValue(&DocsTheme{})
//
// # Resolution
//
//	theme, err := container.Resolve[Theme](c, rctx, nil)
//
// A request for a type with no matching entry and no default fails with
// ServiceNotFoundError. An injected field whose type has no registration
// fails with InjectorNotFoundError — a setup defect, surfaced immediately
// and never retried.
package container
