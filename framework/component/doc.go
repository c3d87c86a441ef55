// Package component holds the named component registry and the per-resolution
// context that travels through the middleware pipeline and into construction.
//
// # Registry
//
// Components are referenced by name. The registry maps each name to a
// Descriptor — the component's concrete type plus metadata computed once at
// registration time (such as whether its render entrypoint takes a context).
//
//	reg := component.NewRegistry()
//	if err := reg.Register("Greeting", Greeting{}); err != nil { ... }
//	d, err := reg.Lookup("Greeting")
//
// Only class-like values register: a struct or a pointer to a struct. A bare
// function is rejected with InvalidComponentType — call it directly instead of
// resolving it by name.
//
// # Resolution context
//
// A ResolutionContext is built per call and never mutated during resolution.
// It carries the ambient state variant selection keys off: the current
// resource and the current location path.
//
//	rctx := component.NewContext(
//	    component.WithResource(article),
//	    component.WithPath("/blog/2026/post"),
//	)
package component
