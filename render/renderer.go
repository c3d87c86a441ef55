// Package render is the rendering collaborator: it takes instances produced
// by the resolver and turns them into output strings. The resolution core
// never inspects that output.
package render

import (
	"context"
	"fmt"

	gocache "github.com/patrickmn/go-cache"

	"github.com/loomkit/loom/framework/component"
	"github.com/loomkit/loom/framework/config"
	"github.com/loomkit/loom/framework/resolver"
)

// Renderer resolves a component by name and invokes its render entrypoint,
// caching override-free output per (name, path, resource type).
type Renderer struct {
	r       *resolver.Resolver
	cache   *gocache.Cache
	enabled bool
}

// New creates a Renderer over r with the configured cache policy.
func New(r *resolver.Resolver, cfg config.RenderConfig) *Renderer {
	return &Renderer{
		r:       r,
		cache:   gocache.New(cfg.CacheTTL, cfg.CacheSweep),
		enabled: cfg.CacheEnabled,
	}
}

// Render resolves and renders name on the synchronous path. A halted
// resolution renders as the empty string with no error: the middleware chose
// to suppress this component. Async components must go through RenderCtx.
func (rn *Renderer) Render(name string, rc *component.ResolutionContext, overrides component.Props) (string, error) {
	key, cacheable := rn.cacheKey(name, rc, overrides)
	if cacheable {
		if out, ok := rn.cache.Get(key); ok {
			return out.(string), nil
		}
	}

	instance, err := rn.r.ResolveByName(name, rc, overrides)
	if err != nil {
		return "", err
	}
	if resolver.Halted(instance, err) {
		return "", nil
	}

	comp, ok := instance.(component.Component)
	if !ok {
		return "", fmt.Errorf("render: %s has no synchronous entrypoint; use RenderCtx", name)
	}

	out, err := comp.Render()
	if err != nil {
		return "", fmt.Errorf("render: %s: %w", name, err)
	}
	if cacheable {
		rn.cache.SetDefault(key, out)
	}
	return out, nil
}

// RenderCtx resolves and renders name on the ctx path, handling both sync
// and async components.
func (rn *Renderer) RenderCtx(ctx context.Context, name string, rc *component.ResolutionContext, overrides component.Props) (string, error) {
	key, cacheable := rn.cacheKey(name, rc, overrides)
	if cacheable {
		if out, ok := rn.cache.Get(key); ok {
			return out.(string), nil
		}
	}

	instance, err := rn.r.ResolveByNameCtx(ctx, name, rc, overrides)
	if err != nil {
		return "", err
	}
	if resolver.Halted(instance, err) {
		return "", nil
	}

	var out string
	switch comp := instance.(type) {
	case component.CtxComponent:
		out, err = comp.RenderCtx(ctx)
	case component.Component:
		out, err = comp.Render()
	default:
		return "", fmt.Errorf("render: %s implements no render entrypoint", name)
	}
	if err != nil {
		return "", fmt.Errorf("render: %s: %w", name, err)
	}

	if cacheable {
		rn.cache.SetDefault(key, out)
	}
	return out, nil
}

// cacheKey builds the cache key for override-free calls. Calls with explicit
// overrides always re-render: overrides vary per caller and would poison a
// name-keyed cache.
func (rn *Renderer) cacheKey(name string, rc *component.ResolutionContext, overrides component.Props) (string, bool) {
	if !rn.enabled || len(overrides) > 0 {
		return "", false
	}
	res := ""
	if t := rc.ResourceType(); t != nil {
		res = t.String()
	}
	return name + "|" + rc.Path() + "|" + res, true
}

// Flush drops every cached rendering.
func (rn *Renderer) Flush() {
	rn.cache.Flush()
}
