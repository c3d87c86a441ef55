package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/loomkit/loom/framework/component"
)

// ── Middleware contracts ──────────────────────────────────────────────────────

// Middleware intercepts a resolution before construction. It receives the
// running props and returns the props the next middleware (or the injector)
// should see. Returning nil Props with a nil error is the halt signal: the
// chain stops and the resolution short-circuits without constructing
// anything. Halt is not an error.
type Middleware interface {
	// Priority orders execution: ascending, negative runs first.
	Priority() int

	// Process transforms or halts the resolution.
	Process(d *component.Descriptor, props component.Props, rc *component.ResolutionContext) (component.Props, error)
}

// CtxMiddleware is a middleware that may block. The sync execution path
// refuses it with AsyncMiddlewareInSyncContext; the ctx path awaits it in
// place.
type CtxMiddleware interface {
	Priority() int
	ProcessCtx(ctx context.Context, d *component.Descriptor, props component.Props, rc *component.ResolutionContext) (component.Props, error)
}

// AsyncMiddlewareInSyncContext reports a sync Execute call that reached a
// ctx-only middleware. Programming defect: use ExecuteCtx, the middleware is
// not silently skipped.
type AsyncMiddlewareInSyncContext struct {
	Priority int
}

func (e *AsyncMiddlewareInSyncContext) Error() string {
	return fmt.Sprintf(
		"pipeline: middleware at priority %d only supports the ctx path; use ExecuteCtx",
		e.Priority,
	)
}

// ── Func adapters ─────────────────────────────────────────────────────────────

// Func adapts a plain function into a Middleware with an explicit priority.
//
//	p.Use(pipeline.Func(-10, func(d *component.Descriptor, props component.Props, rc *component.ResolutionContext) (component.Props, error) {
//	    out := props.Clone()
//	    out["theme"] = "dark"
//	    return out, nil
//	}))
func Func(priority int, fn func(*component.Descriptor, component.Props, *component.ResolutionContext) (component.Props, error)) Middleware {
	return &funcMiddleware{priority: priority, fn: fn}
}

type funcMiddleware struct {
	priority int
	fn       func(*component.Descriptor, component.Props, *component.ResolutionContext) (component.Props, error)
}

func (m *funcMiddleware) Priority() int { return m.priority }

func (m *funcMiddleware) Process(d *component.Descriptor, props component.Props, rc *component.ResolutionContext) (component.Props, error) {
	return m.fn(d, props, rc)
}

// CtxFunc adapts a context-accepting function into a CtxMiddleware.
func CtxFunc(priority int, fn func(context.Context, *component.Descriptor, component.Props, *component.ResolutionContext) (component.Props, error)) CtxMiddleware {
	return &ctxFuncMiddleware{priority: priority, fn: fn}
}

type ctxFuncMiddleware struct {
	priority int
	fn       func(context.Context, *component.Descriptor, component.Props, *component.ResolutionContext) (component.Props, error)
}

func (m *ctxFuncMiddleware) Priority() int { return m.priority }

func (m *ctxFuncMiddleware) ProcessCtx(ctx context.Context, d *component.Descriptor, props component.Props, rc *component.ResolutionContext) (component.Props, error) {
	return m.fn(ctx, d, props, rc)
}

// ── Pipeline ──────────────────────────────────────────────────────────────────

// step is one registered middleware with its insertion order preserved for
// the stable sort.
type step struct {
	mw    any // Middleware or CtxMiddleware
	prio  int
	order int
}

// Pipeline holds the priority-sorted middleware chains: one global chain plus
// a scoped chain per component name. Scoped middleware run strictly after ALL
// global middleware — they are additive, never a replacement.
type Pipeline struct {
	mu     sync.RWMutex
	global []step
	scoped map[string][]step
	next   int
}

// New creates an empty pipeline.
func New() *Pipeline {
	return &Pipeline{scoped: make(map[string][]step)}
}

// Use registers a global middleware. mw must implement Middleware or
// CtxMiddleware; anything else panics at registration time, never during
// execution.
func (p *Pipeline) Use(mw any) {
	prio := priorityOf(mw)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.global = p.insert(p.global, mw, prio)
}

// UseScoped registers a middleware that runs only for the component
// registered under name, after all global middleware.
func (p *Pipeline) UseScoped(name string, mw any) {
	prio := priorityOf(mw)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scoped[name] = p.insert(p.scoped[name], mw, prio)
}

// priorityOf validates the middleware shape once, at registration.
func priorityOf(mw any) int {
	switch m := mw.(type) {
	case Middleware:
		return m.Priority()
	case CtxMiddleware:
		return m.Priority()
	default:
		panic(fmt.Sprintf("pipeline: %T implements neither Middleware nor CtxMiddleware", mw))
	}
}

// insert appends and re-sorts stably: ascending priority, equal priorities
// keep registration order.
func (p *Pipeline) insert(steps []step, mw any, prio int) []step {
	p.next++
	steps = append(steps, step{mw: mw, prio: prio, order: p.next})
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].prio < steps[j].prio })
	return steps
}

// chain snapshots the steps for one execution: global first, then scoped.
func (p *Pipeline) chain(name string) []step {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]step, 0, len(p.global)+len(p.scoped[name]))
	out = append(out, p.global...)
	out = append(out, p.scoped[name]...)
	return out
}

// ── Execution ─────────────────────────────────────────────────────────────────

// Execute runs the sync path: each middleware in order, threading props
// through. A nil-props return halts immediately and (nil, nil) is returned —
// later middleware never observe the call. A ctx-only middleware on this
// path is an error, not a skip.
func (p *Pipeline) Execute(d *component.Descriptor, props component.Props, rc *component.ResolutionContext) (component.Props, error) {
	for _, s := range p.chain(d.Name()) {
		m, ok := s.mw.(Middleware)
		if !ok {
			return nil, &AsyncMiddlewareInSyncContext{Priority: s.prio}
		}
		next, err := m.Process(d, props, rc)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, nil // halted
		}
		props = next
	}
	return props, nil
}

// ExecuteCtx runs the ctx path with identical ordering and halt semantics:
// ctx middleware are awaited in place, sync middleware are called directly.
// An all-sync chain produces the same props on both paths.
func (p *Pipeline) ExecuteCtx(ctx context.Context, d *component.Descriptor, props component.Props, rc *component.ResolutionContext) (component.Props, error) {
	for _, s := range p.chain(d.Name()) {
		var (
			next component.Props
			err  error
		)
		switch m := s.mw.(type) {
		case CtxMiddleware:
			next, err = m.ProcessCtx(ctx, d, props, rc)
		case Middleware:
			next, err = m.Process(d, props, rc)
		}
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, nil // halted
		}
		props = next
	}
	return props, nil
}
