package pipeline_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/loomkit/loom/framework/component"
	"github.com/loomkit/loom/framework/pipeline"
)

// ── fixtures ─────────────────────────────────────────────────────────────────

type card struct{}

func (c *card) Render() (string, error) { return "card", nil }

func descriptor(t *testing.T) *component.Descriptor {
	t.Helper()
	reg := component.NewRegistry()
	if err := reg.Register("Card", card{}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	d, err := reg.Lookup("Card")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	return d
}

// tracer appends its tag to the "trace" prop.
func tracer(priority int, tag string) pipeline.Middleware {
	return pipeline.Func(priority, func(_ *component.Descriptor, props component.Props, _ *component.ResolutionContext) (component.Props, error) {
		out := props.Clone()
		trace, _ := out["trace"].([]string)
		out["trace"] = append(trace, tag)
		return out, nil
	})
}

func trace(t *testing.T, props component.Props) []string {
	t.Helper()
	got, _ := props["trace"].([]string)
	return got
}

// ── Ordering ─────────────────────────────────────────────────────────────────

func TestPipeline_AscendingPriorityOrder(t *testing.T) {
	p := pipeline.New()
	p.Use(tracer(10, "ten"))
	p.Use(tracer(-10, "minus-ten"))
	p.Use(tracer(0, "zero"))

	props, err := p.Execute(descriptor(t), component.Props{}, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := []string{"minus-ten", "zero", "ten"}
	if !reflect.DeepEqual(trace(t, props), want) {
		t.Errorf("order: got %v, want %v", trace(t, props), want)
	}
}

func TestPipeline_EqualPriorityKeepsRegistrationOrder(t *testing.T) {
	p := pipeline.New()
	p.Use(tracer(5, "first"))
	p.Use(tracer(5, "second"))
	p.Use(tracer(5, "third"))

	props, err := p.Execute(descriptor(t), component.Props{}, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(trace(t, props), want) {
		t.Errorf("stable sort: got %v, want %v", trace(t, props), want)
	}
}

// ── Halt ─────────────────────────────────────────────────────────────────────

func TestPipeline_HaltStopsChainImmediately(t *testing.T) {
	p := pipeline.New()
	laterRan := 0

	p.Use(tracer(0, "before"))
	p.Use(pipeline.Func(1, func(_ *component.Descriptor, _ component.Props, _ *component.ResolutionContext) (component.Props, error) {
		return nil, nil // halt
	}))
	p.Use(pipeline.Func(2, func(_ *component.Descriptor, props component.Props, _ *component.ResolutionContext) (component.Props, error) {
		laterRan++
		return props, nil
	}))

	props, err := p.Execute(descriptor(t), component.Props{}, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if props != nil {
		t.Errorf("halt must return nil props, got %v", props)
	}
	if laterRan != 0 {
		t.Error("no middleware after the halt may run")
	}
}

func TestPipeline_HaltIsNotAnError(t *testing.T) {
	p := pipeline.New()
	p.Use(pipeline.Func(0, func(_ *component.Descriptor, _ component.Props, _ *component.ResolutionContext) (component.Props, error) {
		return nil, nil
	}))

	props, err := p.Execute(descriptor(t), component.Props{}, nil)
	if err != nil {
		t.Fatal("halt must not surface as an error")
	}
	if props != nil {
		t.Error("halt returns nil props")
	}
}

// ── Scoped middleware ────────────────────────────────────────────────────────

func TestPipeline_ScopedRunsAfterAllGlobal(t *testing.T) {
	p := pipeline.New()
	p.UseScoped("Card", tracer(-100, "scoped-early"))
	p.Use(tracer(50, "global-late"))
	p.Use(tracer(-1, "global-early"))

	props, err := p.Execute(descriptor(t), component.Props{}, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// Scoped priority -100 still runs after global priority 50.
	want := []string{"global-early", "global-late", "scoped-early"}
	if !reflect.DeepEqual(trace(t, props), want) {
		t.Errorf("scoped ordering: got %v, want %v", trace(t, props), want)
	}
}

func TestPipeline_ScopedOnlyForItsComponent(t *testing.T) {
	p := pipeline.New()
	p.UseScoped("Other", tracer(0, "other-scoped"))

	props, err := p.Execute(descriptor(t), component.Props{}, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(trace(t, props)) != 0 {
		t.Errorf("scoped middleware leaked to another component: %v", trace(t, props))
	}
}

// ── Sync / ctx paths ─────────────────────────────────────────────────────────

func TestPipeline_SyncPathRejectsCtxMiddleware(t *testing.T) {
	p := pipeline.New()
	p.Use(pipeline.CtxFunc(3, func(_ context.Context, _ *component.Descriptor, props component.Props, _ *component.ResolutionContext) (component.Props, error) {
		return props, nil
	}))

	_, err := p.Execute(descriptor(t), component.Props{}, nil)

	var am *pipeline.AsyncMiddlewareInSyncContext
	if !errors.As(err, &am) {
		t.Fatalf("want AsyncMiddlewareInSyncContext, got %v", err)
	}
	if am.Priority != 3 {
		t.Errorf("error priority: got %d", am.Priority)
	}
}

func TestPipeline_CtxPathConvergesWithSyncPath(t *testing.T) {
	build := func() *pipeline.Pipeline {
		p := pipeline.New()
		p.Use(tracer(1, "one"))
		p.Use(tracer(2, "two"))
		return p
	}
	d := descriptor(t)

	syncProps, err := build().Execute(d, component.Props{}, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	ctxProps, err := build().ExecuteCtx(context.Background(), d, component.Props{}, nil)
	if err != nil {
		t.Fatalf("ExecuteCtx: %v", err)
	}

	if !reflect.DeepEqual(syncProps, ctxProps) {
		t.Errorf("paths diverged: sync=%v ctx=%v", syncProps, ctxProps)
	}
}

func TestPipeline_CtxPathMixedChain(t *testing.T) {
	p := pipeline.New()
	p.Use(tracer(1, "sync"))
	p.Use(pipeline.CtxFunc(2, func(_ context.Context, _ *component.Descriptor, props component.Props, _ *component.ResolutionContext) (component.Props, error) {
		out := props.Clone()
		tr, _ := out["trace"].([]string)
		out["trace"] = append(tr, "ctx")
		return out, nil
	}))

	props, err := p.ExecuteCtx(context.Background(), descriptor(t), component.Props{}, nil)
	if err != nil {
		t.Fatalf("ExecuteCtx: %v", err)
	}

	want := []string{"sync", "ctx"}
	if !reflect.DeepEqual(trace(t, props), want) {
		t.Errorf("mixed chain: got %v, want %v", trace(t, props), want)
	}
}

// ── Registration validation ──────────────────────────────────────────────────

func TestPipeline_UseRejectsShapelessValue(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Use must panic for a value with no middleware shape")
		}
	}()
	pipeline.New().Use(42)
}
