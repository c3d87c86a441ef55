package resolver_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomkit/loom/framework/component"
	"github.com/loomkit/loom/framework/container"
	"github.com/loomkit/loom/framework/pipeline"
	"github.com/loomkit/loom/framework/resolver"
)

// ── fixtures ─────────────────────────────────────────────────────────────────

type logger interface{ Log(string) }

type fakeLogger struct{ lines []string }

func (l *fakeLogger) Log(s string) { l.lines = append(l.lines, s) }

type widget struct {
	Logger logger `inject:""`
	Title  string `prop:"title" default:"Widget"`
}

func (w *widget) Render() (string, error) { return w.Title, nil }

type greeting struct {
	Name string `prop:"name" default:"World"`
}

func (g *greeting) Render() (string, error) { return "Hello, " + g.Name, nil }

type asyncBanner struct {
	Text string `prop:"text" default:"hi"`
}

func (b *asyncBanner) RenderCtx(_ context.Context) (string, error) { return b.Text, nil }

// harness wires a full stack: container with injector and registry bound,
// empty pipeline, resolver.
func harness(t *testing.T) (*container.Container, *component.Registry, *pipeline.Pipeline, *resolver.Resolver) {
	t.Helper()
	c := container.New()
	container.RegisterValue[*container.Injector](c, container.NewInjector(c))

	reg := component.NewRegistry()
	container.RegisterValue[*component.Registry](c, reg)

	p := pipeline.New()
	return c, reg, p, resolver.New(c, p)
}

// ── Scenarios ────────────────────────────────────────────────────────────────

func TestResolver_InjectsExactRegisteredInstance(t *testing.T) {
	c, reg, _, r := harness(t)

	fake := &fakeLogger{}
	container.RegisterValue[logger](c, fake)
	require.NoError(t, reg.Register("Widget", widget{}))

	got, err := r.ResolveByName("Widget", component.NewContext(), nil)
	require.NoError(t, err)

	w, ok := got.(*widget)
	require.True(t, ok, "expected *widget, got %T", got)
	assert.Same(t, fake, w.Logger.(*fakeLogger), "logger must be the exact fake instance")
}

func TestResolver_OverrideBeatsDefault(t *testing.T) {
	_, reg, _, r := harness(t)
	require.NoError(t, reg.Register("Greeting", greeting{}))

	got, err := r.ResolveByName("Greeting", component.NewContext(), component.Props{"name": "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.(*greeting).Name)
}

func TestResolver_DefaultAppliesWithoutOverride(t *testing.T) {
	_, reg, _, r := harness(t)
	require.NoError(t, reg.Register("Greeting", greeting{}))

	got, err := r.ResolveByName("Greeting", component.NewContext(), nil)
	require.NoError(t, err)
	assert.Equal(t, "World", got.(*greeting).Name)
}

func TestResolver_UnknownNameListsRegistered(t *testing.T) {
	_, reg, _, r := harness(t)
	require.NoError(t, reg.Register("Widget", widget{}))
	require.NoError(t, reg.Register("Greeting", greeting{}))

	_, err := r.ResolveByName("Unknown", component.NewContext(), nil)

	var nf *component.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Unknown", nf.Name)
	assert.Equal(t, []string{"Greeting", "Widget"}, nf.Known)
}

// ── Middleware interaction ───────────────────────────────────────────────────

func TestResolver_MiddlewarePropsFeedConstruction(t *testing.T) {
	_, reg, p, r := harness(t)
	require.NoError(t, reg.Register("Greeting", greeting{}))

	p.Use(pipeline.Func(0, func(_ *component.Descriptor, props component.Props, _ *component.ResolutionContext) (component.Props, error) {
		out := props.Clone()
		out["name"] = "Middleware"
		return out, nil
	}))

	got, err := r.ResolveByName("Greeting", component.NewContext(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Middleware", got.(*greeting).Name)
}

func TestResolver_CallerOverrideOutranksMiddleware(t *testing.T) {
	_, reg, p, r := harness(t)
	require.NoError(t, reg.Register("Greeting", greeting{}))

	p.Use(pipeline.Func(0, func(_ *component.Descriptor, props component.Props, _ *component.ResolutionContext) (component.Props, error) {
		out := props.Clone()
		out["name"] = "Middleware"
		return out, nil
	}))

	got, err := r.ResolveByName("Greeting", component.NewContext(), component.Props{"name": "Caller"})
	require.NoError(t, err)
	assert.Equal(t, "Caller", got.(*greeting).Name)
}

func TestResolver_HaltShortCircuitsConstruction(t *testing.T) {
	_, reg, p, r := harness(t)
	require.NoError(t, reg.Register("Greeting", greeting{}))

	constructed := false
	p.Use(pipeline.Func(0, func(_ *component.Descriptor, _ component.Props, _ *component.ResolutionContext) (component.Props, error) {
		return nil, nil // halt
	}))
	p.Use(pipeline.Func(1, func(_ *component.Descriptor, props component.Props, _ *component.ResolutionContext) (component.Props, error) {
		constructed = true
		return props, nil
	}))

	got, err := r.ResolveByName("Greeting", component.NewContext(), nil)
	require.NoError(t, err, "halt is not an error")
	assert.True(t, resolver.Halted(got, err))
	assert.False(t, constructed, "nothing may run after the halt")
}

func TestResolver_ScopedMiddlewareOnlyForItsComponent(t *testing.T) {
	_, reg, p, r := harness(t)
	require.NoError(t, reg.Register("Greeting", greeting{}))
	require.NoError(t, reg.Register("Widget", widget{}))

	p.UseScoped("Widget", pipeline.Func(0, func(_ *component.Descriptor, _ component.Props, _ *component.ResolutionContext) (component.Props, error) {
		return nil, nil // halt Widget resolutions only
	}))

	got, err := r.ResolveByName("Greeting", component.NewContext(), nil)
	require.NoError(t, err)
	assert.NotNil(t, got, "Greeting must not be affected by Widget-scoped middleware")
}

// ── Setup defects ────────────────────────────────────────────────────────────

func TestResolver_MissingRegistryIsSetupDefect(t *testing.T) {
	c := container.New()
	r := resolver.New(c, pipeline.New())

	_, err := r.ResolveByName("Anything", component.NewContext(), nil)

	var rns *resolver.RegistryNotSetupError
	require.ErrorAs(t, err, &rns)
}

func TestResolver_MissingInjectorIsSetupDefect(t *testing.T) {
	c := container.New()
	reg := component.NewRegistry()
	container.RegisterValue[*component.Registry](c, reg)
	require.NoError(t, reg.Register("Greeting", greeting{}))

	r := resolver.New(c, pipeline.New())
	_, err := r.ResolveByName("Greeting", component.NewContext(), nil)

	var inf *container.InjectorNotFoundError
	require.ErrorAs(t, err, &inf)
}

func TestResolver_MissingInjectionIsDistinctFromMissingName(t *testing.T) {
	_, reg, _, r := harness(t)
	require.NoError(t, reg.Register("Widget", widget{})) // logger never bound

	_, err := r.ResolveByName("Widget", component.NewContext(), nil)

	var inf *container.InjectorNotFoundError
	require.ErrorAs(t, err, &inf, "missing injection is a setup defect, not a missing name")
	var nf *component.NotFoundError
	assert.False(t, errors.As(err, &nf), "must not be conflated with an unknown name")
}

// ── Async path ───────────────────────────────────────────────────────────────

func TestResolver_AsyncComponentDetectedAndConstructed(t *testing.T) {
	_, reg, _, r := harness(t)
	require.NoError(t, reg.Register("Banner", asyncBanner{}))

	d, err := reg.Lookup("Banner")
	require.NoError(t, err)
	assert.True(t, d.IsAsync())

	got, err := r.ResolveByNameCtx(context.Background(), "Banner", component.NewContext(), component.Props{"text": "late"})
	require.NoError(t, err)

	out, err := got.(component.CtxComponent).RenderCtx(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late", out)
}

func TestResolver_SyncAndCtxPathsConverge(t *testing.T) {
	_, reg, p, r := harness(t)
	require.NoError(t, reg.Register("Greeting", greeting{}))

	p.Use(pipeline.Func(0, func(_ *component.Descriptor, props component.Props, _ *component.ResolutionContext) (component.Props, error) {
		out := props.Clone()
		out["name"] = "Both"
		return out, nil
	}))

	syncGot, err := r.ResolveByName("Greeting", component.NewContext(), nil)
	require.NoError(t, err)
	ctxGot, err := r.ResolveByNameCtx(context.Background(), "Greeting", component.NewContext(), nil)
	require.NoError(t, err)

	assert.Equal(t, syncGot.(*greeting).Name, ctxGot.(*greeting).Name)
}

// ── Variant selection through the facade ─────────────────────────────────────

type card struct {
	Label string
}

func (c *card) Render() (string, error) { return c.Label, nil }

type post struct{ Slug string }

func TestResolver_VariantSelectedByContext(t *testing.T) {
	c, reg, _, r := harness(t)
	require.NoError(t, reg.Register("Card", card{}))

	cardKey := reflect.TypeOf((**card)(nil)).Elem()
	c.When(cardKey).GiveValue(&card{Label: "default"})
	c.When(cardKey).ForResource(&post{}).GiveValue(&card{Label: "post"})

	rc := component.NewContext(component.WithResource(&post{}))
	got, err := r.ResolveByName("Card", rc, nil)
	require.NoError(t, err)
	assert.Equal(t, "post", got.(*card).Label)

	got, err = r.ResolveByName("Card", component.NewContext(), nil)
	require.NoError(t, err)
	assert.Equal(t, "default", got.(*card).Label)
}
