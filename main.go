package main

import (
	"fmt"
	"log/slog"
	nethttp "net/http"

	"github.com/loomkit/loom/app"
	"github.com/loomkit/loom/framework/component"
	"github.com/loomkit/loom/framework/container"
	"github.com/loomkit/loom/framework/pipeline"
	"github.com/loomkit/loom/framework/validation"
	loomhttp "github.com/loomkit/loom/http"
	"github.com/loomkit/loom/routing"
)

// ── Demo components ───────────────────────────────────────────────────────────

// Greeting renders a salutation. Name comes from props, defaulting to World.
type Greeting struct {
	Name string `prop:"name" default:"World"`
}

func (g *Greeting) Render() (string, error) {
	return "<p>Hello, " + g.Name + "!</p>", nil
}

// Widget gets the application logger injected from the container.
type Widget struct {
	Log   *slog.Logger `inject:""`
	Title string       `prop:"title" default:"Untitled"`
}

func (w *Widget) Render() (string, error) {
	w.Log.Info("rendering widget", "title", w.Title)
	return "<div class=\"widget\">" + w.Title + "</div>", nil
}

// Card renders with whichever theme variant the container selects for the
// current resolution context.
type Card struct {
	Theme *theme `inject:""`
	Body  string `prop:"body" default:""`
}

func (c *Card) Render() (string, error) {
	return fmt.Sprintf("<article class=%q>%s</article>", c.Theme.Class, c.Body), nil
}

type theme struct{ Class string }

// post stands in for a blog post resource so /components/Card?resource=post
// can exercise resource-discriminated variants.
type post struct{}

// ── Wiring ────────────────────────────────────────────────────────────────────

// DemoProvider registers the demo components and their collaborators.
type DemoProvider struct {
	container.BaseProvider
}

func (p *DemoProvider) Register(c *container.Container) {
	container.RegisterValue[*theme](c, &theme{Class: "plain"})
	c.When(container.KeyOf[*theme]()).ForResource(&post{}).GiveValue(&theme{Class: "post-card"})
	c.When(container.KeyOf[*theme]()).AtPath("/admin").GiveValue(&theme{Class: "admin-card"})
}

func (p *DemoProvider) Boot(c *container.Container) {
	registry, err := container.Resolve[*component.Registry](c, nil, nil)
	if err != nil {
		panic(err)
	}
	for name, prototype := range map[string]any{
		"Greeting": &Greeting{},
		"Widget":   &Widget{},
		"Card":     &Card{},
	} {
		if err := registry.Register(name, prototype); err != nil {
			panic(err)
		}
	}

	pipe, err := container.Resolve[*pipeline.Pipeline](c, nil, nil)
	if err != nil {
		panic(err)
	}
	pipe.Use(validation.Middleware(-100, validation.Rules{
		"name": "sometimes|min:1|max:64",
	}))
	pipe.UseScoped("Widget", pipeline.Func(0, func(d *component.Descriptor, props component.Props, rc *component.ResolutionContext) (component.Props, error) {
		if _, ok := props["title"]; !ok {
			props["title"] = "Widget #" + rc.ID()[:8]
		}
		return props, nil
	}))
}

func main() {
	application := app.New()
	application.Register(&DemoProvider{})
	application.Boot()

	renderer := application.Renderer()
	log := application.Logger()

	r := routing.New()
	r.Get("/components/{name}", func(w nethttp.ResponseWriter, req *nethttp.Request) {
		res := loomhttp.NewResponse(w)

		overrides := component.Props{}
		query := req.URL.Query()
		for key, vals := range query {
			if key == "resource" || key == "path" {
				continue
			}
			overrides[key] = vals[0]
		}

		opts := []component.ContextOption{component.WithPath(query.Get("path"))}
		if query.Get("resource") == "post" {
			opts = append(opts, component.WithResource(&post{}))
		}
		rc := component.NewContext(opts...)

		markup, err := renderer.RenderCtx(req.Context(), routing.Param(req, "name"), rc, overrides)
		if err != nil {
			res.ResolutionError(err)
			return
		}
		if markup == "" {
			res.NoContent()
			return
		}
		res.HTML(nethttp.StatusOK, markup)
	})

	addr := ":" + application.Config().App.Port
	log.Info("component server listening", "addr", addr)
	if err := nethttp.ListenAndServe(addr, r); err != nil {
		log.Error("server stopped", "error", err)
	}
}
