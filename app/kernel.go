// Package app boots a loom application: one container, the framework core
// providers, and accessors for the resolution stack. Construct it explicitly
// and pass it around — there is no ambient global application.
package app

import (
	"log/slog"

	"github.com/loomkit/loom/framework/component"
	"github.com/loomkit/loom/framework/config"
	"github.com/loomkit/loom/framework/container"
	"github.com/loomkit/loom/framework/pipeline"
	"github.com/loomkit/loom/framework/providers"
	"github.com/loomkit/loom/framework/resolver"
	"github.com/loomkit/loom/render"
)

// Application is the top-level application object. It embeds the container
// so user code can register services directly, and holds the provider
// registry driving the boot lifecycle.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

// New creates and wires the application. Framework core providers register
// immediately; call Boot after adding your own providers.
//
//	application := app.New()
//	application.Register(&ThemeProvider{})
//	application.Boot()
func New(envFiles ...string) *Application {
	c := container.New()
	registry := container.NewProviderRegistry(c)

	a := &Application{
		Container: c,
		Providers: registry,
	}

	registry.Register(&providers.ConfigServiceProvider{EnvFiles: envFiles})
	registry.Register(&providers.LoggingServiceProvider{})
	registry.Register(&providers.CoreServiceProvider{})
	registry.Register(&providers.RenderServiceProvider{})

	return a
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) {
	a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() {
	a.Providers.Boot()
}

// Config resolves the typed configuration.
func (a *Application) Config() *config.Config {
	return must(container.Resolve[*config.Config](a.Container, nil, nil))
}

// Logger resolves the structured logger.
func (a *Application) Logger() *slog.Logger {
	return must(container.Resolve[*slog.Logger](a.Container, nil, nil))
}

// Components resolves the named component registry.
func (a *Application) Components() *component.Registry {
	return must(container.Resolve[*component.Registry](a.Container, nil, nil))
}

// Pipeline resolves the middleware pipeline.
func (a *Application) Pipeline() *pipeline.Pipeline {
	return must(container.Resolve[*pipeline.Pipeline](a.Container, nil, nil))
}

// Resolver resolves the resolution facade.
func (a *Application) Resolver() *resolver.Resolver {
	return must(container.Resolve[*resolver.Resolver](a.Container, nil, nil))
}

// Renderer resolves the rendering collaborator.
func (a *Application) Renderer() *render.Renderer {
	return must(container.Resolve[*render.Renderer](a.Container, nil, nil))
}

// Environment returns APP_ENV.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }

// must panics on setup defects: a kernel accessor failing means the boot
// sequence itself is broken.
func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
