// Package providers ships the framework core service providers the kernel
// registers before any user providers.
package providers

import (
	"log/slog"

	"github.com/loomkit/loom/framework/component"
	"github.com/loomkit/loom/framework/config"
	"github.com/loomkit/loom/framework/container"
	"github.com/loomkit/loom/framework/logging"
	"github.com/loomkit/loom/framework/pipeline"
	"github.com/loomkit/loom/framework/resolver"
	"github.com/loomkit/loom/render"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds *config.Config into the container.
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(c *container.Container) {
	container.RegisterValue[*config.Config](c, config.Load(p.EnvFiles...))
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the structured logger, configured from the
// already-bound *config.Config.
type LoggingServiceProvider struct {
	container.BaseProvider
}

func (p *LoggingServiceProvider) Register(c *container.Container) {
	container.RegisterFactory[*slog.Logger](c, func(c *container.Container, rc *component.ResolutionContext) (*slog.Logger, error) {
		cfg, err := container.Resolve[*config.Config](c, rc, nil)
		if err != nil {
			return nil, err
		}
		return logging.New(cfg.App.Env, cfg.App.Debug), nil
	}, container.AsSingleton())
}

// ── CoreServiceProvider ───────────────────────────────────────────────────────

// CoreServiceProvider binds the resolution core: the component registry, the
// injector, the middleware pipeline, and the resolver facade. The registry
// and injector live IN the container; the resolver discovers them there, so
// leaving this provider out reproduces the setup-defect errors on first use.
type CoreServiceProvider struct {
	container.BaseProvider
}

func (p *CoreServiceProvider) Register(c *container.Container) {
	container.RegisterValue[*component.Registry](c, component.NewRegistry())
	container.RegisterValue[*container.Injector](c, container.NewInjector(c))
	container.RegisterValue[*pipeline.Pipeline](c, pipeline.New())

	container.RegisterFactory[*resolver.Resolver](c, func(c *container.Container, rc *component.ResolutionContext) (*resolver.Resolver, error) {
		p, err := container.Resolve[*pipeline.Pipeline](c, rc, nil)
		if err != nil {
			return nil, err
		}
		log, err := container.Resolve[*slog.Logger](c, rc, nil)
		if err != nil {
			return nil, err
		}
		return resolver.New(c, p, resolver.WithLogger(log)), nil
	}, container.AsSingleton())
}

// ── RenderServiceProvider ─────────────────────────────────────────────────────

// RenderServiceProvider binds the rendering collaborator with its output
// cache policy from configuration.
type RenderServiceProvider struct {
	container.BaseProvider
}

func (p *RenderServiceProvider) Register(c *container.Container) {
	container.RegisterFactory[*render.Renderer](c, func(c *container.Container, rc *component.ResolutionContext) (*render.Renderer, error) {
		cfg, err := container.Resolve[*config.Config](c, rc, nil)
		if err != nil {
			return nil, err
		}
		r, err := container.Resolve[*resolver.Resolver](c, rc, nil)
		if err != nil {
			return nil, err
		}
		return render.New(r, cfg.Render), nil
	}, container.AsSingleton())
}
