package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/loomkit/loom/framework/component"
	"github.com/loomkit/loom/framework/container"
)

// Manifest declares which named components an application exposes. It is
// loaded from a YAML file so deployments can enable or disable components
// without a rebuild:
//
//	components:
//	  - name: Greeting
//	    enabled: true
//	  - name: Widget
//	    enabled: false
type Manifest struct {
	Components []ManifestEntry `yaml:"components"`
}

// ManifestEntry is one component declaration.
type ManifestEntry struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &m, nil
}

// ManifestProvider registers the enabled manifest components into the named
// registry during Boot. Catalog maps component names to prototype instances;
// a manifest entry naming an unknown catalog key is a startup error, so Boot
// panics rather than serving a partial registry.
type ManifestProvider struct {
	container.BaseProvider
	Manifest *Manifest
	Catalog  map[string]any
}

func (p *ManifestProvider) Register(c *container.Container) {}

func (p *ManifestProvider) Boot(c *container.Container) {
	registry, err := container.Resolve[*component.Registry](c, nil, nil)
	if err != nil {
		panic(err)
	}
	for _, entry := range p.Manifest.Components {
		if !entry.Enabled {
			continue
		}
		prototype, ok := p.Catalog[entry.Name]
		if !ok {
			panic(fmt.Sprintf("manifest component %q has no catalog entry", entry.Name))
		}
		if err := registry.Register(entry.Name, prototype); err != nil {
			panic(err)
		}
	}
}
