package app_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomkit/loom/app"
)

const manifestYAML = `components:
  - name: Banner
    enabled: true
  - name: Hidden
    enabled: false
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "components.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadManifest(t *testing.T) {
	m, err := app.LoadManifest(writeManifest(t, manifestYAML))
	require.NoError(t, err)

	require.Len(t, m.Components, 2)
	assert.Equal(t, "Banner", m.Components[0].Name)
	assert.True(t, m.Components[0].Enabled)
	assert.False(t, m.Components[1].Enabled)
}

func TestLoadManifest_MissingFile(t *testing.T) {
	_, err := app.LoadManifest(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestManifestProvider_RegistersEnabledOnly(t *testing.T) {
	m, err := app.LoadManifest(writeManifest(t, manifestYAML))
	require.NoError(t, err)

	t.Setenv("APP_ENV", "testing")
	a := app.New("../framework/config/testdata/empty.env")
	a.Register(&app.ManifestProvider{
		Manifest: m,
		Catalog: map[string]any{
			"Banner": &banner{},
			"Hidden": &banner{},
		},
	})
	a.Boot()

	names := a.Components().Names()
	assert.Equal(t, []string{"Banner"}, names)
}

func TestManifestProvider_UnknownCatalogEntryPanics(t *testing.T) {
	m := &app.Manifest{Components: []app.ManifestEntry{{Name: "Ghost", Enabled: true}}}

	t.Setenv("APP_ENV", "testing")
	a := app.New("../framework/config/testdata/empty.env")
	a.Register(&app.ManifestProvider{Manifest: m, Catalog: map[string]any{}})

	assert.Panics(t, func() { a.Boot() })
}
