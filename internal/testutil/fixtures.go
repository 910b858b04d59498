package testutil

import (
	"embed"

	"github.com/firefly-engineering/skill-quiver/internal/manifest"
)

//go:embed fixtures/*.toml
var fixturesFS embed.FS

// LoadFixture loads a fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// ValidManifest returns the parsed valid manifest fixture rooted at root.
func ValidManifest(root string) (*manifest.Manifest, error) {
	data, err := LoadFixture("valid_manifest.toml")
	if err != nil {
		return nil, err
	}
	return manifest.ParseBytes(data, root)
}

// InvalidManifest returns the raw invalid manifest fixture.
func InvalidManifest() ([]byte, error) {
	return LoadFixture("invalid_manifest.toml")
}
