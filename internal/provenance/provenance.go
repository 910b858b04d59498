// Package provenance reads and writes the sidecar record stored inside each
// materialized skill directory.
package provenance

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/firefly-engineering/skill-quiver/internal/errors"
)

// FileName is the sidecar file name inside a skill directory.
const FileName = ".source.toml"

// Record describes which upstream revision a skill directory reflects.
type Record struct {
	Repo     string  `toml:"repo"`
	Path     string  `toml:"path"`
	Ref      string  `toml:"ref"`
	Revision string  `toml:"revision"`
	License  *string `toml:"license,omitempty"`
	// FetchedAt is stored in UTC with second precision.
	FetchedAt time.Time `toml:"fetched_at"`
}

type sidecar struct {
	Source *Record `toml:"source"`
}

// PathFor returns the sidecar path for a skill directory.
func PathFor(skillDir string) string {
	return filepath.Join(skillDir, FileName)
}

// Write serializes rec into skillDir, replacing any previous record.
func Write(skillDir string, rec *Record) error {
	out := *rec
	out.FetchedAt = rec.FetchedAt.UTC().Truncate(time.Second)

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(sidecar{Source: &out}); err != nil {
		return fmt.Errorf("encoding provenance: %w", err)
	}

	if err := os.WriteFile(PathFor(skillDir), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing provenance: %w", err)
	}
	return nil
}

// Read returns the record stored in skillDir, or nil when the skill has never
// been fetched. A sidecar that exists but cannot be decoded is a
// ProvenanceError; it is never treated as absent.
func Read(skillDir string) (*Record, error) {
	path := PathFor(skillDir)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ProvenanceError(path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.ProvenanceError(path, fmt.Errorf("not a regular file"))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ProvenanceError(path, err)
	}

	var doc sidecar
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, errors.ProvenanceError(path, err)
	}
	if doc.Source == nil {
		return nil, errors.ProvenanceError(path, fmt.Errorf("missing [source] table"))
	}
	if doc.Source.Revision == "" {
		return nil, errors.ProvenanceError(path, fmt.Errorf("missing revision"))
	}

	rec := doc.Source
	rec.FetchedAt = rec.FetchedAt.UTC()
	return rec, nil
}
