package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/firefly-engineering/skill-quiver/internal/manifest"
	"github.com/firefly-engineering/skill-quiver/internal/transport"
)

type fakeResolver struct {
	revisions map[string]string
	errs      map[string]error
	calls     []string
}

func (r *fakeResolver) Resolve(ctx context.Context, src *manifest.Source) (string, error) {
	r.calls = append(r.calls, src.Name)
	if err := r.errs[src.Name]; err != nil {
		return "", err
	}
	return r.revisions[src.Name], nil
}

// fakeTransport serves files per skill name, keyed by path relative to the
// skill directory.
type fakeTransport struct {
	files map[string]map[string]string
	err   error
	calls [][]string
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) Fetch(ctx context.Context, src *manifest.Source, skills []string, revision, dest string) ([]string, error) {
	f.calls = append(f.calls, append([]string(nil), skills...))
	if f.err != nil {
		return nil, f.err
	}

	var dirs []string
	for _, skill := range skills {
		files, ok := f.files[skill]
		if !ok {
			continue
		}
		dir := filepath.Join(dest, skill)
		for rel, content := range files {
			path := filepath.Join(dir, filepath.FromSlash(rel))
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, err
			}
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return nil, err
			}
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

func selectorFor(tr transport.Transport) Selector {
	return func(*manifest.Source) transport.Transport { return tr }
}

var fixedNow = time.Date(2026, 5, 6, 7, 8, 9, 123456789, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newTestEngine(resolver Resolver, tr transport.Transport) *Engine {
	return NewEngine(resolver, selectorFor(tr), WithClock(fixedClock))
}

func strPtr(s string) *string { return &s }

func testManifest(root string, sources ...manifest.Source) *manifest.Manifest {
	return &manifest.Manifest{Root: root, Sources: sources}
}

func source(name string, skills ...string) manifest.Source {
	return manifest.Source{
		Name:   name,
		Repo:   fmt.Sprintf("https://github.com/org/%s", name),
		Path:   ".",
		Ref:    "main",
		Skills: skills,
	}
}

func skillFiles(skills ...string) map[string]map[string]string {
	files := make(map[string]map[string]string, len(skills))
	for _, s := range skills {
		files[s] = map[string]string{"SKILL.md": "---\nname: " + s + "\n---\n"}
	}
	return files
}
