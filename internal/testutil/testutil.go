package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/firefly-engineering/skill-quiver/internal/manifest"
)

// Project is a scratch skill project rooted in a temporary directory.
type Project struct {
	T    testing.TB
	Root string
}

// NewProject creates an empty project directory.
func NewProject(t testing.TB) *Project {
	t.Helper()
	return &Project{T: t, Root: t.TempDir()}
}

// SkillsDir returns the project's skills directory.
func (p *Project) SkillsDir() string {
	return filepath.Join(p.Root, manifest.SkillsDirName)
}

// ManifestPath returns the path of the project's skills.toml.
func (p *Project) ManifestPath() string {
	return filepath.Join(p.Root, manifest.FileName)
}

// WriteManifest writes content to skills.toml.
func (p *Project) WriteManifest(content string) {
	p.T.Helper()

	if err := os.WriteFile(p.ManifestPath(), []byte(content), 0644); err != nil {
		p.T.Fatalf("Failed to write manifest: %v", err)
	}
}

// Manifest parses the project's skills.toml.
func (p *Project) Manifest() *manifest.Manifest {
	p.T.Helper()

	m, err := manifest.Parse(p.ManifestPath())
	if err != nil {
		p.T.Fatalf("Failed to parse manifest: %v", err)
	}
	return m
}

// WriteFile writes content at a path relative to the project root, creating
// parent directories.
func (p *Project) WriteFile(rel, content string) string {
	p.T.Helper()

	path := filepath.Join(p.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		p.T.Fatalf("Failed to create directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		p.T.Fatalf("Failed to write %s: %v", rel, err)
	}
	return path
}

// ReadFile returns the content of a file relative to the project root.
func (p *Project) ReadFile(rel string) string {
	p.T.Helper()

	data, err := os.ReadFile(filepath.Join(p.Root, filepath.FromSlash(rel)))
	if err != nil {
		p.T.Fatalf("Failed to read %s: %v", rel, err)
	}
	return string(data)
}

// Exists reports whether a path relative to the project root exists.
func (p *Project) Exists(rel string) bool {
	_, err := os.Lstat(filepath.Join(p.Root, filepath.FromSlash(rel)))
	return err == nil
}

// Snapshot maps every path under dir to its content ("<dir>" for
// directories) so tests can assert a tree was left untouched. A missing dir
// yields an empty snapshot.
func Snapshot(t testing.TB, dir string) map[string]string {
	t.Helper()

	snap := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return filepath.SkipDir
			}
			return err
		}
		rel, _ := filepath.Rel(dir, path)
		if d.IsDir() {
			snap[rel] = "<dir>"
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		snap[rel] = info.ModTime().String() + "\x00" + string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to snapshot %s: %v", dir, err)
	}
	return snap
}

// Files lists regular files under dir as slash-separated relative paths.
func Files(t testing.TB, dir string) []string {
	t.Helper()

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, _ := filepath.Rel(dir, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to list %s: %v", dir, err)
	}
	sort.Strings(files)
	return files
}
