package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/firefly-engineering/skill-quiver/internal/errors"
	"github.com/firefly-engineering/skill-quiver/internal/manifest"
)

// projectDir returns the absolute --dir, which must be an existing directory.
func projectDir() (string, error) {
	dir, err := filepath.Abs(workDir)
	if err != nil {
		return "", errors.Wrap(errors.ExitGeneralError, "invalid directory", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", errors.New(errors.ExitGeneralError, fmt.Sprintf("Directory does not exist: %s", workDir))
	}
	return dir, nil
}

// loadManifest finds skills.toml at or above --dir and parses it.
func loadManifest() (*manifest.Manifest, error) {
	dir, err := projectDir()
	if err != nil {
		return nil, err
	}
	path, err := manifest.Find(dir)
	if err != nil {
		return nil, err
	}
	return manifest.Parse(path)
}

// projectRoot is the directory holding skills.toml, or --dir when there is
// none.
func projectRoot() (string, error) {
	dir, err := projectDir()
	if err != nil {
		return "", err
	}
	if path, err := manifest.Find(dir); err == nil {
		return filepath.Dir(path), nil
	}
	return dir, nil
}

// skillsDir returns <project root>/skills.
func skillsDir() (string, error) {
	root, err := projectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, manifest.SkillsDirName), nil
}
