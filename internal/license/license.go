// Package license renders the THIRD_PARTY_LICENSES file from the manifest
// sources.
package license

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/firefly-engineering/skill-quiver/internal/errors"
	"github.com/firefly-engineering/skill-quiver/internal/manifest"
)

// FileName is the generated file at the manifest root.
const FileName = "THIRD_PARTY_LICENSES"

// NotSpecified is written for sources without a license.
const NotSpecified = "Not specified"

// Render returns the license file content for sources, one section per
// source sorted by name. It returns "" when there are no sources.
func Render(sources []manifest.Source) string {
	if len(sources) == 0 {
		return ""
	}

	sorted := make([]manifest.Source, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	sections := make([]string, 0, len(sorted))
	for _, src := range sorted {
		lines := []string{
			"## " + src.Name,
			"URL: " + src.Repo,
		}
		if src.License != nil && *src.License != "" {
			lines = append(lines, "License: "+*src.License)
		} else {
			lines = append(lines, "License: "+NotSpecified)
		}
		if src.Attribution != nil && *src.Attribution != "" {
			lines = append(lines, "Attribution: "+*src.Attribution)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	return "# Third-Party Licenses\n\n" + strings.Join(sections, "\n\n") + "\n"
}

// Path returns the license file location for m.
func Path(m *manifest.Manifest) string {
	return filepath.Join(m.Root, FileName)
}

// Regenerate rewrites the license file for m, or removes it when m has no
// sources. An up-to-date file is left untouched.
func Regenerate(m *manifest.Manifest) error {
	path := Path(m)
	content := Render(m.Sources)

	if content == "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.LicenseError("cannot remove license file", err)
		}
		return nil
	}

	if existing, err := os.ReadFile(path); err == nil && string(existing) == content {
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.LicenseError("cannot write license file", err)
	}
	return nil
}
