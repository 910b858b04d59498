// Package manifest parses the skills.toml manifest that declares upstream
// skill sources.
package manifest

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/firefly-engineering/skill-quiver/internal/errors"
)

const (
	// FileName is the manifest file looked up by Find.
	FileName = "skills.toml"

	// SkillsDirName is the directory under the manifest root holding skills.
	SkillsDirName = "skills"

	// DefaultPath is the subdirectory used when a source omits path.
	DefaultPath = "."

	// DefaultRef is the ref used when a source omits ref.
	DefaultRef = "main"

	// NameMaxLength is the maximum length of source and skill names.
	NameMaxLength = 64
)

// NamePattern matches kebab-case names: lowercase alphanumeric runs separated
// by single hyphens.
var NamePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Source is one upstream repository entry owning a set of skills.
type Source struct {
	Name        string   `toml:"name"`
	Repo        string   `toml:"repo"`
	Path        string   `toml:"path"`
	Ref         string   `toml:"ref"`
	License     *string  `toml:"license"`
	Attribution *string  `toml:"attribution"`
	Skills      []string `toml:"skills"`
}

// SubPath returns the source path trimmed of slashes, or "" when the skills
// live at the repository root.
func (s *Source) SubPath() string {
	p := strings.Trim(s.Path, "/")
	if p == "." {
		return ""
	}
	return p
}

// SkillPath returns the repository-relative path of a skill.
func (s *Source) SkillPath(skill string) string {
	if sub := s.SubPath(); sub != "" {
		return sub + "/" + skill
	}
	return skill
}

// HasSkill reports whether the source declares the named skill.
func (s *Source) HasSkill(name string) bool {
	for _, skill := range s.Skills {
		if skill == name {
			return true
		}
	}
	return false
}

// Validate checks names, skills and the repository URL.
func (s *Source) Validate() error {
	if err := ValidateName(s.Name); err != nil {
		return err
	}

	u, err := url.Parse(s.Repo)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid repo URL %q: must be an absolute http(s) URL", s.Repo)
	}

	if len(s.Skills) == 0 {
		return fmt.Errorf("at least one skill must be specified")
	}

	seen := make(map[string]bool, len(s.Skills))
	for _, skill := range s.Skills {
		if err := ValidateName(skill); err != nil {
			return err
		}
		if seen[skill] {
			return fmt.Errorf("skill %q is listed more than once", skill)
		}
		seen[skill] = true
	}

	return nil
}

func (s *Source) applyDefaults() {
	if s.Path == "" {
		s.Path = DefaultPath
	}
	if s.Ref == "" {
		s.Ref = DefaultRef
	}
}

// Manifest is the parsed skills.toml plus the directory it was read from.
type Manifest struct {
	Sources []Source
	Root    string
}

// SkillsDir returns the directory holding materialized skills.
func (m *Manifest) SkillsDir() string {
	return filepath.Join(m.Root, SkillsDirName)
}

// SourceForSkill returns the source declaring the named skill.
func (m *Manifest) SourceForSkill(name string) (*Source, bool) {
	for i := range m.Sources {
		if m.Sources[i].HasSkill(name) {
			return &m.Sources[i], true
		}
	}
	return nil, false
}

// ValidateName checks that a source or skill name is kebab-case and at most
// NameMaxLength characters.
func ValidateName(name string) error {
	if !NamePattern.MatchString(name) {
		return fmt.Errorf("invalid name %q: must be lowercase alphanumeric with single hyphens, no leading/trailing hyphens, no consecutive hyphens", name)
	}
	if len(name) > NameMaxLength {
		return fmt.Errorf("invalid name %q: must be %d characters or fewer", name, NameMaxLength)
	}
	return nil
}

type document struct {
	Sources []Source `toml:"source"`
}

// Parse reads and validates a manifest file.
func Parse(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ManifestError("cannot read manifest", err)
	}

	m, err := ParseBytes(data, filepath.Dir(path))
	if err != nil {
		return nil, errors.ManifestError(fmt.Sprintf("invalid manifest %s", path), err)
	}
	return m, nil
}

// ParseBytes decodes manifest content. root becomes Manifest.Root.
func ParseBytes(data []byte, root string) (*Manifest, error) {
	var doc document
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("invalid TOML syntax: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	names := make(map[string]bool, len(doc.Sources))
	for i := range doc.Sources {
		src := &doc.Sources[i]
		src.applyDefaults()
		if err := src.Validate(); err != nil {
			name := src.Name
			if name == "" {
				name = "<unnamed>"
			}
			return nil, fmt.Errorf("invalid source '%s': %w", name, err)
		}
		if names[src.Name] {
			return nil, fmt.Errorf("duplicate source name %q", src.Name)
		}
		names[src.Name] = true
	}

	return &Manifest{Sources: doc.Sources, Root: root}, nil
}

// Find walks up from start looking for skills.toml.
func Find(start string) (string, error) {
	current, err := filepath.Abs(start)
	if err != nil {
		return "", errors.ManifestError("invalid start directory", err)
	}

	for {
		candidate := filepath.Join(current, FileName)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", errors.ManifestError(
		fmt.Sprintf("no %s found in %s or any parent directory. Run 'quiv init' to create one", FileName, start), nil)
}
