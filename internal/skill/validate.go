package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/firefly-engineering/skill-quiver/internal/manifest"
)

// FileName is the required instruction file inside a skill directory.
const FileName = "SKILL.md"

var allowedChars = regexp.MustCompile(`^[a-z0-9-]+$`)

// Frontmatter is the YAML header of SKILL.md.
type Frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Report lists the problems found for one skill.
type Report struct {
	Skill    string
	Problems []string
}

// OK reports whether the skill has no problems.
func (r Report) OK() bool {
	return len(r.Problems) == 0
}

// ValidateName checks a skill name and explains each rule it breaks.
func ValidateName(name string) []string {
	if name == "" {
		return []string{"Skill name must not be empty"}
	}

	var problems []string
	if len(name) > manifest.NameMaxLength {
		problems = append(problems, fmt.Sprintf("Skill name '%s' exceeds %d characters", name, manifest.NameMaxLength))
	}

	if !manifest.NamePattern.MatchString(name) {
		var specifics []string
		if strings.ToLower(name) != name {
			specifics = append(specifics, "contains uppercase letters")
		}
		if strings.Contains(name, " ") {
			specifics = append(specifics, "contains spaces")
		}
		if strings.Contains(name, "--") {
			specifics = append(specifics, "contains consecutive hyphens")
		}
		if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
			specifics = append(specifics, "starts or ends with a hyphen")
		}
		if !allowedChars.MatchString(name) {
			specifics = append(specifics, "contains invalid characters")
		}

		detail := "invalid format"
		if len(specifics) > 0 {
			detail = strings.Join(specifics, "; ")
		}
		problems = append(problems, fmt.Sprintf(
			"Invalid skill name '%s': %s. Must be lowercase alphanumeric with single hyphens.", name, detail))
	}

	return problems
}

// ParseFrontmatter extracts and checks the YAML frontmatter of a SKILL.md
// body. label names the file in problems.
func ParseFrontmatter(content, label string) (*Frontmatter, []string) {
	if !strings.HasPrefix(content, "---") {
		return nil, []string{fmt.Sprintf("Missing YAML frontmatter in %s", label)}
	}

	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return nil, []string{fmt.Sprintf("Malformed YAML frontmatter in %s", label)}
	}

	text := strings.TrimSpace(parts[1])
	if text == "" {
		return nil, []string{fmt.Sprintf("Empty YAML frontmatter in %s", label)}
	}

	var raw any
	if err := yaml.Unmarshal([]byte(text), &raw); err != nil {
		return nil, []string{fmt.Sprintf("Invalid YAML frontmatter in %s: %v", label, err)}
	}
	fields, ok := raw.(map[string]any)
	if !ok {
		return nil, []string{fmt.Sprintf("YAML frontmatter must be a mapping in %s", label)}
	}

	var fm Frontmatter
	var problems []string
	for _, key := range []string{"name", "description"} {
		value, present := fields[key]
		if !present || value == nil {
			problems = append(problems, fmt.Sprintf("Invalid frontmatter in %s: missing required field '%s'", label, key))
			continue
		}
		s, isString := value.(string)
		if !isString {
			problems = append(problems, fmt.Sprintf("Invalid frontmatter in %s: field '%s' must be a string", label, key))
			continue
		}
		if key == "name" {
			fm.Name = s
		} else {
			fm.Description = s
		}
	}

	if fm.Name != "" {
		if err := manifest.ValidateName(fm.Name); err != nil {
			problems = append(problems, fmt.Sprintf("Invalid frontmatter in %s: %v", label, err))
		}
	}

	if len(problems) > 0 {
		return nil, problems
	}
	return &fm, nil
}

// ValidateFrontmatter reads SKILL.md from skillDir and checks its
// frontmatter.
func ValidateFrontmatter(skillDir string) (*Frontmatter, []string) {
	name := filepath.Base(skillDir)
	path := filepath.Join(skillDir, FileName)

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, []string{fmt.Sprintf("Missing %s in %s", FileName, name)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []string{fmt.Sprintf("Cannot read %s: %v", FileName, err)}
	}

	return ParseFrontmatter(string(data), name+"/"+FileName)
}

// ValidateSkill checks the directory name, the frontmatter and that the two
// agree.
func ValidateSkill(skillDir string) []string {
	name := filepath.Base(skillDir)
	problems := ValidateName(name)

	fm, fmProblems := ValidateFrontmatter(skillDir)
	problems = append(problems, fmProblems...)

	if fm != nil && fm.Name != name {
		problems = append(problems, fmt.Sprintf(
			"Name mismatch: frontmatter name '%s' does not match directory name '%s'", fm.Name, name))
	}
	return problems
}

// ValidateAll validates every non-hidden skill directory under skillsDir,
// sorted by name, or only the named skill when name is set. A missing
// skillsDir yields no reports.
func ValidateAll(skillsDir, name string) []Report {
	if name != "" {
		dir := filepath.Join(skillsDir, name)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return []Report{{Skill: name, Problems: []string{fmt.Sprintf("Skill directory not found: %s", dir)}}}
		}
		return []Report{{Skill: name, Problems: ValidateSkill(dir)}}
	}

	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		return nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var reports []Report
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		reports = append(reports, Report{Skill: e.Name(), Problems: ValidateSkill(filepath.Join(skillsDir, e.Name()))})
	}
	return reports
}
