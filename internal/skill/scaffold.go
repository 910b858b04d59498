package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/firefly-engineering/skill-quiver/internal/errors"
	"github.com/firefly-engineering/skill-quiver/internal/manifest"
)

// InitProject creates skills.toml and skills/.gitkeep in dir and returns
// the paths it created, relative to dir.
func InitProject(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, errors.InitError(fmt.Sprintf("directory does not exist: %s", dir), err)
	}

	manifestPath := filepath.Join(dir, manifest.FileName)
	if _, err := os.Stat(manifestPath); err == nil {
		return nil, errors.InitError(fmt.Sprintf("already initialized (%s exists)", manifest.FileName), nil)
	}

	if err := os.WriteFile(manifestPath, []byte(renderTemplate("skills.toml.tmpl", nil)), 0644); err != nil {
		return nil, errors.InitError("cannot write manifest", err)
	}

	skillsDir := filepath.Join(dir, manifest.SkillsDirName)
	if err := os.MkdirAll(skillsDir, 0755); err != nil {
		return nil, errors.InitError("cannot create skills directory", err)
	}
	if err := os.WriteFile(filepath.Join(skillsDir, ".gitkeep"), nil, 0644); err != nil {
		return nil, errors.InitError("cannot write .gitkeep", err)
	}

	return []string{
		manifest.FileName,
		manifest.SkillsDirName + "/",
		manifest.SkillsDirName + "/.gitkeep",
	}, nil
}

type skillData struct {
	Name        string
	Title       string
	Description string
}

// NewSkill scaffolds a skill directory with a SKILL.md that passes
// validation. The skill is created at dir/<name>.
func NewSkill(dir, name string) (string, error) {
	if problems := ValidateName(name); len(problems) > 0 {
		return "", errors.InitError(strings.Join(problems, "; "), nil)
	}

	skillDir := filepath.Join(dir, name)
	if _, err := os.Stat(skillDir); err == nil {
		return "", errors.InitError(fmt.Sprintf("skill directory already exists: %s", skillDir), nil)
	}

	if err := os.MkdirAll(skillDir, 0755); err != nil {
		return "", errors.InitError("cannot create skill directory", err)
	}

	content := renderTemplate("SKILL.md.tmpl", skillData{
		Name:        name,
		Title:       title(name),
		Description: fmt.Sprintf("Describe what %s does and when to use it.", name),
	})
	if err := os.WriteFile(filepath.Join(skillDir, FileName), []byte(content), 0644); err != nil {
		return "", errors.InitError("cannot write "+FileName, err)
	}
	return skillDir, nil
}

// title turns code-reviewer into Code Reviewer.
func title(name string) string {
	words := strings.Split(name, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
