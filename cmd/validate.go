package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/skill-quiver/internal/errors"
	"github.com/firefly-engineering/skill-quiver/internal/skill"
)

var validateCmd = &cobra.Command{
	Use:   "validate [skill]",
	Short: "Check skill names and SKILL.md frontmatter",
	Long: `Validate every skill under skills/, or only the named one.

A skill passes when its directory name is kebab-case and at most 64
characters, and its SKILL.md has YAML frontmatter with a matching name
and a description. Exits with status 2 when any skill fails.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir, err := skillsDir()
	if err != nil {
		return err
	}

	name := ""
	if len(args) == 1 {
		name = args[0]
	}

	reports := skill.ValidateAll(dir, name)
	if len(reports) == 0 {
		logInfo("No skills found in %s", dir)
		return nil
	}

	failed := 0
	for _, r := range reports {
		if r.OK() {
			logSuccess("%s: ok", r.Skill)
			continue
		}
		failed++
		for _, p := range r.Problems {
			logError("%s: %s", r.Skill, p)
		}
	}

	if failed > 0 {
		return errors.ValidationFailed(fmt.Sprintf("%d of %d skills failed validation", failed, len(reports)))
	}
	return nil
}
