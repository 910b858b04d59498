package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/skill-quiver/internal/skill"
)

var newCmd = &cobra.Command{
	Use:   "new <skill>",
	Short: "Scaffold a new skill with a valid SKILL.md",
	Args:  cobra.ExactArgs(1),
	RunE:  runNew,
}

var newOutput string

func init() {
	newCmd.Flags().StringVarP(&newOutput, "output", "o", "", "Parent directory for the skill (default skills/)")
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	parent := newOutput
	if parent == "" {
		dir, err := skillsDir()
		if err != nil {
			return err
		}
		parent = dir
	}

	path, err := skill.NewSkill(parent, args[0])
	if err != nil {
		return err
	}

	logSuccess("Created %s", path)
	return nil
}
