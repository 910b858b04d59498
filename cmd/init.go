package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/skill-quiver/internal/skill"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create skills.toml and skills/ in the project directory",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := projectDir()
	if err != nil {
		return err
	}

	created, err := skill.InitProject(dir)
	if err != nil {
		return err
	}

	for _, p := range created {
		logSuccess("Created %s", p)
	}
	logInfo("Add [[source]] entries to skills.toml, then run 'quiv sync'")
	return nil
}
