package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/skill-quiver/internal/skill"
)

var packageCmd = &cobra.Command{
	Use:   "package <skill>",
	Short: "Validate a skill and zip it for distribution",
	Long: `Validate the skill, then write a zip archive of its files with every
entry stored under <skill>/. Hidden files are excluded.`,
	Args: cobra.ExactArgs(1),
	RunE: runPackage,
}

var packageOutput string

func init() {
	packageCmd.Flags().StringVarP(&packageOutput, "output", "o", "", "Archive path (default <dir>/<skill>.zip)")
	rootCmd.AddCommand(packageCmd)
}

func runPackage(cmd *cobra.Command, args []string) error {
	name := args[0]

	skills, err := skillsDir()
	if err != nil {
		return err
	}

	output := packageOutput
	if output == "" {
		dir, err := projectDir()
		if err != nil {
			return err
		}
		output = filepath.Join(dir, name+".zip")
	}

	archive, err := skill.Package(filepath.Join(skills, name), output)
	if err != nil {
		return err
	}

	logSuccess("Packaged %s: %d files, %s", name, archive.Files, archive.HumanSize())
	logPlain("  %s", archive.Path)
	return nil
}
