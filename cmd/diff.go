package cmd

import (
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/skill-quiver/internal/app"
	"github.com/firefly-engineering/skill-quiver/internal/logging"
	"github.com/firefly-engineering/skill-quiver/internal/sync"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show differences between local skills and upstream",
	Long: `Fetch upstream content into a scratch directory and print unified diffs
against the local skills. Nothing under skills/ is modified.

By default only skills whose recorded revision is behind upstream are
compared. Use --latest to compare every fetched skill, which also
reveals local edits.`,
	Args: cobra.NoArgs,
	RunE: runDiff,
}

var diffLatest bool

func init() {
	diffCmd.Flags().BoolVar(&diffLatest, "latest", false, "Compare every fetched skill against upstream")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	m, err := loadManifest()
	if err != nil {
		return err
	}

	changed, err := app.Default.Engine().Diff(cmd.Context(), m, sync.DiffOptions{Latest: diffLatest}, logging.Stdout())
	if err != nil {
		return err
	}
	if !changed {
		logSuccess("All skills are up to date.")
	}
	return nil
}
