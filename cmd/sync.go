package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/skill-quiver/internal/app"
	"github.com/firefly-engineering/skill-quiver/internal/logging"
	"github.com/firefly-engineering/skill-quiver/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch stale skills from their upstream sources",
	Long: `Resolve every source in skills.toml to a revision and re-fetch the
skills whose recorded revision differs. Skills that are already current
are left untouched. THIRD_PARTY_LICENSES is regenerated afterwards.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

var (
	syncDryRun bool
	syncSkill  string
)

func init() {
	syncCmd.Flags().BoolVarP(&syncDryRun, "dry-run", "n", false, "Report what would change without writing anything")
	syncCmd.Flags().StringVarP(&syncSkill, "skill", "s", "", "Only sync this skill")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	m, err := loadManifest()
	if err != nil {
		return err
	}

	logging.Debug("syncing", "root", m.Root, "sources", len(m.Sources), "dry_run", syncDryRun)

	if syncDryRun {
		logInfo("Dry run: no changes will be made")
	}

	result, err := app.Default.Engine().Sync(cmd.Context(), m, sync.Options{
		DryRun: syncDryRun,
		Skill:  syncSkill,
	})
	if result != nil {
		displaySyncResult(result)
	}
	return err
}

func displaySyncResult(result *sync.Result) {
	for _, r := range result.Sources {
		switch r.Outcome {
		case sync.UpToDate:
			logInfo("%s", r.Summary())
		case sync.Pending:
			logInfo("%s", r.Summary())
			logPlain("  Would fetch: %s", strings.Join(r.Stale, ", "))
		case sync.Updated:
			logSuccess("%s", r.Summary())
			if len(r.Fetched) > 0 {
				logPlain("  Fetched: %s", strings.Join(r.Fetched, ", "))
			}
			for _, name := range r.Missing {
				logWarning("  %s: not found upstream", name)
			}
		}
	}

	if len(result.Sources) > 0 && !result.Changed() {
		logSuccess("All skills are up to date.")
	}
}
