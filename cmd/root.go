package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/skill-quiver/internal/app"
	"github.com/firefly-engineering/skill-quiver/internal/config"
	"github.com/firefly-engineering/skill-quiver/internal/logging"
)

var (
	workDir    string
	configFile string
	verbose    bool
	jsonOutput bool
)

// newApp builds the application context once settings are loaded.
// Tests replace it to point at fakes.
var newApp = func(cfg *config.Config) *app.App {
	return app.New(app.WithConfig(cfg))
}

var rootCmd = &cobra.Command{
	Use:   "quiv",
	Short: "Manage a curated collection of agent skills",
	Long: `quiv mirrors agent skills from upstream repositories into skills/.

Sources and the skills taken from each are declared in skills.toml.
Every fetched skill carries a .source.toml recording the upstream
revision, so re-running sync only fetches what changed.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose, jsonOutput, cmd.ErrOrStderr())
		logging.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())

		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if cfg.File != "" {
			logging.Debug("loaded config", "file", cfg.File)
		}
		app.SetDefault(newApp(cfg))
		return nil
	},
}

// Execute runs the command tree. SIGINT and SIGTERM cancel the command
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workDir, "dir", "C", ".", "Project directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/quiv/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
	logError   = logging.UserError
	logPlain   = logging.UserPlain
)
