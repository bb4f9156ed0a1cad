// Package root implements the command line interface for canthus-deploy.
package root

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/canthus/deploy/app"
	"github.com/canthus/deploy/cmd/history"
	"github.com/canthus/deploy/cmd/output"
	"github.com/canthus/deploy/cmd/utils"
	"github.com/canthus/deploy/cmd/version"
	"github.com/canthus/deploy/config"
	"github.com/canthus/deploy/deploy"
	"github.com/canthus/deploy/domain"
	"github.com/canthus/deploy/logging"
	"github.com/spf13/cobra"
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewCmdRoot()
	err := cmd.ExecuteContext(ctx)
	_ = app.Close()

	if err != nil {
		if !utils.IsReported(err) {
			_ = output.FprintError(cmd, "Error: %v", err)
		}
		stop()
		os.Exit(1)
	}
}

type rootOptions struct {
	environment *environmentFlag
	dryRun      bool
	skipTests   bool
	projectRoot string
	noHistory   bool
	timeout     time.Duration
}

func NewCmdRoot() *cobra.Command {
	opts := &rootOptions{environment: newEnvironmentFlag()}
	var cfg *config.Config

	cmd := &cobra.Command{
		Use:   "canthus-deploy",
		Short: "Build and deploy the application to Cloudflare",
		Long: `canthus-deploy checks prerequisites, runs the server tests, builds the shared,
server and client packages and deploys the server worker and the client
Pages site to the selected environment. Every run is written to a log file
in the logs directory and recorded in the run history.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}

			var err error
			cfg, err = newConfig(cmd, opts)
			if err != nil {
				return err
			}

			output.InitColors(!cfg.ColorEnabled || output.NoColor.IsSet())

			logLevel := cfg.LogLevel
			if logging.LogLevel.IsSet() {
				logLevel = logging.LogLevel.String()
			}
			logging.InitLogging(logLevel)

			if err := app.InitializeWithConfig(cfg); err != nil {
				// a broken history must not block a deployment
				if cmd != cmd.Root() {
					return err
				}
				slog.Warn("Run history unavailable", "path", cfg.DatabasePath, "error", err)
				_ = output.FprintWarning(cmd, "Run history unavailable, this run will not be recorded: %v", err)
				cfg.HistoryEnabled = false
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, cfg)
		},
	}

	cmd.Flags().Var(opts.environment, "environment", "Deployment environment")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Log every command without executing it")
	cmd.Flags().BoolVar(&opts.skipTests, "skip-tests", false, "Skip running the server tests")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Do not record this run in the run history")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Abort any single command running longer than this (0 disables)")

	cmd.PersistentFlags().
		StringVarP(&opts.projectRoot, "project-root", "r", "", "Project root directory (default: current directory)")
	cmd.PersistentFlags().VarP(logging.LogLevel, "log-level", "l", "Set log verbosity level")
	cmd.PersistentFlags().VarP(output.NoColor, "no-color", "c", "Disable colored terminal output")

	cmd.AddCommand(history.NewCmdHistory())
	cmd.AddCommand(version.NewCmdVersion())
	return cmd
}

func newConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	overrides := config.Overrides{
		ProjectRoot:     opts.projectRoot,
		Environment:     opts.environment.value,
		DryRun:          opts.dryRun,
		SkipTests:       opts.skipTests,
		HistoryDisabled: opts.noHistory,
	}
	if cmd.Flags().Changed("timeout") {
		overrides.CommandTimeout = &opts.timeout
	}

	cfg, err := config.NewConfigForCLI(overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize configuration: %w", err)
	}
	return cfg, nil
}

// runDeploy runs the deployment, records it and prints the phase summary
func runDeploy(cmd *cobra.Command, cfg *config.Config) error {
	var commit *string
	if hash, err := app.GetGitService().GetLatestCommit(cfg.ProjectRoot); err == nil {
		commit = &hash
	}

	runner := deploy.NewRunner(cfg, app.GetExecutor(),
		deploy.WithEcho(output.EntryPrinter(cmd.OutOrStdout())))

	report, runErr := runner.Run(cmd.Context())
	run := report.Run
	run.CommitHash = commit

	recordRun(cmd, cfg, &run)

	summary, err := output.PrintPhaseSummary(&run)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(cmd.OutOrStdout(), "\n"+summary); err != nil {
		return err
	}

	if runErr != nil {
		// the runner already logged the failure at ERROR level
		return utils.Reported(fmt.Errorf("deployment to %s failed: %w", cfg.Environment, runErr))
	}
	return nil
}

func recordRun(cmd *cobra.Command, cfg *config.Config, run *domain.Run) {
	repo := app.GetRunRepository()
	if !cfg.HistoryEnabled || repo == nil {
		return
	}

	if err := repo.Create(run); err != nil {
		slog.Warn("Failed to record run", "run_id", run.ID, "error", err)
		_ = output.FprintWarning(cmd, "Could not record run %s in history: %v", run.ID, err)
		return
	}
	slog.Debug("Run recorded", "run_id", run.ID, "status", run.Status)
}
