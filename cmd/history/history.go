// Package history implements the commands that inspect recorded deployment runs.
package history

import (
	"errors"
	"fmt"

	"github.com/canthus/deploy/app"
	"github.com/canthus/deploy/cmd/output"
	"github.com/canthus/deploy/cmd/utils"
	"github.com/canthus/deploy/repository"
	"github.com/spf13/cobra"
)

const defaultLimit = 20

// ErrHistoryDisabled is returned when the run history is not available
var ErrHistoryDisabled = errors.New("run history is disabled")

func NewCmdHistory() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded deployment runs",
		Long: `List past deployment runs, newest first, with their environment,
outcome and the commit that was deployed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runHistoryList(cmd, limit); err != nil {
				return utils.HandleCommandError(cmd, "listing runs", err, "limit", limit)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultLimit, "Maximum number of runs to show (0 shows all)")
	cmd.AddCommand(NewCmdHistoryShow())
	return cmd
}

func NewCmdHistoryShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the phases of one deployment run",
		Long: `Show the details and the phase table of one deployment run. The run ID
may be abbreviated to any unique prefix, such as the one shown by history.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runHistoryShow(cmd, args[0]); err != nil {
				return utils.HandleCommandError(cmd, "showing run", err, "run_id", args[0])
			}
			return nil
		},
	}
}

func runRepository() (repository.RunRepository, error) {
	repo := app.GetRunRepository()
	if repo == nil {
		return nil, ErrHistoryDisabled
	}
	return repo, nil
}

func runHistoryList(cmd *cobra.Command, limit int) error {
	repo, err := runRepository()
	if err != nil {
		return err
	}

	runs, err := repo.List(limit)
	if err != nil {
		return err
	}

	table, err := output.PrintRunList(runs)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), table)
	return err
}

func runHistoryShow(cmd *cobra.Command, id string) error {
	repo, err := runRepository()
	if err != nil {
		return err
	}

	run, err := repo.FindByIDPrefix(id)
	if err != nil {
		return err
	}

	details, err := output.PrintRunDetails(run)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), details)
	return err
}
