package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"bricsview/internal/logging"
	"bricsview/internal/trainrun"
)

func newTrainCommand(ctx *commandContext) *cobra.Command {
	var (
		dateFilter   string
		seqFilter    string
		dryRun       bool
		skipExisting bool
	)

	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "Train every staged sequence in the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var ledger *trainrun.Ledger
			if !dryRun {
				ledger, err = trainrun.OpenLedger(cfg)
				if err != nil {
					return fmt.Errorf("open run ledger: %w", err)
				}
				defer ledger.Close()
			}

			logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: "console"})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			runner := trainrun.NewRunner(cfg, ledger, logger)
			runner.Output = cmd.OutOrStdout()
			results, err := runner.Run(cmd.Context(), trainrun.Options{
				Filter:       trainrun.Filter{Date: dateFilter, Sequence: seqFilter},
				DryRun:       dryRun,
				SkipExisting: skipExisting,
			})
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(stdout, "No trainable sequences found")
				return nil
			}

			failed := 0
			for _, result := range results {
				if result.Status == trainrun.RunStatusFailed {
					failed++
				}
			}
			fmt.Fprintf(stdout, "%d sequence(s) processed, %d failed\n", len(results), failed)
			if failed > 0 {
				return fmt.Errorf("%d training run(s) failed", failed)
			}
			return nil
		},
	}
	trainCmd.Flags().StringVar(&dateFilter, "date", "", "Only train sequences captured on this date")
	trainCmd.Flags().StringVar(&seqFilter, "sequence", "", "Only train sequences whose name contains this substring")
	trainCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print trainer commands without running them")
	trainCmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "Skip sequences that already have a checkpoint")

	trainCmd.AddCommand(newTrainRunsCommand(ctx))
	return trainCmd
}

func newTrainRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded training runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ledger, err := trainrun.OpenLedger(cfg)
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer ledger.Close()

			runs, err := ledger.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(stdout, "No training runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				detail := run.Status
				if run.Error != "" {
					detail = fmt.Sprintf("%s: %s", run.Status, run.Error)
				}
				exit := "-"
				if run.Status == trainrun.RunStatusCompleted || run.Status == trainrun.RunStatusFailed {
					exit = strconv.Itoa(run.ExitCode)
				}
				rows = append(rows, []string{
					run.StartedAt.Local().Format(time.DateTime),
					run.Date,
					run.Sequence,
					exit,
					detail,
				})
			}
			fmt.Fprintln(stdout, renderTable(
				[]string{"Started", "Date", "Sequence", "Exit", "Status"},
				rows,
				3,
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 for all)")
	return cmd
}
