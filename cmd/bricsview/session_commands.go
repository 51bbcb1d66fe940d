package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bricsview/internal/ipc"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List browsable capture sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Sessions()
				if err != nil {
					return err
				}
				if len(resp.Sessions) == 0 {
					fmt.Fprintln(stdout, "No sessions found")
					return nil
				}
				rows := make([][]string, 0, len(resp.Sessions))
				for _, sess := range resp.Sessions {
					rows = append(rows, []string{sess.Date, sess.Sequence})
				}
				fmt.Fprintln(stdout, renderTable([]string{"Date", "Sequence"}, rows))
				return nil
			})
		},
	}
}

func newSequencesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sequences <date>",
		Short: "List sequences for a capture date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Sequences(args[0])
				if err != nil {
					return err
				}
				if len(resp.Sequences) == 0 {
					fmt.Fprintf(stdout, "No sequences found for %s\n", args[0])
					return nil
				}
				for _, seq := range resp.Sequences {
					fmt.Fprintln(stdout, seq)
				}
				return nil
			})
		},
	}
}

func newSelectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "select [date sequence]",
		Short: "Select the session to display (no arguments selects the newest)",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return fmt.Errorf("select needs both a date and a sequence, or neither")
			}
			date, sequence := "", ""
			if len(args) == 2 {
				date, sequence = args[0], args[1]
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Select(date, sequence)
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "Selected %s\n", resp.Display.Session)
				fmt.Fprintln(stdout, renderStatusLine("Scene", statusWarn, resp.Display.StatusText, colorize))
				return nil
			})
		},
	}
}

func newRefreshCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Rescan the library and re-resolve the current selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Refresh()
				if err != nil {
					return err
				}
				if resp.Display.Session.IsZero() {
					fmt.Fprintln(stdout, "Refreshed; nothing selected")
					return nil
				}
				fmt.Fprintf(stdout, "Refreshed %s: %s\n", resp.Display.Session, resp.Display.StatusText)
				return nil
			})
		},
	}
}
