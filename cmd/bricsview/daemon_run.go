package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bricsview/internal/daemonrun"
)

func newDaemonServeCommand(ctx *commandContext) *cobra.Command {
	var logLevel string

	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Daemon process management",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{LogLevel: logLevel})
		},
	}
	serveCmd.Flags().StringVar(&logLevel, "log-level", "", "Override configured log level (debug, info, warn, error)")

	daemonCmd.AddCommand(serveCmd)
	return daemonCmd
}
