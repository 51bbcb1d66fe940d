package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bricsview/internal/daemonctl"
	"bricsview/internal/ipc"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the bricsview daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			launched, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				daemonLaunchOptions(ctx),
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if launched {
				fmt.Fprintln(stdout, "Daemon started")
			} else {
				fmt.Fprintln(stdout, "Daemon already running")
			}
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the bricsview daemon (completely terminates the process)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			logDir := ""
			if cfg := ctx.configValue(); cfg != nil {
				logDir = cfg.Paths.LogDir
			}
			result, err := daemonctl.StopAndTerminate(ctx.socketPath(), logDir, 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if !result.StopAcknowledged {
				fmt.Fprintln(stdout, "Stop request sent")
			}
			if result.ForcedKill && result.PID > 0 {
				fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the bricsview daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}
			logDir := ""
			if cfg := ctx.configValue(); cfg != nil {
				logDir = cfg.Paths.LogDir
			}

			_, stopErr := daemonctl.StopAndTerminate(ctx.socketPath(), logDir, 5*time.Second)
			if stopErr != nil && !errors.Is(stopErr, daemonctl.ErrDaemonNotRunning) {
				return stopErr
			}
			if stopErr == nil {
				fmt.Fprintln(stdout, "Daemon stopped")
			}

			if _, err := daemonctl.EnsureStarted(ctx.socketPath(), exe, daemonLaunchOptions(ctx), 10*time.Second); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Daemon restarted")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and display status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				printStatus(stdout, resp, colorize)
				return nil
			})
		},
	}

	return []*cobra.Command{startCmd, stopCmd, restartCmd, statusCmd}
}

func printStatus(stdout io.Writer, resp *ipc.StatusResponse, colorize bool) {
	daemonKind := statusOK
	daemonDetail := fmt.Sprintf("Running (pid %d)", resp.PID)
	if !resp.Running {
		daemonKind = statusWarn
		daemonDetail = "Not running"
	}
	fmt.Fprintln(stdout, renderStatusLine("Daemon", daemonKind, daemonDetail, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Scene", statusKindFromLevel(resp.Level), resp.StatusLine, colorize))

	display := resp.Display
	if !display.Session.IsZero() {
		fmt.Fprintln(stdout, renderStatusLine("Session", statusInfo, display.Session.String(), colorize))
	}
	if display.HasScene {
		detail := fmt.Sprintf("version %d (%s)", display.Version, formatBytes(display.SceneBytes))
		fmt.Fprintln(stdout, renderStatusLine("Checkpoint", statusInfo, detail, colorize))
	}
	if !display.UpdatedAt.IsZero() {
		fmt.Fprintln(stdout, renderStatusLine("Updated", statusInfo, display.UpdatedAt.Local().Format(time.RFC3339), colorize))
	}
	fmt.Fprintln(stdout, renderStatusLine("Socket", statusInfo, resp.SocketPath, colorize))
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func daemonLaunchOptions(ctx *commandContext) daemonctl.LaunchOptions {
	opts := daemonctl.LaunchOptions{}
	if ctx.configFlag != nil {
		if config := strings.TrimSpace(*ctx.configFlag); config != "" {
			opts.ConfigPath = config
		}
	}
	return opts
}
