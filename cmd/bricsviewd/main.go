// Command bricsviewd runs the viewer daemon in the foreground. It is the
// same runtime the CLI launches via `bricsview start`, packaged as a
// standalone binary for service managers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bricsview/internal/config"
	"bricsview/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	logLevel := flag.String("log-level", "", "override configured log level")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: *logLevel}); err != nil {
		fmt.Fprintf(os.Stderr, "bricsviewd: %v\n", err)
		os.Exit(1)
	}
}
