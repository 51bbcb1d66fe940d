package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bricsview/internal/catalog"
	"bricsview/internal/config"
	"bricsview/internal/daemon"
	"bricsview/internal/ipc"
	"bricsview/internal/scenecache"
	"bricsview/internal/testsupport"
	"bricsview/internal/viewer"
)

type cliTestEnv struct {
	cfg        *config.Config
	daemon     *daemon.Daemon
	coord      *viewer.Coordinator
	server     *ipc.Server
	socketPath string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t)
	dir := testsupport.MakeSession(t, cfg, "2025-06-01", "multisequence000001")
	testsupport.WriteCheckpoint(t, cfg, dir, "ckpt_9.pt")

	configPath := filepath.Join(homeDir, ".config", "bricsview", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	cat := catalog.New(cfg, nil)
	cache := scenecache.New(cfg.Viewer.CacheCapacity, nil)
	coord := viewer.New(cfg, cat, cache, nil, nil)
	d, err := daemon.New(cfg, cat, coord, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	coord.WaitForLoads()

	srv, err := ipc.NewServer(context.Background(), cfg.Paths.SocketPath, d, nil, nil)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	t.Cleanup(func() {
		srv.Close()
		d.Stop()
	})

	return &cliTestEnv{
		cfg:        cfg,
		daemon:     d,
		coord:      coord,
		server:     srv,
		socketPath: cfg.Paths.SocketPath,
		configPath: configPath,
	}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nlibrary_root = %q\nlog_dir = %q\nsocket_path = %q\n",
		cfg.Paths.LibraryRoot,
		cfg.Paths.LogDir,
		cfg.Paths.SocketPath,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
