package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and socket configuration.
type Paths struct {
	LibraryRoot string `toml:"library_root"`
	LogDir      string `toml:"log_dir"`
	SocketPath  string `toml:"socket_path"`
}

// Artifacts describes the on-disk checkpoint layout under a session directory.
type Artifacts struct {
	// Dir is the per-sequence artifact directory name (e.g. "gsplat_2dgs").
	Dir string `toml:"dir"`
	// CkptDir is the checkpoint subdirectory name inside Dir.
	CkptDir string `toml:"ckpt_dir"`
	// Prefix is the checkpoint filename prefix before the version number.
	Prefix string `toml:"prefix"`
	// Extensions lists accepted checkpoint file extensions without dots.
	Extensions []string `toml:"extensions"`
}

// Catalog contains session discovery limits.
type Catalog struct {
	// MaxDates caps retained date directories; zero means unlimited.
	MaxDates int `toml:"max_dates"`
	// MaxSequences caps retained sequences per date; zero means unlimited.
	MaxSequences int `toml:"max_sequences"`
	// SequencePrefix is the directory name prefix that marks a sequence.
	SequencePrefix string `toml:"sequence_prefix"`
}

// Viewer contains scene loading and refresh behavior.
type Viewer struct {
	// CacheCapacity bounds the in-memory scene cache.
	CacheCapacity int `toml:"cache_capacity"`
	// RefreshSeconds is the periodic catalog re-resolution interval.
	RefreshSeconds int `toml:"refresh_seconds"`
	// DefaultDate preselects a date at startup when present.
	DefaultDate string `toml:"default_date"`
	// DefaultSequence preselects a sequence at startup when present.
	DefaultSequence string `toml:"default_sequence"`
	// WatchLibrary enables the fsnotify watcher on the library root.
	WatchLibrary bool `toml:"watch_library"`
}

// Trainer contains the batch training fan-out settings.
type Trainer struct {
	// Command is the executable launched per training target.
	Command string `toml:"command"`
	// Script is the trainer entry point passed as the first argument.
	Script string `toml:"script"`
	// StageDir is the calibration input path relative to a sequence directory.
	StageDir string `toml:"stage_dir"`
	// DataFactor is forwarded to the trainer as --data-factor.
	DataFactor int `toml:"data_factor"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root configuration for the daemon and CLI.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Artifacts Artifacts `toml:"artifacts"`
	Catalog   Catalog   `toml:"catalog"`
	Viewer    Viewer    `toml:"viewer"`
	Trainer   Trainer   `toml:"trainer"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bricsview/config.toml")
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return value
// is the resolved path; the third reports whether a file was actually read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("bricsview.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
// The library root is created on a best-effort basis so the daemon can start
// while capture storage is temporarily offline.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	if dir := filepath.Dir(c.Paths.SocketPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LibraryRoot) != "" {
		_ = os.MkdirAll(c.Paths.LibraryRoot, 0o755)
	}
	return nil
}

// SessionDir returns the artifact directory for a date/sequence pair.
func (c *Config) SessionDir(date, sequence string) string {
	return filepath.Join(c.Paths.LibraryRoot, date, sequence, c.Artifacts.Dir)
}

// LedgerPath returns the SQLite training-run ledger location.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.LogDir, "trainruns.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
