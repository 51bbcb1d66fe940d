package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeArtifacts()
	c.normalizeCatalog()
	c.normalizeViewer()
	c.normalizeTrainer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LibraryRoot, err = expandPath(c.Paths.LibraryRoot); err != nil {
		return fmt.Errorf("paths.library_root: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SocketPath) == "" {
		c.Paths.SocketPath = defaultSocketPath
	}
	if c.Paths.SocketPath, err = expandPath(c.Paths.SocketPath); err != nil {
		return fmt.Errorf("paths.socket_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeArtifacts() {
	if strings.TrimSpace(c.Artifacts.Dir) == "" {
		c.Artifacts.Dir = defaultArtifactDir
	}
	if strings.TrimSpace(c.Artifacts.CkptDir) == "" {
		c.Artifacts.CkptDir = defaultCkptDir
	}
	if strings.TrimSpace(c.Artifacts.Prefix) == "" {
		c.Artifacts.Prefix = defaultCkptPrefix
	}
	if len(c.Artifacts.Extensions) == 0 {
		c.Artifacts.Extensions = []string{"pt", "pth"}
	}
	normalized := make([]string, 0, len(c.Artifacts.Extensions))
	for _, ext := range c.Artifacts.Extensions {
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if ext != "" {
			normalized = append(normalized, ext)
		}
	}
	c.Artifacts.Extensions = normalized
}

func (c *Config) normalizeCatalog() {
	if strings.TrimSpace(c.Catalog.SequencePrefix) == "" {
		c.Catalog.SequencePrefix = defaultSequencePrefix
	}
	if c.Catalog.MaxDates < 0 {
		c.Catalog.MaxDates = 0
	}
	if c.Catalog.MaxSequences < 0 {
		c.Catalog.MaxSequences = 0
	}
}

func (c *Config) normalizeViewer() {
	if c.Viewer.CacheCapacity <= 0 {
		c.Viewer.CacheCapacity = defaultCacheCapacity
	}
	if c.Viewer.RefreshSeconds <= 0 {
		c.Viewer.RefreshSeconds = defaultRefreshSeconds
	}
	c.Viewer.DefaultDate = strings.TrimSpace(c.Viewer.DefaultDate)
	c.Viewer.DefaultSequence = strings.TrimSpace(c.Viewer.DefaultSequence)
}

func (c *Config) normalizeTrainer() {
	if strings.TrimSpace(c.Trainer.Command) == "" {
		c.Trainer.Command = defaultTrainerCommand
	}
	if strings.TrimSpace(c.Trainer.Script) == "" {
		c.Trainer.Script = defaultTrainerScript
	}
	if strings.TrimSpace(c.Trainer.StageDir) == "" {
		c.Trainer.StageDir = defaultTrainerStage
	}
	if c.Trainer.DataFactor <= 0 {
		c.Trainer.DataFactor = defaultDataFactor
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
