package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateArtifacts(); err != nil {
		return err
	}
	if err := c.validateViewer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LibraryRoot) == "" {
		return errors.New("paths.library_root must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateArtifacts() error {
	if strings.ContainsAny(c.Artifacts.Prefix, "/\\") {
		return fmt.Errorf("artifacts.prefix %q must not contain path separators", c.Artifacts.Prefix)
	}
	for _, ext := range c.Artifacts.Extensions {
		if strings.ContainsAny(ext, "./\\") {
			return fmt.Errorf("artifacts.extensions entry %q must be a bare extension", ext)
		}
	}
	return nil
}

func (c *Config) validateViewer() error {
	if c.Viewer.CacheCapacity < 1 {
		return errors.New("viewer.cache_capacity must be at least 1")
	}
	if c.Viewer.DefaultDate != "" && !IsDateName(c.Viewer.DefaultDate) {
		return fmt.Errorf("viewer.default_date %q is not a YYYY-MM-DD name", c.Viewer.DefaultDate)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

// IsDateName reports whether name has the fixed YYYY-MM-DD shape: digits in
// the year, month, and day positions with hyphens at offsets 4 and 7. No
// calendar validation is performed.
func IsDateName(name string) bool {
	if len(name) != 10 || name[4] != '-' || name[7] != '-' {
		return false
	}
	for i, r := range name {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
