// Package config loads, normalizes, and validates bricsview configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// daemon and CLI need: the capture library root, checkpoint naming, catalog
// caps, viewer cache sizing, and the training fan-out command.
//
// Always obtain settings through this package so downstream code receives
// sanitized absolute paths, canonical log formats, and clear validation
// errors.
package config
