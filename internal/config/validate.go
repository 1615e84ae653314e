package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateManifest(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateOutput() error {
	switch c.Output.Mode {
	case ModeInPlace, ModeMirror:
	default:
		return fmt.Errorf("output.mode must be %q or %q, got %q", ModeInPlace, ModeMirror, c.Output.Mode)
	}
	if strings.ContainsAny(c.Output.MirrorSuffix, `/\`) {
		return fmt.Errorf("output.mirror_suffix must not contain path separators, got %q", c.Output.MirrorSuffix)
	}
	return nil
}

func (c *Config) validateManifest() error {
	switch c.Manifest.FlagPolicy {
	case FlagPolicyRemove, FlagPolicyFalse:
		return nil
	default:
		return fmt.Errorf("manifest.flag_policy must be %q or %q, got %q", FlagPolicyRemove, FlagPolicyFalse, c.Manifest.FlagPolicy)
	}
}

func (c *Config) validateWorkers() error {
	if c.Workers.Count < 0 {
		return errors.New("workers.count must be zero (auto) or positive")
	}
	if c.Workers.Count > maxWorkers {
		return fmt.Errorf("workers.count must be at most %d", maxWorkers)
	}
	if c.Workers.RetryAttempts < 0 || c.Workers.RetryAttempts > maxRetryAttempts {
		return fmt.Errorf("workers.retry_attempts must be between 0 and %d", maxRetryAttempts)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
}
