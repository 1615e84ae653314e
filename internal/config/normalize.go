package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOutput()
	c.Manifest.FlagPolicy = strings.ToLower(strings.TrimSpace(c.Manifest.FlagPolicy))
	if c.Manifest.FlagPolicy == "" {
		c.Manifest.FlagPolicy = defaultFlagPolicy
	}
	if err := c.normalizeWorkers(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LockDir, err = expandPath(strings.TrimSpace(c.Paths.LockDir)); err != nil {
		return fmt.Errorf("paths.lock_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOutput() {
	mode := strings.ToLower(strings.TrimSpace(c.Output.Mode))
	mode = strings.ReplaceAll(mode, "-", "_")
	switch mode {
	case "", "inplace":
		mode = ModeInPlace
	}
	c.Output.Mode = mode
	c.Output.MirrorSuffix = strings.TrimSpace(c.Output.MirrorSuffix)
	if c.Output.MirrorSuffix == "" {
		c.Output.MirrorSuffix = defaultMirrorSuffix
	}
}

func (c *Config) normalizeWorkers() error {
	if value, ok := os.LookupEnv("RPGDECRYPT_WORKERS"); ok && strings.TrimSpace(value) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("RPGDECRYPT_WORKERS: %w", err)
		}
		c.Workers.Count = n
	}
	if c.Workers.RetryDelayMS < 0 {
		c.Workers.RetryDelayMS = 0
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if value, ok := os.LookupEnv("RPGDECRYPT_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
