package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"rpgdecrypt/internal/config"
	"rpgdecrypt/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// applyOverrides folds command-line flags into cfg and re-validates it.
func applyOverrides(cmd *cobra.Command, cfg *config.Config, flags runFlags) error {
	if flags.mirror {
		cfg.Output.Mode = config.ModeMirror
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers.Count = flags.workers
	}
	if level := strings.TrimSpace(flags.logLevel); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

func newLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, error) {
	logger, err := logging.NewFromConfig(cfg, stderr)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	return logger, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
