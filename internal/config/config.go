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

// Output mode names.
const (
	ModeInPlace = "in_place"
	ModeMirror  = "mirror"
)

// Manifest flag policies.
const (
	FlagPolicyRemove = "remove"
	FlagPolicyFalse  = "false"
)

// Paths contains directory configuration.
type Paths struct {
	LockDir string `toml:"lock_dir"`
	LogDir  string `toml:"log_dir"`
}

// Output controls where decrypted assets are written.
type Output struct {
	// Mode is "in_place" (replace encrypted files) or "mirror" (write a
	// sibling "<game><suffix>" tree and leave the original untouched).
	Mode         string `toml:"mode"`
	MirrorSuffix string `toml:"mirror_suffix"`
	VerifyCopies bool   `toml:"verify_copies"`
	// KeepHeader writes the 16-byte header in front of the decrypted body.
	KeepHeader bool `toml:"keep_header"`
}

// Manifest controls how System.json is rewritten after a successful run.
type Manifest struct {
	FlagPolicy string `toml:"flag_policy"`
	// StripKey removes encryptionKey; mirror mode always strips it.
	StripKey bool `toml:"strip_key"`
}

// Workers sizes the transform pool.
type Workers struct {
	Count         int `toml:"count"`
	RetryAttempts int `toml:"retry_attempts"`
	RetryDelayMS  int `toml:"retry_delay_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for rpgdecrypt.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Output   Output   `toml:"output"`
	Manifest Manifest `toml:"manifest"`
	Workers  Workers  `toml:"workers"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// projectConfigName is looked up in the working directory when no per-user
// file exists.
const projectConfigName = "rpgdecrypt.toml"

// Load resolves, decodes, normalizes and validates the configuration. path
// overrides the search order. A missing file is not an error: the defaults
// are returned with exists=false and the path that would have been read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		if err := decodeFile(resolved, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// decodeFile overlays the TOML file at path onto cfg. Unknown keys are
// rejected.
func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(explicit string) (string, bool, error) {
	if explicit != "" {
		expanded, err := expandPath(explicit)
		if err != nil {
			return "", false, err
		}
		exists, err := isFile(expanded)
		return expanded, exists, err
	}

	userPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, projectPath} {
		if ok, _ := isFile(candidate); ok {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return !info.IsDir(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat config: %w", err)
	}
}

// EnsureDirectories creates the lock and log directories when configured.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LockDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Mirror reports whether decrypted output goes to a separate tree.
func (c *Config) Mirror() bool {
	return c.Output.Mode == ModeMirror
}

// StripKey reports whether encryptionKey is removed from the finalized manifest.
func (c *Config) StripKey() bool {
	return c.Mirror() || c.Manifest.StripKey
}

// expandPath resolves a leading "~" against the home directory and makes the
// result absolute. The empty string stays empty.
func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, strings.TrimPrefix(value[1:], "/"))
	}
	absolute, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the commented sample configuration to path, creating
// parent directories.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
