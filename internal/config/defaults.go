package config

const (
	defaultConfigPath    = "~/.config/rpgdecrypt/config.toml"
	defaultLockDir       = "~/.local/state/rpgdecrypt"
	defaultMode          = ModeInPlace
	defaultMirrorSuffix  = "_decrypted"
	defaultFlagPolicy    = FlagPolicyRemove
	defaultRetryAttempts = 1
	defaultRetryDelayMS  = 50
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	maxWorkers           = 256
	maxRetryAttempts     = 10
)

// Default returns a Config populated with repository defaults. Workers.Count
// of zero means one worker per available CPU.
func Default() Config {
	return Config{
		Paths: Paths{
			LockDir: defaultLockDir,
		},
		Output: Output{
			Mode:         defaultMode,
			MirrorSuffix: defaultMirrorSuffix,
		},
		Manifest: Manifest{
			FlagPolicy: defaultFlagPolicy,
		},
		Workers: Workers{
			RetryAttempts: defaultRetryAttempts,
			RetryDelayMS:  defaultRetryDelayMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
