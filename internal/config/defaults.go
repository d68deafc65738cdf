package config

const (
	defaultDataDir        = "~/.local/share/lqsmatch"
	defaultLogDir         = "~/.local/share/lqsmatch/logs"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultMinScore       = 75
	defaultMinMargin      = 20
	defaultPremiumTol     = 0.15
	defaultBatchWorkers   = 4
	defaultRetryAttempts  = 3
	defaultRetryBackoffMS = 50
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Matching: Matching{
			AutoMatchMinScore:  defaultMinScore,
			AutoMatchMinMargin: defaultMinMargin,
			PremiumTolerance:   defaultPremiumTol,
		},
		Batch: Batch{
			Workers:        defaultBatchWorkers,
			RetryAttempts:  defaultRetryAttempts,
			RetryBackoffMS: defaultRetryBackoffMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
