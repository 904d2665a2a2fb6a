package config

const (
	defaultDataDir              = "~/.local/share/rollcall"
	defaultLogDir               = "~/.local/share/rollcall/logs"
	defaultAPIBind              = "127.0.0.1:7912"
	defaultSourceTimeoutSeconds = 30
	defaultAppendTimeoutSeconds = 15
	defaultResyncDelayMS        = 2500
	defaultCycleTimeoutSeconds  = 30
	defaultPollIntervalSeconds  = 300
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Source: Source{
			RequestTimeout: defaultSourceTimeoutSeconds,
		},
		Append: Append{
			RequestTimeout: defaultAppendTimeoutSeconds,
		},
		Sync: Sync{
			ResyncDelayMS: defaultResyncDelayMS,
			CycleTimeout:  defaultCycleTimeoutSeconds,
			PollInterval:  defaultPollIntervalSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
