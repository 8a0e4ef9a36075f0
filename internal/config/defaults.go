package config

const (
	defaultSettingsPath        = ".settings"
	defaultTheme               = "light"
	defaultStateDir            = "~/.local/share/station"
	defaultAPIBind             = "127.0.0.1:7488"
	defaultUpdateRatePerSecond = 5
	defaultUpdateBurst         = 10
	defaultNtfyTimeoutSeconds  = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultConfigPath          = "~/.config/station/config.toml"
	projectConfigName          = "station.toml"
	envSettingsFile            = "STATION_SETTINGS_FILE"
	envAPIToken                = "STATION_API_TOKEN"
	envLogLevel                = "STATION_LOG_LEVEL"
	envStateDir                = "STATION_STATE_DIR"
	envNtfyTopic               = "STATION_NTFY_TOPIC"
	socketFileName             = "station.sock"
	lockFileName               = "stationd.lock"
	logFileName                = "station.log"
	pidFileName                = "stationd.pid"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Settings: Settings{
			Path:         defaultSettingsPath,
			DefaultTheme: defaultTheme,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			APIBind:  defaultAPIBind,
		},
		API: API{
			UpdateRatePerSecond: defaultUpdateRatePerSecond,
			UpdateBurst:         defaultUpdateBurst,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
