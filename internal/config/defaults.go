package config

const (
	defaultConfigPath        = "~/.config/acadrun/config.toml"
	defaultEnginePath        = "accoreconsole.exe"
	defaultEngineTimeout     = 30
	defaultScriptEncoding    = "windows-1251"
	defaultSettleDelayMS     = 10
	defaultDebuggerMode      = "off"
	defaultDebuggerDelayMS   = 1000
	defaultDebuggerAttempts  = 5
	defaultDebuggerRetryMS   = 25
	defaultDebuggerConfirmMS = 500
	defaultLogDir            = "~/.local/share/acadrun/logs"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultRetentionDays     = 30
	defaultDrawingExtension  = ".dwg"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Engine: Engine{
			Path:           defaultEnginePath,
			TimeoutSeconds: defaultEngineTimeout,
			ScriptEncoding: defaultScriptEncoding,
			SettleDelayMS:  defaultSettleDelayMS,
		},
		Debugger: Debugger{
			Mode:         defaultDebuggerMode,
			DelayMS:      defaultDebuggerDelayMS,
			Attempts:     defaultDebuggerAttempts,
			RetryDelayMS: defaultDebuggerRetryMS,
			ConfirmMS:    defaultDebuggerConfirmMS,
		},
		Paths: Paths{
			StateDir: defaultStateDir(),
			LogDir:   defaultLogDir,
		},
		History: History{
			Enabled:       true,
			RetentionDays: defaultRetentionDays,
		},
		Batch: Batch{
			Extensions:  []string{defaultDrawingExtension},
			StageCopies: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
