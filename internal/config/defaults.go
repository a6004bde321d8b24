package config

const (
	defaultDataDir        = "~/.local/share/easel"
	defaultLogDir         = "~/.local/share/easel/logs"
	defaultListenAddr     = "127.0.0.1:8317"
	defaultBaseURL        = "http://127.0.0.1:8317"
	defaultRequestTimeout = 30
	defaultMaxUploadMiB   = 25
	defaultNtfyTimeout    = 10
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			ListenAddr: defaultListenAddr,
		},
		Service: Service{
			BaseURL:        defaultBaseURL,
			RequestTimeout: defaultRequestTimeout,
			MaxUploadMiB:   defaultMaxUploadMiB,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
			Uploads:        true,
			Modifications:  true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
