package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagNoNormalize = flag.Bool("no-normalize", false, "Keep source coordinates instead of fitting the model to a unit box")
	flagOut         = flag.String("out", "", "Export output path")
	flagLogFile     = flag.String("log-file", "", "Write logs to this file as well")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// OutputPath returns the --out flag, or the configured default export name.
func (c *Config) OutputPath() string {
	if *flagOut != "" {
		return *flagOut
	}
	return c.Export.DefaultName
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagNoNormalize {
		cfg.Model.NormalizeOnLoad = false
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
