package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile     = flag.String("log-file", "", "Write JSON logs to this file")
	flagWorkers     = flag.Int("workers", 0, "Analysis goroutines (0 = config value)")
	flagMetricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	flagAttackTime  = flag.Float64("attack-time", 0, "Velocity smoothing horizon in seconds")
	flagDepth       = flag.Int("depth", 0, "Classifier neighbor depth")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagWorkers > 0 {
		cfg.Analysis.Workers = *flagWorkers
	}
	if *flagMetricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.ListenAddr = *flagMetricsAddr
	}
	if *flagAttackTime > 0 {
		cfg.Velocity.ExpectedAttackTime = float32(*flagAttackTime)
	}
	if *flagDepth > 0 {
		cfg.Classifier.Depth = *flagDepth
	}
}
