package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagData       = flag.String("data", "", "Data directory")
	flagLevel      = flag.String("level", "", "Level file, relative to the data directory")
	flagHero       = flag.Int("hero", -1, "Starting hero index")
	flagWatch      = flag.Bool("watch", false, "Reload the level when its file changes")
	flagSave       = flag.Bool("save-config", false, "Write the effective config (to --config or the user config dir) and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether --save-config was given.
func SaveRequested() bool {
	return *flagSave
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Dev.ShowBounds = true
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagData != "" {
		cfg.Game.DataDir = *flagData
	}
	if *flagLevel != "" {
		cfg.Game.Level = *flagLevel
	}
	if *flagHero >= 0 {
		cfg.Game.StartHero = *flagHero
	}
	if *flagWatch {
		cfg.Dev.WatchLevel = true
	}
}
