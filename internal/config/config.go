// Package config handles game configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// ErrInvalid marks a configuration value that cannot be used.
var ErrInvalid = errors.New("invalid config")

// Config holds all game settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Game     GameConfig     `yaml:"game"`
	Physics  PhysicsConfig  `yaml:"physics"`
	Logging  LoggingConfig  `yaml:"logging"`
	Dev      DevConfig      `yaml:"dev"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// HeroConfig names a hero and the glob matching its frame files.
type HeroConfig struct {
	Name   string `yaml:"name"`
	Frames string `yaml:"frames"` // relative to the data directory
}

// GameConfig holds level and hero settings.
type GameConfig struct {
	DataDir   string       `yaml:"data_dir"`
	Level     string       `yaml:"level"` // relative to the data directory
	Heroes    []HeroConfig `yaml:"heroes"`
	StartHero int          `yaml:"start_hero"`
	Spawn     [3]float32   `yaml:"spawn"`
}

// PhysicsConfig holds scheduler tick rates.
type PhysicsConfig struct {
	PhysicsTick    time.Duration `yaml:"physics_tick"`
	EngineTick     time.Duration `yaml:"engine_tick"`
	BenchmarkEvery time.Duration `yaml:"benchmark_every"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// DevConfig holds development helpers.
type DevConfig struct {
	WatchLevel    bool          `yaml:"watch_level"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`
	ShowBounds    bool          `yaml:"show_bounds"`
}

// HeroNames lists the bundled heroes in selection order.
var HeroNames = []string{"blade", "ladydeath", "warrior", "yoko", "hueteotl", "slith", "rhino"}

// Default returns a Config with sensible default values.
func Default() *Config {
	heroes := make([]HeroConfig, len(HeroNames))
	for i, name := range HeroNames {
		heroes[i] = HeroConfig{Name: name, Frames: "heroes/" + name + "/*.obj"}
	}

	return &Config{
		Graphics: GraphicsConfig{
			Width:      1024,
			Height:     768,
			Fullscreen: false,
			VSync:      true,
		},
		Game: GameConfig{
			DataDir:   "data",
			Level:     "level.obj",
			Heroes:    heroes,
			StartHero: 0,
			Spawn:     [3]float32{0, 4, 0},
		},
		Physics: PhysicsConfig{
			PhysicsTick:    10 * time.Millisecond,
			EngineTick:     20 * time.Millisecond,
			BenchmarkEvery: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Dev: DevConfig{
			WatchLevel:    false,
			WatchDebounce: 250 * time.Millisecond,
		},
	}
}

// Validate reports every unusable value at once.
func (c *Config) Validate() error {
	var errs error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Graphics.Width, c.Graphics.Height))
	}
	if c.Game.Level == "" {
		errs = multierr.Append(errs, fmt.Errorf("%w: game.level is empty", ErrInvalid))
	}
	if len(c.Game.Heroes) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: game.heroes is empty", ErrInvalid))
	}
	for i, h := range c.Game.Heroes {
		if h.Name == "" || h.Frames == "" {
			errs = multierr.Append(errs, fmt.Errorf("%w: hero %d needs a name and frames", ErrInvalid, i))
		}
	}
	if c.Physics.PhysicsTick <= 0 || c.Physics.EngineTick <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: tick rates must be positive", ErrInvalid))
	}
	return errs
}
