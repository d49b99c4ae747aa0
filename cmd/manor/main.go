// Package main is the entry point for the manor demo.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/manor/internal/assets"
	"github.com/Faultbox/manor/internal/config"
	"github.com/Faultbox/manor/internal/engine/input"
	"github.com/Faultbox/manor/internal/engine/renderer"
	"github.com/Faultbox/manor/internal/engine/window"
	"github.com/Faultbox/manor/internal/game"
	"github.com/Faultbox/manor/internal/level"
	"github.com/Faultbox/manor/internal/logger"
	"github.com/Faultbox/manor/pkg/math"
)

const windowTitle = "Manor"

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Manor ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if config.SaveRequested() {
		path, err := cfg.Save()
		if err != nil {
			logger.Fatal("failed to write config", zap.Error(err))
		}
		logger.Info("config written", zap.String("path", path))
		return
	}

	if err := run(cfg); err != nil {
		logger.Sync()
		logger.Fatal("game error", zap.Error(err))
	}

	logger.Info("game closed normally")
}

func run(cfg *config.Config) (err error) {
	win, err := window.New(window.Config{
		Title:      windowTitle,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer win.Close()

	width, height := win.Size()
	rend, err := renderer.New(renderer.Config{
		Width:      width,
		Height:     height,
		ShowBounds: cfg.Dev.ShowBounds,
	})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	defer rend.Close()

	res := assets.NewManager(assetsConfig(cfg), logger.Named("assets"))
	defer res.Close()

	plat := &platform{Window: win, Input: input.New(), renderer: rend}
	g, err := game.New(gameConfig(cfg), plat, rend, res, logger.Named("game"))
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}
	if cfg.Graphics.Fullscreen {
		g.Fullscreen = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Dev.WatchLevel {
		w, werr := level.NewWatcher(res.LevelPath(), cfg.Dev.WatchDebounce, logger.Named("watch"))
		if werr != nil {
			return fmt.Errorf("watching level: %w", werr)
		}
		defer func() { err = multierr.Append(err, w.Close()) }()

		done := make(chan error, 1)
		go func() { done <- w.Run(ctx, g.RequestReload) }()
		defer func() {
			cancel()
			err = multierr.Append(err, <-done)
		}()
		logger.Info("watching level", zap.String("path", w.Path()))
	}

	return g.Run()
}

func assetsConfig(cfg *config.Config) assets.Config {
	heroes := make([]assets.Hero, len(cfg.Game.Heroes))
	for i, h := range cfg.Game.Heroes {
		heroes[i] = assets.Hero{Name: h.Name, Frames: h.Frames}
	}
	return assets.Config{
		DataDir: cfg.Game.DataDir,
		Level:   cfg.Game.Level,
		Heroes:  heroes,
	}
}

func gameConfig(cfg *config.Config) game.Config {
	s := cfg.Game.Spawn
	return game.Config{
		StartHero:      cfg.Game.StartHero,
		Spawn:          math.Vec3{X: s[0], Y: s[1], Z: s[2]},
		PhysicsTick:    cfg.Physics.PhysicsTick,
		EngineTick:     cfg.Physics.EngineTick,
		BenchmarkEvery: cfg.Physics.BenchmarkEvery,
	}
}
