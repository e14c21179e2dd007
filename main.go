package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/milk9111/dashmotor/config"
	"github.com/milk9111/dashmotor/input"
)

func main() {
	configPath := flag.String("config", "config/game.toml", "path to the TOML settings file")
	debug := flag.Bool("debug", false, "enable debug overlay and debug logging")
	scriptName := flag.String("script", "", "tengo input script in prefabs/scripts (name, .tengo optional)")
	headless := flag.Int("headless", 0, "run this many frames without a window and exit")
	frameHz := flag.Int("frame-hz", 60, "simulated frame rate for -headless")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Defaults(), nil
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *debug {
		cfg.Debug.Enabled = true
		cfg.Logging.Level = "debug"
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, *scriptName, *headless, *frameHz, log); err != nil {
		log.Error("exit", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, scriptName string, headless, frameHz int, log *zap.Logger) error {
	var source input.Source = input.NewDevice()
	if scriptName != "" {
		script, err := input.NewScript(scriptName, log.Named("script"))
		if err != nil {
			return err
		}
		log.Info("scripted input", zap.String("script", script.Name()), zap.String("title", script.Title()))
		source = script
	} else if headless > 0 {
		source = input.SourceFunc(func() input.Frame { return input.Frame{} })
	}

	game, err := NewGame(cfg, gameOptions{
		Debug:      cfg.Debug.Enabled,
		ScriptName: scriptName,
		Watch:      headless == 0,
	}, source, log)
	if err != nil {
		return err
	}
	defer func() { _ = game.Close() }()

	if headless > 0 {
		runHeadless(game, headless, frameHz, log)
		return nil
	}

	ebiten.SetTPS(ebiten.SyncWithFPS)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	return ebiten.RunGame(game)
}

func runHeadless(game *Game, frames, frameHz int, log *zap.Logger) {
	if frameHz <= 0 {
		frameHz = 60
	}
	delta := time.Second / time.Duration(frameHz)
	for i := 0; i < frames; i++ {
		game.step(delta)
	}

	state, _ := game.PlayerState()
	x, y := game.playerPosition()
	log.Info("headless run finished",
		zap.Int("frames", frames),
		zap.Uint64("ticks", game.clock.Ticks()),
		zap.Float64("x", x),
		zap.Float64("y", y),
		zap.Bool("grounded", state.Grounded),
		zap.Stringer("facing", state.Facing),
		zap.Stringer("dash", state.DashPhase),
	)
}
