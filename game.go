package main

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"

	"github.com/milk9111/dashmotor/config"
	"github.com/milk9111/dashmotor/ecs"
	"github.com/milk9111/dashmotor/ecs/component"
	"github.com/milk9111/dashmotor/ecs/entity"
	"github.com/milk9111/dashmotor/ecs/system"
	"github.com/milk9111/dashmotor/input"
	"github.com/milk9111/dashmotor/motor"
	"github.com/milk9111/dashmotor/prefabs"
)

var prefabDirs = []string{"prefabs", filepath.Join("prefabs", "scripts")}

type gameOptions struct {
	Debug      bool
	ScriptName string
	Watch      bool
}

// Game runs input and rendering once per frame and the motor and physics at
// a fixed tick rate.
type Game struct {
	cfg  *config.Config
	opts gameOptions
	log  *zap.Logger

	world  *ecs.World
	frame  *ecs.Scheduler
	fixed  *ecs.Scheduler
	clock  *ecs.FixedClock
	phys   *system.PhysicsSystem
	input  *system.InputSystem
	render *system.RenderSystem

	watcher    *prefabs.Watcher
	level      *prefabs.LevelSpec
	background color.RGBA

	frames int
	last   time.Time
}

func NewGame(cfg *config.Config, opts gameOptions, source input.Source, log *zap.Logger) (*Game, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if log == nil {
		log = zap.NewNop()
	}

	clock := ecs.NewFixedClock(cfg.Physics.TickRate, cfg.Physics.MaxTicksPerFrame)
	dt := clock.StepSeconds()

	g := &Game{
		cfg:    cfg,
		opts:   opts,
		log:    log,
		world:  ecs.NewWorld(),
		clock:  clock,
		phys:   system.NewPhysicsSystem(cfg.Physics.Gravity, cfg.Physics.Iterations, dt, log.Named("physics")),
		input:  system.NewInputSystem(source),
		render: system.NewRenderSystem(),
	}

	if err := g.loadLevel(); err != nil {
		return nil, err
	}
	spec, err := prefabs.LoadPlayerSpec()
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	if _, err := entity.NewPlayerAt(g.world, g.phys, spec, g.level.Spawn.X, g.level.Spawn.Y, log.Named("motor")); err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	if opts.Watch && cfg.Debug.HotReload {
		watcher, err := prefabs.NewWatcher(time.Duration(cfg.Debug.ReloadDebounceMS)*time.Millisecond, prefabDirs...)
		if err != nil {
			log.Warn("hot reload disabled", zap.Error(err))
		} else {
			g.watcher = watcher
		}
	}

	// Motor before physics: the motor's velocity and position commands are
	// integrated by the physics step of the same tick.
	g.frame = ecs.NewScheduler(system.NewReloadSystem(g.watcher, log.Named("reload")), g.input)
	g.fixed = ecs.NewScheduler(system.NewMotorSystem(dt), g.phys)

	log.Info("game ready",
		zap.String("level", g.level.Name),
		zap.String("player", spec.Name),
		zap.Int("tick_rate", cfg.Physics.TickRate),
		zap.Bool("hot_reload", g.watcher != nil),
	)
	return g, nil
}

func (g *Game) Close() error {
	if g.watcher == nil {
		return nil
	}
	return g.watcher.Close()
}

func (g *Game) Update() error {
	now := time.Now()
	delta := g.clock.Step()
	if !g.last.IsZero() {
		delta = now.Sub(g.last)
	}
	g.last = now

	g.step(delta)
	return nil
}

// step runs one rendered frame that lasted delta.
func (g *Game) step(delta time.Duration) int {
	g.frames++
	g.frame.Update(g.world)
	g.handleReloads()

	return g.clock.Run(delta, func(float64) {
		g.fixed.Update(g.world)
	})
}

func (g *Game) handleReloads() {
	for _, name := range system.DrainReloads(g.world) {
		var err error
		switch {
		case name == prefabs.PlayerPrefab:
			err = g.reloadPlayer()
		case name == prefabs.LevelPrefab:
			err = g.reloadLevel()
		case g.isActiveScript(name):
			err = g.reloadScript()
		default:
			continue
		}
		if err != nil {
			g.log.Warn("reload failed", zap.String("file", name), zap.Error(err))
			continue
		}
		g.log.Info("reloaded", zap.String("file", name))
	}
}

func (g *Game) reloadPlayer() error {
	spec, err := prefabs.LoadPlayerSpec()
	if err != nil {
		return err
	}
	_, err = entity.RespawnPlayer(g.world, g.phys, spec, g.log.Named("motor"))
	return err
}

func (g *Game) reloadLevel() error {
	if _, err := prefabs.LoadLevelSpec(); err != nil {
		return err
	}

	var stale []ecs.Entity
	ecs.ForEach(g.world, component.SolidTagComponent.Kind(), func(e ecs.Entity, _ *component.SolidTag) {
		stale = append(stale, e)
	})
	ecs.ForEach(g.world, component.LevelBoundsComponent.Kind(), func(e ecs.Entity, _ *component.LevelBounds) {
		stale = append(stale, e)
	})
	for _, e := range stale {
		g.phys.Remove(e)
		ecs.DestroyEntity(g.world, e)
	}
	return g.loadLevel()
}

func (g *Game) isActiveScript(name string) bool {
	if g.opts.ScriptName == "" || !strings.HasSuffix(name, ".tengo") {
		return false
	}
	return strings.TrimSuffix(name, ".tengo") == strings.TrimSuffix(filepath.Base(g.opts.ScriptName), ".tengo")
}

// reloadScript restarts the input script from its first frame.
func (g *Game) reloadScript() error {
	script, err := input.NewScript(g.opts.ScriptName, g.log.Named("script"))
	if err != nil {
		return err
	}
	g.input.SetSource(script)
	return nil
}

func (g *Game) loadLevel() error {
	lvl, err := prefabs.LoadLevelSpec()
	if err != nil {
		return fmt.Errorf("game: %w", err)
	}
	background, err := prefabs.ParseHexColor(lvl.Color)
	if err != nil {
		return fmt.Errorf("game: level color: %w", err)
	}
	if err := entity.LoadLevelToWorld(g.world, lvl); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	g.level = lvl
	g.background = background
	return nil
}

// PlayerState returns the player's motor state.
func (g *Game) PlayerState() (motor.State, bool) {
	player, ok := ecs.First(g.world, component.PlayerTagComponent.Kind())
	if !ok {
		return motor.State{}, false
	}
	m, ok := ecs.Get(g.world, player, component.CharacterMotorComponent.Kind())
	if !ok || m.Motor == nil {
		return motor.State{}, false
	}
	return m.Motor.State(), true
}

func (g *Game) playerPosition() (float64, float64) {
	player, ok := ecs.First(g.world, component.PlayerTagComponent.Kind())
	if !ok {
		return 0, 0
	}
	t, ok := ecs.Get(g.world, player, component.TransformComponent.Kind())
	if !ok {
		return 0, 0
	}
	return t.X, t.Y
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.background)
	g.render.Draw(g.world, screen)

	if g.opts.Debug {
		if g.cfg.Debug.DrawPhysics {
			system.DrawPhysicsDebug(g.phys.Space(), screen)
		}
		system.DrawMotorDebug(g.world, screen)
	}

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Frames: %d  Ticks: %d  FPS: %.2f", g.frames, g.clock.Ticks(), ebiten.ActualFPS()), 10, int(g.level.Height)-20)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return int(g.level.Width), int(g.level.Height)
}
