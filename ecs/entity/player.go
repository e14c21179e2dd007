package entity

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/milk9111/dashmotor/ecs"
	"github.com/milk9111/dashmotor/ecs/component"
	"github.com/milk9111/dashmotor/ecs/system"
	"github.com/milk9111/dashmotor/motor"
	"github.com/milk9111/dashmotor/prefabs"
)

// NewPlayer builds the player at the position in its spec.
func NewPlayer(w *ecs.World, phys *system.PhysicsSystem, spec *prefabs.PlayerSpec, log *zap.Logger) (ecs.Entity, error) {
	if spec == nil {
		return 0, fmt.Errorf("player: spec is required")
	}
	return NewPlayerAt(w, phys, spec, spec.Transform.X, spec.Transform.Y, log)
}

// NewPlayerAt builds the player described by spec with its body centered at
// x, y.
func NewPlayerAt(w *ecs.World, phys *system.PhysicsSystem, spec *prefabs.PlayerSpec, x, y float64, log *zap.Logger) (ecs.Entity, error) {
	if w == nil || phys == nil || spec == nil {
		return 0, fmt.Errorf("player: world, physics and spec are required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	cfg, err := spec.Motor.Config()
	if err != nil {
		return 0, fmt.Errorf("player: %w", err)
	}
	tint, err := prefabs.ParseHexColor(spec.Sprite.Color)
	if err != nil {
		return 0, fmt.Errorf("player: sprite: %w", err)
	}

	e := ecs.CreateEntity(w)
	fail := func(err error) (ecs.Entity, error) {
		phys.Remove(e)
		ecs.DestroyEntity(w, e)
		return 0, err
	}

	in := &component.Input{}
	adds := []error{
		ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{}),
		ecs.Add(w, e, component.PlayerComponent.Kind(), &component.Player{Prefab: prefabs.PlayerPrefab, SpawnX: x, SpawnY: y}),
		ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: y}),
		ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
			Width:      spec.Collider.Width,
			Height:     spec.Collider.Height,
			Mass:       spec.Collider.Mass,
			Friction:   spec.Collider.Friction,
			Elasticity: spec.Collider.Elasticity,
		}),
		ecs.Add(w, e, component.GravityScaleComponent.Kind(), &component.GravityScale{Scale: 1}),
		ecs.Add(w, e, component.InputComponent.Kind(), in),
		ecs.Add(w, e, component.SpriteComponent.Kind(), &component.Sprite{
			Width:  spec.Collider.Width,
			Height: spec.Collider.Height,
			Color:  tint,
			Marker: true,
		}),
	}
	for _, err := range adds {
		if err != nil {
			return fail(fmt.Errorf("player: add component: %w", err))
		}
	}

	body, err := phys.EnsureBody(w, e)
	if err != nil {
		return fail(fmt.Errorf("player: %w", err))
	}
	m, err := motor.New(cfg, body, body, in)
	if err != nil {
		return fail(fmt.Errorf("player: %w", err))
	}
	m.SetObserver(system.LogDashTransitions(log, e))

	if err := ecs.Add(w, e, component.CharacterMotorComponent.Kind(), &component.CharacterMotor{Motor: m}); err != nil {
		return fail(fmt.Errorf("player: add motor: %w", err))
	}

	log.Debug("player spawned",
		zap.Stringer("entity", e),
		zap.String("name", spec.Name),
		zap.Float64("x", x),
		zap.Float64("y", y),
	)
	return e, nil
}

// RespawnPlayer replaces the current player with a fresh one built from
// spec at the old spawn point. The old player is kept if the build fails.
func RespawnPlayer(w *ecs.World, phys *system.PhysicsSystem, spec *prefabs.PlayerSpec, log *zap.Logger) (ecs.Entity, error) {
	old, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return 0, fmt.Errorf("player: no player to respawn")
	}
	p, ok := ecs.Get(w, old, component.PlayerComponent.Kind())
	if !ok {
		return 0, fmt.Errorf("player: entity %s has no spawn point", old)
	}
	x, y := p.SpawnX, p.SpawnY

	if spec == nil {
		return 0, fmt.Errorf("player: spec is required")
	}
	if _, err := spec.Motor.Config(); err != nil {
		return 0, fmt.Errorf("player: %w", err)
	}
	if _, err := prefabs.ParseHexColor(spec.Sprite.Color); err != nil {
		return 0, fmt.Errorf("player: sprite: %w", err)
	}

	// Pull the old body out first so the new one does not spawn inside it.
	phys.Remove(old)
	ecs.DestroyEntity(w, old)

	e, err := NewPlayerAt(w, phys, spec, x, y, log)
	if err != nil {
		return 0, err
	}
	return e, nil
}
