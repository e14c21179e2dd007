package entity

import (
	"fmt"

	"github.com/milk9111/dashmotor/ecs"
	"github.com/milk9111/dashmotor/ecs/component"
	"github.com/milk9111/dashmotor/prefabs"
)

const platformFriction = 0.8

// LoadLevelToWorld creates the bounds entity and one static solid per
// platform. Platform coordinates in the spec are top-left corners.
func LoadLevelToWorld(w *ecs.World, lvl *prefabs.LevelSpec) error {
	if w == nil || lvl == nil {
		return fmt.Errorf("level: world and spec are required")
	}

	tint, err := prefabs.ParseHexColor(lvl.Color)
	if err != nil {
		return fmt.Errorf("level: %w", err)
	}

	boundsEntity := ecs.CreateEntity(w)
	if err := ecs.Add(w, boundsEntity, component.LevelBoundsComponent.Kind(), &component.LevelBounds{
		Width:  lvl.Width,
		Height: lvl.Height,
	}); err != nil {
		return err
	}

	for i, p := range lvl.Platforms {
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("level: platform %d has non-positive size", i)
		}
		e := ecs.CreateEntity(w)
		if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
			X: p.X + p.Width/2,
			Y: p.Y + p.Height/2,
		}); err != nil {
			return err
		}
		if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{
			Width:    p.Width,
			Height:   p.Height,
			Friction: platformFriction,
			Static:   true,
		}); err != nil {
			return err
		}
		if err := ecs.Add(w, e, component.SolidTagComponent.Kind(), &component.SolidTag{}); err != nil {
			return err
		}
		if err := ecs.Add(w, e, component.SpriteComponent.Kind(), &component.Sprite{
			Width:  p.Width,
			Height: p.Height,
			Color:  tint,
		}); err != nil {
			return err
		}
	}

	return nil
}
