package system

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/dashmotor/ecs"
	"github.com/milk9111/dashmotor/ecs/component"
)

const markerWidth = 4

type RenderSystem struct {
	entities []ecs.Entity
}

func NewRenderSystem() *RenderSystem {
	return &RenderSystem{}
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}

	r.entities = r.entities[:0]
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.SpriteComponent.Kind(), func(e ecs.Entity, _ *component.Transform, _ *component.Sprite) {
		r.entities = append(r.entities, e)
	})
	// Players draw over the level.
	sort.SliceStable(r.entities, func(i, j int) bool {
		pi := ecs.Has(w, r.entities[i], component.PlayerTagComponent.Kind())
		pj := ecs.Has(w, r.entities[j], component.PlayerTagComponent.Kind())
		if pi != pj {
			return !pi
		}
		return uint64(r.entities[i]) < uint64(r.entities[j])
	})

	for _, e := range r.entities {
		t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		s, _ := ecs.Get(w, e, component.SpriteComponent.Kind())
		img := spriteImage(s)
		if img == nil {
			continue
		}

		op := &ebiten.DrawImageOptions{}
		bounds := img.Bounds()
		// Center on the transform.
		op.GeoM.Translate(-float64(bounds.Dx())/2, -float64(bounds.Dy())/2)
		if s.FacingLeft {
			op.GeoM.Scale(-1, 1)
		}
		op.GeoM.Rotate(t.Rotation)
		op.GeoM.Translate(t.X, t.Y)

		screen.DrawImage(img, op)
	}
}

// spriteImage builds the sprite's image on first use.
func spriteImage(s *component.Sprite) *ebiten.Image {
	if s.Image != nil {
		return s.Image
	}
	w := int(math.Round(s.Width))
	h := int(math.Round(s.Height))
	if w <= 0 || h <= 0 {
		return nil
	}

	img := ebiten.NewImage(w, h)
	img.Fill(s.Color)
	if s.Marker && w > markerWidth {
		marker := img.SubImage(image.Rect(w-markerWidth, 0, w, h)).(*ebiten.Image)
		marker.Fill(darken(s.Color))
	}
	s.Image = img
	return img
}

func darken(c color.RGBA) color.RGBA {
	return color.RGBA{R: c.R / 2, G: c.G / 2, B: c.B / 2, A: c.A}
}
