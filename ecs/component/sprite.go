package component

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Sprite is a solid box drawn centered on the entity transform. Image is
// built by the render system on first draw. FacingLeft mirrors it.
type Sprite struct {
	Width      float64
	Height     float64
	Color      color.RGBA
	Marker     bool // draw a facing marker on the leading edge
	FacingLeft bool
	Image      *ebiten.Image
}

var SpriteComponent = NewComponent[Sprite]()
