package input

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const stickDeadzone = 0.2

// Device reads the keyboard and the first standard gamepad.
//
// Keyboard: A/D or arrows move, Space jumps, Q or Left Shift dashes.
// Gamepad: left stick moves, bottom face button jumps, left face button
// dashes.
type Device struct{}

func NewDevice() *Device {
	return &Device{}
}

func (d *Device) Poll() Frame {
	left := ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft)
	right := ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight)
	jump := inpututil.IsKeyJustPressed(ebiten.KeySpace)
	dash := inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyShiftLeft)

	moveX := 0.0
	if left {
		moveX -= 1
	}
	if right {
		moveX += 1
	}

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		if ebiten.IsStandardGamepadLayoutAvailable(id) {
			leftX := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
			if math.Abs(leftX) > stickDeadzone {
				moveX = leftX
			}
			jump = jump || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightBottom)
			dash = dash || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightLeft)
		}
	}

	return Frame{MoveX: moveX, Jump: jump, Dash: dash}
}
