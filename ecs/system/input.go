package system

import (
	"github.com/milk9111/dashmotor/ecs"
	"github.com/milk9111/dashmotor/ecs/component"
	"github.com/milk9111/dashmotor/input"
	"github.com/milk9111/dashmotor/motor"
)

// InputSystem polls the input source once per rendered frame, latches the
// frame into every Input component and samples the motors.
type InputSystem struct {
	source input.Source
	last   input.Frame
}

func NewInputSystem(source input.Source) *InputSystem {
	return &InputSystem{source: source}
}

// SetSource swaps the input source, e.g. after a script reload.
func (i *InputSystem) SetSource(source input.Source) {
	i.source = source
}

// Last returns the most recently polled frame.
func (i *InputSystem) Last() input.Frame {
	return i.last
}

func (i *InputSystem) Update(w *ecs.World) {
	if i == nil || w == nil {
		return
	}

	var frame input.Frame
	if i.source != nil {
		frame = i.source.Poll()
	}
	i.last = frame

	ecs.ForEach(w, component.InputComponent.Kind(), func(e ecs.Entity, in *component.Input) {
		in.MoveX = frame.MoveX
		in.JumpPressed = frame.Jump
		in.DashPressed = frame.Dash

		m, ok := ecs.Get(w, e, component.CharacterMotorComponent.Kind())
		if !ok || m.Motor == nil {
			return
		}
		m.Motor.Sample()

		if sprite, ok := ecs.Get(w, e, component.SpriteComponent.Kind()); ok {
			sprite.FacingLeft = m.Motor.State().Facing == motor.FacingLeft
		}
	})
}
