package component

import "github.com/milk9111/dashmotor/motor"

// Input stores the input latched for an entity this frame. It is the
// motor's InputSource.
type Input struct {
	MoveX       float64
	JumpPressed bool
	DashPressed bool
}

func (i *Input) Axis(name string) float64 {
	if i == nil || name != motor.AxisHorizontal {
		return 0
	}
	return i.MoveX
}

func (i *Input) ButtonDown(name string) bool {
	if i == nil {
		return false
	}
	switch name {
	case motor.ButtonJump:
		return i.JumpPressed
	case motor.ButtonDash:
		return i.DashPressed
	}
	return false
}

var InputComponent = NewComponent[Input]()
