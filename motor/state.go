package motor

// Facing is the horizontal direction the sprite looks toward.
type Facing int

const (
	FacingRight Facing = iota
	FacingLeft
)

func (f Facing) String() string {
	if f == FacingLeft {
		return "left"
	}
	return "right"
}

// Sign returns -1 for left and +1 for right.
func (f Facing) Sign() float64 {
	if f == FacingLeft {
		return -1
	}
	return 1
}

// DashPhase is the state of the dash machine.
type DashPhase int

const (
	DashIdle DashPhase = iota
	DashDashing
	DashCoolingDown
)

func (p DashPhase) String() string {
	switch p {
	case DashIdle:
		return "idle"
	case DashDashing:
		return "dashing"
	case DashCoolingDown:
		return "cooling_down"
	default:
		return "unknown"
	}
}

// State is the mutable part of a motor. Only Sample and Step write it.
type State struct {
	Grounded    bool
	Facing      Facing
	DashPhase   DashPhase
	PendingJump bool
	MoveX       float64

	DashDirection     float64
	DashCovered       float64
	CooldownElapsed   float64
	SavedGravityScale float64

	// dashEntered is false between the sample that starts a dash and the
	// first tick that applies its entry actions.
	dashEntered bool
	graceLeft   int
}

// Observer receives dash phase transitions. Implementations must not call
// back into the motor.
type Observer interface {
	DashPhaseChanged(from, to DashPhase, s State)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(from, to DashPhase, s State)

func (f ObserverFunc) DashPhaseChanged(from, to DashPhase, s State) {
	f(from, to, s)
}
