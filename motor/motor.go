// Package motor drives a single platformer character: walking, jumping,
// ground detection, facing and a timed dash with cooldown.
//
// A Motor has two entry points. Sample runs once per rendered frame and only
// latches input into the motor state. Step runs once per fixed physics tick
// and is the only place the physics body is written. The dash is an explicit
// phase machine (Idle -> Dashing -> CoolingDown -> Idle) advanced by exactly
// one Step per tick.
package motor

import "math"

// Input names polled from an InputSource.
const (
	AxisHorizontal = "Horizontal"
	ButtonJump     = "Jump"
	ButtonDash     = "Dash"
)

const progressEpsilon = 1e-9

// Vec is a 2D vector in physics space. Y grows downward.
type Vec struct {
	X, Y float64
}

// Body is the physics body the motor drives.
type Body interface {
	Position() Vec
	Velocity() Vec
	SetVelocity(v Vec)
	GravityScale() float64
	SetGravityScale(scale float64)
	// ApplyImpulse changes velocity instantly by impulse/mass.
	ApplyImpulse(impulse Vec)
	// MoveTo places the body at p, stopping short of solid geometry.
	MoveTo(p Vec)
}

// GroundProbe answers whether a circle at point overlaps ground.
type GroundProbe interface {
	Grounded(point Vec, radius float64) bool
}

// InputSource is polled once per frame. ButtonDown is true only on the
// frame the button goes from released to pressed.
type InputSource interface {
	Axis(name string) float64
	ButtonDown(name string) bool
}

// Motor owns one character's locomotion state.
type Motor struct {
	cfg      Config
	body     Body
	probe    GroundProbe
	input    InputSource
	observer Observer

	state State
}

// New validates cfg and binds the collaborators. Any error is a fatal setup
// problem; the per-frame and per-tick paths never fail.
func New(cfg Config, body Body, probe GroundProbe, input InputSource) (*Motor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if body == nil {
		return nil, ErrMissingBody
	}
	if probe == nil {
		return nil, ErrMissingGroundProbe
	}
	if input == nil {
		return nil, ErrMissingInput
	}
	return &Motor{
		cfg:   cfg,
		body:  body,
		probe: probe,
		input: input,
		state: State{Facing: FacingRight, DashPhase: DashIdle},
	}, nil
}

// SetObserver installs a transition hook. nil removes it.
func (m *Motor) SetObserver(o Observer) {
	if m == nil {
		return
	}
	m.observer = o
}

// Config returns the motor's tuning.
func (m *Motor) Config() Config {
	return m.cfg
}

// State returns a copy of the current state.
func (m *Motor) State() State {
	return m.state
}

// Sample latches this frame's input. It never touches the body.
//
// Facing follows the horizontal axis except while a dash is in flight, so a
// dash keeps the direction it started with. Facing is updated before the dash
// edge is read, so a dash started with the stick held faces the stick.
func (m *Motor) Sample() {
	if m == nil {
		return
	}

	axis := clampAxis(m.input.Axis(AxisHorizontal))
	jump := m.input.ButtonDown(ButtonJump)
	dash := m.input.ButtonDown(ButtonDash)

	m.state.MoveX = axis

	// Grounded is the value from the last tick; a character that leaves the
	// ground before the next tick still gets this jump.
	if jump && m.state.Grounded {
		m.state.PendingJump = true
	}

	if axis != 0 && m.state.DashPhase != DashDashing {
		if axis > 0 {
			m.state.Facing = FacingRight
		} else {
			m.state.Facing = FacingLeft
		}
	}

	if dash && m.state.DashPhase == DashIdle {
		dir := m.state.Facing.Sign()
		if axis > 0 {
			dir = 1
		} else if axis < 0 {
			dir = -1
		}
		m.startDash(dir)
	}
}

// Step advances the motor by one fixed tick of dt seconds.
func (m *Motor) Step(dt float64) {
	if m == nil || dt <= 0 {
		return
	}

	m.refreshGround()

	if m.state.DashPhase == DashDashing {
		m.stepDash(dt)
	} else {
		if m.state.DashPhase == DashCoolingDown {
			m.stepCooldown(dt)
		}
		m.move()
		m.jump()
	}

	// A jump request never outlives the tick after it was sampled.
	m.state.PendingJump = false
}

func (m *Motor) refreshGround() {
	pos := m.body.Position()
	point := Vec{X: pos.X + m.cfg.GroundCheckOffsetX, Y: pos.Y + m.cfg.GroundCheckOffsetY}
	if m.probe.Grounded(point, m.cfg.GroundCheckRadius) {
		m.state.Grounded = true
		m.state.graceLeft = m.cfg.GroundGraceTicks
		return
	}
	if m.state.graceLeft > 0 {
		m.state.graceLeft--
		m.state.Grounded = true
		return
	}
	m.state.Grounded = false
}

func (m *Motor) move() {
	v := m.body.Velocity()
	v.X = m.state.MoveX * m.cfg.WalkSpeed
	m.body.SetVelocity(v)
}

func (m *Motor) jump() {
	if !m.state.PendingJump {
		return
	}
	m.body.ApplyImpulse(Vec{Y: -m.cfg.JumpImpulse})
}

func (m *Motor) setPhase(to DashPhase) {
	from := m.state.DashPhase
	m.state.DashPhase = to
	if m.observer != nil && from != to {
		m.observer.DashPhaseChanged(from, to, m.state)
	}
}

func clampAxis(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}
