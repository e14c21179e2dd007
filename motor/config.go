package motor

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig      = errors.New("motor: invalid config")
	ErrMissingBody        = errors.New("motor: physics body is nil")
	ErrMissingGroundProbe = errors.New("motor: ground probe is nil")
	ErrMissingInput       = errors.New("motor: input source is nil")
)

// Config holds the tuning values for one character. Distances are in world
// units and durations in seconds.
type Config struct {
	WalkSpeed    float64
	JumpImpulse  float64
	DashDistance float64
	DashDuration float64
	DashCooldown float64

	GroundCheckRadius  float64
	GroundCheckOffsetX float64
	GroundCheckOffsetY float64

	// GroundGraceTicks keeps Grounded true for this many ticks after the
	// probe loses contact. Zero disables it.
	GroundGraceTicks int
}

// DefaultConfig mirrors the stock tuning of the character.
func DefaultConfig() Config {
	return Config{
		WalkSpeed:         5,
		JumpImpulse:       10,
		DashDistance:      5,
		DashDuration:      0.2,
		DashCooldown:      1,
		GroundCheckRadius: 0.1,
	}
}

// Validate reports the first invariant the config violates.
func (c Config) Validate() error {
	switch {
	case c.DashDuration <= 0:
		return fmt.Errorf("%w: dash duration must be > 0, got %v", ErrInvalidConfig, c.DashDuration)
	case c.DashCooldown < 0:
		return fmt.Errorf("%w: dash cooldown must be >= 0, got %v", ErrInvalidConfig, c.DashCooldown)
	case c.DashDistance < 0:
		return fmt.Errorf("%w: dash distance must be >= 0, got %v", ErrInvalidConfig, c.DashDistance)
	case c.WalkSpeed < 0:
		return fmt.Errorf("%w: walk speed must be >= 0, got %v", ErrInvalidConfig, c.WalkSpeed)
	case c.JumpImpulse < 0:
		return fmt.Errorf("%w: jump impulse must be >= 0, got %v", ErrInvalidConfig, c.JumpImpulse)
	case c.GroundCheckRadius <= 0:
		return fmt.Errorf("%w: ground check radius must be > 0, got %v", ErrInvalidConfig, c.GroundCheckRadius)
	case c.GroundGraceTicks < 0:
		return fmt.Errorf("%w: ground grace ticks must be >= 0, got %d", ErrInvalidConfig, c.GroundGraceTicks)
	}
	return nil
}

// DashSpeed is the constant speed of a dash.
func (c Config) DashSpeed() float64 {
	return c.DashDistance / c.DashDuration
}
