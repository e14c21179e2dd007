package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/dashmotor/motor"
)

const (
	PlayerPrefab = "player.yaml"
	LevelPrefab  = "level.yaml"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type TransformSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type ColliderSpec struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Mass       float64 `yaml:"mass"`
	Friction   float64 `yaml:"friction"`
	Elasticity float64 `yaml:"elasticity"`
}

type SpriteSpec struct {
	Color string `yaml:"color"`
}

// MotorSpec is the YAML form of motor.Config.
type MotorSpec struct {
	WalkSpeed          float64 `yaml:"walk_speed"`
	JumpImpulse        float64 `yaml:"jump_impulse"`
	DashDistance       float64 `yaml:"dash_distance"`
	DashDuration       float64 `yaml:"dash_duration"`
	DashCooldown       float64 `yaml:"dash_cooldown"`
	GroundCheckRadius  float64 `yaml:"ground_check_radius"`
	GroundCheckOffsetX float64 `yaml:"ground_check_offset_x"`
	GroundCheckOffsetY float64 `yaml:"ground_check_offset_y"`
	GroundGraceTicks   int     `yaml:"ground_grace_ticks"`
}

// Config converts the spec and validates it.
func (s MotorSpec) Config() (motor.Config, error) {
	cfg := motor.Config{
		WalkSpeed:          s.WalkSpeed,
		JumpImpulse:        s.JumpImpulse,
		DashDistance:       s.DashDistance,
		DashDuration:       s.DashDuration,
		DashCooldown:       s.DashCooldown,
		GroundCheckRadius:  s.GroundCheckRadius,
		GroundCheckOffsetX: s.GroundCheckOffsetX,
		GroundCheckOffsetY: s.GroundCheckOffsetY,
		GroundGraceTicks:   s.GroundGraceTicks,
	}
	if err := cfg.Validate(); err != nil {
		return motor.Config{}, err
	}
	return cfg, nil
}

type PlayerSpec struct {
	Name      string        `yaml:"name"`
	Transform TransformSpec `yaml:"transform"`
	Collider  ColliderSpec  `yaml:"collider"`
	Sprite    SpriteSpec    `yaml:"sprite"`
	Motor     MotorSpec     `yaml:"motor"`
}

func LoadPlayerSpec() (*PlayerSpec, error) {
	spec, err := LoadSpec[PlayerSpec](PlayerPrefab)
	if err != nil {
		return nil, err
	}
	if _, err := spec.Motor.Config(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", PlayerPrefab, err)
	}
	return &spec, nil
}

type PlatformSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type LevelSpec struct {
	Name      string         `yaml:"name"`
	Width     float64        `yaml:"width"`
	Height    float64        `yaml:"height"`
	Spawn     TransformSpec  `yaml:"spawn"`
	Color     string         `yaml:"color"`
	Platforms []PlatformSpec `yaml:"platforms"`
}

func LoadLevelSpec() (*LevelSpec, error) {
	spec, err := LoadSpec[LevelSpec](LevelPrefab)
	if err != nil {
		return nil, err
	}
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("prefabs: %s: level size must be positive", LevelPrefab)
	}
	return &spec, nil
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa".
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("prefabs: invalid color %q", s)
	}
	if len(s) == 6 {
		s += "ff"
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("prefabs: invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
