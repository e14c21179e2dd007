package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds game-wide settings. Character tuning lives in the prefabs.
type Config struct {
	Window  WindowConfig  `toml:"window"`
	Physics PhysicsConfig `toml:"physics"`
	Logging LoggingConfig `toml:"logging"`
	Debug   DebugConfig   `toml:"debug"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type PhysicsConfig struct {
	TickRate         int     `toml:"tick_rate"` // fixed ticks per second
	MaxTicksPerFrame int     `toml:"max_ticks_per_frame"`
	Gravity          float64 `toml:"gravity"` // px/s², positive is down
	Iterations       int     `toml:"iterations"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type DebugConfig struct {
	Enabled          bool `toml:"enabled"`
	HotReload        bool `toml:"hot_reload"`
	ReloadDebounceMS int  `toml:"reload_debounce_ms"` // quiet time before a changed file reloads
	DrawPhysics      bool `toml:"draw_physics"`
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Physics.TickRate <= 0 {
		return fmt.Errorf("physics.tick_rate must be > 0, got %d", c.Physics.TickRate)
	}
	if c.Physics.MaxTicksPerFrame <= 0 {
		return fmt.Errorf("physics.max_ticks_per_frame must be > 0, got %d", c.Physics.MaxTicksPerFrame)
	}
	if c.Debug.ReloadDebounceMS < 0 {
		return fmt.Errorf("debug.reload_debounce_ms must be >= 0, got %d", c.Debug.ReloadDebounceMS)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	return nil
}

func Defaults() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "dashmotor",
		},
		Physics: PhysicsConfig{
			TickRate:         60,
			MaxTicksPerFrame: 8,
			Gravity:          1800,
			Iterations:       20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Debug: DebugConfig{
			HotReload:        true,
			ReloadDebounceMS: 100,
		},
	}
}
