package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Sim       SimConfig       `toml:"sim"`
	Physics   PhysicsConfig   `toml:"physics"`
	Doors     DoorsConfig     `toml:"doors"`
	Platforms PlatformsConfig `toml:"platforms"`
	Scripting ScriptingConfig `toml:"scripting"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Logging   LoggingConfig   `toml:"logging"`
}

type SimConfig struct {
	TickRate         int           `toml:"tick_rate"`           // logical ticks per second
	MaxTicksPerFrame int           `toml:"max_ticks_per_frame"` // catch-up cap per host frame
	FrameInterval    time.Duration `toml:"frame_interval"`      // host repaint period
	Level            string        `toml:"level"`               // YAML level path
	Specials         string        `toml:"specials"`            // optional line-special table override
	Input            string        `toml:"input"`               // optional recorded input; idle when empty
	MaxTicks         uint64        `toml:"max_ticks"`           // stop after this many ticks, 0 = run until signalled
}

// PhysicsConfig sizes are whole map units; *_raw values are 16.16 fixed.
type PhysicsConfig struct {
	MaxStepHeight int   `toml:"max_step_height"`
	MaxMove       int   `toml:"max_move"`
	PlayerRadius  int   `toml:"player_radius"`
	PlayerHeight  int   `toml:"player_height"`
	MonsterRadius int   `toml:"monster_radius"`
	GravityRaw    int32 `toml:"gravity_raw"`
	FrictionRaw   int32 `toml:"friction_raw"`
	StopSpeedRaw  int32 `toml:"stop_speed_raw"`
	UseRange      int   `toml:"use_range"`
	ForwardMove   int32 `toml:"forward_move_raw"` // thrust per unit of Command.Forward
	SideMove      int32 `toml:"side_move_raw"`    // thrust per unit of Command.Strafe
}

// DoorsConfig speeds are map units per tick, waits are ticks.
type DoorsConfig struct {
	Speed              int `toml:"speed"`
	FastSpeed          int `toml:"fast_speed"`
	VeryFastSpeed      int `toml:"very_fast_speed"`
	WaitTicks          int `toml:"wait_ticks"`
	CloseWaitOpenTicks int `toml:"close_wait_open_ticks"`
}

type PlatformsConfig struct {
	Speed     int `toml:"speed"`      // perpetual platforms
	LiftSpeed int `toml:"lift_speed"` // lifts
	FastSpeed int `toml:"fast_speed"`
	WaitTicks int `toml:"wait_ticks"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	BindAddress string `toml:"bind_address"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default is the configuration used when no file overrides anything.
func Default() *Config { return defaults() }

func (c *Config) validate() error {
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("sim.tick_rate must be positive, got %d", c.Sim.TickRate)
	}
	if c.Sim.MaxTicksPerFrame <= 0 {
		return fmt.Errorf("sim.max_ticks_per_frame must be positive, got %d", c.Sim.MaxTicksPerFrame)
	}
	if c.Sim.FrameInterval <= 0 {
		return fmt.Errorf("sim.frame_interval must be positive")
	}
	if c.Physics.MaxMove <= 0 {
		return fmt.Errorf("physics.max_move must be positive, got %d", c.Physics.MaxMove)
	}
	if c.Sim.Level == "" {
		return fmt.Errorf("sim.level is required")
	}
	return nil
}

// TickDuration is the real time covered by one logical tick.
func (c *Config) TickDuration() time.Duration {
	return time.Second / time.Duration(c.Sim.TickRate)
}

func defaults() *Config {
	return &Config{
		Sim: SimConfig{
			TickRate:         35,
			MaxTicksPerFrame: 4,
			FrameInterval:    time.Second / 60,
			Level:            "data/levels/demo.yaml",
		},
		Physics: PhysicsConfig{
			MaxStepHeight: 24,
			MaxMove:       30,
			PlayerRadius:  16,
			PlayerHeight:  56,
			MonsterRadius: 20,
			GravityRaw:    0x10000,
			FrictionRaw:   0xE800,
			StopSpeedRaw:  0x1000,
			UseRange:      64,
			ForwardMove:   0x800,
			SideMove:      0x600,
		},
		Doors: DoorsConfig{
			Speed:              2,
			FastSpeed:          8,
			VeryFastSpeed:      16,
			WaitTicks:          150,
			CloseWaitOpenTicks: 1050,
		},
		Platforms: PlatformsConfig{
			Speed:     1,
			LiftSpeed: 4,
			FastSpeed: 8,
			WaitTicks: 105,
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Metrics: MetricsConfig{
			Enabled:     false,
			BindAddress: "127.0.0.1:9135",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
