package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTotalTime       = 30.0
	DefaultMaxStress       = 100.0
	DefaultStartFocus      = 50.0
	DefaultStressGainIdle  = 0.15
	DefaultStressGainHit   = 15.0
	DefaultStressHealClick = 8.0
	DefaultFocusStressHeal = 0.05
	DefaultFocusGain       = 0.2
	DefaultFocusLoss       = 0.3
	DefaultBrainSpeed      = 2.5
	DefaultInitialSpeed    = 2.0
	DefaultDriftChance     = 0.05
	DefaultDriftKick       = 1.0
	DefaultFrameStep       = 0.016
	DefaultSpawnRate       = 1200 * time.Millisecond
	DefaultMaxDistractions = 15
	DefaultStickyChance    = 0.2
	DefaultComboWindow     = 1500 * time.Millisecond
	DefaultParticleCount   = 8
	DefaultParticleLife    = 500 * time.Millisecond
	DefaultGlitchAt        = 80.0
	DefaultAlarmAt         = 60.0
)

// Config holds every tunable constant of a session. Rates are applied once per
// frame, not per second.
type Config struct {
	TotalTime       float64 `yaml:"total_time"`
	MaxStress       float64 `yaml:"max_stress"`
	StartFocus      float64 `yaml:"start_focus"`
	StressGainIdle  float64 `yaml:"stress_gain_idle"`
	StressHealClick float64 `yaml:"stress_heal_click"`
	FocusStressHeal float64 `yaml:"focus_stress_heal"`
	FocusGain       float64 `yaml:"focus_gain"`
	FocusLoss       float64 `yaml:"focus_loss"`

	// StressGainHit is accepted for compatibility with existing config files
	// but no rule consumes it.
	StressGainHit float64 `yaml:"stress_gain_hit"`

	BrainSpeed   float64 `yaml:"brain_speed"`
	InitialSpeed float64 `yaml:"initial_speed"`
	DriftChance  float64 `yaml:"drift_chance"`
	DriftKick    float64 `yaml:"drift_kick"`

	// FrameStep is the nominal seconds consumed per frame. With FixedStep the
	// countdown advances by exactly this much each frame, so it drifts from
	// wall time whenever the host frame rate is not 1/FrameStep.
	FrameStep float64 `yaml:"frame_step"`
	FixedStep bool    `yaml:"fixed_step"`

	SpawnRate       time.Duration `yaml:"spawn_rate"`
	MaxDistractions int           `yaml:"max_distractions"`
	StickyChance    float64       `yaml:"sticky_chance"`
	ComboWindow     time.Duration `yaml:"combo_window"`
	ParticleCount   int           `yaml:"particle_count"`
	ParticleLife    time.Duration `yaml:"particle_life"`

	GlitchAt float64 `yaml:"glitch_at"`
	AlarmAt  float64 `yaml:"alarm_at"`

	Seed     int64          `yaml:"seed"`
	Viewport ViewportConfig `yaml:"viewport"`
}

type ViewportConfig struct {
	Width             float64 `yaml:"width"`
	Height            float64 `yaml:"height"`
	BodySize          float64 `yaml:"body_size"`
	DistractionWidth  float64 `yaml:"distraction_width"`
	DistractionHeight float64 `yaml:"distraction_height"`
}

func DefaultConfig() *Config {
	return &Config{
		TotalTime:       DefaultTotalTime,
		MaxStress:       DefaultMaxStress,
		StartFocus:      DefaultStartFocus,
		StressGainIdle:  DefaultStressGainIdle,
		StressGainHit:   DefaultStressGainHit,
		StressHealClick: DefaultStressHealClick,
		FocusStressHeal: DefaultFocusStressHeal,
		FocusGain:       DefaultFocusGain,
		FocusLoss:       DefaultFocusLoss,
		BrainSpeed:      DefaultBrainSpeed,
		InitialSpeed:    DefaultInitialSpeed,
		DriftChance:     DefaultDriftChance,
		DriftKick:       DefaultDriftKick,
		FrameStep:       DefaultFrameStep,
		FixedStep:       true,
		SpawnRate:       DefaultSpawnRate,
		MaxDistractions: DefaultMaxDistractions,
		StickyChance:    DefaultStickyChance,
		ComboWindow:     DefaultComboWindow,
		ParticleCount:   DefaultParticleCount,
		ParticleLife:    DefaultParticleLife,
		GlitchAt:        DefaultGlitchAt,
		AlarmAt:         DefaultAlarmAt,
		Viewport: ViewportConfig{
			Width:             1280,
			Height:            720,
			BodySize:          150,
			DistractionWidth:  150,
			DistractionHeight: 50,
		},
	}
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// FrameInterval is FrameStep as a duration.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameStep * float64(time.Second))
}

func (c *Config) Validate() error {
	switch {
	case c.TotalTime <= 0:
		return invalid("total_time", "must be positive, got %f", c.TotalTime)
	case c.MaxStress <= 0 || c.MaxStress > 100:
		return invalid("max_stress", "must be in (0, 100], got %f", c.MaxStress)
	case c.StartFocus < 0 || c.StartFocus > 100:
		return invalid("start_focus", "must be in [0, 100], got %f", c.StartFocus)
	case c.StressGainIdle < 0 || c.StressHealClick < 0 || c.FocusStressHeal < 0 || c.FocusGain < 0 || c.FocusLoss < 0:
		return invalid("rates", "gain, loss and heal rates must not be negative")
	case c.BrainSpeed <= 0:
		return invalid("brain_speed", "must be positive, got %f", c.BrainSpeed)
	case c.DriftChance < 0 || c.DriftChance > 1:
		return invalid("drift_chance", "must be a probability, got %f", c.DriftChance)
	case c.StickyChance < 0 || c.StickyChance > 1:
		return invalid("sticky_chance", "must be a probability, got %f", c.StickyChance)
	case c.FrameStep <= 0:
		return invalid("frame_step", "must be positive, got %f", c.FrameStep)
	case c.SpawnRate <= 0:
		return invalid("spawn_rate", "must be positive, got %s", c.SpawnRate)
	case c.ComboWindow <= 0:
		return invalid("combo_window", "must be positive, got %s", c.ComboWindow)
	case c.MaxDistractions < 0:
		return invalid("max_distractions", "must not be negative, got %d", c.MaxDistractions)
	case c.ParticleCount < 0 || c.ParticleLife < 0:
		return invalid("particles", "count and life must not be negative")
	}
	vp := c.Viewport
	if vp.BodySize <= 0 || vp.Width <= vp.BodySize || vp.Height <= vp.BodySize {
		return invalid("viewport", "%.0fx%.0f cannot hold a %.0f body", vp.Width, vp.Height, vp.BodySize)
	}
	if vp.DistractionWidth <= 0 || vp.DistractionHeight <= 0 ||
		vp.Width <= vp.DistractionWidth || vp.Height <= vp.DistractionHeight {
		return invalid("viewport", "distraction box %.0fx%.0f does not fit", vp.DistractionWidth, vp.DistractionHeight)
	}
	return nil
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, field, fmt.Sprintf(format, args...))
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
