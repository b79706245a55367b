package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TotalTime != 30 {
		t.Errorf("expected total time 30, got %f", cfg.TotalTime)
	}
	if cfg.MaxDistractions != 15 {
		t.Errorf("expected cap 15, got %d", cfg.MaxDistractions)
	}
	if cfg.ComboWindow != 1500*time.Millisecond {
		t.Errorf("expected combo window 1.5s, got %s", cfg.ComboWindow)
	}
	if cfg.FrameInterval() != 16*time.Millisecond {
		t.Errorf("expected 16ms frame interval, got %s", cfg.FrameInterval())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero total time", func(c *Config) { c.TotalTime = 0 }},
		{"max stress above 100", func(c *Config) { c.MaxStress = 120 }},
		{"negative gain", func(c *Config) { c.FocusGain = -1 }},
		{"drift chance above 1", func(c *Config) { c.DriftChance = 1.5 }},
		{"zero spawn rate", func(c *Config) { c.SpawnRate = 0 }},
		{"zero frame step", func(c *Config) { c.FrameStep = 0 }},
		{"body larger than viewport", func(c *Config) { c.Viewport.Width = 100 }},
		{"distraction taller than viewport", func(c *Config) { c.Viewport.DistractionHeight = 900 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("marathon")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.TotalTime != 90 {
		t.Errorf("expected total time 90, got %f", cfg.TotalTime)
	}

	cfg.TotalTime = 1
	again := GetPreset("marathon")
	if again.TotalTime != 90 {
		t.Error("preset mutation leaked into later lookups")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if _, err := LookupPreset("nonexistent"); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for _, name := range presets {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	data := []byte("total_time: 12\nspawn_rate: 900ms\nfixed_step: false\nviewport:\n  width: 800\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.TotalTime != 12 {
		t.Errorf("expected total time 12, got %f", cfg.TotalTime)
	}
	if cfg.SpawnRate != 900*time.Millisecond {
		t.Errorf("expected spawn rate 900ms, got %s", cfg.SpawnRate)
	}
	if cfg.FixedStep {
		t.Error("expected fixed_step false")
	}
	if cfg.Viewport.Width != 800 {
		t.Errorf("expected width 800, got %f", cfg.Viewport.Width)
	}
	if cfg.Viewport.Height != 720 {
		t.Errorf("unset keys should keep defaults, got height %f", cfg.Viewport.Height)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	if err := os.WriteFile(path, []byte("focus_gain: 0.4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FOCUSDRIFT_FOCUS_GAIN", "0.9")
	t.Setenv("FOCUSDRIFT_VIEWPORT__HEIGHT", "600")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.FocusGain != 0.9 {
		t.Errorf("expected env focus gain 0.9, got %f", cfg.FocusGain)
	}
	if cfg.Viewport.Height != 600 {
		t.Errorf("expected env height 600, got %f", cfg.Viewport.Height)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("total_time: -3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := GetPreset("overload")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}
