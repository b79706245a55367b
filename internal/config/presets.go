package config

import (
	"fmt"
	"sort"
	"time"
)

const DefaultPreset = "reference"

var Presets = map[string]func(c *Config){
	"reference": func(c *Config) {},
	"marathon": func(c *Config) {
		c.TotalTime = 90
		c.SpawnRate = 1500 * time.Millisecond
	},
	"overload": func(c *Config) {
		c.StressGainIdle = 0.3
		c.SpawnRate = 800 * time.Millisecond
		c.BrainSpeed = 3.5
	},
	"zen": func(c *Config) {
		c.StressGainIdle = 0.05
		c.BrainSpeed = 1.5
		c.DriftChance = 0.02
		c.SpawnRate = 2 * time.Second
	},
}

// GetPreset returns a fresh Config for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

// LookupPreset is GetPreset with an error for unknown names.
func LookupPreset(name string) (*Config, error) {
	cfg := GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownPreset, name, ListPresets())
	}
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
