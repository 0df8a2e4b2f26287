package config

import (
	"fmt"
	"sort"
)

// Presets maps game -> preset name -> parameter values.
var Presets = map[string]map[string]map[string]float64{
	"pendulum": {
		"short": {"length": 60},
		"long":  {"length": 150},
		"calm":  {"length": 100, "damping": 0.99},
	},
	"particles": {
		"sparse": {"count": 20},
		"dense":  {"count": 100},
	},
	"waves": {
		"ripple": {"frequency": 0.04, "amplitude": 20},
		"swell":  {"frequency": 0.01, "amplitude": 90},
	},
}

func GetPreset(game, name string) map[string]float64 {
	if presets, ok := Presets[game]; ok {
		if p, ok := presets[name]; ok {
			out := make(map[string]float64, len(p))
			for k, v := range p {
				out[k] = v
			}
			return out
		}
	}
	return nil
}

func ListPresets(game string) []string {
	presets, ok := Presets[game]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset writes a preset over the matching config sections.
func (c *Config) ApplyPreset(game, name string) error {
	p := GetPreset(game, name)
	if p == nil {
		return fmt.Errorf("unknown preset: %s/%s", game, name)
	}
	for k, v := range p {
		switch game + "." + k {
		case "pendulum.length":
			c.Pendulum.Length = v
		case "pendulum.damping":
			c.Pendulum.Damping = v
		case "particles.count":
			c.Particles.Count = int(v)
		case "waves.frequency":
			c.Waves.Frequency = v
		case "waves.amplitude":
			c.Waves.Amplitude = v
		}
	}
	return nil
}
