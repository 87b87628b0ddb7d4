package config

import "sort"

// Presets are named starting points for common graph sizes.
var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"fast": withLayout(func(l *LayoutConfig) {
		l.Theta = 0.9
		l.DeltaTime = 0.02
		l.Damping = 0.8
	}),
	"precise": withLayout(func(l *LayoutConfig) {
		l.Theta = 0.25
		l.DeltaTime = 0.005
	}),
	"exact": withLayout(func(l *LayoutConfig) {
		l.Theta = 0
	}),
	"settle": withLayout(func(l *LayoutConfig) {
		l.FreezeThreshold = 0.5
		l.Damping = 0.8
	}),
	"classic": withLayout(func(l *LayoutConfig) {
		l.DeltaTime = 0.005
		l.Theta = 0.25
		l.SpringLength = 2
		l.Gravity = 1
		l.MassFromDegree = true
	}),
}

func withLayout(fn func(*LayoutConfig)) *Config {
	cfg := DefaultConfig()
	fn(&cfg.Layout)
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
