package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/forcelayout/internal/layout"
)

const (
	DefaultTicks      = 500
	DefaultFormat     = "csv"
	DefaultAddr       = ":8080"
	DefaultIntervalMs = 33
	DefaultFPS        = 30
)

type Config struct {
	Layout LayoutConfig `yaml:"layout" toml:"layout"`
	Run    RunConfig    `yaml:"run" toml:"run"`
	Server ServerConfig `yaml:"server" toml:"server"`
}

// LayoutConfig mirrors layout.Config with file-friendly names.
type LayoutConfig struct {
	DeltaTime         float64 `yaml:"delta_time" toml:"delta_time"`
	FreezeThreshold   float64 `yaml:"freeze_threshold" toml:"freeze_threshold"`
	Theta             float64 `yaml:"theta" toml:"theta"`
	RepulsionConstant float64 `yaml:"repulsion_constant" toml:"repulsion_constant"`
	SpringStiffness   float64 `yaml:"spring_stiffness" toml:"spring_stiffness"`
	SpringLength      float64 `yaml:"spring_length" toml:"spring_length"`
	Gravity           float64 `yaml:"gravity" toml:"gravity"`
	Damping           float64 `yaml:"damping" toml:"damping"`
	Workers           int     `yaml:"worker_count" toml:"worker_count"`
	MinDistance       float64 `yaml:"min_distance" toml:"min_distance"`
	Seed              int64   `yaml:"seed" toml:"seed"`
	PlacementRadius   float64 `yaml:"placement_radius" toml:"placement_radius"`
	MassFromDegree    bool    `yaml:"mass_from_degree" toml:"mass_from_degree"`
}

type RunConfig struct {
	Ticks  int    `yaml:"ticks" toml:"ticks"`
	Format string `yaml:"format" toml:"format"`
}

type ServerConfig struct {
	Addr       string `yaml:"addr" toml:"addr"`
	IntervalMs int    `yaml:"interval_ms" toml:"interval_ms"`
	FPS        int    `yaml:"fps" toml:"fps"`
}

func DefaultConfig() *Config {
	return &Config{
		Layout: FromLayout(layout.DefaultConfig()),
		Run: RunConfig{
			Ticks:  DefaultTicks,
			Format: DefaultFormat,
		},
		Server: ServerConfig{
			Addr:       DefaultAddr,
			IntervalMs: DefaultIntervalMs,
			FPS:        DefaultFPS,
		},
	}
}

// FromLayout converts engine parameters to their file form.
func FromLayout(c layout.Config) LayoutConfig {
	return LayoutConfig{
		DeltaTime:         c.DeltaTime,
		FreezeThreshold:   c.FreezeThreshold,
		Theta:             c.Theta,
		RepulsionConstant: c.RepulsionConstant,
		SpringStiffness:   c.SpringStiffness,
		SpringLength:      c.SpringLength,
		Gravity:           c.Gravity,
		Damping:           c.Damping,
		Workers:           c.Workers,
		MinDistance:       c.MinDistance,
		Seed:              c.Seed,
		PlacementRadius:   c.PlacementRadius,
		MassFromDegree:    c.MassFromDegree,
	}
}

// Builder returns a layout builder seeded with the file values. Validation
// happens when the builder's Config is called.
func (c *Config) Builder() *layout.Builder {
	l := c.Layout
	return layout.BuilderFrom(layout.Config{
		DeltaTime:         l.DeltaTime,
		FreezeThreshold:   l.FreezeThreshold,
		Theta:             l.Theta,
		RepulsionConstant: l.RepulsionConstant,
		SpringStiffness:   l.SpringStiffness,
		SpringLength:      l.SpringLength,
		Gravity:           l.Gravity,
		Damping:           l.Damping,
		Workers:           l.Workers,
		MinDistance:       l.MinDistance,
		Seed:              l.Seed,
		PlacementRadius:   l.PlacementRadius,
		MassFromDegree:    l.MassFromDegree,
	})
}

// Load reads a YAML or TOML file, chosen by extension, over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return err
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
