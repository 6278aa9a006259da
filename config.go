package forwardlight

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/gekko3d/forwardlight/rt/lights"
)

var ErrInvalidConfig = errors.New("invalid forward lighting config")

type ShadowConfig struct {
	// Enabled installs an atlas shadow map renderer when none is given.
	Enabled   bool `yaml:"enabled"`
	AtlasSize int  `yaml:"atlas_size"`
	TileSize  int  `yaml:"tile_size"`
}

// Config tunes the lighting feature. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	// MaxLightGroups is the number of composition slots for direct groups,
	// and separately for environment groups.
	MaxLightGroups    int `yaml:"max_light_groups"`
	MaxLightsPerGroup int `yaml:"max_lights_per_group"`

	// Workers <= 0 means one per CPU.
	Workers      int `yaml:"workers"`
	MinBatchSize int `yaml:"min_batch_size"`

	// Debug turns layout invariant violations into panics.
	Debug bool `yaml:"debug"`

	// LightingGroup is the logical group name effects declare for lighting.
	LightingGroup  string   `yaml:"lighting_group"`
	StagesToIgnore []string `yaml:"stages_to_ignore"`

	Shadows ShadowConfig `yaml:"shadows"`
}

func DefaultConfig() Config {
	return Config{
		MaxLightGroups:    32,
		MaxLightsPerGroup: lights.DefaultMaxLightsPerGroup,
		Workers:           runtime.NumCPU(),
		MinBatchSize:      16,
		LightingGroup:     "Lighting",
		Shadows: ShadowConfig{
			AtlasSize: lights.DefaultShadowAtlasSize,
			TileSize:  lights.DefaultShadowTileSize,
		},
	}
}

func (c Config) Validate() error {
	switch {
	case c.MaxLightGroups <= 0:
		return fmt.Errorf("%w: max_light_groups must be positive, got %d", ErrInvalidConfig, c.MaxLightGroups)
	case c.MaxLightsPerGroup <= 0:
		return fmt.Errorf("%w: max_lights_per_group must be positive, got %d", ErrInvalidConfig, c.MaxLightsPerGroup)
	case c.MinBatchSize <= 0:
		return fmt.Errorf("%w: min_batch_size must be positive, got %d", ErrInvalidConfig, c.MinBatchSize)
	case c.LightingGroup == "":
		return fmt.Errorf("%w: lighting_group is empty", ErrInvalidConfig)
	case c.Shadows.AtlasSize <= 0 || c.Shadows.TileSize <= 0:
		return fmt.Errorf("%w: shadow atlas %d and tile %d must be positive", ErrInvalidConfig, c.Shadows.AtlasSize, c.Shadows.TileSize)
	case c.Shadows.TileSize > c.Shadows.AtlasSize:
		return fmt.Errorf("%w: shadow tile %d larger than atlas %d", ErrInvalidConfig, c.Shadows.TileSize, c.Shadows.AtlasSize)
	}
	return nil
}

// ParseConfig reads YAML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load lighting config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("load lighting config %s: %w", path, err)
	}
	return cfg, nil
}
