package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EffectMode selects how effects run after a commit.
type EffectMode string

const (
	// EffectsSync runs effects on the dispatching goroutine, after the commit.
	EffectsSync EffectMode = "sync"
	// EffectsAsync queues effects on a worker pool partitioned by state type.
	EffectsAsync EffectMode = "async"
)

const (
	DefaultMaxSlots         = 2
	DefaultEffectBufferSize = 64
	DefaultEffectWorkers    = 4
)

type EffectsConfig struct {
	Mode       EffectMode `yaml:"mode"`
	BufferSize int        `yaml:"buffer_size"`
	NumWorkers int        `yaml:"num_workers"`
}

// Config is the full store configuration.
type Config struct {
	MaxSlots int `yaml:"max_slots"`
	// IdentityReducer commits an action's new state when no reducer was
	// registered for its type. When false such dispatches fail with
	// ErrReducerNotFound.
	IdentityReducer bool          `yaml:"identity_reducer"`
	Effects         EffectsConfig `yaml:"effects"`
}

func DefaultConfig() Config {
	return Config{
		MaxSlots:        DefaultMaxSlots,
		IdentityReducer: true,
		Effects: EffectsConfig{
			Mode:       EffectsAsync,
			BufferSize: DefaultEffectBufferSize,
			NumWorkers: DefaultEffectWorkers,
		},
	}
}

func (c Config) Validate() error {
	if c.MaxSlots <= 0 {
		return fmt.Errorf("%w: max_slots must be positive, got %d", ErrInvalidConfig, c.MaxSlots)
	}
	return c.Effects.Validate()
}

func (c EffectsConfig) Validate() error {
	switch c.Mode {
	case EffectsSync:
		return nil
	case EffectsAsync:
		if c.BufferSize <= 0 {
			return fmt.Errorf("%w: effects.buffer_size must be positive, got %d", ErrInvalidConfig, c.BufferSize)
		}
		if c.NumWorkers <= 0 {
			return fmt.Errorf("%w: effects.num_workers must be positive, got %d", ErrInvalidConfig, c.NumWorkers)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown effects.mode %q", ErrInvalidConfig, c.Mode)
	}
}

// ParseConfig reads YAML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}
