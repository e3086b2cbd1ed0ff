package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Duration is a JSON-friendly wrapper around time.Duration that accepts
// human readable strings such as "150ms" in configuration files while still
// allowing numeric representations when necessary.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalJSON encodes the duration using the canonical string representation.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON decodes a duration from either a string (e.g. "250ms") or a
// numeric value representing nanoseconds. Empty strings and null values
// decode to zero.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("duration: empty value")
	}
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("duration: decode string: %w", err)
		}
		if s == "" {
			*d = 0
			return nil
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("duration: parse %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	return fmt.Errorf("duration: invalid value %s", string(b))
}

// MarshalYAML mirrors the JSON representation for YAML-provided configs.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts the same string or nanosecond forms as JSON.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		if s == "" {
			*d = 0
			return nil
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("duration: parse %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := unmarshal(&n); err != nil {
		return fmt.Errorf("duration: invalid yaml value")
	}
	*d = Duration(time.Duration(n))
	return nil
}

// Config captures the tunable parameters needed to bootstrap a game client.
type Config struct {
	Game     GameConfig     `json:"game" yaml:"game"`
	Grid     GridConfig     `json:"grid" yaml:"grid"`
	Storage  StorageConfig  `json:"storage" yaml:"storage"`
	Log      LogConfig      `json:"log" yaml:"log"`
	Movement MovementConfig `json:"movement" yaml:"movement"`
}

type GameConfig struct {
	SpawnProbability  float64 `json:"spawnProbability" yaml:"spawnProbability"`
	BaseTokenValue    int     `json:"baseTokenValue" yaml:"baseTokenValue"`
	VictoryThreshold  int     `json:"victoryThreshold" yaml:"victoryThreshold"`
	InteractionRadius float64 `json:"interactionRadius" yaml:"interactionRadius"` // world units from player to cell center
}

type GridConfig struct {
	CellSize float64 `json:"cellSize" yaml:"cellSize"` // world units per cell edge
	Seed     int64   `json:"seed" yaml:"seed"`
}

type StorageConfig struct {
	Path        string `json:"path" yaml:"path"`
	SnapshotKey string `json:"snapshotKey" yaml:"snapshotKey"`
}

type LogConfig struct {
	Level      string `json:"level" yaml:"level"`
	File       string `json:"file" yaml:"file"`
	MaxSizeMB  int    `json:"maxSizeMb" yaml:"maxSizeMb"`
	MaxBackups int    `json:"maxBackups" yaml:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays" yaml:"maxAgeDays"`
	Compress   bool   `json:"compress" yaml:"compress"`
}

type MovementConfig struct {
	Step         float64  `json:"step" yaml:"step"` // world units per button press
	WalkInterval Duration `json:"walkInterval" yaml:"walkInterval"`
	WalkSeed     int64    `json:"walkSeed" yaml:"walkSeed"`
}

// Load reads configuration from a JSON file if provided. An empty path
// returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Game: GameConfig{
			SpawnProbability:  0.2,
			BaseTokenValue:    2,
			VictoryThreshold:  2048,
			InteractionRadius: 0.0015,
		},
		Grid: GridConfig{
			CellSize: 0.001,
			Seed:     1337,
		},
		Storage: StorageConfig{
			Path:        "geotokens.db",
			SnapshotKey: "snapshot",
		},
		Log: LogConfig{
			Level:      "info",
			File:       "geotokens.log",
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   false,
		},
		Movement: MovementConfig{
			Step:         0.0005,
			WalkInterval: Duration(time.Second),
			WalkSeed:     1337,
		},
	}
}

func (c *Config) Validate() error {
	if c.Grid.CellSize <= 0 {
		return errors.New("grid.cellSize must be positive")
	}
	if c.Game.SpawnProbability < 0 || c.Game.SpawnProbability > 1 {
		return errors.New("game.spawnProbability must be within [0, 1]")
	}
	if c.Game.BaseTokenValue <= 0 {
		return errors.New("game.baseTokenValue must be positive")
	}
	if c.Game.VictoryThreshold < c.Game.BaseTokenValue {
		return errors.New("game.victoryThreshold must be >= baseTokenValue")
	}
	if c.Game.InteractionRadius <= 0 {
		return errors.New("game.interactionRadius must be positive")
	}
	if c.Storage.SnapshotKey == "" {
		return errors.New("storage.snapshotKey must be set")
	}
	if c.Movement.Step <= 0 {
		return errors.New("movement.step must be positive")
	}
	if c.Movement.WalkInterval < 0 {
		return errors.New("movement.walkInterval cannot be negative")
	}
	return nil
}
