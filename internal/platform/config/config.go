package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "plank/internal/platform/errors"
)

const FileName = "config.yaml"

type TrackerConfig struct {
	TickInterval   time.Duration `yaml:"tick_interval"`
	Calibration    time.Duration `yaml:"calibration"`
	EnterThreshold float64       `yaml:"enter_threshold"`
	ExitThreshold  float64       `yaml:"exit_threshold"`
}

type ScoringConfig struct {
	HorizontalToleranceRad   float64 `yaml:"horizontal_tolerance_rad"`
	StraightnessToleranceRad float64 `yaml:"straightness_tolerance_rad"`
	HipSagTolerance          float64 `yaml:"hip_sag_tolerance"`
}

type HistoryConfig struct {
	Limit int `yaml:"limit"`
}

type Config struct {
	DataDir       string        `yaml:"-"`
	DBPath        string        `yaml:"-"`
	LogPath       string        `yaml:"-"`
	DetectorsPath string        `yaml:"-"`
	Tracker       TrackerConfig `yaml:"tracker"`
	Scoring       ScoringConfig `yaml:"scoring"`
	History       HistoryConfig `yaml:"history"`
}

// Default returns the stock tuning rooted at dataDir.
func Default(dataDir string) Config {
	return Config{
		DataDir:       dataDir,
		DBPath:        filepath.Join(dataDir, "plank.db"),
		LogPath:       filepath.Join(dataDir, "plank.log"),
		DetectorsPath: filepath.Join(dataDir, "detectors", "detectors.json"),
		Tracker: TrackerConfig{
			TickInterval:   16 * time.Millisecond,
			Calibration:    1500 * time.Millisecond,
			EnterThreshold: 0.62,
			ExitThreshold:  0.48,
		},
		Scoring: ScoringConfig{
			HorizontalToleranceRad:   math.Pi / 4,
			StraightnessToleranceRad: math.Pi / 8,
			HipSagTolerance:          0.15,
		},
		History: HistoryConfig{Limit: 50},
	}
}

// New loads <dataDir>/config.yaml over the defaults. A missing file is not an error.
func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("%w: data dir is required", apperrors.ErrInvalidInput)
	}
	cfg := Default(dataDir)
	raw, err := os.ReadFile(filepath.Join(dataDir, FileName))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(raw []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	t := c.Tracker
	switch {
	case t.TickInterval <= 0:
		return fmt.Errorf("%w: tracker.tick_interval must be positive", apperrors.ErrInvalidInput)
	case t.Calibration < 0:
		return fmt.Errorf("%w: tracker.calibration must not be negative", apperrors.ErrInvalidInput)
	case t.EnterThreshold < 0 || t.EnterThreshold > 1 || t.ExitThreshold < 0 || t.ExitThreshold > 1:
		return fmt.Errorf("%w: thresholds must be within [0,1]", apperrors.ErrInvalidInput)
	case t.ExitThreshold >= t.EnterThreshold:
		return fmt.Errorf("%w: exit threshold %.2f must be below enter threshold %.2f", apperrors.ErrInvalidInput, t.ExitThreshold, t.EnterThreshold)
	}
	s := c.Scoring
	if s.HorizontalToleranceRad <= 0 || s.StraightnessToleranceRad <= 0 || s.HipSagTolerance <= 0 {
		return fmt.Errorf("%w: scoring tolerances must be positive", apperrors.ErrInvalidInput)
	}
	if c.History.Limit < 1 {
		return fmt.Errorf("%w: history.limit must be at least 1", apperrors.ErrInvalidInput)
	}
	return nil
}
