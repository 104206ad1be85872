package robot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gwillem/ikarm/pkg/kinematics"
)

const DefaultConfigFile = "ikarm.json"

// Default values used when the config file or flags leave them unset.
const (
	DefaultLinkLength = 1.0
	DefaultHz         = 25
	DefaultTargetX    = 1.2
	DefaultTargetY    = 0.8
)

// Config holds the arm configuration
type Config struct {
	L1       float64   `json:"l1"`
	L2       float64   `json:"l2"`
	Hz       int       `json:"hz,omitempty"`
	Target   *Target   `json:"target,omitempty"`
	Follower ArmConfig `json:"follower"`
}

// Target is the initial target position
type Target struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ArmConfig holds configuration for the servo arm that mirrors the solved pose
type ArmConfig struct {
	Port        string      `json:"port,omitempty"`
	Calibration Calibration `json:"calibration,omitempty"`
}

// DefaultConfig returns a unit-length arm with no servo follower.
func DefaultConfig() *Config {
	return &Config{
		L1:     DefaultLinkLength,
		L2:     DefaultLinkLength,
		Hz:     DefaultHz,
		Target: &Target{X: DefaultTargetX, Y: DefaultTargetY},
	}
}

// IsCalibrated returns true if the arm has calibration data
func (a *ArmConfig) IsCalibrated() bool {
	return len(a.Calibration) > 0
}

// Enabled returns true if a servo port is configured
func (a *ArmConfig) Enabled() bool {
	return a.Port != ""
}

// Links returns the link lengths as a kinematics.Links.
func (c *Config) Links() kinematics.Links {
	return kinematics.Links{L1: c.L1, L2: c.L2}
}

// InitialTarget returns the configured start target, or the default one.
func (c *Config) InitialTarget() kinematics.Point {
	if c.Target == nil {
		return kinematics.Point{X: DefaultTargetX, Y: DefaultTargetY}
	}
	return kinematics.Point{X: c.Target.X, Y: c.Target.Y}
}

// Validate checks that link lengths and frequency are usable.
func (c *Config) Validate() error {
	if c.L1 <= 0 || c.L2 <= 0 {
		return fmt.Errorf("link lengths must be positive, got l1=%g l2=%g", c.L1, c.L2)
	}
	if c.Hz <= 0 {
		return fmt.Errorf("hz must be positive, got %d", c.Hz)
	}
	return nil
}

// LoadConfigFrom loads configuration from a specific file.
// Fields missing from the file keep their defaults.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigOrDefault loads path, falling back to DefaultConfig when the file does not exist.
func LoadConfigOrDefault(path string) (*Config, error) {
	cfg, err := LoadConfigFrom(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
