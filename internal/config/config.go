// Package config provides the game configuration: defaults, a YAML file,
// environment overrides and runtime changes through Set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/tomz197/airclash/internal/physics"
)

// DefaultPath is where the game looks for a config file when none is given.
const DefaultPath = "config/airclash.yaml"

var (
	// ErrInvalid reports a config value outside its allowed range.
	ErrInvalid = errors.New("invalid config")
	// ErrUnknownKey reports a Set or Get on a key that does not exist.
	ErrUnknownKey = errors.New("unknown config key")
)

// Config holds every tunable of the game.
type Config struct {
	GravityX   float64 `yaml:"gravity_x"`
	GravityY   float64 `yaml:"gravity_y"`
	TimeStep   float64 `yaml:"time_step"`
	SubSteps   int     `yaml:"sub_steps"`
	Iterations int     `yaml:"iterations"`
	CellSize   float64 `yaml:"cell_size"`

	PenetrationSlop       float64 `yaml:"penetration_slop"`
	PenetrationCorrection float64 `yaml:"penetration_correction"`

	Resting         bool    `yaml:"resting"`
	RestingVelocity float64 `yaml:"resting_velocity"`
	RestingAngular  float64 `yaml:"resting_angular"`
	RestingSteps    int     `yaml:"resting_steps"`

	GridHalfWidth int     `yaml:"grid_half_width"`
	GridCellSize  float64 `yaml:"grid_cell_size"`

	FrameRate    int     `yaml:"frame_rate"`
	ViewScale    float64 `yaml:"view_scale"`
	DrawContacts bool    `yaml:"draw_contacts"`
	PlayerName   string  `yaml:"player_name"`
	Level        string  `yaml:"level"`
	LogLevel     string  `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		GravityX:              0,
		GravityY:              -10,
		TimeStep:              0.05,
		SubSteps:              5,
		Iterations:            10,
		CellSize:              64,
		PenetrationSlop:       0.05,
		PenetrationCorrection: 0.4,
		Resting:               true,
		RestingVelocity:       1,
		RestingAngular:        1,
		RestingSteps:          10,
		GridHalfWidth:         4,
		GridCellSize:          64,
		FrameRate:             50,
		ViewScale:             4,
		DrawContacts:          false,
		PlayerName:            "player",
		Level:                 "data/levels/level1.svg",
		LogLevel:              "info",
	}
}

// Load reads a YAML file on top of Default. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every value is usable.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}
	check(c.TimeStep > 0, "time_step must be positive, got %v", c.TimeStep)
	check(c.SubSteps > 0, "sub_steps must be positive, got %d", c.SubSteps)
	check(c.Iterations > 0, "iterations must be positive, got %d", c.Iterations)
	check(c.CellSize > 0, "cell_size must be positive, got %v", c.CellSize)
	check(c.PenetrationSlop >= 0, "penetration_slop must not be negative, got %v", c.PenetrationSlop)
	check(c.PenetrationCorrection >= 0 && c.PenetrationCorrection <= 1,
		"penetration_correction must be within [0,1], got %v", c.PenetrationCorrection)
	check(c.RestingSteps > 0, "resting_steps must be positive, got %d", c.RestingSteps)
	check(c.GridHalfWidth >= 0, "grid_half_width must not be negative, got %d", c.GridHalfWidth)
	check(c.GridCellSize > 0, "grid_cell_size must be positive, got %v", c.GridCellSize)
	check(c.FrameRate > 0, "frame_rate must be positive, got %d", c.FrameRate)
	check(c.ViewScale > 0, "view_scale must be positive, got %v", c.ViewScale)
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%w: log_level: %v", ErrInvalid, err))
	}
	return errors.Join(errs...)
}

// Gravity returns the gravity vector.
func (c Config) Gravity() physics.Vector {
	return physics.Vec(c.GravityX, c.GravityY)
}

// PhysicsSettings converts the config into world settings.
func (c Config) PhysicsSettings() physics.Settings {
	return physics.Settings{
		Gravity:    c.Gravity(),
		TimeStep:   c.TimeStep,
		Iterations: c.Iterations,
		CellSize:   c.CellSize,
		Slop:       c.PenetrationSlop,
		Correction: c.PenetrationCorrection,
		Resting: physics.RestingSettings{
			Enabled:         c.Resting,
			VelocityEpsilon: c.RestingVelocity,
			AngularEpsilon:  c.RestingAngular,
			Steps:           c.RestingSteps,
		},
	}
}

// field binds a config key to its storage.
type field struct {
	key string
	get func() string
	set func(string) error
}

func floatField(key string, p *float64) field {
	return field{
		key: key,
		get: func() string { return strconv.FormatFloat(*p, 'g', -1, 64) },
		set: func(s string) error {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
			}
			*p = v
			return nil
		},
	}
}

func intField(key string, p *int) field {
	return field{
		key: key,
		get: func() string { return strconv.Itoa(*p) },
		set: func(s string) error {
			v, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
			}
			*p = v
			return nil
		},
	}
}

// boolField accepts "1"/"0" as well as the strconv spellings.
func boolField(key string, p *bool) field {
	return field{
		key: key,
		get: func() string {
			if *p {
				return "1"
			}
			return "0"
		},
		set: func(s string) error {
			v, err := strconv.ParseBool(strings.TrimSpace(s))
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
			}
			*p = v
			return nil
		},
	}
}

func stringField(key string, p *string) field {
	return field{
		key: key,
		get: func() string { return *p },
		set: func(s string) error {
			*p = s
			return nil
		},
	}
}

func (c *Config) fields() []field {
	return []field{
		floatField("gravity_x", &c.GravityX),
		floatField("gravity_y", &c.GravityY),
		floatField("time_step", &c.TimeStep),
		intField("sub_steps", &c.SubSteps),
		intField("iterations", &c.Iterations),
		floatField("cell_size", &c.CellSize),
		floatField("penetration_slop", &c.PenetrationSlop),
		floatField("penetration_correction", &c.PenetrationCorrection),
		boolField("resting", &c.Resting),
		floatField("resting_velocity", &c.RestingVelocity),
		floatField("resting_angular", &c.RestingAngular),
		intField("resting_steps", &c.RestingSteps),
		intField("grid_half_width", &c.GridHalfWidth),
		floatField("grid_cell_size", &c.GridCellSize),
		intField("frame_rate", &c.FrameRate),
		floatField("view_scale", &c.ViewScale),
		boolField("draw_contacts", &c.DrawContacts),
		stringField("player_name", &c.PlayerName),
		stringField("level", &c.Level),
		stringField("log_level", &c.LogLevel),
	}
}

// Keys returns every config key in sorted order.
func (c *Config) Keys() []string {
	var keys []string
	for _, f := range c.fields() {
		keys = append(keys, f.key)
	}
	slices.Sort(keys)
	return keys
}

// Get returns the value of key formatted as text.
func (c *Config) Get(key string) (string, error) {
	for _, f := range c.fields() {
		if f.key == key {
			return f.get(), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// Set parses value into key. The config is left unchanged when the result
// would not validate.
func (c *Config) Set(key, value string) error {
	next := *c
	for _, f := range next.fields() {
		if f.key != key {
			continue
		}
		if err := f.set(value); err != nil {
			return err
		}
		if err := next.Validate(); err != nil {
			return err
		}
		*c = next
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownKey, key)
}
