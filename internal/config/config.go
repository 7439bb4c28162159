package config

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Capacity bounds the entity arena. Bodies must cover every shape.
type Capacity struct {
	Circles  int `toml:"circles" yaml:"circles"`
	Boxes    int `toml:"boxes" yaml:"boxes"`
	Segments int `toml:"segments" yaml:"segments"`
	Bodies   int `toml:"bodies" yaml:"bodies"`
}

// Sim holds the simulation tunables.
type Sim struct {
	Capacity Capacity `toml:"capacity" yaml:"capacity"`

	StepS       float64 `toml:"step_s" yaml:"step_s"`
	MaxDeltaS   float64 `toml:"max_delta_s" yaml:"max_delta_s"`
	Iterations  int     `toml:"iterations" yaml:"iterations"`
	GravityX    float64 `toml:"gravity_x" yaml:"gravity_x"`
	GravityY    float64 `toml:"gravity_y" yaml:"gravity_y"`
	PegDensity  float64 `toml:"peg_density" yaml:"peg_density"`
	WallWidthMM float64 `toml:"wall_width_mm" yaml:"wall_width_mm"`

	MarbleRadiusMin float64 `toml:"marble_radius_min" yaml:"marble_radius_min"`
	MarbleRadiusMax float64 `toml:"marble_radius_max" yaml:"marble_radius_max"`
	MarblesMax      int     `toml:"marbles_max" yaml:"marbles_max"`
	MarblesLimit    int     `toml:"marbles_limit" yaml:"marbles_limit"`
	SpawnRate       float64 `toml:"spawn_rate" yaml:"spawn_rate"`
	SpawnRateLimit  float64 `toml:"spawn_rate_limit" yaml:"spawn_rate_limit"`
	ResetDelayS     float64 `toml:"reset_delay_s" yaml:"reset_delay_s"`

	PanStepMM float64 `toml:"pan_step_mm" yaml:"pan_step_mm"`
	Seed      int64   `toml:"seed" yaml:"seed"`

	DebugPegs         bool `toml:"debug_pegs" yaml:"debug_pegs"`
	AllowDemoOverlay  bool `toml:"allow_demo_overlay" yaml:"allow_demo_overlay"`
	ConfigurationMode bool `toml:"configuration_mode" yaml:"configuration_mode"`
}

// View describes the window.
type View struct {
	Width      int     `toml:"width" yaml:"width"`
	Height     int     `toml:"height" yaml:"height"`
	MMPerPixel float64 `toml:"mm_per_pixel" yaml:"mm_per_pixel"`
	Scale      float64 `toml:"scale" yaml:"scale"`
	TPS        int     `toml:"tps" yaml:"tps"`
}

// Logging selects the zap encoder and level.
type Logging struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Telemetry configures the headless HTTP server.
type Telemetry struct {
	Addr           string   `toml:"addr" yaml:"addr"`
	StatsPerSecond float64  `toml:"stats_per_second" yaml:"stats_per_second"`
	FrameFPS       float64  `toml:"frame_fps" yaml:"frame_fps"`
	AllowedOrigins []string `toml:"allowed_origins" yaml:"allowed_origins"`
}

// Config is the full application configuration.
type Config struct {
	Sim       Sim       `toml:"sim" yaml:"sim"`
	View      View      `toml:"view" yaml:"view"`
	Logging   Logging   `toml:"logging" yaml:"logging"`
	Telemetry Telemetry `toml:"telemetry" yaml:"telemetry"`
}

// DefaultSim returns the stock simulation settings.
func DefaultSim() Sim {
	return Sim{
		Capacity: Capacity{
			Circles:  2048,
			Boxes:    256,
			Segments: 16,
			Bodies:   2048 + 256 + 16,
		},
		StepS:           1.0 / 600.0,
		MaxDeltaS:       1.0,
		Iterations:      2,
		GravityX:        0,
		GravityY:        -196,
		PegDensity:      0.0005,
		WallWidthMM:     5,
		MarbleRadiusMin: 2,
		MarbleRadiusMax: 4,
		MarblesMax:      200,
		MarblesLimit:    1000,
		SpawnRate:       1,
		SpawnRateLimit:  10,
		ResetDelayS:     15,
		PanStepMM:       10,
		Seed:            0,
	}
}

// Default returns the full default configuration.
func Default() Config {
	return Config{
		Sim: DefaultSim(),
		View: View{
			Width:      1024,
			Height:     768,
			MMPerPixel: 0.25,
			Scale:      1,
			TPS:        60,
		},
		Logging: Logging{Level: "info", Format: "console"},
		Telemetry: Telemetry{
			Addr:           ":8080",
			StatsPerSecond: 4,
			FrameFPS:       60,
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
	}
}

// Bind registers the commonly tuned values on fs.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.View.Width, "w", c.View.Width, "window width in pixels")
	fs.IntVar(&c.View.Height, "h", c.View.Height, "window height in pixels")
	fs.Float64Var(&c.View.MMPerPixel, "mm-per-px", c.View.MMPerPixel, "millimetres per pixel")
	fs.Float64Var(&c.View.Scale, "scale", c.View.Scale, "world zoom; 2 halves the world in each direction")
	fs.IntVar(&c.View.TPS, "tps", c.View.TPS, "ticks per second")
	fs.Int64Var(&c.Sim.Seed, "seed", c.Sim.Seed, "random seed (0 uses the clock)")
	fs.IntVar(&c.Sim.MarblesMax, "marbles", c.Sim.MarblesMax, "marble cap before the reset countdown arms")
	fs.Float64Var(&c.Sim.SpawnRate, "rate", c.Sim.SpawnRate, "marbles spawned per second")
	fs.Float64Var(&c.Sim.ResetDelayS, "reset-delay", c.Sim.ResetDelayS, "seconds at the cap before the world resets")
	fs.BoolVar(&c.Sim.DebugPegs, "debug-pegs", c.Sim.DebugPegs, "use the fixed debug peg layout")
	fs.BoolVar(&c.Sim.AllowDemoOverlay, "demo", c.Sim.AllowDemoOverlay, "allow the diagnostic overlay (D key)")
	fs.BoolVar(&c.Sim.ConfigurationMode, "configure", c.Sim.ConfigurationMode, "start in configuration mode")
	fs.StringVar(&c.Logging.Level, "log-level", c.Logging.Level, "log level")
	fs.StringVar(&c.Logging.Format, "log-format", c.Logging.Format, "log format (console|json)")
}

// Parse binds c's flags plus -config on fs and parses args. When -config
// names a file it is loaded and the flags given explicitly are applied on
// top of it.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Default()
	cfg.Bind(fs)
	path := fs.String("config", "", "TOML or YAML config file")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if *path == "" {
		return cfg, cfg.Validate()
	}
	loaded, err := Load(*path)
	if err != nil {
		return loaded, err
	}
	again := flag.NewFlagSet(fs.Name(), flag.ContinueOnError)
	loaded.Bind(again)
	var errs []error
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			return
		}
		if err := again.Set(f.Name, f.Value.String()); err != nil {
			errs = append(errs, err)
		}
	})
	if err := errors.Join(errs...); err != nil {
		return loaded, err
	}
	return loaded, loaded.Validate()
}

// Load reads a TOML or YAML file on top of the defaults. The decoder is
// chosen by extension.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse toml %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("config %s: unsupported extension %q", path, filepath.Ext(path))
	}
	return cfg, cfg.Validate()
}

// ApplyOverrides updates simulation fields from key=value pairs. Unknown keys
// and unparsable values are reported together.
func (c *Config) ApplyOverrides(kv map[string]string) error {
	var errs []error
	for key, v := range kv {
		var err error
		switch key {
		case "marbles_max":
			c.Sim.MarblesMax, err = strconv.Atoi(v)
		case "spawn_rate":
			c.Sim.SpawnRate, err = strconv.ParseFloat(v, 64)
		case "reset_delay_s":
			c.Sim.ResetDelayS, err = strconv.ParseFloat(v, 64)
		case "scale":
			c.View.Scale, err = strconv.ParseFloat(v, 64)
		case "peg_density":
			c.Sim.PegDensity, err = strconv.ParseFloat(v, 64)
		case "iterations":
			c.Sim.Iterations, err = strconv.Atoi(v)
		case "gravity_y":
			c.Sim.GravityY, err = strconv.ParseFloat(v, 64)
		case "seed":
			c.Sim.Seed, err = strconv.ParseInt(v, 10, 64)
		case "debug_pegs":
			c.Sim.DebugPegs, err = strconv.ParseBool(v)
		default:
			err = errors.New("unknown key")
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("override %s=%q: %w", key, v, err))
		}
	}
	return errors.Join(errs...)
}

// Validate reports configuration values the simulation cannot run with.
func (c Config) Validate() error {
	var errs []error
	s := c.Sim
	cp := s.Capacity
	if cp.Circles <= 0 || cp.Boxes <= 0 || cp.Segments < 3 {
		errs = append(errs, fmt.Errorf("capacity: circles and boxes must be positive and segments >= 3, got %+v", cp))
	}
	if cp.Bodies < cp.Circles+cp.Boxes+cp.Segments {
		errs = append(errs, fmt.Errorf("capacity: bodies (%d) must cover circles+boxes+segments (%d)", cp.Bodies, cp.Circles+cp.Boxes+cp.Segments))
	}
	if s.MarblesLimit > cp.Circles {
		errs = append(errs, fmt.Errorf("marbles_limit %d exceeds circle capacity %d", s.MarblesLimit, cp.Circles))
	}
	if s.StepS <= 0 {
		errs = append(errs, fmt.Errorf("step_s must be positive, got %v", s.StepS))
	}
	if s.MaxDeltaS < s.StepS {
		errs = append(errs, fmt.Errorf("max_delta_s (%v) must be at least step_s (%v)", s.MaxDeltaS, s.StepS))
	}
	if s.MarbleRadiusMin <= 0 || s.MarbleRadiusMax < s.MarbleRadiusMin {
		errs = append(errs, fmt.Errorf("marble radius range [%v, %v] is invalid", s.MarbleRadiusMin, s.MarbleRadiusMax))
	}
	if s.MarblesMax < 0 || s.MarblesMax > s.MarblesLimit {
		errs = append(errs, fmt.Errorf("marbles_max %d outside [0, %d]", s.MarblesMax, s.MarblesLimit))
	}
	if s.SpawnRate < 0 || s.SpawnRate > s.SpawnRateLimit {
		errs = append(errs, fmt.Errorf("spawn_rate %v outside [0, %v]", s.SpawnRate, s.SpawnRateLimit))
	}
	if c.View.Width <= 0 || c.View.Height <= 0 || c.View.MMPerPixel <= 0 {
		errs = append(errs, fmt.Errorf("view %dx%d at %v mm/px is invalid", c.View.Width, c.View.Height, c.View.MMPerPixel))
	}
	if c.View.Scale <= 0 {
		errs = append(errs, fmt.Errorf("view scale must be positive, got %v", c.View.Scale))
	}
	if pegs := c.PegEstimate(); !s.DebugPegs && pegs > 0 {
		if pegs > cp.Boxes {
			errs = append(errs, fmt.Errorf("peg_density %v gives %d pegs on the %vx%v mm world, box capacity is %d",
				s.PegDensity, pegs, c.WorldWidthMM(), c.WorldHeightMM(), cp.Boxes))
		}
		if room := cp.Circles - s.MarblesLimit; pegs > room {
			errs = append(errs, fmt.Errorf("peg_density %v gives %d pegs, circle capacity leaves room for %d beside %d marbles",
				s.PegDensity, pegs, room, s.MarblesLimit))
		}
	}
	return errors.Join(errs...)
}

// WorldWidthMM is the play-field width for the configured window and scale.
func (c Config) WorldWidthMM() float64 {
	return float64(c.View.Width) * c.View.MMPerPixel / c.View.Scale
}

// WorldHeightMM is the play-field height for the configured window and scale.
func (c Config) WorldHeightMM() float64 {
	return float64(c.View.Height) * c.View.MMPerPixel / c.View.Scale
}

// PegEstimate is the number of pegs a world of the configured size receives.
// Each peg may become a circle or a box, so both tables must fit all of them.
func (c Config) PegEstimate() int {
	if c.View.Scale <= 0 {
		return 0
	}
	return int(math.Round(c.WorldWidthMM() * c.WorldHeightMM() * c.Sim.PegDensity))
}
