// User configuration for the arrowkit tools.
// Stored as TOML in the home directory; ARROWKIT_* variables override it.

// Package config loads and saves ~/.arrowkit.toml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/ha1tch/arrowkit/pkg/arrow"
	"github.com/ha1tch/arrowkit/pkg/diagram"
)

// FileName is the config file name inside the home directory.
const FileName = ".arrowkit.toml"

// Config is the persisted configuration.
type Config struct {
	Arrow  ArrowConfig  `toml:"arrow"`
	Render RenderConfig `toml:"render"`
	Editor EditorConfig `toml:"editor"`
	Log    LogConfig    `toml:"log"`
}

// ArrowConfig is the default connector style.
type ArrowConfig struct {
	Thickness float64 `toml:"thickness"`
	Color     string  `toml:"color"`
	Alpha     float64 `toml:"alpha"`
	T         float64 `toml:"t"`
}

// RenderConfig holds output defaults for the render command.
type RenderConfig struct {
	Format   string  `toml:"format"` // svg or png
	Width    int     `toml:"width"`
	Height   int     `toml:"height"`
	Padding  float64 `toml:"padding"`
	FontSize float64 `toml:"font_size"`
}

// EditorConfig holds editor state that survives restarts.
type EditorConfig struct {
	LastDir string `toml:"last_dir"`
}

// LogConfig mirrors the logger options.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Environment overrides.
const (
	EnvThickness = "ARROWKIT_THICKNESS"
	EnvColor     = "ARROWKIT_COLOR"
	EnvAlpha     = "ARROWKIT_ALPHA"
	EnvT         = "ARROWKIT_T"
	EnvFormat    = "ARROWKIT_FORMAT"
	EnvLogLevel  = "ARROWKIT_LOG_LEVEL"
	EnvLogFormat = "ARROWKIT_LOG_FORMAT"
	EnvLogFile   = "ARROWKIT_LOG_FILE"
)

// Defaults returns the built-in configuration.
func Defaults() Config {
	a := arrow.DefaultOptions()
	return Config{
		Arrow: ArrowConfig{
			Thickness: a.Thickness,
			Color:     diagram.FormatColor(a.Color),
			Alpha:     float64(a.Color.A) / 255,
			T:         a.T,
		},
		Render: RenderConfig{
			Format:   "svg",
			Width:    800,
			Height:   600,
			Padding:  40,
			FontSize: 14,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, FileName), nil
}

// LogFile returns the log file path with a leading ~ expanded, or "" for
// no log file.
func (c Config) LogFile() (string, error) {
	if c.Log.File == "" {
		return "", nil
	}
	p, err := homedir.Expand(c.Log.File)
	if err != nil {
		return "", fmt.Errorf("log.file: %w", err)
	}
	return p, nil
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return Defaults(), fmt.Errorf("%s:%d:%d: %w", path, row, col, err)
		}
		return Defaults(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overrides fields from ARROWKIT_* variables. Values that do not
// parse are ignored.
func ApplyEnv(cfg *Config) {
	if v, ok := envFloat(EnvThickness); ok {
		cfg.Arrow.Thickness = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvColor)); v != "" {
		cfg.Arrow.Color = v
	}
	if v, ok := envFloat(EnvAlpha); ok {
		cfg.Arrow.Alpha = v
	}
	if v, ok := envFloat(EnvT); ok {
		cfg.Arrow.T = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFormat)); v != "" {
		cfg.Render.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Log.File = v
	}
}

func envFloat(key string) (float64, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ArrowOptions converts the [arrow] section to connector options. The tip
// uses the stroke colour at full opacity.
func (c Config) ArrowOptions() (arrow.Options, error) {
	o := arrow.DefaultOptions()
	if !(c.Arrow.Thickness >= 0) || math.IsInf(c.Arrow.Thickness, 0) {
		return o, fmt.Errorf("arrow.thickness: %g is not a finite non-negative value", c.Arrow.Thickness)
	}
	if !(c.Arrow.T >= 0 && c.Arrow.T <= 1) {
		return o, fmt.Errorf("arrow.t: %g outside [0,1]", c.Arrow.T)
	}
	if !(c.Arrow.Alpha >= 0 && c.Arrow.Alpha <= 1) {
		return o, fmt.Errorf("arrow.alpha: %g outside [0,1]", c.Arrow.Alpha)
	}
	if c.Arrow.Thickness > 0 {
		o.Thickness = c.Arrow.Thickness
	}
	o.T = c.Arrow.T
	if c.Arrow.Color != "" {
		col, err := diagram.ParseColor(c.Arrow.Color, diagram.AlphaByte(c.Arrow.Alpha))
		if err != nil {
			return o, fmt.Errorf("arrow.color: %w", err)
		}
		o.Color = col
		o.TipColor = col
		o.TipColor.A = 255
	} else {
		o.Color.A = diagram.AlphaByte(c.Arrow.Alpha)
	}
	return o, nil
}
