// Package config loads the visualizer configuration and holds the runtime
// tunables that may change while the pipeline runs.
package config

import (
	"errors"
	"fmt"
	"os"

	"visualizer/internal/logging"

	"github.com/pelletier/go-toml/v2"
)

// Config mirrors the TOML file layout.
type Config struct {
	Peer    Peer    `toml:"peer"`
	View    View    `toml:"view"`
	Render  Render  `toml:"render"`
	Plugins Plugins `toml:"plugins"`
	Log     Log     `toml:"log"`
}

type Peer struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type View struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

type Render struct {
	Samples     int        `toml:"samples"`
	ClearColor  [3]float32 `toml:"clear_color"`
	FPSLimit    int        `toml:"fps_limit"`
	SlowFrameMS int        `toml:"slow_frame_ms"`
}

type Plugins struct {
	QueueCapacity int `toml:"queue_capacity"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Peer:    Peer{Host: "127.0.0.1", Port: 4000},
		View:    View{Width: 500, Height: 500},
		Render:  Render{Samples: 16, ClearColor: [3]float32{0.1, 0.1, 0.1}, SlowFrameMS: 50},
		Plugins: Plugins{QueueCapacity: 1024},
		Log:     Log{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("could not parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.Peer.Host == "" {
		errs = append(errs, errors.New("peer.host is empty"))
	}
	if c.Peer.Port <= 0 || c.Peer.Port > 65535 {
		errs = append(errs, fmt.Errorf("peer.port %d out of range", c.Peer.Port))
	}
	if c.View.Width <= 0 || c.View.Height <= 0 || c.View.Width > 65535 || c.View.Height > 65535 {
		errs = append(errs, fmt.Errorf("view size %dx%d out of range", c.View.Width, c.View.Height))
	}
	if c.Render.Samples < 0 {
		errs = append(errs, fmt.Errorf("render.samples %d is negative", c.Render.Samples))
	}
	if c.Render.FPSLimit < 0 {
		errs = append(errs, fmt.Errorf("render.fps_limit %d is negative", c.Render.FPSLimit))
	}
	if c.Plugins.QueueCapacity <= 0 {
		errs = append(errs, fmt.Errorf("plugins.queue_capacity %d must be positive", c.Plugins.QueueCapacity))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
