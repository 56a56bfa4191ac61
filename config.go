package grove

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the engine configuration, normally loaded from a TOML file.
type Config struct {
	Game    GameConfig    `toml:"game"`
	Stage   StageConfig   `toml:"stage"`
	Logging LoggingConfig `toml:"logging"`
	Input   InputConfig   `toml:"input"`
}

type GameConfig struct {
	Title          string  `toml:"title"`
	Width          int     `toml:"width"`
	Height         int     `toml:"height"`
	FrameTimeLimit float64 `toml:"frame_time_limit"` // max seconds per step
	Background     string  `toml:"background"`       // color name
	Debug          bool    `toml:"debug"`
	ScreenshotDir  string  `toml:"screenshot_dir"`
}

type StageConfig struct {
	GridW         float64 `toml:"grid_w"`
	GridH         float64 `toml:"grid_h"`
	Sort          bool    `toml:"sort"`
	MaxCollisions int     `toml:"max_collisions"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type InputConfig struct {
	// Bindings maps key names (ebiten.Key strings, e.g. "ArrowLeft", "Z")
	// to action names.
	Bindings map[string]string `toml:"bindings"`
}

// LoadConfig reads and parses a TOML config file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig parses TOML data over the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Game: GameConfig{
			Title:          "grove",
			Width:          640,
			Height:         480,
			FrameTimeLimit: 1.0 / 15,
			Background:     "black",
			ScreenshotDir:  "screenshots",
		},
		Stage: StageConfig{
			GridW:         DefaultGridSize,
			GridH:         DefaultGridSize,
			MaxCollisions: DefaultMaxCollisions,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// stageOptions converts the [stage] section, filling the view size from
// [game].
func (c *Config) stageOptions() StageOptions {
	return StageOptions{
		W:             float64(c.Game.Width),
		H:             float64(c.Game.Height),
		GridW:         c.Stage.GridW,
		GridH:         c.Stage.GridH,
		Sort:          c.Stage.Sort,
		MaxCollisions: c.Stage.MaxCollisions,
	}
}
