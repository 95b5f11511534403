package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Game      GameConfig      `toml:"game"`
	Physics   PhysicsConfig   `toml:"physics"`
	Assets    AssetsConfig    `toml:"assets"`
	Scripting ScriptingConfig `toml:"scripting"`
	Language  LanguageConfig  `toml:"language"`
	View      ViewConfig      `toml:"view"`
	Database  DatabaseConfig  `toml:"database"`
	Logging   LoggingConfig   `toml:"logging"`
}

type GameConfig struct {
	Title          string        `toml:"title"`
	Settings       string        `toml:"settings"`       // gameplay tunables TOML
	FrameRate      int           `toml:"frame_rate"`     // fixed simulation steps per second
	MaxFrameTime   time.Duration `toml:"max_frame_time"` // longest wall time fed to one frame
	MaxEntities    int           `toml:"max_entities"`
	ViewportWidth  float64       `toml:"viewport_width"` // world units
	ViewportHeight float64       `toml:"viewport_height"`
	StartTime      int64         // set at boot, not from config
}

type PhysicsConfig struct {
	Gravity            [2]float64 `toml:"gravity"`
	AllowSleep         bool       `toml:"allow_sleep"`
	VelocityIterations int        `toml:"velocity_iterations"`
	PositionIterations int        `toml:"position_iterations"`
	MetersPerPixel     float64    `toml:"meters_per_pixel"`
}

type AssetsConfig struct {
	Root    string `toml:"root"`
	Workers int    `toml:"workers"`
}

type ScriptingConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type LanguageConfig struct {
	File      string `toml:"file"`
	Preferred string `toml:"preferred"` // BCP 47 tag, "" = file default
}

type ViewConfig struct {
	Headless     bool    `toml:"headless"`
	CellsPerUnit float64 `toml:"cells_per_unit"`
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables run records
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	SaveInterval    int           `toml:"save_interval"` // frames between run record flushes
}

// Enabled reports whether run records go to a database.
func (c DatabaseConfig) Enabled() bool { return c.DSN != "" }

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	File   string `toml:"file"`   // "" = stderr; the terminal view owns the screen
}

// FrameTime is the fixed simulation step.
func (c GameConfig) FrameTime() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.FrameRate)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse overlays TOML data on the defaults. name is only used in errors.
func Parse(data []byte, name string) (*Config, error) {
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if cfg.Game.FrameRate <= 0 {
		return nil, fmt.Errorf("parse config %s: frame_rate must be positive, got %d", name, cfg.Game.FrameRate)
	}
	if cfg.Assets.Workers <= 0 {
		cfg.Assets.Workers = 1
	}
	cfg.Game.StartTime = time.Now().Unix()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Game: GameConfig{
			Title:          "Evolution",
			Settings:       "settings.toml",
			FrameRate:      60,
			MaxFrameTime:   250 * time.Millisecond,
			MaxEntities:    256,
			ViewportWidth:  20,
			ViewportHeight: 12,
		},
		Physics: PhysicsConfig{
			Gravity:            [2]float64{0, 10}, // Y grows downwards
			AllowSleep:         true,
			VelocityIterations: 6,
			PositionIterations: 2,
			MetersPerPixel:     1.0 / 32,
		},
		Assets: AssetsConfig{
			Root:    ".",
			Workers: 4,
		},
		Scripting: ScriptingConfig{
			Enabled: true,
			Dir:     "scripts",
		},
		Language: LanguageConfig{
			File:      "data/languages.yaml",
			Preferred: "en-GB",
		},
		View: ViewConfig{
			CellsPerUnit: 2,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
			SaveInterval:    300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "evolution.log",
		},
	}
}
