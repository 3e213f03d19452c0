package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the persisted samla settings.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Game     GameConfig     `toml:"game"`
	Logging  LoggingConfig  `toml:"logging"`
}

// DatabaseConfig locates the save database.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// CatalogConfig locates the item and skill feeds.
type CatalogConfig struct {
	Dir string `toml:"dir"`
}

// GameConfig tunes the simulation driver.
type GameConfig struct {
	// TickInterval is how often the driver advances the engine by one
	// tick. The engine itself is interval-agnostic.
	TickInterval string `toml:"tick_interval"`
	// MaxNotifications caps the transient event feed in the TUI.
	MaxNotifications int `toml:"max_notifications"`
}

// LoggingConfig tunes runtime logging.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default returns the baseline configuration for the given paths.
func Default(dbPath, catalogDir string) Config {
	return Config{
		Database: DatabaseConfig{Path: dbPath},
		Catalog:  CatalogConfig{Dir: catalogDir},
		Game: GameConfig{
			TickInterval:     "1s",
			MaxNotifications: 5,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a TOML config file over the provided defaults. A missing
// or empty file keeps the defaults.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}
	if strings.TrimSpace(c.Catalog.Dir) == "" {
		return errors.New("catalog dir is required")
	}
	if _, err := c.TickDuration(); err != nil {
		return err
	}
	if c.Game.MaxNotifications < 1 {
		return errors.New("game.max_notifications must be >= 1")
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	return nil
}

// TickDuration parses the configured tick interval.
func (c Config) TickDuration() (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(c.Game.TickInterval))
	if err != nil {
		return 0, fmt.Errorf("invalid game.tick_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("game.tick_interval must be positive, got %q", c.Game.TickInterval)
	}
	return d, nil
}

// EnsureConfigDir creates the directory holding the config file.
func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
