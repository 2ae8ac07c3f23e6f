package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	dirName      = ".mwo"
	fileName     = "config.json"
	dbFileName   = "mwo.db"
	envDBPath    = "MWO_DB_PATH"
	envLogLevel  = "MWO_LOG_LEVEL"
	envActor     = "MWO_ACTOR"
	defaultSweep = 5 * time.Minute
)

// Config represents the flat mwo configuration
type Config struct {
	Version        string `json:"version"`
	DBPath         string `json:"db_path,omitempty"`
	ActorUserID    int64  `json:"actor_user_id,omitempty"`    // user the CLI acts as
	DefaultHotelID int64  `json:"default_hotel_id,omitempty"` // used when --hotel is omitted
	LogLevel       string `json:"log_level,omitempty"`        // debug, info, warn, error
	SweepInterval  string `json:"sweep_interval,omitempty"`   // Go duration, e.g. "5m"
}

// LoadConfig reads .mwo/config.json from the specified directory.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, dirName, fileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	mwoDir := filepath.Join(dir, dirName)
	if err := os.MkdirAll(mwoDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", dirName, err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(mwoDir, fileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Resolve loads the effective configuration.
// Resolution order: cwd, then home directory, then built-in defaults;
// MWO_* environment variables override whatever was loaded.
func Resolve() (*Config, error) {
	cfg := &Config{Version: "1"}

	for _, dir := range candidateDirs() {
		loaded, err := LoadConfig(dir)
		if err == nil {
			cfg = loaded
			break
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.DBPath == "" {
		path, err := DefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.DBPath = path
	}
	return cfg, nil
}

func candidateDirs() []string {
	var dirs []string
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	return dirs
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(envActor); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envActor, v, err)
		}
		cfg.ActorUserID = id
	}
	return nil
}

// Sweep returns the SLA sweep interval, defaulting to five minutes.
func (c *Config) Sweep() (time.Duration, error) {
	if c.SweepInterval == "" {
		return defaultSweep, nil
	}
	d, err := time.ParseDuration(c.SweepInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid sweep_interval %q: %w", c.SweepInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("sweep_interval must be positive, got %s", d)
	}
	return d, nil
}

// DefaultDBPath returns ~/.mwo/mwo.db.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, dirName, dbFileName), nil
}
