package valuator

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log         LogConfig         `toml:"log"`
	DB          DBConfig          `toml:"db"`
	AI          AIConfig          `toml:"ai"`
	Spaces      SpacesConfig      `toml:"spaces"`
	Calibration CalibrationConfig `toml:"calibration"`
	Mongo       MongoConfig       `toml:"mongo"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
}

type AIConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	VisionModel    string `toml:"vision_model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type SpacesConfig struct {
	Enabled bool   `toml:"enabled"`
	Key     string `toml:"key"`
	Secret  string `toml:"secret"`
	Region  string `toml:"region"`
	Bucket  string `toml:"bucket"`
	Root    string `toml:"root"`
}

type CalibrationConfig struct {
	IntervalHours      int `toml:"interval_hours"`
	MaxConcurrentGames int `toml:"max_concurrent_games"`
}

type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}
