package tamagotask

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
	Log   LogConfig   `toml:"log"`
	DB    DBConfig    `toml:"db"`
	Mongo MongoConfig `toml:"mongo"`
	Redis RedisConfig `toml:"redis"`
	Game  GameConfig  `toml:"game"`
}

type LogConfig struct {
	Level slog.Level `toml:"level"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// GameConfig carries the tunables of the progression engine. The defaults
// match the shipped client so a missing [game] section behaves identically.
type GameConfig struct {
	DataDir        string        `toml:"data_dir"`
	Sessions       SessionLimits `toml:"sessions"`
	RetentionMonth int           `toml:"retention_months"`
}

type SessionLimits struct {
	CooldownSeconds int `toml:"cooldown_seconds"`
	DailyCap        int `toml:"daily_cap"`
}
