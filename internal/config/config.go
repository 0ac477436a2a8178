// Package config loads process configuration from CLI flags (parsed by
// cmd/server using urfave/cli/v3) merged with environment variables,
// returned as a single (*Config, error) pair.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the effective runtime configuration for one server process.
type Config struct {
	// Tick / simulation
	TickPeriod            time.Duration
	RandomizeSpawnPoints  bool

	// Filesystem
	ConfigFile string
	WWWRoot    string
	StateFile  string

	// Autosave
	SaveStatePeriod time.Duration
	HasSaveStatePeriod bool

	// Server
	Port int
	Env  string

	// Database
	GameDBURL string

	// Worker / pool sizing
	WorkerCount int
}

// FromFlags builds a Config from the parsed CLI flag values plus
// environment variables, failing with a FatalInit-class error if
// required configuration is missing — config-file, www-root and
// GAME_DB_URL must all be set.
func FromFlags(tickPeriodMs int64, configFile, wwwRoot string, randomizeSpawn bool, stateFile string, saveStatePeriodMs int64, hasSaveStatePeriod bool) (*Config, error) {
	if configFile == "" {
		return nil, fmt.Errorf("missing required flag: --config-file")
	}
	if wwwRoot == "" {
		return nil, fmt.Errorf("missing required flag: --www-root")
	}

	dbURL, err := getEnvRequired("GAME_DB_URL")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		TickPeriod:           time.Duration(tickPeriodMs) * time.Millisecond,
		RandomizeSpawnPoints: randomizeSpawn,
		ConfigFile:           configFile,
		WWWRoot:              wwwRoot,
		StateFile:            stateFile,
		SaveStatePeriod:      time.Duration(saveStatePeriodMs) * time.Millisecond,
		HasSaveStatePeriod:   hasSaveStatePeriod,
		Port:                 getEnvInt("PORT", 8080),
		Env:                  getEnv("ENV", "development"),
		GameDBURL:            dbURL,
		WorkerCount:          getEnvInt("WORKER_COUNT", 4),
	}
	return cfg, nil
}

// DebugYAML renders the effective configuration as YAML for the
// startup log banner. GameDBURL is intentionally omitted since it may
// embed credentials.
func (c *Config) DebugYAML() (string, error) {
	redacted := struct {
		TickPeriod           time.Duration `yaml:"tickPeriod"`
		RandomizeSpawnPoints bool          `yaml:"randomizeSpawnPoints"`
		ConfigFile           string        `yaml:"configFile"`
		WWWRoot              string        `yaml:"wwwRoot"`
		StateFile            string        `yaml:"stateFile"`
		SaveStatePeriod      time.Duration `yaml:"saveStatePeriod"`
		Port                 int           `yaml:"port"`
		Env                  string        `yaml:"env"`
		WorkerCount          int           `yaml:"workerCount"`
	}{
		TickPeriod:           c.TickPeriod,
		RandomizeSpawnPoints: c.RandomizeSpawnPoints,
		ConfigFile:           c.ConfigFile,
		WWWRoot:              c.WWWRoot,
		StateFile:            c.StateFile,
		SaveStatePeriod:      c.SaveStatePeriod,
		Port:                 c.Port,
		Env:                  c.Env,
		WorkerCount:          c.WorkerCount,
	}
	out, err := yaml.Marshal(redacted)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}
