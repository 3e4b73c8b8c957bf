// Package config reads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by the CLI commands.
type Config struct {
	// Port is the TCP port the server binds on all interfaces.
	Port int
	// PhrasesFile is the JSON corpus loaded at startup and on reload.
	PhrasesFile string
	// StaticDir holds index.html and the logo.
	StaticDir string
	// Watch enables automatic reload when PhrasesFile changes.
	Watch bool
	// HistoryDB is the SQLite file recording harvested sentences. Empty disables it.
	HistoryDB string
	LogLevel  string
}

// Load reads the configuration from the environment. When envFile is set and
// exists it is loaded first; variables already in the environment win.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	return &Config{
		Port:        getEnvAsInt("PORT", 8080),
		PhrasesFile: getEnv("TATOEBANDO_PHRASES", "phrases.json"),
		StaticDir:   getEnv("TATOEBANDO_STATIC", "."),
		Watch:       getEnvAsBool("TATOEBANDO_WATCH", false),
		HistoryDB:   getEnv("TATOEBANDO_HISTORY", "harvest.db"),
		LogLevel:    getEnv("TATOEBANDO_LOG_LEVEL", "info"),
	}, nil
}

// Addr returns the listen address on all interfaces.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 || value > 65535 {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
