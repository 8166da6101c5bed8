// Package config loads runtime settings from the environment.
//
// Every setting has a RETROTAPE_ prefixed variable. An optional .env file is
// read first; variables already set in the environment win.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/ironsheep/retrotape-tracker/internal/tracker"
)

// Prefix is prepended to every variable name.
const Prefix = "RETROTAPE_"

// Config holds the settings shared by the commands.
type Config struct {
	Module     string
	Backend    string
	Mapping    string
	ParamsFile string
	Source     string
	Loop       bool
	SerialPath string
	Control    string
	StreamAddr string
	DBPath     string
	LogLevel   string
	LogFormat  string
}

// Load reads the optional env files and then the environment. With no
// files, ".env" in the working directory is tried; a missing default file
// is not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, errors.Wrap(err, "load env file")
		}
	}

	cfg := &Config{
		Module:     getEnv("MODULE", tracker.ModuleRetroTape),
		Backend:    getEnv("BACKEND", tracker.BackendNative),
		Mapping:    getEnv("MAPPING", ""),
		ParamsFile: getEnv("PARAMS_FILE", ""),
		Source:     getEnv("SOURCE", ""),
		Loop:       getEnvAsBool("LOOP", false),
		SerialPath: getEnv("SERIAL", "-"),
		Control:    getEnv("CONTROL", ""),
		StreamAddr: getEnv("STREAM_ADDR", ""),
		DBPath:     getEnv("DB_PATH", ""),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
	}
	return cfg, nil
}

// VideoMapping parses Mapping, returning nil when it is unset.
func (c *Config) VideoMapping() (*tracker.VideoMapping, error) {
	if strings.TrimSpace(c.Mapping) == "" {
		return nil, nil
	}
	return tracker.ParseVideoMapping(c.Mapping)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(Prefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(Prefix + key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
