// Package config resolves where learntrack keeps its database and log file.
// Each value comes from the first source that sets it: command-line flag,
// environment, .env file, built-in default.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	EnvDBPath  = "LEARNTRACK_DB"
	EnvLogPath = "LEARNTRACK_LOG"
	EnvDebug   = "LEARNTRACK_DEBUG"

	appDir = "learntrack"
)

type Config struct {
	DBPath  string
	LogPath string
	Debug   bool
}

// Flags carries values given on the command line. Empty fields are unset.
type Flags struct {
	DBPath  string
	LogPath string
}

// Load resolves the configuration. envFile is read if it exists; a missing
// file is not an error. The process environment is never modified.
func Load(flags Flags, envFile string) (Config, error) {
	dotenv := map[string]string{}
	if envFile != "" {
		vals, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			dotenv = vals
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return dotenv[key]
	}

	dir, err := DefaultDir()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:  first(flags.DBPath, lookup(EnvDBPath), filepath.Join(dir, "learntrack.db")),
		LogPath: first(flags.LogPath, lookup(EnvLogPath), filepath.Join(dir, "learntrack.log")),
	}
	if v := lookup(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s=%q: %w", EnvDebug, v, err)
		}
		cfg.Debug = debug
	}
	return cfg, nil
}

// DefaultDir returns the per-user directory for learntrack's files.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, appDir), nil
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
