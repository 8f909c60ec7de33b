// Package config resolves learnlog settings from defaults, a JSONC config
// file, a .env file and LEARNLOG_* environment variables. Command-line flags
// are applied on top by the caller.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tailscale/hujson"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "LEARNLOG_"

// DefaultEnvFile is the .env file read from the working directory when
// Options.EnvFile is empty.
const DefaultEnvFile = ".env"

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigInvalid  = errors.New("invalid config")
)

var syncModes = []string{"OFF", "NORMAL", "FULL", "EXTRA"}

// Config holds all configuration options.
type Config struct {
	DBPath    string `json:"db_path"`
	BackupDir string `json:"backup_dir"`
	WAL       bool   `json:"wal"`
	Sync      string `json:"sync"`
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}

// Default returns the built-in configuration. An empty DBPath means the
// platform default location.
func Default() Config {
	return Config{
		Sync:      "FULL",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// fileConfig mirrors Config with pointers so a file can set a field to its
// zero value.
type fileConfig struct {
	DBPath    *string `json:"db_path"`
	BackupDir *string `json:"backup_dir"`
	WAL       *bool   `json:"wal"`
	Sync      *string `json:"sync"`
	LogLevel  *string `json:"log_level"`
	LogFormat *string `json:"log_format"`
}

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Options controls where Load looks.
type Options struct {
	// ConfigPath is an explicit config file. It must exist when set; otherwise
	// the default location is used if present.
	ConfigPath string
	// EnvFile is a .env file. Defaults to DefaultEnvFile, which may be absent.
	EnvFile string
	// Lookup reads the process environment. Defaults to os.LookupEnv.
	Lookup LookupFunc
}

// Sources records which files contributed to a Config.
type Sources struct {
	ConfigFile string
	EnvFile    string
}

// DefaultPath returns $XDG_CONFIG_HOME/learnlog/config.json, falling back to
// ~/.config/learnlog/config.json. It returns "" when neither can be resolved.
func DefaultPath(lookup LookupFunc) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if xdg, ok := lookup("XDG_CONFIG_HOME"); ok && xdg != "" {
		return filepath.Join(xdg, "learnlog", "config.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "learnlog", "config.json")
}

// Load resolves the configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Config file (explicit path, or the default location if it exists)
// 3. .env file
// 4. LEARNLOG_* environment variables
func Load(opts Options) (Config, Sources, error) {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg := Default()
	var sources Sources

	cfgPath, mustExist := opts.ConfigPath, opts.ConfigPath != ""
	if !mustExist {
		cfgPath = DefaultPath(lookup)
	}
	if cfgPath != "" {
		fc, loaded, err := loadFile(cfgPath, mustExist)
		if err != nil {
			return Config{}, Sources{}, err
		}
		if loaded {
			cfg = mergeFile(cfg, fc)
			sources.ConfigFile = cfgPath
		}
	}

	envFile, mustExist := opts.EnvFile, opts.EnvFile != ""
	if !mustExist {
		envFile = DefaultEnvFile
	}
	dotenv, err := godotenv.Read(envFile)
	switch {
	case err == nil:
		sources.EnvFile = envFile
	case os.IsNotExist(err) && !mustExist:
		dotenv = nil
	default:
		return Config{}, Sources{}, fmt.Errorf("%w: reading %s: %w", ErrConfigInvalid, envFile, err)
	}

	// Real environment variables win over the .env file, as with godotenv.Load.
	layered := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if cfg, err = mergeEnv(cfg, layered); err != nil {
		return Config{}, Sources{}, err
	}

	if err := Validate(cfg); err != nil {
		return Config{}, Sources{}, err
	}

	return cfg, sources, nil
}

func loadFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return fileConfig{}, false, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return fileConfig{}, false, nil
		}
		return fileConfig{}, false, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	fc, err := parseFile(data)
	if err != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}
	return fc, true, nil
}

func parseFile(data []byte) (fileConfig, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var fc fileConfig
	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return fileConfig{}, err
	}
	return fc, nil
}

func mergeFile(cfg Config, fc fileConfig) Config {
	if fc.DBPath != nil {
		cfg.DBPath = *fc.DBPath
	}
	if fc.BackupDir != nil {
		cfg.BackupDir = *fc.BackupDir
	}
	if fc.WAL != nil {
		cfg.WAL = *fc.WAL
	}
	if fc.Sync != nil {
		cfg.Sync = *fc.Sync
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
	return cfg
}

func mergeEnv(cfg Config, lookup LookupFunc) (Config, error) {
	strs := map[string]*string{
		"DB":         &cfg.DBPath,
		"BACKUP_DIR": &cfg.BackupDir,
		"SYNC":       &cfg.Sync,
		"LOG_LEVEL":  &cfg.LogLevel,
		"LOG_FORMAT": &cfg.LogFormat,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "WAL"); ok && v != "" {
		wal, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %sWAL=%q is not a boolean", ErrConfigInvalid, EnvPrefix, v)
		}
		cfg.WAL = wal
	}

	return cfg, nil
}

// Validate rejects settings the store would refuse at open time.
func Validate(cfg Config) error {
	if !ValidSyncMode(cfg.Sync) {
		return fmt.Errorf("%w: sync mode %q must be one of %s", ErrConfigInvalid, cfg.Sync, strings.Join(syncModes, ", "))
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q must be text or json", ErrConfigInvalid, cfg.LogFormat)
	}
	return nil
}

// ValidSyncMode reports whether mode is a SQLite synchronous setting.
func ValidSyncMode(mode string) bool {
	for _, m := range syncModes {
		if strings.EqualFold(mode, m) {
			return true
		}
	}
	return false
}
