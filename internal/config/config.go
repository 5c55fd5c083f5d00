// Package config loads habitr settings from ~/.config/habitr/config.toml and
// HABITR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	appName   = "habitr"
	envPrefix = "HABITR"
)

type LogConfig struct {
	Level      string `mapstructure:"level" toml:"level"`
	File       string `mapstructure:"file" toml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" toml:"max_age_days"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins" toml:"allow_origins"`
}

type Config struct {
	DBPath      string        `mapstructure:"db_path"`
	Addr        string        `mapstructure:"addr"`
	Timezone    string        `mapstructure:"timezone"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	Log         LogConfig     `mapstructure:"log"`
	CORS        CORSConfig    `mapstructure:"cors"`
}

// file is the on-disk layout; durations are written as strings like "5m0s".
type file struct {
	DBPath      string     `toml:"db_path"`
	Addr        string     `toml:"addr"`
	Timezone    string     `toml:"timezone"`
	IdleTimeout string     `toml:"idle_timeout"`
	Log         LogConfig  `toml:"log"`
	CORS        CORSConfig `toml:"cors"`
}

// Dir returns ~/.config/habitr.
func Dir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, appName), nil
}

// DefaultPath returns ~/.config/habitr/config.toml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Default returns the built-in configuration.
func Default() Config {
	dir, err := Dir()
	if err != nil {
		dir = "."
	}
	return Config{
		DBPath:      filepath.Join(dir, appName+".db"),
		Addr:        ":8080",
		Timezone:    "Local",
		IdleTimeout: 5 * time.Minute,
		Log: LogConfig{
			Level:      "info",
			File:       filepath.Join(dir, "logs", appName+".log"),
			MaxSizeMB:  20,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		CORS: CORSConfig{AllowOrigins: []string{"*"}},
	}
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("addr", d.Addr)
	v.SetDefault("timezone", d.Timezone)
	v.SetDefault("idle_timeout", d.IdleTimeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("cors.allow_origins", d.CORS.AllowOrigins)
}

// Load reads the config file at path, or the default location when path is
// empty. A missing file is not an error; defaults and environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := Dir()
		if err == nil {
			v.AddConfigPath(dir)
		}
		v.SetConfigName("config")
		v.SetConfigType("toml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("config: db_path is empty")
	}
	if c.IdleTimeout < 0 {
		return errors.New("config: idle_timeout must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves Timezone; "Local" and "" mean the system zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Marshal renders c as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(file{
		DBPath:      c.DBPath,
		Addr:        c.Addr,
		Timezone:    c.Timezone,
		IdleTimeout: c.IdleTimeout.String(),
		Log:         c.Log,
		CORS:        c.CORS,
	})
}

// ErrExists is returned by WriteDefault when the file is already present.
var ErrExists = errors.New("config file already exists")

// WriteDefault writes the built-in configuration to path. An existing file is
// only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	data, err := Default().Marshal()
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
