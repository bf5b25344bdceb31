// Package config loads focusnest settings from defaults, an optional YAML
// file and FOCUSNEST_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/focusnest/internal/forest"
	"github.com/sandeepkv93/focusnest/internal/model"
)

const EnvPrefix = "FOCUSNEST"

type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

var (
	ErrUnknownBackend = errors.New("config: unknown storage backend")
	ErrExists         = errors.New("config: file already exists")
)

type StorageConfig struct {
	Backend Backend `yaml:"backend" mapstructure:"backend"`
	// Path defaults per backend, see DefaultStoragePath.
	Path string `yaml:"path" mapstructure:"path"`
}

type Config struct {
	FocusMinutes         int           `yaml:"focus_minutes" mapstructure:"focus_minutes"`
	BreakMinutes         int           `yaml:"break_minutes" mapstructure:"break_minutes"`
	Storage              StorageConfig `yaml:"storage" mapstructure:"storage"`
	LogFile              string        `yaml:"log_file" mapstructure:"log_file"`
	DesktopNotifications bool          `yaml:"desktop_notifications" mapstructure:"desktop_notifications"`
	ForestMax            int           `yaml:"forest_max" mapstructure:"forest_max"`
	SchedulerBuffer      int           `yaml:"scheduler_buffer" mapstructure:"scheduler_buffer"`
	// Timezone names the location used for the daily counter rollover.
	// Empty means the local zone.
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
}

func Default() Config {
	return Config{
		FocusMinutes: model.DefaultFocusMinutes,
		BreakMinutes: model.DefaultBreakMinutes,
		Storage: StorageConfig{
			Backend: BackendSQLite,
		},
		LogFile:              filepath.Join(cacheDir(), "focusnest.log"),
		DesktopNotifications: false,
		ForestMax:            forest.FullViewMax,
		SchedulerBuffer:      64,
	}
}

// Durations returns the configured phase lengths, clamped.
func (c Config) Durations() model.Durations {
	return model.Durations{FocusMinutes: c.FocusMinutes, BreakMinutes: c.BreakMinutes}.Clamp()
}

// Location resolves Timezone, falling back to the local zone when unset.
func (c Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "focusnest", "config.yaml")
	}
	return filepath.Join(homeDir(), ".config", "focusnest", "config.yaml")
}

// Load reads the config file at path (DefaultPath when empty) and applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath()
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("stat config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg.normalize()
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("focus_minutes", d.FocusMinutes)
	v.SetDefault("break_minutes", d.BreakMinutes)
	v.SetDefault("storage.backend", string(d.Storage.Backend))
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("desktop_notifications", d.DesktopNotifications)
	v.SetDefault("forest_max", d.ForestMax)
	v.SetDefault("scheduler_buffer", d.SchedulerBuffer)
	v.SetDefault("timezone", d.Timezone)
}

func (c Config) normalize() (Config, error) {
	d := c.Durations()
	c.FocusMinutes = d.FocusMinutes
	c.BreakMinutes = d.BreakMinutes

	c.Storage.Backend = Backend(strings.ToLower(strings.TrimSpace(string(c.Storage.Backend))))
	switch c.Storage.Backend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownBackend, c.Storage.Backend)
	}
	c.Storage.Path = expandHome(strings.TrimSpace(c.Storage.Path))
	if c.Storage.Path == "" {
		c.Storage.Path = DefaultStoragePath(c.Storage.Backend)
	}
	c.LogFile = expandHome(c.LogFile)

	if c.ForestMax <= 0 {
		c.ForestMax = forest.FullViewMax
	}
	if c.SchedulerBuffer <= 0 {
		c.SchedulerBuffer = Default().SchedulerBuffer
	}
	return c, nil
}

// Write stores cfg as YAML at path, creating parent directories. It refuses
// to overwrite an existing file unless force is set.
func Write(path string, cfg Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Marshal renders cfg the way Write stores it.
func Marshal(cfg Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DefaultStoragePath is the data file used by backend when none is set.
// The memory backend has no file.
func DefaultStoragePath(backend Backend) string {
	switch backend {
	case BackendSQLite:
		return filepath.Join(dataDir(), "focusnest.db")
	case BackendFile:
		return filepath.Join(dataDir(), "focusnest.json")
	default:
		return ""
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "focusnest")
	}
	return filepath.Join(homeDir(), ".local", "share", "focusnest")
}

func cacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "focusnest")
	}
	return filepath.Join(homeDir(), ".cache", "focusnest")
}

func expandHome(p string) string {
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}
