// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/clocktail/internal/model"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileName is the config file name, both globally and per project.
const FileName = "clocktail.yml"

// DataFileName is the default document name, placed next to the executable.
const DataFileName = "tasks.json"

// Config holds all configuration values for clocktail.
type Config struct {
	DataFile    string        `mapstructure:"data_file" yaml:"data_file"`
	Retention   time.Duration `mapstructure:"retention" yaml:"retention"`
	LogLevel    string        `mapstructure:"log_level" yaml:"log_level"`
	LogFile     string        `mapstructure:"log_file" yaml:"log_file"`
	ClearScreen bool          `mapstructure:"clear_screen" yaml:"clear_screen"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		DataFile:    DefaultDataFile(),
		Retention:   model.DefaultRetention,
		LogLevel:    "info",
		LogFile:     "",
		ClearScreen: true,
	}
}

// Load loads configuration with full precedence:
// ENV vars > project config > XDG global config > defaults.
// Command-line flags are applied on top by the caller.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	def := Default()
	v.SetDefault("data_file", def.DataFile)
	v.SetDefault("retention", def.Retention)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("clear_screen", def.ClearScreen)

	v.SetEnvPrefix("CLOCKTAIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"data_file", "retention", "log_level", "log_file", "clear_screen"} {
		if err := v.BindEnv(key, "CLOCKTAIL_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that viper cannot type-check.
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("data_file must not be empty")
	}
	if c.Retention <= 0 {
		return fmt.Errorf("retention must be positive, got %s", c.Retention)
	}
	return nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// DefaultDataFile returns tasks.json in the directory of the running
// executable, or in the working directory if that cannot be determined.
func DefaultDataFile() string {
	exe, err := os.Executable()
	if err != nil {
		return DataFileName
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), DataFileName)
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/clocktail/clocktail.yml or $XDG_CONFIG_HOME/clocktail/clocktail.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "clocktail", FileName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "clocktail", FileName)
}

// ProjectPath returns the config path in the current working directory.
func ProjectPath() string {
	return FileName
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the current working directory.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
