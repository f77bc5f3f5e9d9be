// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreNATS   = "nats"
	StoreSQLite = "sqlite"
)

// Intake collaborators.
const (
	IntakeLog     = "log"
	IntakeNATS    = "nats"
	IntakeCommand = "command"
)

// Config holds all configuration values for calculadora.
type Config struct {
	DataDir       string `mapstructure:"data_dir" yaml:"data_dir"`
	Store         string `mapstructure:"store" yaml:"store"`
	LogLevel      string `mapstructure:"log_level" yaml:"log_level"`
	LogFile       string `mapstructure:"log_file" yaml:"log_file"`
	Intake        string `mapstructure:"intake" yaml:"intake"`
	IntakeCommand string `mapstructure:"intake_command" yaml:"intake_command"`
	IntakeTimeout int    `mapstructure:"intake_timeout" yaml:"intake_timeout"` // seconds
	MCPPort       int    `mapstructure:"mcp_port" yaml:"mcp_port"`
}

// Default returns the configuration used when no file or env overrides exist.
func Default() *Config {
	return &Config{
		DataDir:       ".calculadora",
		Store:         StoreFile,
		LogLevel:      "info",
		Intake:        IntakeLog,
		IntakeTimeout: 30,
	}
}

// Load loads configuration with full precedence:
// ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("calculadora")

	def := Default()
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("store", def.Store)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("intake", def.Intake)
	v.SetDefault("intake_command", def.IntakeCommand)
	v.SetDefault("intake_timeout", def.IntakeTimeout)
	v.SetDefault("mcp_port", def.MCPPort)

	v.SetEnvPrefix("CALCULADORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicit bindings so Unmarshal sees env-only keys.
	for _, key := range []string{
		"data_dir", "store", "log_level", "log_file",
		"intake", "intake_command", "intake_timeout", "mcp_port",
	} {
		if err := v.BindEnv(key, "CALCULADORA_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	if globalPath := GlobalPath(); fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	if projectPath := ProjectPath(); fileExists(projectPath) {
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

// Validate rejects unknown backends and an intake command without a command.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreMemory, StoreNATS, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q (want file, memory, nats or sqlite)", c.Store)
	}
	switch c.Intake {
	case IntakeLog, IntakeNATS:
	case IntakeCommand:
		if strings.TrimSpace(c.IntakeCommand) == "" {
			return fmt.Errorf("intake %q requires intake_command", IntakeCommand)
		}
	default:
		return fmt.Errorf("unknown intake %q (want log, nats or command)", c.Intake)
	}
	if c.IntakeTimeout < 0 {
		return fmt.Errorf("intake_timeout must not be negative")
	}
	return nil
}

// Timeout returns the intake timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.IntakeTimeout) * time.Second
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns ~/.config/calculadora/calculadora.yml or
// $XDG_CONFIG_HOME/calculadora/calculadora.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "calculadora", "calculadora.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "calculadora", "calculadora.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "calculadora.yml"
}

// Write marshals cfg to YAML at path, creating parent directories.
func Write(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

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
