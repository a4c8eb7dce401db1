package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/pstuifzand/toodledo-to-todoist/internal/export"
)

// Config holds conversion settings
type Config struct {
	// FolderFilter keeps only folders whose name starts with this prefix
	FolderFilter     string `toml:"folder_filter" yaml:"folder_filter"`
	TaskLimit        int    `toml:"task_limit" yaml:"task_limit"`
	IncludeCompleted bool   `toml:"include_completed" yaml:"include_completed"`
	OutputDir        string `toml:"output_dir" yaml:"output_dir"`
	DueDateFormat    string `toml:"due_date_format" yaml:"due_date_format"`
	LogLevel         string `toml:"log_level" yaml:"log_level"`
}

// Load loads the config file from the standard location
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return defaultConfig(), nil // Return default if can't find config path
	}

	return LoadFromFile(configPath)
}

// LoadFromFile loads config from a specific file.
// Files ending in .yaml or .yml are read as YAML, anything else as TOML.
func LoadFromFile(filePath string) (*Config, error) {
	// If file doesn't exist, return default config
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return defaultConfig(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := defaultConfig()
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = toml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply defaults if not specified
	if config.TaskLimit == 0 {
		config.TaskLimit = export.DefaultTaskLimit
	}
	if config.OutputDir == "" {
		config.OutputDir = "."
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	return config, nil
}

// Validate checks values that cannot be corrected with a default
func (c *Config) Validate() error {
	if c.TaskLimit < 1 {
		return fmt.Errorf("task_limit must be at least 1, got %d", c.TaskLimit)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return nil
}

// Level returns the parsed log level, falling back to info
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// defaultConfig returns the default configuration
func defaultConfig() *Config {
	return &Config{
		TaskLimit: export.DefaultTaskLimit,
		OutputDir: ".",
		LogLevel:  "info",
	}
}

// Default returns a fresh default configuration
func Default() *Config {
	return defaultConfig()
}

// GetConfigDir returns the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(home, ".config", "toodledo-export")
	return configDir, nil
}

// Save writes the configuration as TOML to filePath, creating its directory
func (c *Config) Save(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	// Marshall the config to TOML
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
