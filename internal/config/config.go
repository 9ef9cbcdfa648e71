// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Terraform TerraformConfig `yaml:"terraform"`
	Journal   JournalConfig   `yaml:"journal"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Colors    ColorConfig     `yaml:"colors"`
	UI        UIConfig        `yaml:"ui"`
}

// TerraformConfig describes how terraform is launched.
type TerraformConfig struct {
	// Binary is a path or a name looked up in PATH
	Binary string `yaml:"binary"`

	// WorkingDir is where terraform runs; empty means the current directory
	WorkingDir string `yaml:"working_dir"`

	// Env is merged over the inherited environment
	Env map[string]string `yaml:"env,omitempty"`

	// Timeout bounds every single terraform command
	Timeout Duration `yaml:"timeout"`

	// PlanFile is where plan saves and apply reads the plan
	PlanFile string `yaml:"plan_file"`
}

// JournalConfig holds the event journal settings.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MetricsConfig holds the metrics endpoint settings.
type MetricsConfig struct {
	// Listen is the address of the /metrics endpoint; empty disables it
	Listen string `yaml:"listen"`
}

// UIConfig holds the UI configuration values.
type UIConfig struct {
	// Type of spinner to use for loading animations
	// Available options: MiniDot, Dot, Line, Jump, Pulse, Points, Globe, Moon, Monkey, Meter
	// See full reference: https://pkg.go.dev/github.com/charmbracelet/bubbles@v0.20.0/spinner
	SpinnerType string `yaml:"spinner_type"`
}

// ColorConfig holds the color configuration values.
type ColorConfig struct {
	Info      string `yaml:"info"`      // Informational messages (cyan/blue)
	Success   string `yaml:"success"`   // Success messages (green)
	Warning   string `yaml:"warning"`   // Warning messages (yellow/orange)
	Error     string `yaml:"error"`     // Error messages (red)
	Highlight string `yaml:"highlight"` // Highlighted elements (purple)
	Faint     string `yaml:"faint"`     // Less important text (gray)
}

// Duration is a time.Duration written as a Go duration string ("30m").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q at line %d: %w", s, value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Terraform: TerraformConfig{
			Binary:   "terraform",
			Timeout:  Duration(time.Hour),
			PlanFile: "tfevents.tfplan",
		},
		Journal: JournalConfig{
			Enabled: true,
			Path:    "",
		},
		Colors: ColorConfig{
			Info:      "#3366cc",
			Success:   "#22aa22",
			Warning:   "#ffaa00",
			Error:     "#ff3333",
			Highlight: "#8833ff",
			Faint:     "#777777",
		},
		UI: UIConfig{
			SpinnerType: "MiniDot",
		},
	}
}

// ConfigDir returns the directory holding the config file and the journal.
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "tfevents"), nil
}

// ConfigFilePath returns the path to the configuration file.
func ConfigFilePath() (string, error) {
	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// LoadConfig loads the configuration from the default config file.
// If the file doesn't exist, it creates a default configuration.
// Returns the config, a flag indicating if the config was created, and any error.
func LoadConfig() (*Config, bool, error) {
	filename, err := ConfigFilePath()
	if err != nil {
		return nil, false, err
	}
	return LoadFrom(filename)
}

// LoadFrom loads the configuration from filename, creating it with defaults
// when it does not exist. Keys missing from the file keep their defaults.
func LoadFrom(filename string) (*Config, bool, error) {
	configCreated := false
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		if err := createDefaultConfig(filename); err != nil {
			return nil, false, fmt.Errorf("failed to create default config: %w", err)
		}
		configCreated = true
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, configCreated, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, configCreated, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Journal.Path == "" {
		config.Journal.Path = filepath.Join(filepath.Dir(filename), "journal.db")
	}

	return config, configCreated, nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Terraform.Binary) == "":
		return errors.New("terraform.binary must not be empty")
	case c.Terraform.Timeout <= 0:
		return fmt.Errorf("terraform.timeout must be positive, got %s", time.Duration(c.Terraform.Timeout))
	case strings.TrimSpace(c.Terraform.PlanFile) == "":
		return errors.New("terraform.plan_file must not be empty")
	case c.Journal.Enabled && c.Journal.Path == "":
		return errors.New("journal.path must be set when the journal is enabled")
	}
	return nil
}

// createDefaultConfig creates a default configuration file.
func createDefaultConfig(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	yamlString := string(data)

	yamlString = strings.Replace(yamlString,
		"journal:",
		`# An empty journal path stores the journal next to this file.
journal:`,
		1)

	yamlString = strings.Replace(yamlString,
		"ui:",
		`ui:
  # For spinner_type, available options are:
  # MiniDot, Dot, Line, Jump, Pulse, Points, Globe, Moon, Monkey, Meter
  # See: https://pkg.go.dev/github.com/charmbracelet/bubbles@v0.20.0/spinner`,
		1)

	if err := os.WriteFile(filename, []byte(yamlString), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
