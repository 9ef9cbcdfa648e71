// Package cli provides command-line interface functionality.
package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"tfevents/internal/config"
	apperrors "tfevents/internal/errors"
)

// Flags represents the command-line flags shared by every command.
// Zero values leave the config file setting alone.
type Flags struct {
	ConfigPath  string
	Binary      string
	WorkingDir  string
	Env         []string
	Timeout     time.Duration
	PlanFile    string
	JournalPath string
	NoJournal   bool
	MetricsAddr string
	JSON        bool
	Debug       bool
	Yes         bool
}

// bind registers the flags on fs.
func (f *Flags) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&f.ConfigPath, "config", "c", "", "Config file path (default ~/.config/tfevents/config.yaml)")
	fs.StringVar(&f.Binary, "binary", "", "Terraform binary to run")
	fs.StringVarP(&f.WorkingDir, "chdir", "C", "", "Directory terraform runs in")
	fs.StringArrayVarP(&f.Env, "env", "e", nil, "Extra environment variable for terraform, KEY=VALUE (repeatable)")
	fs.DurationVar(&f.Timeout, "timeout", 0, "Deadline for each terraform command (e.g. 30m)")
	fs.StringVar(&f.PlanFile, "plan", "", "Plan file written by plan and read by apply")
	fs.StringVar(&f.JournalPath, "journal", "", "Event journal database path")
	fs.BoolVar(&f.NoJournal, "no-journal", false, "Do not record events in the journal")
	fs.StringVar(&f.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
	fs.BoolVar(&f.JSON, "json", false, "Print events as JSON lines")
	fs.BoolVar(&f.Debug, "debug", false, "Verbose logs")
	fs.BoolVarP(&f.Yes, "yes", "y", false, "Apply and destroy without asking for confirmation")
}

// loadConfig reads the config file and applies the flag overrides.
func (f *Flags) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.ConfigPath != "" {
		cfg, _, err = config.LoadFrom(f.ConfigPath)
	} else {
		cfg, _, err = config.LoadConfig()
	}
	if err != nil {
		return nil, apperrors.NewConfigurationError("config", "Failed to load configuration", err)
	}

	if err := f.apply(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigurationError("config", err.Error(), apperrors.ErrConfigurationInvalid)
	}
	return cfg, nil
}

// apply copies every flag that was set onto cfg.
func (f *Flags) apply(cfg *config.Config) error {
	if f.Binary != "" {
		cfg.Terraform.Binary = f.Binary
	}
	if f.WorkingDir != "" {
		cfg.Terraform.WorkingDir = f.WorkingDir
	}
	if f.Timeout != 0 {
		cfg.Terraform.Timeout = config.Duration(f.Timeout)
	}
	if f.PlanFile != "" {
		cfg.Terraform.PlanFile = f.PlanFile
	}
	if f.JournalPath != "" {
		cfg.Journal.Path = f.JournalPath
	}
	if f.NoJournal {
		cfg.Journal.Enabled = false
	}
	if f.MetricsAddr != "" {
		cfg.Metrics.Listen = f.MetricsAddr
	}

	for _, entry := range f.Env {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return apperrors.NewValidationError(
				"env",
				fmt.Sprintf("expected KEY=VALUE, got %q", entry),
				apperrors.ErrInvalidInput,
			)
		}
		if cfg.Terraform.Env == nil {
			cfg.Terraform.Env = map[string]string{}
		}
		cfg.Terraform.Env[key] = value
	}
	return nil
}

// validateEnvironment checks that terraform can actually be started.
func validateEnvironment(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.Terraform.Binary); err != nil {
		return apperrors.NewConfigurationError(
			"dependencies",
			fmt.Sprintf("Terraform executable %q not found", cfg.Terraform.Binary),
			err,
		)
	}

	if cfg.Terraform.WorkingDir != "" {
		info, err := os.Stat(cfg.Terraform.WorkingDir)
		if err != nil {
			return apperrors.NewValidationError("chdir", "Working directory is not accessible", err)
		}
		if !info.IsDir() {
			return apperrors.NewValidationError("chdir", fmt.Sprintf("%s is not a directory", cfg.Terraform.WorkingDir), apperrors.ErrInvalidInput)
		}
	}
	return nil
}

// workingDirLabel is the absolute directory terraform runs in, for the journal.
func workingDirLabel(cfg *config.Config) string {
	dir := cfg.Terraform.WorkingDir
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
