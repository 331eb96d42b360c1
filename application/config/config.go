// Package config loads the assistant's persisted safety configuration: the
// capability map, safe roots, and numeric policy thresholds. The schema is
// a flat mapping; unknown keys are ignored and missing keys fall back to
// safe defaults.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/errors"
)

// Settings is the startup configuration snapshot. It is loaded once and
// treated as read-only for the session; reconfiguration means producing a
// new snapshot through an explicit, audited operation.
type Settings struct {
	// Capabilities maps capability names to their enabled state. Missing
	// names default to the minimal safe set.
	Capabilities map[string]bool `yaml:"capabilities"`

	// SafeRoots lists the allowed filesystem roots. "~" expands to the
	// user's home directory.
	SafeRoots []string `yaml:"safe_roots"`

	// MaxFileSizeMB escalates file operations above this size.
	MaxFileSizeMB int `yaml:"max_file_size_mb" validate:"gte=1,lte=10240"`

	// ConsentExpiryDays bounds allow-always grants.
	ConsentExpiryDays int `yaml:"consent_expiry_days" validate:"gte=1,lte=3650"`

	// ConsentTimeoutSeconds bounds an open consent prompt.
	ConsentTimeoutSeconds int `yaml:"consent_timeout_seconds" validate:"gte=1,lte=600"`

	// DryRun makes the execution gate simulate every action.
	DryRun bool `yaml:"dry_run"`

	// StateDir holds the consent store and audit log.
	StateDir string `yaml:"state_dir"`

	// LogLevel is the slog verbosity ("debug", "info", "warn", "error").
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// Default returns the documented safe defaults. Dry-run starts on, the way
// the assistant ships.
func Default() Settings {
	home, _ := os.UserHomeDir()
	return Settings{
		Capabilities:          map[string]bool{},
		SafeRoots:             defaultSafeRoots(home),
		MaxFileSizeMB:         5,
		ConsentExpiryDays:     30,
		ConsentTimeoutSeconds: 30,
		DryRun:                true,
		StateDir:              filepath.Join(home, ".desktop_assistant"),
		LogLevel:              "info",
	}
}

func defaultSafeRoots(home string) []string {
	return []string{
		filepath.Join(home, "Documents"),
		filepath.Join(home, "Downloads"),
		filepath.Join(home, "Desktop"),
		filepath.Join(home, "Projects"),
	}
}

// Option overrides a setting programmatically.
type Option func(*Settings)

// WithDryRun sets the dry-run flag.
func WithDryRun(enabled bool) Option {
	return func(s *Settings) {
		s.DryRun = enabled
	}
}

// WithStateDir sets the state directory.
func WithStateDir(dir string) Option {
	return func(s *Settings) {
		s.StateDir = dir
	}
}

// WithSafeRoots replaces the safe root list.
func WithSafeRoots(roots []string) Option {
	return func(s *Settings) {
		s.SafeRoots = roots
	}
}

var validate = validator.New()

// Load reads settings from path, merging over the defaults. A missing file
// is not an error: the defaults stand.
func Load(path string, opts ...Option) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return Settings{}, &errors.ConfigError{Err: err}
	}
	if err == nil {
		// yaml.Unmarshal leaves absent keys untouched and skips unknown
		// ones, which is exactly the forward-compatible merge we want.
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, &errors.ConfigError{Err: err}
		}
	}

	for _, opt := range opts {
		opt(&s)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the numeric thresholds and capability names.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return &errors.ConfigError{Field: errs[0].Field(), Err: err}
		}
		return &errors.ConfigError{Err: err}
	}
	for name := range s.Capabilities {
		if !entities.Capability(name).IsKnown() {
			return &errors.ConfigError{
				Field: "capabilities",
				Err:   &errors.UnknownCapabilityError{Name: name},
			}
		}
	}
	return nil
}

// CapabilityMap merges the configured capability states over the default
// minimal safe set.
func (s Settings) CapabilityMap() map[entities.Capability]bool {
	m := entities.DefaultCapabilities()
	for name, enabled := range s.Capabilities {
		m[entities.Capability(name)] = enabled
	}
	return m
}

// MaxFileSizeBytes returns the escalation threshold in bytes.
func (s Settings) MaxFileSizeBytes() int64 {
	return int64(s.MaxFileSizeMB) * 1024 * 1024
}

// ConsentTimeout returns the prompt timeout as a duration.
func (s Settings) ConsentTimeout() time.Duration {
	return time.Duration(s.ConsentTimeoutSeconds) * time.Second
}

// ConsentsPath returns the consent store location under the state dir.
func (s Settings) ConsentsPath() string {
	return filepath.Join(s.StateDir, "consents.yaml")
}

// AuditPath returns the audit log location under the state dir.
func (s Settings) AuditPath() string {
	return filepath.Join(s.StateDir, "audit.jsonl")
}
