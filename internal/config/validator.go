package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	ierrors "github.com/standardbeagle/incheck/internal/errors"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
// Returns a *errors.ConfigError if validation fails
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return ierrors.NewConfigError("project.root", cfg.Project.Root, err)
	}

	if err := v.validateScanConfig(&cfg.Scan); err != nil {
		return err
	}

	if err := v.validateReportConfig(&cfg.Report); err != nil {
		return ierrors.NewConfigError("report.format", cfg.Report.Format, err)
	}

	if cfg.Performance.Workers < 0 {
		return ierrors.NewConfigError("performance.workers", fmt.Sprint(cfg.Performance.Workers),
			errors.New("workers cannot be negative"))
	}

	if cfg.Watch.DebounceMs < 0 {
		return ierrors.NewConfigError("watch.debounce_ms", fmt.Sprint(cfg.Watch.DebounceMs),
			errors.New("debounce cannot be negative"))
	}

	if err := v.validatePatterns("include", cfg.Include); err != nil {
		return err
	}
	if err := v.validatePatterns("exclude", cfg.Exclude); err != nil {
		return err
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

func (v *Validator) validateScanConfig(scan *Scan) error {
	if len(scan.Extensions) == 0 {
		return ierrors.NewConfigError("scan.extensions", "", errors.New("at least one extension is required"))
	}
	for _, ext := range scan.Extensions {
		if ext == "." || strings.ContainsAny(ext, `/\`) {
			return ierrors.NewConfigError("scan.extensions", ext, errors.New("invalid extension"))
		}
	}
	if scan.MaxFileSize <= 0 {
		return ierrors.NewConfigError("scan.max_file_size", fmt.Sprint(scan.MaxFileSize),
			fmt.Errorf("max file size must be positive, got %d", scan.MaxFileSize))
	}
	return nil
}

func (v *Validator) validateReportConfig(report *Report) error {
	switch report.Format {
	case FormatText, FormatJSON:
		return nil
	default:
		return fmt.Errorf("unknown format %q, expected %q or %q", report.Format, FormatText, FormatJSON)
	}
}

func (v *Validator) validatePatterns(field string, patterns []string) error {
	for _, p := range patterns {
		if p == "" || !doublestar.ValidatePattern(p) {
			return ierrors.NewConfigError(field, p, errors.New("malformed glob pattern"))
		}
	}
	return nil
}

// setSmartDefaults fills values left at zero.
func (v *Validator) setSmartDefaults(cfg *Config) {
	// Use cores-1 to leave headroom for the system, minimum of 1
	if cfg.Performance.Workers == 0 {
		cfg.Performance.Workers = cfg.ResolvedWorkers()
	}

	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = DefaultDebounceMs
	}

	cfg.Scan.Extensions = DeduplicatePatterns(cfg.Scan.Extensions)
}

// Validate is a convenience function for quick validation
func Validate(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
