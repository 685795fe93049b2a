package config

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"

	ierrors "github.com/standardbeagle/incheck/internal/errors"
)

// tomlConfig mirrors the KDL layout. Pointers distinguish "absent" from
// zero values so only the keys present in the file override cfg.
type tomlConfig struct {
	Project *struct {
		Root *string `toml:"root"`
	} `toml:"project"`
	Scan *struct {
		Extensions       []string `toml:"extensions"`
		MaxFileSize      any      `toml:"max_file_size"`
		RespectGitignore *bool    `toml:"respect_gitignore"`
		FollowSymlinks   *bool    `toml:"follow_symlinks"`
	} `toml:"scan"`
	Report *struct {
		Bare     *bool   `toml:"bare"`
		Unused   *bool   `toml:"unused"`
		Unlisted *bool   `toml:"unlisted"`
		Color    *bool   `toml:"color"`
		Format   *string `toml:"format"`
	} `toml:"report"`
	Performance *struct {
		Workers *int `toml:"workers"`
	} `toml:"performance"`
	Watch *struct {
		DebounceMs *int `toml:"debounce_ms"`
	} `toml:"watch"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// applyTOML overlays the settings present in a TOML document onto cfg.
func applyTOML(cfg *Config, content []byte) error {
	var tc tomlConfig
	if err := toml.Unmarshal(content, &tc); err != nil {
		return ierrors.NewConfigError("toml", "", fmt.Errorf("failed to parse TOML config: %w", err))
	}

	if tc.Project != nil && tc.Project.Root != nil {
		cfg.Project.Root = *tc.Project.Root
	}

	if s := tc.Scan; s != nil {
		if len(s.Extensions) > 0 {
			cfg.Scan.Extensions = normalizeExtensions(s.Extensions)
		}
		switch v := s.MaxFileSize.(type) {
		case nil:
		case int64:
			cfg.Scan.MaxFileSize = v
		case string:
			sz, err := parseSize(v)
			if err != nil {
				return ierrors.NewConfigError("scan.max_file_size", v, err)
			}
			cfg.Scan.MaxFileSize = sz
		default:
			return ierrors.NewConfigError("scan.max_file_size", fmt.Sprint(v),
				fmt.Errorf("expected integer or size string, got %T", v))
		}
		setBool(&cfg.Scan.RespectGitignore, s.RespectGitignore)
		setBool(&cfg.Scan.FollowSymlinks, s.FollowSymlinks)
	}

	if r := tc.Report; r != nil {
		setBool(&cfg.Report.Bare, r.Bare)
		setBool(&cfg.Report.Unused, r.Unused)
		setBool(&cfg.Report.Unlisted, r.Unlisted)
		setBool(&cfg.Report.Color, r.Color)
		if r.Format != nil {
			cfg.Report.Format = strings.ToLower(*r.Format)
		}
	}

	if tc.Performance != nil && tc.Performance.Workers != nil {
		cfg.Performance.Workers = *tc.Performance.Workers
	}
	if tc.Watch != nil && tc.Watch.DebounceMs != nil {
		cfg.Watch.DebounceMs = *tc.Watch.DebounceMs
	}

	cfg.AddInclude(tc.Include...)
	cfg.AddExclude(tc.Exclude...)
	return nil
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
