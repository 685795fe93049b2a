// Build tree detection for C and C++ projects. Out-of-source build trees
// contain generated headers and sources that should not be checked.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// BuildArtifactDetector finds build output directories under a project root
type BuildArtifactDetector struct {
	projectRoot string
}

// NewBuildArtifactDetector creates a new build artifact detector
func NewBuildArtifactDetector(projectRoot string) *BuildArtifactDetector {
	return &BuildArtifactDetector{projectRoot: projectRoot}
}

// DetectOutputDirectories returns exclude globs for build trees found in the
// project root, e.g. "build-release/**".
func (bad *BuildArtifactDetector) DetectOutputDirectories() []string {
	var patterns []string

	patterns = append(patterns, bad.detectBuildTrees()...)
	patterns = append(patterns, bad.detectCMakePresetOutputs()...)

	return DeduplicatePatterns(patterns)
}

// detectBuildTrees marks top-level directories configured by CMake or Meson,
// and Bazel's convenience symlinks.
func (bad *BuildArtifactDetector) detectBuildTrees() []string {
	entries, err := os.ReadDir(bad.projectRoot)
	if err != nil {
		return nil
	}

	var patterns []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "bazel-") {
			patterns = append(patterns, name+"/**")
			continue
		}
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(bad.projectRoot, name)
		if fileExists(filepath.Join(dir, "CMakeCache.txt")) || dirExists(filepath.Join(dir, "meson-info")) {
			patterns = append(patterns, name+"/**")
		}
	}
	return patterns
}

// detectCMakePresetOutputs reads binaryDir entries from CMakePresets.json.
func (bad *BuildArtifactDetector) detectCMakePresetOutputs() []string {
	data, err := os.ReadFile(filepath.Join(bad.projectRoot, "CMakePresets.json"))
	if err != nil {
		return nil
	}

	var presets struct {
		ConfigurePresets []struct {
			BinaryDir string `json:"binaryDir"`
		} `json:"configurePresets"`
	}
	if json.Unmarshal(data, &presets) != nil {
		return nil
	}

	var patterns []string
	for _, p := range presets.ConfigurePresets {
		dir := strings.TrimPrefix(p.BinaryDir, "${sourceDir}/")
		// keep the fixed leading part of templated paths like build/${presetName}
		if idx := strings.Index(dir, "${"); idx >= 0 {
			dir = dir[:idx]
		}
		dir = strings.Trim(filepath.ToSlash(dir), "/")
		if dir == "" || strings.HasPrefix(dir, "..") || filepath.IsAbs(p.BinaryDir) {
			continue
		}
		patterns = append(patterns, dir+"/**")
	}
	return patterns
}

// EnrichExclusionsWithBuildArtifacts appends detected build trees to Exclude.
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	if c.Project.Root == "" {
		return
	}
	if detected := NewBuildArtifactDetector(c.Project.Root).DetectOutputDirectories(); len(detected) > 0 {
		c.AddExclude(detected...)
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
