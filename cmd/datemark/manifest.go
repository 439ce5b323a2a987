package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"datemark/internal/driver"
)

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Project projectSection `toml:"project"`
	Expand  expandSection  `toml:"expand"`
}

type projectSection struct {
	Name string `toml:"name"`
}

type expandSection struct {
	Marker     string   `toml:"marker"`
	Label      string   `toml:"label"`
	Template   string   `toml:"template"`
	Extensions []string `toml:"extensions"`
}

// findDatemarkToml walks up from startDir looking for datemark.toml.
func findDatemarkToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "datemark.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectManifest loads the nearest manifest above startDir. A missing
// manifest is not an error; the tool falls back to defaults.
func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findDatemarkToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := validateExpandSection(cfg.Expand); err != nil {
		return projectConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func validateExpandSection(s expandSection) error {
	if s.Marker != "" && strings.ContainsAny(s.Marker, " \t\n(\")") {
		return fmt.Errorf("expand.marker %q must not contain whitespace, quotes, or parentheses", s.Marker)
	}
	if s.Template != "" && strings.Count(s.Template, "%s") != 1 {
		return fmt.Errorf("expand.template %q must contain exactly one %%s placeholder", s.Template)
	}
	for _, ext := range s.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("expand.extensions entry %q must start with a dot", ext)
		}
	}
	return nil
}

// optionsFromManifest merges manifest values into driver defaults; unset
// fields stay zero and are defaulted by the driver.
func optionsFromManifest(manifest *projectManifest) driver.Options {
	opts := driver.Options{}
	if manifest == nil {
		return opts
	}
	opts.Marker = manifest.Config.Expand.Marker
	opts.Label = manifest.Config.Expand.Label
	opts.Template = manifest.Config.Expand.Template
	opts.Extensions = manifest.Config.Expand.Extensions
	return opts
}
