package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vancomm/wfc-server/internal/grid"
	"github.com/vancomm/wfc-server/internal/wfc"
)

// Profile is a reusable set of generation parameters.
//
//	generator:
//	  pattern_size: 3
//	  enable_backtracking: true
//	sample: maps/cave.txt
//	width: 60
//	height: 30
type Profile struct {
	Generator wfc.Config `yaml:"generator"`
	// Sample is resolved relative to the profile file.
	Sample string `yaml:"sample,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
}

func defaultProfile() *Profile {
	return &Profile{
		Generator: wfc.DefaultConfig(),
		Width:     40,
		Height:    20,
	}
}

func loadProfile(path string) (*Profile, error) {
	profile := defaultProfile()
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read profile: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(profile); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unable to parse profile %s: %w", path, err)
	}
	if err := profile.Generator.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}

	if profile.Sample != "" && !filepath.IsAbs(profile.Sample) {
		profile.Sample = filepath.Join(filepath.Dir(path), profile.Sample)
	}

	return profile, nil
}

func loadSample(path string) (*grid.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read sample: %w", err)
	}
	sample, err := grid.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("unable to parse sample %s: %w", path, err)
	}
	return sample, nil
}

// catalogFor extracts patterns from the sample at path, or returns the
// built-in catalog when path is empty.
func catalogFor(path string, size int) (*wfc.Catalog, error) {
	if path == "" {
		return wfc.DefaultCatalog(size), nil
	}
	sample, err := loadSample(path)
	if err != nil {
		return nil, err
	}
	return wfc.Extract(sample, size), nil
}
