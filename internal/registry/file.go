// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package registry

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tomtom215/playledger/internal/models"
)

// fileRegistry is the YAML document read by FileSource:
//
//	stores:
//	  - id: store-001
//	    name: Shibuya
//	    franchise: partner-a
//	artists:
//	  - name: YOASOBI
//	  - name: Old Band
//	    active: false
type fileRegistry struct {
	Stores  []models.MonitoredStore `yaml:"stores"`
	Artists []artistDoc             `yaml:"artists"`
}

// FileSource reads the registry from a YAML file. The file is re-read on
// every call so edits apply to the next run.
type FileSource struct {
	path string
}

// NewFileSource returns a Source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) read(ctx context.Context) (*fileRegistry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}
	var reg fileRegistry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry file %s: %w", f.path, err)
	}
	return &reg, nil
}

// LoadStores implements Source.
func (f *FileSource) LoadStores(ctx context.Context) ([]models.MonitoredStore, error) {
	reg, err := f.read(ctx)
	if err != nil {
		return nil, err
	}
	return reg.Stores, nil
}

// LoadArtists implements Source.
func (f *FileSource) LoadArtists(ctx context.Context) ([]models.MonitoredArtist, error) {
	reg, err := f.read(ctx)
	if err != nil {
		return nil, err
	}
	return artistsFromDocs(reg.Artists), nil
}
