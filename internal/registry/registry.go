// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

// Package registry reads the monitored store list and the artist allow-list.
//
// A run takes one Snapshot at its start and uses it throughout; later
// registry edits apply to the next run. Backends are DuckDB tables, a
// MongoDB database or a YAML file.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/playledger/internal/models"
	"github.com/tomtom215/playledger/internal/settlement"
)

// ErrUnavailable wraps any failure to read the registry. It is fatal for a run.
var ErrUnavailable = errors.New("registry unavailable")

// ErrDuplicateStore means the registry lists the same store ID twice.
var ErrDuplicateStore = errors.New("duplicate store id")

// Reader loads the registry.
type Reader interface {
	LoadStores(ctx context.Context) ([]models.MonitoredStore, error)
	LoadArtistAllowList(ctx context.Context) (settlement.AllowList, error)
}

// Source is the raw access a backend provides. Readers built from a Source
// apply the same allow-list rules regardless of backend.
type Source interface {
	LoadStores(ctx context.Context) ([]models.MonitoredStore, error)
	LoadArtists(ctx context.Context) ([]models.MonitoredArtist, error)
}

// artistDoc is an artist as stored by the file and Mongo backends. Active
// stays nil when the field is absent, and absent means active.
type artistDoc struct {
	Name       string `yaml:"name" bson:"name"`
	Normalized string `yaml:"normalized" bson:"normalized"`
	Active     *bool  `yaml:"active" bson:"active,omitempty"`
}

func artistsFromDocs(docs []artistDoc) []models.MonitoredArtist {
	artists := make([]models.MonitoredArtist, 0, len(docs))
	for _, d := range docs {
		artists = append(artists, models.MonitoredArtist{
			Name:       d.Name,
			Normalized: d.Normalized,
			Active:     d.Active == nil || *d.Active,
		})
	}
	return artists
}

// sourceReader adapts a Source to Reader.
type sourceReader struct {
	src Source
}

// NewReader returns a Reader over src.
func NewReader(src Source) Reader {
	return &sourceReader{src: src}
}

func (r *sourceReader) LoadStores(ctx context.Context) ([]models.MonitoredStore, error) {
	stores, err := r.src.LoadStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load stores: %w", ErrUnavailable, err)
	}
	return stores, nil
}

func (r *sourceReader) LoadArtistAllowList(ctx context.Context) (settlement.AllowList, error) {
	artists, err := r.src.LoadArtists(ctx)
	if err != nil {
		return settlement.AllowList{}, fmt.Errorf("%w: load artists: %w", ErrUnavailable, err)
	}
	return settlement.AllowListFromArtists(artists), nil
}

// Snapshot is the registry as of the start of one run.
type Snapshot struct {
	Stores   []models.MonitoredStore
	ByID     map[string]models.MonitoredStore
	Allow    settlement.AllowList
	LoadedAt time.Time
}

// StoreIDs returns the store IDs in registry order.
func (s *Snapshot) StoreIDs() []string {
	ids := make([]string, len(s.Stores))
	for i, st := range s.Stores {
		ids[i] = st.ID
	}
	return ids
}

// Load reads stores and the allow-list from r. Stores with an empty ID are
// rejected, as are duplicate IDs.
func Load(ctx context.Context, r Reader) (*Snapshot, error) {
	stores, err := r.LoadStores(ctx)
	if err != nil {
		return nil, err
	}
	allow, err := r.LoadArtistAllowList(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.MonitoredStore, len(stores))
	for _, s := range stores {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: store %q has no id", ErrUnavailable, s.Name)
		}
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: %w: %s", ErrUnavailable, ErrDuplicateStore, s.ID)
		}
		byID[s.ID] = s
	}

	return &Snapshot{
		Stores:   stores,
		ByID:     byID,
		Allow:    allow,
		LoadedAt: time.Now().UTC(),
	}, nil
}
