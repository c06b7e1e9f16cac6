// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package registry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/tomtom215/playledger/internal/config"
	"github.com/tomtom215/playledger/internal/models"
)

type fakeSource struct {
	stores     []models.MonitoredStore
	artists    []models.MonitoredArtist
	storesErr  error
	artistsErr error
}

func (f *fakeSource) LoadStores(context.Context) ([]models.MonitoredStore, error) {
	return f.stores, f.storesErr
}

func (f *fakeSource) LoadArtists(context.Context) ([]models.MonitoredArtist, error) {
	return f.artists, f.artistsErr
}

func TestLoadSnapshot(t *testing.T) {
	t.Parallel()
	src := &fakeSource{
		stores: []models.MonitoredStore{
			{ID: "s1", Name: "Umeda", Franchise: "independent"},
			{ID: "s2", Name: "Shibuya", Franchise: "partner-a"},
		},
		artists: []models.MonitoredArtist{
			{Name: "YOASOBI", Active: true},
			{Name: "  Ado ", Active: true},
			{Name: "Retired", Active: false},
		},
	}

	snap, err := Load(context.Background(), NewReader(src))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Stores) != 2 || snap.ByID["s2"].Name != "Shibuya" {
		t.Errorf("stores = %+v", snap.Stores)
	}
	if got := snap.StoreIDs(); len(got) != 2 || got[0] != "s1" {
		t.Errorf("StoreIDs() = %v", got)
	}
	if !snap.Allow.IsAllowed("ado") || !snap.Allow.IsAllowed("yoasobi") {
		t.Error("active artists should be allowed")
	}
	if snap.Allow.IsAllowed("Retired") {
		t.Error("inactive artist should not be allowed")
	}
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()
	boom := errors.New("connection refused")

	tests := []struct {
		name    string
		src     *fakeSource
		wantErr error
	}{
		{"stores fail", &fakeSource{storesErr: boom}, ErrUnavailable},
		{"artists fail", &fakeSource{artistsErr: boom}, ErrUnavailable},
		{
			"duplicate store",
			&fakeSource{stores: []models.MonitoredStore{{ID: "s1"}, {ID: "s1"}}},
			ErrDuplicateStore,
		},
		{"empty id", &fakeSource{stores: []models.MonitoredStore{{Name: "nameless"}}}, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(context.Background(), NewReader(tt.src))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEmptyRegistryIsNotAnError(t *testing.T) {
	t.Parallel()
	snap, err := Load(context.Background(), NewReader(&fakeSource{}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Stores) != 0 || snap.Allow.Len() != 0 {
		t.Errorf("snapshot = %+v, want empty", snap)
	}
}

const registryYAML = `
stores:
  - id: store-001
    name: Shibuya
    franchise: partner-a
  - id: store-002
    name: Umeda
artists:
  - name: YOASOBI
  - name: Old Band
    active: false
`

func TestFileSource(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "registry.yaml")
	if err := os.WriteFile(path, []byte(registryYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	reader, closer, err := Open(context.Background(), &config.RegistryConfig{Backend: "file", FilePath: path}, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer closer.Close()

	snap, err := Load(context.Background(), reader)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Stores) != 2 || snap.ByID["store-001"].Franchise != "partner-a" {
		t.Errorf("stores = %+v", snap.Stores)
	}
	if !snap.Allow.IsAllowed("yoasobi") {
		t.Error("artist without active flag should default to active")
	}
	if snap.Allow.IsAllowed("old band") {
		t.Error("inactive artist should be excluded")
	}
}

func TestFileSourceErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("stores: [: nope"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{filepath.Join(dir, "missing.yaml"), bad} {
		_, err := Load(context.Background(), NewReader(NewFileSource(path)))
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("Load(%s) error = %v, want ErrUnavailable", path, err)
		}
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	t.Parallel()
	if _, _, err := Open(context.Background(), &config.RegistryConfig{Backend: "ldap"}, nil); err == nil {
		t.Error("Open() should reject unknown backend")
	}
	if _, _, err := Open(context.Background(), &config.RegistryConfig{Backend: "duckdb"}, nil); err == nil {
		t.Error("Open() duckdb without a source should fail")
	}
}

func TestArtistDocDecodingMatchesAcrossBackends(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  bson.D
		want bool
	}{
		{"active field absent", bson.D{{Key: "name", Value: "YOASOBI"}}, true},
		{"active true", bson.D{{Key: "name", Value: "YOASOBI"}, {Key: "active", Value: true}}, true},
		{"active false", bson.D{{Key: "name", Value: "YOASOBI"}, {Key: "active", Value: false}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			raw, err := bson.Marshal(tt.doc)
			if err != nil {
				t.Fatalf("bson.Marshal: %v", err)
			}
			var doc artistDoc
			if err := bson.Unmarshal(raw, &doc); err != nil {
				t.Fatalf("bson.Unmarshal: %v", err)
			}
			artists := artistsFromDocs([]artistDoc{doc})
			if len(artists) != 1 || artists[0].Active != tt.want || artists[0].Name != "YOASOBI" {
				t.Errorf("artists = %+v, want Active=%v", artists, tt.want)
			}
		})
	}
}
