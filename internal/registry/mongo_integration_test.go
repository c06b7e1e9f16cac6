// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

//go:build integration

package registry

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/tomtom215/playledger/internal/config"
	"github.com/tomtom215/playledger/internal/models"
	"github.com/tomtom215/playledger/internal/testinfra"
)

func TestMongoSource_Integration(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	mongoC, err := testinfra.NewMongoContainer(ctx)
	if err != nil {
		t.Fatalf("NewMongoContainer() error = %v", err)
	}
	testinfra.CleanupContainer(t, mongoC)

	cfg := &config.RegistryConfig{
		Backend:           "mongo",
		MongoURI:          mongoC.URI,
		MongoDatabase:     "playledger_test",
		StoresCollection:  "stores",
		ArtistsCollection: "artists",
		Timeout:           10 * time.Second,
	}
	src, err := NewMongoSource(ctx, cfg)
	if err != nil {
		t.Fatalf("NewMongoSource() error = %v", err)
	}
	defer src.Close()

	if err := src.SeedStores(ctx, []models.MonitoredStore{
		{ID: "s2", Name: "Shibuya", Franchise: "partner-a"},
		{ID: "s1", Name: "Umeda", Franchise: "independent"},
	}); err != nil {
		t.Fatalf("SeedStores() error = %v", err)
	}
	if err := src.SeedArtists(ctx, []models.MonitoredArtist{
		{Name: "YOASOBI", Normalized: "yoasobi", Active: true},
		{Name: "Gone", Normalized: "gone", Active: false},
	}); err != nil {
		t.Fatalf("SeedArtists() error = %v", err)
	}
	// Documents written by hand often omit the active flag.
	if _, err := src.artists.InsertOne(ctx, bson.D{{Key: "name", Value: "Ado"}}); err != nil {
		t.Fatalf("InsertOne() error = %v", err)
	}

	snap, err := Load(ctx, NewReader(src))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Stores) != 2 || snap.Stores[0].ID != "s1" {
		t.Errorf("stores = %+v, want sorted by store_id", snap.Stores)
	}
	if !snap.Allow.IsAllowed("YOASOBI") || !snap.Allow.IsAllowed("ado") || snap.Allow.IsAllowed("gone") {
		t.Errorf("allow list = %v", snap.Allow.Names())
	}
}
