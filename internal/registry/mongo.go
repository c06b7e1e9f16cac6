// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package registry

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/playledger/internal/config"
	"github.com/tomtom215/playledger/internal/logging"
	"github.com/tomtom215/playledger/internal/models"
)

// MongoSource reads the registry from two MongoDB collections.
type MongoSource struct {
	client  *mongo.Client
	stores  *mongo.Collection
	artists *mongo.Collection
	timeout time.Duration
}

// NewMongoSource connects to cfg.MongoURI and verifies the connection.
func NewMongoSource(ctx context.Context, cfg *config.RegistryConfig) (*MongoSource, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.MongoDatabase)
	logging.Info().
		Str("uri", logging.RedactURL(cfg.MongoURI)).
		Str("database", cfg.MongoDatabase).
		Msg("Registry connected to MongoDB")

	return &MongoSource{
		client:  client,
		stores:  db.Collection(cfg.StoresCollection),
		artists: db.Collection(cfg.ArtistsCollection),
		timeout: timeout,
	}, nil
}

// Close disconnects the client.
func (m *MongoSource) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// LoadStores implements Source.
func (m *MongoSource) LoadStores(ctx context.Context) ([]models.MonitoredStore, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	cursor, err := m.stores.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "store_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find stores: %w", err)
	}
	var stores []models.MonitoredStore
	if err := cursor.All(ctx, &stores); err != nil {
		return nil, fmt.Errorf("decode stores: %w", err)
	}
	return stores, nil
}

// LoadArtists implements Source.
func (m *MongoSource) LoadArtists(ctx context.Context) ([]models.MonitoredArtist, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	cursor, err := m.artists.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find artists: %w", err)
	}
	var docs []artistDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode artists: %w", err)
	}
	return artistsFromDocs(docs), nil
}

// SeedStores replaces the stores collection content. Used by tooling and
// integration tests.
func (m *MongoSource) SeedStores(ctx context.Context, stores []models.MonitoredStore) error {
	if _, err := m.stores.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear stores: %w", err)
	}
	if len(stores) == 0 {
		return nil
	}
	docs := make([]any, len(stores))
	for i := range stores {
		docs[i] = stores[i]
	}
	if _, err := m.stores.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert stores: %w", err)
	}
	return nil
}

// SeedArtists replaces the artists collection content.
func (m *MongoSource) SeedArtists(ctx context.Context, artists []models.MonitoredArtist) error {
	if _, err := m.artists.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear artists: %w", err)
	}
	if len(artists) == 0 {
		return nil
	}
	docs := make([]any, len(artists))
	for i := range artists {
		docs[i] = artists[i]
	}
	if _, err := m.artists.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert artists: %w", err)
	}
	return nil
}
