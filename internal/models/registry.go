// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package models

// MonitoredStore is one participating location. ID is the store's user name
// on the scrobble API and the lookup key everywhere else.
type MonitoredStore struct {
	ID        string `json:"id" yaml:"id" bson:"store_id"`
	Name      string `json:"name" yaml:"name" bson:"name"`
	Franchise string `json:"franchise" yaml:"franchise" bson:"franchise"`
	OwnerID   string `json:"owner_id,omitempty" yaml:"owner_id" bson:"owner_id"`
}

// MonitoredArtist is one allow-listed artist.
type MonitoredArtist struct {
	Name       string `json:"name" yaml:"name" bson:"name"`
	Normalized string `json:"normalized" yaml:"normalized" bson:"normalized"`
	Active     bool   `json:"active" yaml:"active" bson:"active"`
}
