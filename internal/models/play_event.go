// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package models

import (
	"strconv"
	"time"
)

// RawPlayEvent is one completed play as reported by the scrobble API.
type RawPlayEvent struct {
	StoreID string `json:"store_id"`
	Track   string `json:"track"`
	Artist  string `json:"artist"`
	Album   string `json:"album,omitempty"`

	// PlayedAt is the source timestamp in UTC, truncated to the second.
	PlayedAt time.Time `json:"played_at"`

	TrackMBID  string `json:"track_mbid,omitempty"`
	ArtistMBID string `json:"artist_mbid,omitempty"`
	URL        string `json:"url,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`

	CollectedAt time.Time `json:"collected_at"`
}

// EventKey identifies a raw event: store plus source timestamp in whole seconds.
type EventKey struct {
	StoreID  string
	UnixTime int64
}

// String renders the key as <storeID>_<unix seconds>.
func (k EventKey) String() string {
	return k.StoreID + "_" + strconv.FormatInt(k.UnixTime, 10)
}

// Key returns the dedup key of the event.
func (e *RawPlayEvent) Key() EventKey {
	return EventKey{StoreID: e.StoreID, UnixTime: e.PlayedAt.Unix()}
}

// CanonicalEvent is a raw event that survived deduplication.
type CanonicalEvent struct {
	RawPlayEvent

	// LocalDate is the store-local calendar date, YYYY-MM-DD.
	LocalDate string `json:"local_date"`
}

// Exclusion records a play that was seen but not counted.
type Exclusion struct {
	StoreID   string    `json:"store_id"`
	LocalDate string    `json:"local_date"`
	PlayedAt  time.Time `json:"played_at"`
	Artist    string    `json:"artist"`
	Track     string    `json:"track"`
	Reason    string    `json:"reason"`
}

// Exclusion reasons.
const (
	ReasonArtistNotAllowed = "artist not allowed"
	ReasonDailyCap         = "daily cap exceeded"
)
