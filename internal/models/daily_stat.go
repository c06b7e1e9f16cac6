// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package models

import "time"

// DateLayout is the format of every store-local date in the system.
const DateLayout = "2006-01-02"

// StatKey identifies one DailyStat.
type StatKey struct {
	Date    string
	StoreID string
}

// String renders the key as <date>_<storeID>, the persisted document ID.
func (k StatKey) String() string {
	return k.Date + "_" + k.StoreID
}

// DailyStat is the validated play count of one store on one store-local date.
type DailyStat struct {
	Date    string `json:"date"`
	StoreID string `json:"store_id"`

	ValidatedPlays int `json:"validated_plays"`

	// Denormalized from MonitoredStore at write time.
	StoreName string `json:"store_name"`
	Franchise string `json:"franchise"`

	// Audit counts. RawPlays = ValidatedPlays + ExcludedPlays + CappedPlays.
	RawPlays      int `json:"raw_plays"`
	ExcludedPlays int `json:"excluded_plays"`
	CappedPlays   int `json:"capped_plays"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the record's key.
func (s *DailyStat) Key() StatKey {
	return StatKey{Date: s.Date, StoreID: s.StoreID}
}

// SameCounts reports whether two stats hold identical counts. Write
// timestamps and denormalized labels are ignored.
func (s *DailyStat) SameCounts(o *DailyStat) bool {
	return s.ValidatedPlays == o.ValidatedPlays &&
		s.RawPlays == o.RawPlays &&
		s.ExcludedPlays == o.ExcludedPlays &&
		s.CappedPlays == o.CappedPlays
}
