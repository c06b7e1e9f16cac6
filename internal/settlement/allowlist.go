// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package settlement

import (
	"sort"
	"strings"

	"github.com/tomtom215/playledger/internal/models"
)

// Normalize is the artist matching form: surrounding whitespace trimmed, lowercased.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AllowList is an immutable snapshot of allowed artists. The zero value
// allows nothing.
type AllowList struct {
	names map[string]struct{}
}

// NewAllowList builds a snapshot from artist names in any form.
func NewAllowList(names ...string) AllowList {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n = Normalize(n); n != "" {
			m[n] = struct{}{}
		}
	}
	return AllowList{names: m}
}

// AllowListFromArtists builds a snapshot from the active registry artists.
// The stored normalized form is re-normalized so a sloppy registry entry
// still matches the same way as event artist names.
func AllowListFromArtists(artists []models.MonitoredArtist) AllowList {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		if !a.Active {
			continue
		}
		n := a.Normalized
		if strings.TrimSpace(n) == "" {
			n = a.Name
		}
		names = append(names, n)
	}
	return NewAllowList(names...)
}

// IsAllowed reports whether artist matches an entry exactly after
// normalization. Punctuation and inner spacing are significant.
func (a AllowList) IsAllowed(artist string) bool {
	_, ok := a.names[Normalize(artist)]
	return ok
}

// Len returns the number of distinct allowed artists.
func (a AllowList) Len() int {
	return len(a.names)
}

// Names returns the normalized names, sorted.
func (a AllowList) Names() []string {
	out := make([]string, 0, len(a.names))
	for n := range a.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
