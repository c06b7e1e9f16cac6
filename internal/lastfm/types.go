// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package lastfm

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Track is one scrobble as returned by the API.
type Track struct {
	Name       string
	Artist     string
	ArtistMBID string
	Album      string
	MBID       string
	URL        string
	ImageURL   string

	// PlayedAt is zero when the API sent no usable date.uts.
	PlayedAt time.Time

	// NowPlaying marks the in-progress track. It has no timestamp and is
	// not a completed play.
	NowPlaying bool
}

// RecentTracksPage is one decoded page.
type RecentTracksPage struct {
	Tracks []Track

	Page       int
	PerPage    int
	Total      int
	TotalPages int // 0 when the API omitted or garbled it

	// Malformed counts track elements that could not be decoded at all.
	Malformed int
}

// flexInt accepts 12, "12" or garbage; garbage decodes as 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(n)
	return nil
}

// flexBool accepts true, "true" and "1".
type flexBool bool

func (f *flexBool) UnmarshalJSON(b []byte) error {
	s := strings.ToLower(strings.Trim(string(bytes.TrimSpace(b)), `"`))
	*f = s == "true" || s == "1"
	return nil
}

// textField is the {"#text": "...", "mbid": "..."} shape used for artist and
// album. Extended responses use "name" instead of "#text".
type textField struct {
	Text string `json:"#text"`
	Name string `json:"name"`
	MBID string `json:"mbid"`
}

func (t *textField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &t.Text)
	}
	type plain textField
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*t = textField(p)
	return nil
}

func (t textField) value() string {
	if t.Text != "" {
		return t.Text
	}
	return t.Name
}

type wireImage struct {
	Size string `json:"size"`
	URL  string `json:"#text"`
}

type wireTrack struct {
	Name   string      `json:"name"`
	MBID   string      `json:"mbid"`
	URL    string      `json:"url"`
	Artist textField   `json:"artist"`
	Album  textField   `json:"album"`
	Image  []wireImage `json:"image"`
	Date   *struct {
		UTS flexInt `json:"uts"`
	} `json:"date"`
	Attr *struct {
		NowPlaying flexBool `json:"nowplaying"`
	} `json:"@attr"`
}

func (w *wireTrack) track() Track {
	t := Track{
		Name:       strings.TrimSpace(w.Name),
		Artist:     strings.TrimSpace(w.Artist.value()),
		ArtistMBID: w.Artist.MBID,
		Album:      strings.TrimSpace(w.Album.value()),
		MBID:       w.MBID,
		URL:        w.URL,
	}
	// The last image is the largest.
	for i := len(w.Image) - 1; i >= 0; i-- {
		if w.Image[i].URL != "" {
			t.ImageURL = w.Image[i].URL
			break
		}
	}
	if w.Date != nil && w.Date.UTS > 0 {
		t.PlayedAt = time.Unix(int64(w.Date.UTS), 0).UTC()
	}
	if w.Attr != nil {
		t.NowPlaying = bool(w.Attr.NowPlaying)
	}
	return t
}

// rawTracks holds "track" as either an object or an array of objects.
type rawTracks []json.RawMessage

func (r *rawTracks) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*r = nil
		return nil
	case b[0] == '[':
		var list []json.RawMessage
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*r = list
		return nil
	default:
		*r = rawTracks{json.RawMessage(append([]byte(nil), b...))}
		return nil
	}
}

type wireRecentTracks struct {
	RecentTracks *struct {
		Track rawTracks `json:"track"`
		Attr  struct {
			Page       flexInt `json:"page"`
			PerPage    flexInt `json:"perPage"`
			Total      flexInt `json:"total"`
			TotalPages flexInt `json:"totalPages"`
		} `json:"@attr"`
	} `json:"recenttracks"`

	// Error payloads arrive with HTTP 200 or 4xx.
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// decodeRecentTracks parses a response body. An error payload is returned
// as *APIError.
func decodeRecentTracks(body []byte) (*RecentTracksPage, error) {
	var w wireRecentTracks
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, &MalformedResponseError{Err: err, Body: excerpt(body)}
	}
	if w.Error != 0 {
		return nil, &APIError{Code: w.Error, Message: w.Message}
	}
	if w.RecentTracks == nil {
		return nil, &MalformedResponseError{Body: excerpt(body)}
	}

	rt := w.RecentTracks
	page := &RecentTracksPage{
		Page:       int(rt.Attr.Page),
		PerPage:    int(rt.Attr.PerPage),
		Total:      int(rt.Attr.Total),
		TotalPages: int(rt.Attr.TotalPages),
		Tracks:     make([]Track, 0, len(rt.Track)),
	}
	for _, raw := range rt.Track {
		var wt wireTrack
		if err := json.Unmarshal(raw, &wt); err != nil {
			page.Malformed++
			continue
		}
		page.Tracks = append(page.Tracks, wt.track())
	}
	return page, nil
}

func excerpt(body []byte) string {
	const maxExcerpt = 256
	if len(body) > maxExcerpt {
		return string(body[:maxExcerpt]) + "..."
	}
	return string(body)
}
