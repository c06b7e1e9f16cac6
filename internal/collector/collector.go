// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/playledger/internal/config"
	"github.com/tomtom215/playledger/internal/lastfm"
	"github.com/tomtom215/playledger/internal/logging"
	"github.com/tomtom215/playledger/internal/models"
	"github.com/tomtom215/playledger/internal/persist"
)

// TargetRawEvents labels raw event chunk commits.
const TargetRawEvents = "raw_events"

// maxPages stops a source that never reports an empty page.
const maxPages = 10000

// errSkipEvent marks a source entry that cannot become a play event.
var errSkipEvent = errors.New("skip event")

// EventWriter persists one chunk of raw events in one transaction.
type EventWriter interface {
	UpsertRawEvents(ctx context.Context, events []models.RawPlayEvent) error
}

// Options tune one Collector.
type Options struct {
	PageSize        int
	CommitThreshold int
	MaxOpsPerCommit int
	RetryAttempts   int
	RetryDelay      time.Duration
	StoreTimeout    time.Duration
}

// OptionsFromConfig reads Options from the source and settlement sections.
func OptionsFromConfig(src *config.SourceConfig, st *config.SettlementConfig) Options {
	return Options{
		PageSize:        src.PageSize,
		CommitThreshold: st.CommitThreshold,
		MaxOpsPerCommit: st.MaxOpsPerCommit,
		RetryAttempts:   st.RetryAttempts,
		RetryDelay:      st.RetryDelay,
		StoreTimeout:    st.StoreTimeout,
	}
}

// Result describes one store's collection.
type Result struct {
	EventsWritten int
	Skipped       int
	NowPlaying    int
	Pages         int
}

// Collector fetches and stores raw events. It is safe for concurrent use
// across stores.
type Collector struct {
	source lastfm.RecentTracksFetcher
	store  EventWriter
	opts   Options
	now    func() time.Time
}

// New creates a Collector.
func New(source lastfm.RecentTracksFetcher, store EventWriter, opts Options) *Collector {
	if opts.PageSize <= 0 || opts.PageSize > lastfm.MaxPageSize {
		opts.PageSize = lastfm.MaxPageSize
	}
	if opts.RetryAttempts < 1 {
		opts.RetryAttempts = 1
	}
	if opts.CommitThreshold <= 0 {
		opts.CommitThreshold = opts.MaxOpsPerCommit
	}
	return &Collector{source: source, store: store, opts: opts, now: time.Now}
}

// Collect pages storeID's plays in [start, end] and upserts them. Zero
// events is a success. On error the Result still reports what was written
// before the failure.
func (c *Collector) Collect(ctx context.Context, storeID string, start, end time.Time) (Result, error) {
	var res Result
	if c.opts.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.StoreTimeout)
		defer cancel()
	}
	ctx = logging.ContextWithStoreID(ctx, storeID)
	log := logging.Ctx(ctx)

	buf := make([]models.RawPlayEvent, 0, c.bufferCap())
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		n, err := c.flush(ctx, buf)
		res.EventsWritten += n
		buf = buf[:0]
		return err
	}

	for page := 1; page <= maxPages; page++ {
		var p *lastfm.RecentTracksPage
		err := c.retryWithBackoff(ctx, func() error {
			var err error
			p, err = c.source.RecentTracks(ctx, lastfm.RecentTracksRequest{
				User:  storeID,
				From:  start,
				To:    end,
				Page:  page,
				Limit: c.opts.PageSize,
			})
			return err
		})
		if err != nil {
			// Keep what was already fetched; it is valid and idempotent.
			if flushErr := flush(); flushErr != nil {
				log.Warn().Err(flushErr).Msg("Failed to flush buffered events after fetch failure")
			}
			return res, fmt.Errorf("fetch page %d: %w", page, err)
		}
		res.Pages++
		res.Skipped += p.Malformed

		completed := 0
		skippedOnPage := p.Malformed
		collectedAt := c.now().UTC()
		for i := range p.Tracks {
			t := &p.Tracks[i]
			if t.NowPlaying {
				res.NowPlaying++
				continue
			}
			ev, err := toEvent(storeID, t, collectedAt)
			if err != nil {
				if errors.Is(err, errSkipEvent) {
					res.Skipped++
					skippedOnPage++
					log.Debug().Err(err).Str("track", t.Name).Msg("Skipping malformed event")
					continue
				}
				return res, err
			}
			completed++
			if ev.PlayedAt.Before(start) || ev.PlayedAt.After(end) {
				continue
			}
			buf = append(buf, ev)
		}

		if len(buf) >= c.opts.CommitThreshold {
			if err := flush(); err != nil {
				return res, err
			}
		}

		if len(p.Tracks) == 0 && p.Malformed == 0 {
			break
		}
		if p.TotalPages > 0 && page >= p.TotalPages {
			break
		}
		// Without a page count, a page holding at most the now-playing track is the end.
		if p.TotalPages == 0 && completed == 0 && skippedOnPage == 0 {
			break
		}
	}

	if err := flush(); err != nil {
		return res, err
	}

	log.Debug().
		Int("events", res.EventsWritten).
		Int("skipped", res.Skipped).
		Int("now_playing", res.NowPlaying).
		Int("pages", res.Pages).
		Msg("Store collected")
	return res, nil
}

func (c *Collector) bufferCap() int {
	if c.opts.CommitThreshold > 0 && c.opts.CommitThreshold < 4*lastfm.MaxPageSize {
		return c.opts.CommitThreshold + c.opts.PageSize
	}
	return 4 * lastfm.MaxPageSize
}

// flush upserts events in chunks of MaxOpsPerCommit, retrying the batch on
// failure. It returns the number of events committed by the final attempt.
func (c *Collector) flush(ctx context.Context, events []models.RawPlayEvent) (int, error) {
	batch := persist.Batch[models.RawPlayEvent]{
		Target: TargetRawEvents,
		MaxOps: c.opts.MaxOpsPerCommit,
		Key: func(e models.RawPlayEvent) string {
			return e.Key().String()
		},
		Commit: c.store.UpsertRawEvents,
	}

	var out persist.Outcome
	err := c.retryWithBackoff(ctx, func() error {
		var err error
		out, err = batch.Run(ctx, events)
		return err
	})
	if err != nil {
		return out.Items, fmt.Errorf("store raw events: %w", err)
	}
	return out.Items, nil
}

// toEvent converts a completed track. Tracks without a timestamp, name or
// artist return errSkipEvent.
func toEvent(storeID string, t *lastfm.Track, collectedAt time.Time) (models.RawPlayEvent, error) {
	switch {
	case t.PlayedAt.IsZero():
		return models.RawPlayEvent{}, fmt.Errorf("%w: missing timestamp", errSkipEvent)
	case t.Name == "":
		return models.RawPlayEvent{}, fmt.Errorf("%w: missing track name", errSkipEvent)
	case t.Artist == "":
		return models.RawPlayEvent{}, fmt.Errorf("%w: missing artist", errSkipEvent)
	}
	return models.RawPlayEvent{
		StoreID:     storeID,
		Track:       t.Name,
		Artist:      t.Artist,
		Album:       t.Album,
		PlayedAt:    t.PlayedAt.UTC().Truncate(time.Second),
		TrackMBID:   t.MBID,
		ArtistMBID:  t.ArtistMBID,
		URL:         t.URL,
		ImageURL:    t.ImageURL,
		CollectedAt: collectedAt,
	}, nil
}
