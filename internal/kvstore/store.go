// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/playledger/internal/config"
	"github.com/tomtom215/playledger/internal/logging"
	"github.com/tomtom215/playledger/internal/models"
)

const (
	prefixRaw      = "raw/"
	prefixStat     = "stat/"
	prefixRun      = "run/"
	prefixRunIndex = "runidx/"
)

var (
	// ErrRunNotFound is returned by Run for an unknown run ID.
	ErrRunNotFound = models.ErrRunNotFound

	// ErrChunkTooLarge means one chunk did not fit in a Badger transaction.
	ErrChunkTooLarge = errors.New("chunk exceeds transaction size limit")
)

// Store is a BadgerDB-backed event and stat store.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store. cfg.BadgerInMemory keeps everything in
// memory, which tests use.
func Open(cfg *config.StorageConfig) (*Store, error) {
	var opts badger.Options
	if cfg.BadgerInMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.BadgerPath, 0o750); err != nil {
			return nil, fmt.Errorf("create badger directory %s: %w", cfg.BadgerPath, err)
		}
		opts = badger.DefaultOptions(cfg.BadgerPath)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.BadgerPath).
		Bool("in_memory", cfg.BadgerInMemory).
		Msg("BadgerDB opened")
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is open.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

func rawKey(k models.EventKey) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d", prefixRaw, k.StoreID, k.UnixTime))
}

func statKey(k models.StatKey) []byte {
	return []byte(prefixStat + k.Date + "/" + k.StoreID)
}

// update runs fn in a read-write transaction, mapping Badger's size error.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(fn)
	if errors.Is(err, badger.ErrTxnTooBig) {
		return fmt.Errorf("%w: %v", ErrChunkTooLarge, err)
	}
	return err
}

// UpsertRawEvents writes one chunk of raw events in a single transaction.
// An event whose key exists is merged: track and artist keep their stored
// values, empty optional fields are filled in.
func (s *Store) UpsertRawEvents(ctx context.Context, events []models.RawPlayEvent) error {
	if len(events) == 0 {
		return nil
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		seen := make(map[models.EventKey]struct{}, len(events))
		for i := range events {
			e := events[i]
			k := e.Key()
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}

			key := rawKey(k)
			stored, err := getEvent(txn, key)
			if err != nil {
				return err
			}
			if stored != nil {
				e = mergeEvent(*stored, e)
			}
			e.PlayedAt = time.Unix(k.UnixTime, 0).UTC()
			if e.CollectedAt.IsZero() {
				e.CollectedAt = time.Now().UTC()
			}

			data, err := json.Marshal(&e)
			if err != nil {
				return fmt.Errorf("encode raw event %s: %w", k, err)
			}
			if err := txn.Set(key, data); err != nil {
				return fmt.Errorf("write raw event %s: %w", k, err)
			}
		}
		return nil
	})
}

func getEvent(txn *badger.Txn, key []byte) (*models.RawPlayEvent, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	var e models.RawPlayEvent
	if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &e) }); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &e, nil
}

func mergeEvent(stored, incoming models.RawPlayEvent) models.RawPlayEvent {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&stored.Album, incoming.Album)
	fill(&stored.TrackMBID, incoming.TrackMBID)
	fill(&stored.ArtistMBID, incoming.ArtistMBID)
	fill(&stored.URL, incoming.URL)
	fill(&stored.ImageURL, incoming.ImageURL)
	return stored
}

// RawEventsBetween returns raw events of the given stores played in
// [start, end], ordered by store then time. An empty storeIDs selects every
// store.
func (s *Store) RawEventsBetween(ctx context.Context, storeIDs []string, start, end time.Time) ([]models.RawPlayEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var events []models.RawPlayEvent
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		collect := func(prefix []byte, keep func(models.RawPlayEvent) bool) error {
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if ts, ok := unixKey(it.Item().Key()); ok && (ts < start.Unix() || ts > end.Unix()) {
					continue
				}
				var e models.RawPlayEvent
				if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &e) }); err != nil {
					return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
				}
				if keep(e) {
					events = append(events, e)
				}
			}
			return nil
		}
		inWindow := func(e models.RawPlayEvent) bool {
			return !e.PlayedAt.Before(start) && !e.PlayedAt.After(end)
		}

		if len(storeIDs) == 0 {
			return collect([]byte(prefixRaw), inWindow)
		}
		for _, id := range sortedUnique(storeIDs) {
			// Exact store match guards against IDs that contain a slash.
			store := id
			if err := collect([]byte(prefixRaw+id+"/"), func(e models.RawPlayEvent) bool {
				return e.StoreID == store && inWindow(e)
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// CountRawEvents returns the number of stored raw events.
func (s *Store) CountRawEvents(ctx context.Context) (int, error) {
	return s.count(ctx, prefixRaw)
}

func (s *Store) count(ctx context.Context, prefix string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// CommitDailyStats writes one chunk of daily stats in one transaction,
// overwriting existing keys.
func (s *Store) CommitDailyStats(ctx context.Context, chunk []models.DailyStat) error {
	if len(chunk) == 0 {
		return nil
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		for i := range chunk {
			st := chunk[i]
			if st.UpdatedAt.IsZero() {
				st.UpdatedAt = time.Now().UTC()
			}
			data, err := json.Marshal(&st)
			if err != nil {
				return fmt.Errorf("encode daily stat %s: %w", st.Key(), err)
			}
			if err := txn.Set(statKey(st.Key()), data); err != nil {
				return fmt.Errorf("write daily stat %s: %w", st.Key(), err)
			}
		}
		return nil
	})
}

// DailyStatsBetween returns stats with from <= date <= to, optionally for one
// store, ordered by (date, store).
func (s *Store) DailyStatsBetween(ctx context.Context, from, to, storeID string) ([]models.DailyStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var stats []models.DailyStat
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixStat)
		for it.Seek([]byte(prefixStat + from + "/")); it.ValidForPrefix(prefix); it.Next() {
			rest := strings.TrimPrefix(string(it.Item().Key()), prefixStat)
			date, store, ok := strings.Cut(rest, "/")
			if !ok {
				continue
			}
			if date > to {
				break
			}
			if storeID != "" && store != storeID {
				continue
			}
			var st models.DailyStat
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &st) }); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			stats = append(stats, st)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// RecordRun stores a run summary, replacing an earlier record of the same run.
func (s *Store) RecordRun(ctx context.Context, run *models.RunSummary) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run summary: %w", err)
	}
	idx := []byte(prefixRunIndex + fmt.Sprintf("%020d", run.StartedAt.UnixNano()) + "/" + run.RunID)
	return s.update(ctx, func(txn *badger.Txn) error {
		if err := txn.Set([]byte(prefixRun+run.RunID), data); err != nil {
			return fmt.Errorf("write run %s: %w", run.RunID, err)
		}
		return txn.Set(idx, []byte(run.RunID))
	})
}

// RecentRuns returns up to limit run summaries, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var runs []models.RunSummary
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixRunIndex)
		seek := append([]byte(prefixRunIndex), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(runs) < limit; it.Next() {
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			run, err := getRun(txn, string(id))
			if err != nil {
				return err
			}
			runs = append(runs, *run)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// Run returns one run summary by ID.
func (s *Store) Run(ctx context.Context, runID string) (*models.RunSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var run *models.RunSummary
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		run, err = getRun(txn, runID)
		return err
	})
	return run, err
}

func getRun(txn *badger.Txn, runID string) (*models.RunSummary, error) {
	item, err := txn.Get([]byte(prefixRun + runID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", runID, err)
	}
	var run models.RunSummary
	if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &run) }); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return &run, nil
}

func sortedUnique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	// Lexical order matches the key order of a full scan.
	sort.Strings(out)
	return out
}

// unixKey parses the timestamp suffix of a raw key.
func unixKey(key []byte) (int64, bool) {
	i := strings.LastIndexByte(string(key), '/')
	if i < 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(string(key[i+1:]), 10, 64)
	return n, err == nil
}
