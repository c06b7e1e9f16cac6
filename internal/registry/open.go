// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package registry

import (
	"context"
	"fmt"
	"io"

	"github.com/tomtom215/playledger/internal/config"
)

// Open builds the Reader selected by cfg.Backend. duckdbSource serves the
// duckdb backend and may be nil for the others. The returned closer releases
// backend connections and is never nil.
func Open(ctx context.Context, cfg *config.RegistryConfig, duckdbSource Source) (Reader, io.Closer, error) {
	switch cfg.Backend {
	case "", "duckdb":
		if duckdbSource == nil {
			return nil, nil, fmt.Errorf("registry backend duckdb requires the duckdb storage")
		}
		return NewReader(duckdbSource), nopCloser{}, nil
	case "file":
		return NewReader(NewFileSource(cfg.FilePath)), nopCloser{}, nil
	case "mongo":
		src, err := NewMongoSource(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return NewReader(src), src, nil
	default:
		return nil, nil, fmt.Errorf("unknown registry backend %q", cfg.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
