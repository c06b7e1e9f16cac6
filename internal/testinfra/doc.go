// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

// Package testinfra starts throwaway service containers for integration tests.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/registry/...
//
// Tests skip when Docker is not reachable.
package testinfra
