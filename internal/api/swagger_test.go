// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package api

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	_ "github.com/tomtom215/playledger/docs"
)

func TestSwaggerDocsCoverRoutes(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/swagger/doc.json")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/swagger/doc.json status = %d", resp.StatusCode)
	}

	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode doc.json: %v", err)
	}
	if doc.BasePath != "/api/v1" {
		t.Errorf("basePath = %q", doc.BasePath)
	}
	for _, path := range []string{
		"/health",
		"/settlement/runs",
		"/settlement/runs/{id}",
		"/settlement/validate",
		"/daily-stats",
		"/revenue",
		"/ws",
	} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("doc.json missing path %s", path)
		}
	}
}

func TestSwaggerUI(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/swagger/index.html")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/swagger/index.html status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "swagger-ui") {
		t.Error("index.html does not mount the swagger-ui element")
	}
}
