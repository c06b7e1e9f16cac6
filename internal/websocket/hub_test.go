// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package websocket

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/playledger/internal/logging"
	"github.com/tomtom215/playledger/internal/models"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// startHub runs a hub until the test ends.
func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

func testClient(hub *Hub, buffer int) *Client {
	return &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan Message, buffer)}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			t.Fatal("client channel closed")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
	return Message{}
}

func TestHubBroadcastsRunEvents(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	a, b := testClient(hub, 8), testClient(hub, 8)
	hub.Register <- a
	hub.Register <- b
	waitFor(t, func() bool { return hub.GetClientCount() == 2 })

	hub.OnRunEvent(context.Background(), models.RunEvent{RunID: "r1", State: models.StateCollecting})
	hub.OnRunEvent(context.Background(), models.RunEvent{RunID: "r1", State: models.StateDone, Summary: &models.RunSummary{RunID: "r1"}})

	for _, c := range []*Client{a, b} {
		if msg := receive(t, c); msg.Type != MessageTypeRunState {
			t.Errorf("first type = %q", msg.Type)
		}
		msg := receive(t, c)
		if msg.Type != MessageTypeRunCompleted {
			t.Errorf("second type = %q", msg.Type)
		}
		if ev, ok := msg.Data.(models.RunEvent); !ok || ev.Summary == nil {
			t.Errorf("completed data = %#v", msg.Data)
		}
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	slow := testClient(hub, 1)
	fast := testClient(hub, 8)
	hub.Register <- slow
	hub.Register <- fast
	waitFor(t, func() bool { return hub.GetClientCount() == 2 })

	hub.BroadcastJSON(MessageTypeRunState, "one")
	hub.BroadcastJSON(MessageTypeRunState, "two")

	waitFor(t, func() bool { return hub.GetClientCount() == 1 })
	receive(t, fast)
	receive(t, fast)
}

func TestHubUnregister(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	c := testClient(hub, 1)
	hub.Register <- c
	waitFor(t, func() bool { return hub.GetClientCount() == 1 })
	hub.Unregister <- c
	waitFor(t, func() bool { return hub.GetClientCount() == 0 })

	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed")
	}
}

func TestHubShutdownClosesClients(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- hub.RunWithContext(ctx) }()

	c := testClient(hub, 1)
	hub.Register <- c
	waitFor(t, func() bool { return hub.GetClientCount() == 1 })
	cancel()

	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if hub.GetClientCount() != 0 {
		t.Error("clients should be closed on shutdown")
	}
	if getShutdownReason(ctx) != ShutdownReasonContextCanceled {
		t.Error("reason should be context_canceled")
	}
}

func TestOriginAllowed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		origin  string
		allowed []string
		want    bool
	}{
		{"", []string{"*"}, false},
		{"http://ops.example", []string{"*"}, true},
		{"http://ops.example", []string{"http://ops.example"}, true},
		{"http://evil.example", []string{"http://ops.example"}, false},
		{"http://ops.example", nil, false},
	}
	for _, tt := range tests {
		if got := originAllowed(tt.origin, tt.allowed); got != tt.want {
			t.Errorf("originAllowed(%q, %v) = %v, want %v", tt.origin, tt.allowed, got, tt.want)
		}
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	if got := sanitizeLogValue("http://a\r\nINFO fake"); got != "http://aINFO fake" {
		t.Errorf("got %q", got)
	}
	if got := sanitizeLogValue(strings.Repeat("x", 300)); len(got) != 200 {
		t.Errorf("len = %d", len(got))
	}
}

func TestHandlerEndToEnd(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	srv := httptest.NewServer(Handler(hub, []string{"http://ops.example"}))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	if _, resp, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Fatal("dial without Origin should fail")
	} else if resp != nil && resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"http://ops.example"}})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return hub.GetClientCount() == 1 })

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	var pong Message
	if err := conn.ReadJSON(&pong); err != nil || pong.Type != MessageTypePong {
		t.Fatalf("pong = %+v, err = %v", pong, err)
	}

	hub.OnRunEvent(context.Background(), models.RunEvent{RunID: "r9", State: models.StatePersisting})
	var got struct {
		Type string          `json:"type"`
		Data models.RunEvent `json:"data"`
	}
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Type != MessageTypeRunState || got.Data.RunID != "r9" || got.Data.State != models.StatePersisting {
		t.Errorf("message = %+v", got)
	}
}
