// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/playledger/internal/config"
	"github.com/tomtom215/playledger/internal/logging"
	"github.com/tomtom215/playledger/internal/metrics"
	"github.com/tomtom215/playledger/internal/models"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("event publisher is closed")

// Metadata keys set on every message.
const (
	MetaRunID = "run_id"
	MetaState = "state"
)

// Publisher publishes run events to one topic. It implements the
// orchestrator's Observer interface.
type Publisher struct {
	publisher message.Publisher
	topic     string
	breaker   *gobreaker.CircuitBreaker[struct{}]

	// local is set for the in-process transport and doubles as subscriber.
	local  *gochannel.GoChannel
	server *EmbeddedServer

	mu     sync.RWMutex
	closed bool
}

// New creates a publisher for cfg. With NATS disabled it returns an
// in-process publisher.
func New(cfg *config.NATSConfig) (*Publisher, error) {
	logger := watermill.NewSlogLogger(logging.NewSlogLogger())
	if !cfg.Enabled {
		return NewLocal(cfg.Topic, logger), nil
	}

	url := cfg.URL
	var embedded *EmbeddedServer
	if cfg.EmbeddedServer {
		var err error
		embedded, err = NewEmbeddedServer("127.0.0.1", -1, cfg.StoreDir)
		if err != nil {
			return nil, err
		}
		url = embedded.ClientURL()
		logging.Info().Str("url", url).Msg("Embedded NATS server started")
	}

	pub, err := newNATSPublisher(url, logger)
	if err != nil {
		if embedded != nil {
			_ = embedded.Shutdown(context.Background())
		}
		return nil, err
	}

	p := newPublisher(pub, cfg.Topic)
	p.server = embedded
	return p, nil
}

// NewLocal creates an in-process publisher backed by a GoChannel.
func NewLocal(topic string, logger watermill.LoggerAdapter) *Publisher {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger)
	p := newPublisher(ch, topic)
	p.local = ch
	return p
}

func newNATSPublisher(url string, logger watermill.LoggerAdapter) (message.Publisher, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	return pub, nil
}

func newPublisher(pub message.Publisher, topic string) *Publisher {
	name := "events-" + topic
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logging.Warn().Str("name", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Event publisher circuit breaker state changed")
		},
	})
	return &Publisher{publisher: pub, topic: topic, breaker: breaker}
}

// Topic returns the topic events are published to.
func (p *Publisher) Topic() string {
	return p.topic
}

// Publish sends ev. The message UUID doubles as the NATS deduplication ID.
func (p *Publisher) Publish(ctx context.Context, ev models.RunEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal run event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	msg.Metadata.Set(MetaRunID, ev.RunID)
	msg.Metadata.Set(MetaState, string(ev.State))
	msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)

	_, err = p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.publisher.Publish(p.topic, msg)
	})
	metrics.RecordEventPublished(err)
	if err != nil {
		return fmt.Errorf("publish run event: %w", err)
	}
	return nil
}

// OnRunEvent publishes ev and logs a failure. Event delivery never fails a
// run.
func (p *Publisher) OnRunEvent(ctx context.Context, ev models.RunEvent) {
	if err := p.Publish(ctx, ev); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("state", string(ev.State)).Msg("Failed to publish run event")
	}
}

// Subscribe returns the run events of the in-process transport. It fails
// for NATS publishers; consumers there subscribe to the subject directly.
func (p *Publisher) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	if p.local == nil {
		return nil, errors.New("subscribe is only supported on the in-process transport")
	}
	return p.local.Subscribe(ctx, p.topic)
}

// Close closes the publisher and stops an embedded server.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	err := p.publisher.Close()
	if p.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = errors.Join(err, p.server.Shutdown(ctx))
	}
	return err
}

// Decode parses a message produced by Publish.
func Decode(msg *message.Message) (models.RunEvent, error) {
	var ev models.RunEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return ev, fmt.Errorf("decode run event %s: %w", msg.UUID, err)
	}
	return ev, nil
}
