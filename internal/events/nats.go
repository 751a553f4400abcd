package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

const subjectPrefix = "bracket"

type NATSConfig struct {
	URL           string
	Stream        string
	MaxReconnect  int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// NATSPublisher writes every event to a JetStream stream. The event ID is the
// message ID, so JetStream drops a republished event inside its dedupe window.
type NATSPublisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *zap.Logger
}

func (c NATSConfig) withDefaults() NATSConfig {
	if c.MaxReconnect == 0 {
		c.MaxReconnect = 10
	}
	if c.ReconnectWait == 0 {
		c.ReconnectWait = 2 * time.Second
	}
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Second
	}
	return c
}

func NewNATSPublisher(ctx context.Context, cfg NATSConfig, logger *zap.Logger) (*NATSPublisher, error) {
	cfg = cfg.withDefaults()
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnect),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.Stream,
		Subjects: []string{subjectPrefix + ".>"},
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream %s: %w", cfg.Stream, err)
	}

	return &NATSPublisher{conn: nc, js: js, logger: logger}, nil
}

// Subject is bracket.<tournament>.<event type>, so a consumer can follow a
// single tournament or a single event type.
func Subject(ev bracket.Event) string {
	return fmt.Sprintf("%s.%s.%s", subjectPrefix, ev.TournamentID, ev.Type)
}

func (p *NATSPublisher) Publish(ctx context.Context, evs ...bracket.Event) error {
	for _, ev := range evs {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to encode event %s: %w", ev.ID, err)
		}
		if _, err := p.js.Publish(ctx, Subject(ev), data, jetstream.WithMsgID(ev.ID.String())); err != nil {
			return fmt.Errorf("failed to publish %s: %w", ev.Type, err)
		}
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
