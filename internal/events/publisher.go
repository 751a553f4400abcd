// Package events fans bracket events out to whoever listens: logs, NATS
// JetStream and websocket clients watching a tournament.
package events

import (
	"context"
	"errors"
	"sync"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, evs ...bracket.Event) error
}

// Multi publishes to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, evs ...bracket.Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, evs...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, evs ...bracket.Event) error {
	for _, ev := range evs {
		fields := []zap.Field{
			zap.String("type", string(ev.Type)),
			zap.Stringer("tournament_id", ev.TournamentID),
		}
		if ev.MatchID != nil {
			fields = append(fields, zap.Stringer("match_id", ev.MatchID))
		}
		if ev.ParticipantID != nil {
			fields = append(fields, zap.Stringer("participant_id", ev.ParticipantID))
		}
		p.logger.Info("bracket event", fields...)
	}
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []bracket.Event
}

func (r *Recorder) Publish(_ context.Context, evs ...bracket.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evs...)
	return nil
}

func (r *Recorder) Events() []bracket.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]bracket.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many events of typ were published.
func (r *Recorder) Count(typ bracket.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, ev := range r.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}
