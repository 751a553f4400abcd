package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/apperr"
	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/events"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/AdamBeresnev/bracket-engine/internal/wallet"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultActivationQuorum = 4

// TournamentService is the only writer of tournaments. Every command runs
// against a snapshot under the tournament's lock and is saved as a whole, so
// a rejected command leaves nothing behind. Wallet calls and event delivery
// happen after the lock is released.
type TournamentService struct {
	repo      store.Repository
	wallet    *wallet.Dispatcher
	publisher events.Publisher
	logger    *zap.Logger
	locks     *keyedMutex
	quorum    int
	now       func() time.Time
}

type Option func(*TournamentService)

func WithActivationQuorum(n int) Option {
	return func(s *TournamentService) {
		if n > 0 {
			s.quorum = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *TournamentService) { s.now = now }
}

func NewTournamentService(repo store.Repository, dispatcher *wallet.Dispatcher, publisher events.Publisher, logger *zap.Logger, opts ...Option) *TournamentService {
	s := &TournamentService{
		repo:      repo,
		wallet:    dispatcher,
		publisher: publisher,
		logger:    logger,
		locks:     newKeyedMutex(),
		quorum:    DefaultActivationQuorum,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateTournamentInput struct {
	Name            string
	Format          bracket.Format
	MaxPlayers      int
	EntryFee        int64
	PrizeTable      map[int]int64
	Seeding         string
	GrandFinalReset bool
	StartsAt        *time.Time
	// CreatedBy is the organizing player.
	CreatedBy uuid.UUID
}

func (in CreateTournamentInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrInvalidTournament.Withf("name is required")
	}
	if !in.Format.Valid() {
		return bracket.ErrInvalidFormat.Withf("%q", in.Format)
	}
	if err := bracket.ValidateSize(in.MaxPlayers); err != nil {
		return err
	}
	if in.EntryFee < 0 {
		return ErrInvalidTournament.Withf("entry fee must not be negative")
	}
	var total int64
	for place, amount := range in.PrizeTable {
		if place < 1 || place > in.MaxPlayers {
			return ErrInvalidTournament.Withf("prize for place %d is outside 1..%d", place, in.MaxPlayers)
		}
		if amount < 0 {
			return ErrInvalidTournament.Withf("prize for place %d must not be negative", place)
		}
		total += amount
	}
	if limit := int64(in.MaxPlayers) * in.EntryFee; total > limit {
		return ErrInvalidTournament.Withf("prize table pays %d but a full field only pays in %d", total, limit)
	}
	if _, err := bracket.SeedingByName(in.Seeding); err != nil {
		return err
	}
	if in.CreatedBy == uuid.Nil {
		return ErrInvalidTournament.Withf("organizer is required")
	}
	return nil
}

func (s *TournamentService) CreateTournament(ctx context.Context, in CreateTournamentInput) (*bracket.Tournament, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	seeding := in.Seeding
	if seeding == "" {
		seeding = bracket.AdjacentSeedingName
	}

	t := &bracket.Tournament{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(in.Name),
		Format:          in.Format,
		Status:          bracket.TournamentRegistration,
		Seeding:         seeding,
		GrandFinalReset: in.GrandFinalReset && in.Format == bracket.DoubleElimination,
		MaxPlayers:      in.MaxPlayers,
		EntryFee:        in.EntryFee,
		PrizeTable:      in.PrizeTable,
		StartsAt:        in.StartsAt,
		CreatedBy:       in.CreatedBy,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	s.logger.Info("tournament created",
		zap.Stringer("tournament_id", t.ID),
		zap.String("format", string(t.Format)),
		zap.Int("max_players", t.MaxPlayers),
	)
	return t.Clone(), nil
}

func (s *TournamentService) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return s.repo.Get(ctx, id)
}

func (s *TournamentService) ListTournaments(ctx context.Context, filter store.Filter) ([]*bracket.Tournament, error) {
	return s.repo.List(ctx, filter)
}

// ForceActivate starts a tournament before it is full. Missing seats are
// filled with byes. This is what the scheduler calls once StartsAt has passed.
func (s *TournamentService) ForceActivate(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return s.forceActivate(ctx, id, nil)
}

// StartTournament is ForceActivate on behalf of a player, who has to be the
// organizer.
func (s *TournamentService) StartTournament(ctx context.Context, id, actor uuid.UUID) (*bracket.Tournament, error) {
	return s.forceActivate(ctx, id, &actor)
}

func (s *TournamentService) forceActivate(ctx context.Context, id uuid.UUID, actor *uuid.UUID) (*bracket.Tournament, error) {
	return s.mutate(ctx, id, func(t *bracket.Tournament, c *change) (*bracket.Tournament, error) {
		if actor != nil {
			if err := checkOrganizer(t, *actor); err != nil {
				return nil, err
			}
		}
		if t.Status != bracket.TournamentRegistration {
			return nil, ErrNotInRegistration.Withf("tournament %s is %s", t.ID, t.Status)
		}
		if len(t.Participants) < s.quorum {
			return nil, ErrQuorumNotMet.Withf("%d of %d registered", len(t.Participants), s.quorum)
		}
		return s.activate(t, c, true)
	})
}

// CancelTournament is only possible during registration and only for the
// organizer. Every entry fee is refunded.
func (s *TournamentService) CancelTournament(ctx context.Context, id, actor uuid.UUID) (*bracket.Tournament, error) {
	return s.mutate(ctx, id, func(t *bracket.Tournament, c *change) (*bracket.Tournament, error) {
		if err := checkOrganizer(t, actor); err != nil {
			return nil, err
		}
		if t.Status != bracket.TournamentRegistration {
			return nil, ErrNotInRegistration.Withf("tournament %s is %s", t.ID, t.Status)
		}

		t.Status = bracket.TournamentCancelled
		t.PrizePool = 0
		if t.EntryFee > 0 {
			for _, p := range t.Participants {
				c.pay(wallet.Refund(t.ID, p.ID, p.EntryID, t.EntryFee, "tournament cancelled"))
			}
		}
		c.emit(bracket.Event{Type: bracket.EventTournamentCancelled})
		return t, nil
	})
}

func checkOrganizer(t *bracket.Tournament, actor uuid.UUID) error {
	if t.CreatedBy != actor {
		return ErrNotOrganizer.Withf("tournament %s", t.ID)
	}
	return nil
}

// activate builds the bracket from the current registrants.
func (s *TournamentService) activate(t *bracket.Tournament, c *change, padWithByes bool) (*bracket.Tournament, error) {
	policy, err := bracket.SeedingByName(t.Seeding)
	if err != nil {
		return nil, err
	}

	seeded := bracket.AssignSeeds(t.Participants)
	builder := bracket.Builder{Seeding: policy, GrandFinalReset: t.GrandFinalReset, PadWithByes: padWithByes}
	b, evs, err := builder.Build(t.Format, seeded)
	if err != nil {
		return nil, err
	}

	t.Participants = seeded
	t.Bracket = b
	t.Status = bracket.TournamentActive
	if len(t.PrizeTable) == 0 {
		t.PrizeTable = map[int]int64{1: t.PrizePool}
	}

	c.emit(bracket.Event{Type: bracket.EventTournamentActivated})
	c.emit(evs...)
	return t, nil
}

// change collects what a command produced besides the new tournament state.
type change struct {
	events  []bracket.Event
	intents []wallet.Intent
}

func (c *change) emit(evs ...bracket.Event) { c.events = append(c.events, evs...) }

func (c *change) pay(intents ...wallet.Intent) { c.intents = append(c.intents, intents...) }

// mutate is the exclusive section. fn works on a snapshot and nothing it
// does is visible until Save succeeds.
func (s *TournamentService) mutate(ctx context.Context, id uuid.UUID, fn func(*bracket.Tournament, *change) (*bracket.Tournament, error)) (*bracket.Tournament, error) {
	c := &change{}

	committed, err := func() (*bracket.Tournament, error) {
		unlock := s.locks.Lock(id)
		defer unlock()

		t, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		next, err := fn(t, c)
		if err != nil {
			return nil, s.surface(id, err)
		}

		if err := s.repo.Save(ctx, next); err != nil {
			return nil, fmt.Errorf("failed to save tournament %s: %w", id, err)
		}
		return next, nil
	}()
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, committed.ID, c)
	return committed.Clone(), nil
}

// surface hides engine bugs from callers and keeps the full detail in the log.
func (s *TournamentService) surface(id uuid.UUID, err error) error {
	if errors.Is(err, bracket.ErrInvariantViolation) {
		s.logger.Error("bracket invariant violated, command refused",
			zap.Stringer("tournament_id", id),
			zap.Error(err),
		)
		return apperr.ErrInternal
	}
	return err
}

func (s *TournamentService) afterCommit(ctx context.Context, id uuid.UUID, c *change) {
	if len(c.events) > 0 {
		now := s.now().UTC()
		for i := range c.events {
			c.events[i].ID = uuid.New()
			c.events[i].TournamentID = id
			c.events[i].OccurredAt = now
		}
		if err := s.publisher.Publish(ctx, c.events...); err != nil {
			s.logger.Warn("failed to publish events", zap.Stringer("tournament_id", id), zap.Error(err))
		}
	}

	if err := s.wallet.Dispatch(ctx, c.intents); err != nil {
		s.logger.Error("wallet intents failed", zap.Stringer("tournament_id", id), zap.Error(err))
	}
}
