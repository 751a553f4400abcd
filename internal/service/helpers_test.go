package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/events"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/AdamBeresnev/bracket-engine/internal/wallet"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const startingBalance = 1000

var fixedNow = time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

type fixture struct {
	// organizer creates every tournament made through create
	organizer uuid.UUID

	svc    *TournamentService
	repo   *store.MemoryStore
	wallet *wallet.MemoryWallet
	events *events.Recorder
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	logger := zaptest.NewLogger(t)
	repo := store.NewMemoryStore()
	w := wallet.NewMemoryWallet(startingBalance)
	rec := &events.Recorder{}
	dispatcher := wallet.NewDispatcher(w, logger, 3).WithBackoff(time.Millisecond)

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return &fixture{
		organizer: uuid.New(),
		svc:       NewTournamentService(repo, dispatcher, rec, logger, opts...),
		repo:      repo,
		wallet:    w,
		events:    rec,
	}
}

func (f *fixture) create(t *testing.T, in CreateTournamentInput) *bracket.Tournament {
	t.Helper()

	if in.Name == "" {
		in.Name = "Weekly Cup"
	}
	if in.Format == "" {
		in.Format = bracket.SingleElimination
	}
	if in.CreatedBy == uuid.Nil {
		in.CreatedBy = f.organizer
	}
	tour, err := f.svc.CreateTournament(context.Background(), in)
	require.NoError(t, err)
	return tour
}

func player(i int) RegistrationInput {
	return RegistrationInput{ID: uuid.New(), Name: fmt.Sprintf("P%d", i), Rating: 1200 + i}
}

// registerN registers n fresh players and returns them in registration order.
func (f *fixture) registerN(t *testing.T, tournamentID uuid.UUID, n int) []RegistrationInput {
	t.Helper()

	players := make([]RegistrationInput, n)
	for i := range players {
		players[i] = player(i + 1)
		_, err := f.svc.RegisterParticipant(context.Background(), tournamentID, players[i])
		require.NoError(t, err)
	}
	return players
}

func (f *fixture) get(t *testing.T, id uuid.UUID) *bracket.Tournament {
	t.Helper()

	tour, err := f.repo.Get(context.Background(), id)
	require.NoError(t, err)
	return tour
}

// playOut reports player1 as the winner of every active match until the
// tournament is decided.
func (f *fixture) playOut(t *testing.T, id uuid.UUID) *bracket.Tournament {
	t.Helper()

	tour := f.get(t, id)
	for guard := 0; tour.Status == bracket.TournamentActive; guard++ {
		require.Less(t, guard, 256)

		active := tour.Bracket.ActiveMatches()
		require.NotEmpty(t, active)

		res, err := f.svc.ReportMatchResult(context.Background(), active[0].ID, 2, 1)
		require.NoError(t, err)
		tour = res.Tournament
	}
	return tour
}
