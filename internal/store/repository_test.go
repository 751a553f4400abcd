package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTournament(t *testing.T, status bracket.TournamentStatus, format bracket.Format, createdAt time.Time) *bracket.Tournament {
	t.Helper()

	tour := &bracket.Tournament{
		ID:         uuid.New(),
		Name:       "Friday Cup",
		Format:     format,
		Status:     status,
		Seeding:    bracket.AdjacentSeedingName,
		MaxPlayers: 4,
		EntryFee:   50,
		PrizeTable: map[int]int64{1: 150, 2: 50},
		CreatedAt:  createdAt,
	}
	for i := 0; i < 4; i++ {
		tour.Participants = append(tour.Participants, bracket.Participant{
			ID:      uuid.New(),
			Name:    fmt.Sprintf("P%d", i+1),
			Rating:  1000 + i,
			EntryID: uuid.New(),
		})
	}
	tour.Participants = bracket.AssignSeeds(tour.Participants)

	if status != bracket.TournamentRegistration {
		b, _, err := bracket.Builder{}.Build(format, tour.Participants)
		require.NoError(t, err)
		tour.Bracket = b
		tour.PrizePool = 200
	}
	return tour
}

// testRepository runs the behaviour every Repository implementation shares.
func testRepository(t *testing.T, repo Repository) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("save and get round trip", func(t *testing.T) {
		tour := newTournament(t, bracket.TournamentActive, bracket.DoubleElimination, base)
		startsAt := base.Add(time.Hour)
		tour.StartsAt = &startsAt

		require.NoError(t, repo.Save(ctx, tour))

		got, err := repo.Get(ctx, tour.ID)
		require.NoError(t, err)
		assert.Equal(t, tour, got)

		for i, m := range got.Bracket.Winners[0].Matches {
			assert.Equal(t, i, m.Slot, "slot order must survive a round trip")
		}
	})

	t.Run("get returns a snapshot", func(t *testing.T) {
		tour := newTournament(t, bracket.TournamentActive, bracket.SingleElimination, base)
		require.NoError(t, repo.Save(ctx, tour))

		got, err := repo.Get(ctx, tour.ID)
		require.NoError(t, err)
		got.Name = "changed"
		got.Bracket.Winners[0].Matches[0].Status = bracket.MatchCompleted

		again, err := repo.Get(ctx, tour.ID)
		require.NoError(t, err)
		assert.Equal(t, "Friday Cup", again.Name)
		assert.Equal(t, bracket.MatchActive, again.Bracket.Winners[0].Matches[0].Status)
	})

	t.Run("unknown tournament", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.New())
		require.ErrorIs(t, err, ErrTournamentNotFound)
	})

	t.Run("match index", func(t *testing.T) {
		tour := newTournament(t, bracket.TournamentRegistration, bracket.SingleElimination, base)
		require.NoError(t, repo.Save(ctx, tour))

		b, _, err := bracket.Builder{}.Build(bracket.SingleElimination, tour.Participants)
		require.NoError(t, err)
		tour.Bracket = b
		tour.Status = bracket.TournamentActive
		require.NoError(t, repo.Save(ctx, tour))

		for _, id := range tour.MatchIDs() {
			got, err := repo.TournamentIDForMatch(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tour.ID, got)
		}

		_, err = repo.TournamentIDForMatch(ctx, uuid.New())
		require.ErrorIs(t, err, bracket.ErrMatchNotFound)
	})
}

func testRepositoryList(t *testing.T, repo Repository) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	open := newTournament(t, bracket.TournamentRegistration, bracket.SingleElimination, base)
	due := base.Add(-time.Minute)
	open.StartsAt = &due

	later := newTournament(t, bracket.TournamentRegistration, bracket.DoubleElimination, base.Add(time.Hour))
	notYet := base.Add(24 * time.Hour)
	later.StartsAt = &notYet

	running := newTournament(t, bracket.TournamentActive, bracket.SingleElimination, base.Add(2*time.Hour))

	for _, tour := range []*bracket.Tournament{open, later, running} {
		require.NoError(t, repo.Save(ctx, tour))
	}

	testCases := []struct {
		name     string
		filter   Filter
		expected []uuid.UUID
	}{
		{
			name:     "everything newest first",
			filter:   Filter{},
			expected: []uuid.UUID{running.ID, later.ID, open.ID},
		},
		{
			name:     "by status",
			filter:   Filter{Status: bracket.TournamentRegistration},
			expected: []uuid.UUID{later.ID, open.ID},
		},
		{
			name:     "by format",
			filter:   Filter{Format: bracket.DoubleElimination},
			expected: []uuid.UUID{later.ID},
		},
		{
			name:     "due for activation",
			filter:   Filter{Status: bracket.TournamentRegistration, StartsBefore: &base},
			expected: []uuid.UUID{open.ID},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.List(ctx, tc.filter)
			require.NoError(t, err)

			ids := make([]uuid.UUID, len(got))
			for i, tour := range got {
				ids[i] = tour.ID
			}
			assert.Equal(t, tc.expected, ids)
		})
	}
}

func TestMemoryStore(t *testing.T) {
	testRepository(t, NewMemoryStore())
	testRepositoryList(t, NewMemoryStore())
}

func TestCached(t *testing.T) {
	testRepository(t, NewCached(NewMemoryStore()))
	testRepositoryList(t, NewCached(NewMemoryStore()))
}

func TestCachedServesFromMemory(t *testing.T) {
	ctx := context.Background()
	backing := NewMemoryStore()
	cached := NewCached(backing)

	tour := newTournament(t, bracket.TournamentActive, bracket.SingleElimination, time.Now().UTC())
	require.NoError(t, backing.Save(ctx, tour))

	got, err := cached.Get(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, tour.ID, got.ID)

	// a write that bypasses the cache is not seen until the next Save through it
	renamed := tour.Clone()
	renamed.Name = "renamed"
	require.NoError(t, backing.Save(ctx, renamed))

	got, err = cached.Get(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, "Friday Cup", got.Name)

	require.NoError(t, cached.Save(ctx, renamed))
	got, err = cached.Get(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
}

func TestFilterMatch(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	tour := &bracket.Tournament{Status: bracket.TournamentRegistration, Format: bracket.SingleElimination}
	assert.True(t, Filter{}.Match(tour))
	assert.False(t, Filter{StartsBefore: &now}.Match(tour), "no start time never matches a deadline")

	tour.StartsAt = &past
	assert.True(t, Filter{Status: bracket.TournamentRegistration, StartsBefore: &now}.Match(tour))
	assert.False(t, Filter{Format: bracket.DoubleElimination}.Match(tour))
}
