package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/bracket-engine/internal/apperr"
	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTournamentValidation(t *testing.T) {
	testCases := []struct {
		name string
		in   CreateTournamentInput
		err  error
	}{
		{
			name: "missing name",
			in:   CreateTournamentInput{Format: bracket.SingleElimination, MaxPlayers: 4},
			err:  ErrInvalidTournament,
		},
		{
			name: "unknown format",
			in:   CreateTournamentInput{Name: "x", Format: "round_robin", MaxPlayers: 4},
			err:  bracket.ErrInvalidFormat,
		},
		{
			name: "size not a power of two",
			in:   CreateTournamentInput{Name: "x", Format: bracket.SingleElimination, MaxPlayers: 6},
			err:  bracket.ErrInvalidParticipantCount,
		},
		{
			name: "size below four",
			in:   CreateTournamentInput{Name: "x", Format: bracket.DoubleElimination, MaxPlayers: 2},
			err:  bracket.ErrInvalidParticipantCount,
		},
		{
			name: "negative fee",
			in:   CreateTournamentInput{Name: "x", Format: bracket.SingleElimination, MaxPlayers: 4, EntryFee: -1},
			err:  ErrInvalidTournament,
		},
		{
			name: "prize for a place that does not exist",
			in:   CreateTournamentInput{Name: "x", Format: bracket.SingleElimination, MaxPlayers: 4, PrizeTable: map[int]int64{5: 10}},
			err:  ErrInvalidTournament,
		},
		{
			name: "prize table pays out more than a full field pays in",
			in: CreateTournamentInput{Name: "x", Format: bracket.SingleElimination, MaxPlayers: 4, EntryFee: 100,
				PrizeTable: map[int]int64{1: 300, 2: 101}, CreatedBy: uuid.New()},
			err: ErrInvalidTournament,
		},
		{
			name: "prize table without entry fees",
			in: CreateTournamentInput{Name: "x", Format: bracket.SingleElimination, MaxPlayers: 4,
				PrizeTable: map[int]int64{1: 10}, CreatedBy: uuid.New()},
			err: ErrInvalidTournament,
		},
		{
			name: "missing organizer",
			in:   CreateTournamentInput{Name: "x", Format: bracket.SingleElimination, MaxPlayers: 4},
			err:  ErrInvalidTournament,
		},
		{
			name: "unknown seeding",
			in:   CreateTournamentInput{Name: "x", Format: bracket.SingleElimination, MaxPlayers: 4, Seeding: "random"},
			err:  bracket.ErrUnknownSeeding,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.CreateTournament(context.Background(), tc.in)
			require.ErrorIs(t, err, tc.err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

			all, err := f.repo.List(context.Background(), store.Filter{})
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestCreateTournament(t *testing.T) {
	f := newFixture(t)

	tour := f.create(t, CreateTournamentInput{
		Name:            "  Spring Open ",
		Format:          bracket.SingleElimination,
		MaxPlayers:      8,
		EntryFee:        25,
		GrandFinalReset: true,
	})

	assert.Equal(t, "Spring Open", tour.Name)
	assert.Equal(t, bracket.TournamentRegistration, tour.Status)
	assert.Equal(t, bracket.AdjacentSeedingName, tour.Seeding)
	assert.False(t, tour.GrandFinalReset, "a reset only exists in double elimination")
	assert.Equal(t, fixedNow, tour.CreatedAt)
	assert.Equal(t, f.organizer, tour.CreatedBy)
	assert.Nil(t, tour.Bracket)

	stored := f.get(t, tour.ID)
	assert.Equal(t, tour, stored)
}

func TestForceActivate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tour := f.create(t, CreateTournamentInput{MaxPlayers: 8, EntryFee: 10})

	f.registerN(t, tour.ID, 3)
	_, err := f.svc.ForceActivate(ctx, tour.ID)
	require.ErrorIs(t, err, ErrQuorumNotMet)
	assert.Equal(t, bracket.TournamentRegistration, f.get(t, tour.ID).Status)

	for i := 4; i <= 5; i++ {
		_, err := f.svc.RegisterParticipant(ctx, tour.ID, player(i))
		require.NoError(t, err)
	}

	active, err := f.svc.ForceActivate(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentActive, active.Status)
	require.Len(t, active.Bracket.Winners, 3)
	assert.Equal(t, map[int]int64{1: 50}, active.PrizeTable)

	round0 := active.Bracket.Winners[0].Matches
	assert.Equal(t, bracket.MatchActive, round0[0].Status)
	assert.Equal(t, bracket.MatchActive, round0[1].Status)
	assert.True(t, round0[2].IsBye)
	assert.True(t, round0[3].IsBye)

	assert.Equal(t, 1, f.events.Count(bracket.EventTournamentActivated))

	_, err = f.svc.ForceActivate(ctx, tour.ID)
	require.ErrorIs(t, err, ErrNotInRegistration)

	done := f.playOut(t, tour.ID)
	standings, err := bracket.Standings(done)
	require.NoError(t, err)
	assert.Len(t, standings, 5)
	assert.Equal(t, int64(50), standings[0].Prize)
}

func TestForceActivatedPrizesAddUpToThePool(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tour := f.create(t, CreateTournamentInput{
		MaxPlayers: 8,
		EntryFee:   100,
		PrizeTable: map[int]int64{1: 200, 2: 100, 3: 50, 4: 50, 5: 25, 6: 25, 7: 25, 8: 25},
	})
	players := f.registerN(t, tour.ID, 5)

	_, err := f.svc.StartTournament(ctx, tour.ID, f.organizer)
	require.NoError(t, err)
	done := f.playOut(t, tour.ID)
	require.Equal(t, int64(500), done.PrizePool)

	standings, err := f.svc.Standings(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, standings, 5)

	var paid, balances int64
	for _, st := range standings {
		paid += st.Prize
	}
	for _, p := range players {
		balances += f.wallet.Balance(p.ID)
	}
	assert.Equal(t, done.PrizePool, paid)
	assert.Equal(t, int64(5*startingBalance), balances, "every collected fee is paid back out")
}

func TestOnlyTheOrganizerStartsOrCancels(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tour := f.create(t, CreateTournamentInput{MaxPlayers: 8, EntryFee: 10})
	f.registerN(t, tour.ID, 4)
	before := f.get(t, tour.ID)

	stranger := uuid.New()
	testCases := []struct {
		name string
		call func() (*bracket.Tournament, error)
	}{
		{name: "start", call: func() (*bracket.Tournament, error) { return f.svc.StartTournament(ctx, tour.ID, stranger) }},
		{name: "cancel", call: func() (*bracket.Tournament, error) { return f.svc.CancelTournament(ctx, tour.ID, stranger) }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.call()
			require.ErrorIs(t, err, ErrNotOrganizer)
			assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
			assert.Equal(t, before, f.get(t, tour.ID))
		})
	}

	active, err := f.svc.StartTournament(ctx, tour.ID, f.organizer)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentActive, active.Status)
}

func TestForceActivateCustomQuorum(t *testing.T) {
	f := newFixture(t, WithActivationQuorum(2))
	tour := f.create(t, CreateTournamentInput{Format: bracket.DoubleElimination, MaxPlayers: 8})

	f.registerN(t, tour.ID, 2)
	active, err := f.svc.ForceActivate(context.Background(), tour.ID)
	require.NoError(t, err)
	assert.Len(t, active.Bracket.Winners, 2, "two players are padded to the smallest bracket")

	done := f.playOut(t, tour.ID)
	assert.Equal(t, bracket.TournamentCompleted, done.Status)
}

func TestCancelTournamentRefundsEveryone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tour := f.create(t, CreateTournamentInput{MaxPlayers: 8, EntryFee: 40})

	players := f.registerN(t, tour.ID, 3)
	for _, p := range players {
		assert.Equal(t, int64(startingBalance-40), f.wallet.Balance(p.ID))
	}

	cancelled, err := f.svc.CancelTournament(ctx, tour.ID, f.organizer)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentCancelled, cancelled.Status)
	assert.Zero(t, cancelled.PrizePool)

	for _, p := range players {
		assert.Equal(t, int64(startingBalance), f.wallet.Balance(p.ID))
	}
	assert.Equal(t, 1, f.events.Count(bracket.EventTournamentCancelled))

	_, err = f.svc.CancelTournament(ctx, tour.ID, f.organizer)
	require.ErrorIs(t, err, ErrNotInRegistration)

	_, err = f.svc.RegisterParticipant(ctx, tour.ID, player(9))
	require.ErrorIs(t, err, ErrNotInRegistration)
}

func TestEventsAreStamped(t *testing.T) {
	f := newFixture(t)
	tour := f.create(t, CreateTournamentInput{MaxPlayers: 4})
	f.registerN(t, tour.ID, 4)

	evs := f.events.Events()
	require.NotEmpty(t, evs)

	seen := make(map[string]bool)
	for _, ev := range evs {
		assert.Equal(t, tour.ID, ev.TournamentID)
		assert.Equal(t, fixedNow, ev.OccurredAt)
		assert.False(t, seen[ev.ID.String()], "event IDs must be unique")
		seen[ev.ID.String()] = true
	}

	types := make([]bracket.EventType, len(evs))
	for i, ev := range evs {
		types[i] = ev.Type
	}
	assert.Equal(t, []bracket.EventType{
		bracket.EventParticipantRegistered,
		bracket.EventParticipantRegistered,
		bracket.EventParticipantRegistered,
		bracket.EventParticipantRegistered,
		bracket.EventTournamentActivated,
		bracket.EventRoundActivated,
	}, types)
}

func TestGetAndListTournaments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	single := f.create(t, CreateTournamentInput{MaxPlayers: 4})
	double := f.create(t, CreateTournamentInput{Format: bracket.DoubleElimination, MaxPlayers: 4})
	f.registerN(t, double.ID, 4)

	got, err := f.svc.GetTournament(ctx, single.ID)
	require.NoError(t, err)
	assert.Equal(t, single.ID, got.ID)

	active, err := f.svc.ListTournaments(ctx, store.Filter{Status: bracket.TournamentActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, double.ID, active[0].ID)

	_, err = f.svc.GetTournament(ctx, uuid.New())
	require.ErrorIs(t, err, store.ErrTournamentNotFound)
}
