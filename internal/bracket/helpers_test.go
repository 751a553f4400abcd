package bracket

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func makeParticipants(n int) []Participant {
	participants := make([]Participant, n)
	for i := range participants {
		participants[i] = Participant{ID: uuid.New(), Name: fmt.Sprintf("P%d", i+1), EntryID: uuid.New()}
	}
	return participants
}

func newActiveTournament(t *testing.T, format Format, n int, builder Builder) *Tournament {
	t.Helper()

	seeded := AssignSeeds(makeParticipants(n))
	b, _, err := builder.Build(format, seeded)
	require.NoError(t, err)

	return &Tournament{
		ID:              uuid.New(),
		Name:            "test",
		Format:          format,
		Status:          TournamentActive,
		GrandFinalReset: builder.GrandFinalReset,
		MaxPlayers:      len(seeded),
		Participants:    seeded,
		Bracket:         b,
	}
}

// pickFirst always lets player1 win.
func pickFirst(*Match) int { return 1 }

func pickRandom(rng *rand.Rand) func(*Match) int {
	return func(*Match) int { return 1 + rng.Intn(2) }
}

func report(t *testing.T, tour *Tournament, m *Match, winnerSlot int) (*Tournament, *Outcome) {
	t.Helper()

	score1, score2 := 2, 1
	if winnerSlot == 2 {
		score1, score2 = 1, 2
	}
	next, outcome, err := ReportResult(tour, m.ID, score1, score2)
	require.NoError(t, err)
	return next, outcome
}

// playOut reports active matches in an order chosen by rng until the
// tournament completes, checking that nobody is ever seated twice.
func playOut(t *testing.T, tour *Tournament, rng *rand.Rand, choose func(*Match) int) (*Tournament, []Event) {
	t.Helper()

	var events []Event
	limit := len(tour.Bracket.Matches()) + 1
	for i := 0; tour.Status == TournamentActive; i++ {
		require.Less(t, i, limit, "tournament did not terminate")

		active := tour.Bracket.ActiveMatches()
		require.NotEmpty(t, active, "active tournament with no playable match")
		requireDistinctSeats(t, active)

		m := active[rng.Intn(len(active))]
		next, outcome := report(t, tour, m, choose(m))
		events = append(events, outcome.Events...)
		tour = next
	}
	return tour, events
}

func requireDistinctSeats(t *testing.T, matches []*Match) {
	t.Helper()

	seen := make(map[uuid.UUID]bool)
	for _, m := range matches {
		for _, seat := range []*Seat{m.Player1, m.Player2} {
			if !seat.isReal() {
				continue
			}
			require.False(t, seen[seat.ParticipantID], "participant %s seated twice", seat.ParticipantID)
			seen[seat.ParticipantID] = true
		}
	}
}

func countEvents(events []Event, typ EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}
