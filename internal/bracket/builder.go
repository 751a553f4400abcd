package bracket

import (
	"github.com/google/uuid"
)

// Builder constructs a bracket skeleton and seats round 0.
type Builder struct {
	Seeding         SeedingPolicy
	GrandFinalReset bool
	// PadWithByes rounds the seat count up to the next power of two with Bye
	// seats. Without it the participant count itself must be a valid size.
	PadWithByes bool
}

// Build lays out every round for format and activates round 0. The seeded
// slice must already be in seed order. Byes in round 0 are resolved before
// Build returns, and the events of that first cascade are returned with it.
func (bb Builder) Build(format Format, seeded []Participant) (*Bracket, []Event, error) {
	if !format.Valid() {
		return nil, nil, ErrInvalidFormat.Withf("%q", format)
	}

	size := len(seeded)
	if bb.PadWithByes {
		size = BracketSize(len(seeded))
	}
	if err := ValidateSize(size); err != nil {
		return nil, nil, err
	}
	if len(seeded) < 2 {
		return nil, nil, ErrInvalidParticipantCount.Withf("need at least 2 participants, got %d", len(seeded))
	}

	seeding := bb.Seeding
	if seeding == nil {
		seeding = AdjacentSeeding{}
	}

	seats := make([]*Seat, size)
	for i := range seats {
		if i < len(seeded) {
			seats[i] = ParticipantSeat(seeded[i].ID)
		} else {
			seats[i] = ByeSeat()
		}
	}

	b := &Bracket{
		Format:          format,
		GrandFinalReset: format == DoubleElimination && bb.GrandFinalReset,
	}

	totalRounds := log2(size)
	b.Winners = make([]*Round, totalRounds)
	for r := 0; r < totalRounds; r++ {
		b.Winners[r] = newRound(format, WinnersSection, r, totalRounds, size>>(r+1))
	}

	if format == DoubleElimination {
		losersRounds := 2 * (totalRounds - 1)
		b.Losers = make([]*Round, losersRounds)
		for j := 0; j < losersRounds; j++ {
			// intake and consolidation rounds come in pairs of equal width
			b.Losers[j] = newRound(format, LosersSection, j, losersRounds, size>>(j/2+2))
		}

		finalsRounds := 1
		if b.GrandFinalReset {
			finalsRounds = 2
		}
		b.Finals = make([]*Round, finalsRounds)
		for f := 0; f < finalsRounds; f++ {
			b.Finals[f] = newRound(format, FinalsSection, f, finalsRounds, 1)
		}
	}

	for i, pair := range seeding.Pairs(size) {
		m := b.Winners[0].Matches[i]
		m.Player1 = seats[pair[0]]
		m.Player2 = seats[pair[1]]
		m.Status = MatchPending
	}

	c := newCascade(b)
	if err := c.tryActivate(b.Winners[0]); err != nil {
		return nil, nil, err
	}
	if c.champion != nil {
		return nil, nil, ErrInvariantViolation.Withf("bracket decided while seating round 0")
	}

	return b, c.rec.events, nil
}

func newRound(format Format, section Section, index, total, matchCount int) *Round {
	rd := &Round{
		Index:   index,
		Name:    roundName(format, section, index, total),
		Section: section,
		Status:  RoundWaiting,
		Matches: make([]*Match, matchCount),
	}
	for s := range rd.Matches {
		rd.Matches[s] = &Match{
			ID:      uuid.New(),
			Section: section,
			Round:   index,
			Slot:    s,
			Status:  MatchWaiting,
		}
	}
	return rd
}
