package bracket

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// Standing is a participant's final place and what it pays.
type Standing struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	Place         int       `json:"place"`
	Prize         int64     `json:"prize"`
}

// PrizeTableOrDefault returns the table prizes are paid from. Without an explicit
// table the whole pool goes to the champion.
func (t *Tournament) PrizeTableOrDefault() map[int]int64 {
	if len(t.PrizeTable) > 0 {
		return t.PrizeTable
	}
	return map[int]int64{1: t.PrizePool}
}

// Standings ranks every real participant of a completed tournament. Players
// knocked out at the same stage share a place and split the prizes of the
// places they occupy; any remainder goes to the better seeds.
//
// Payouts always add up to PrizePool. The table is paid in place order until
// the pool runs out, and whatever the table leaves unpaid, including the
// amounts of places nobody reached, goes to the champion.
func Standings(t *Tournament) ([]Standing, error) {
	if t.Status != TournamentCompleted || t.Bracket == nil || t.ChampionID == nil {
		return nil, ErrNotCompleted.Withf("tournament %s is %s", t.ID, t.Status)
	}

	stages := eliminationStages(t.Bracket)
	stages[*t.ChampionID] = math.MaxInt

	type ranked struct {
		p     Participant
		stage int
	}
	var field []ranked
	for _, p := range t.Participants {
		stage, ok := stages[p.ID]
		if !ok {
			// withdrew or never seated
			continue
		}
		field = append(field, ranked{p: p, stage: stage})
	}
	sort.SliceStable(field, func(i, j int) bool {
		if field[i].stage != field[j].stage {
			return field[i].stage > field[j].stage
		}
		return field[i].p.Seed < field[j].p.Seed
	})
	if len(field) == 0 || field[0].p.ID != *t.ChampionID {
		return nil, ErrInvariantViolation.Withf("champion of tournament %s is not a participant", t.ID)
	}

	prizes := t.PrizeTableOrDefault()
	budget := t.PrizePool
	standings := make([]Standing, 0, len(field))
	for start := 0; start < len(field); {
		end := start
		for end < len(field) && field[end].stage == field[start].stage {
			end++
		}

		place := start + 1
		group := int64(end - start)
		var pot int64
		for p := place; p < place+int(group); p++ {
			pot += prizes[p]
		}
		pot = min(pot, budget)
		budget -= pot
		share, rest := pot/group, pot%group

		for i := start; i < end; i++ {
			prize := share
			if int64(i-start) < rest {
				prize++
			}
			standings = append(standings, Standing{
				ParticipantID: field[i].p.ID,
				Place:         place,
				Prize:         prize,
			})
		}
		start = end
	}
	standings[0].Prize += max(budget, 0)
	return standings, nil
}

// eliminationStages maps each real participant to the ordinal of the match
// that knocked them out. Higher means they lasted longer.
func eliminationStages(b *Bracket) map[uuid.UUID]int {
	stages := make(map[uuid.UUID]int)
	for _, m := range b.Matches() {
		loser, ok := m.Loser()
		if !ok || !loser.isReal() {
			continue
		}

		stage := m.Round
		switch {
		case b.Format == SingleElimination:
		case m.Section == WinnersSection:
			// a first loss in double elimination is not an elimination
			stage = -1
		case m.Section == FinalsSection:
			stage = len(b.Losers) + m.Round
		}

		if prev, seen := stages[loser.ParticipantID]; !seen || stage > prev {
			stages[loser.ParticipantID] = stage
		}
	}
	return stages
}
