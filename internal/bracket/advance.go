package bracket

import (
	"github.com/google/uuid"
)

// destination is a slot in a downstream match.
type destination struct {
	round *Round
	match int
	slot  int
}

func slotFor(index int) int {
	if index%2 == 0 {
		return 1
	}
	return 2
}

// winnerDestination applies the round-to-round rule: slot s of round r feeds
// match s/2 of round r+1, as player1 when s is even. A losers round right
// after an intake keeps the slot instead, since intake and consolidation
// rounds have the same width.
func (c *cascade) winnerDestination(m *Match) (destination, bool) {
	b := c.b
	switch m.Section {
	case WinnersSection:
		if m.Round+1 < len(b.Winners) {
			return destination{b.Winners[m.Round+1], m.Slot / 2, slotFor(m.Slot)}, true
		}
		if b.Format == DoubleElimination {
			return destination{b.Finals[0], 0, 1}, true
		}
	case LosersSection:
		if m.Round == len(b.Losers)-1 {
			return destination{b.Finals[0], 0, 2}, true
		}
		next := b.Losers[m.Round+1]
		if m.Round%2 == 0 {
			return destination{next, m.Slot, 1}, true
		}
		return destination{next, m.Slot / 2, slotFor(m.Slot)}, true
	}
	return destination{}, false
}

// loserDestination routes a winners-bracket loser into the losers bracket.
// Round 0 losers are paired in losers round 0; losers of winners round r
// drop into the player2 slot of intake round 2r-1, in reverse slot order so
// that players who just met are kept apart.
func (c *cascade) loserDestination(m *Match) (destination, bool) {
	b := c.b
	if b.Format != DoubleElimination || m.Section != WinnersSection {
		return destination{}, false
	}
	if m.Round == 0 {
		return destination{b.Losers[0], m.Slot / 2, slotFor(m.Slot)}, true
	}
	intake := b.Losers[2*m.Round-1]
	return destination{intake, len(intake.Matches) - 1 - m.Slot, 2}, true
}

func (c *cascade) place(dest destination, seat *Seat) error {
	target := dest.round.Matches[dest.match]
	slot := &target.Player1
	if dest.slot == 2 {
		slot = &target.Player2
	}

	if *slot != nil {
		return ErrInvariantViolation.Withf("%s round %d match %d slot %d already occupied",
			target.Section, target.Round, target.Slot, dest.slot)
	}
	if target.Status != MatchWaiting {
		return ErrInvariantViolation.Withf("%s round %d match %d is %s, cannot receive a seat",
			target.Section, target.Round, target.Slot, target.Status)
	}

	s := *seat
	*slot = &s
	if target.resolved() {
		target.Status = MatchPending
	}
	return nil
}

func (c *cascade) decide(winner *Seat) error {
	if c.champion != nil {
		return ErrInvariantViolation.Withf("bracket decided twice")
	}
	if !winner.isReal() {
		return ErrInvariantViolation.Withf("bracket decided in favour of a bye")
	}
	c.champion = winner
	return nil
}

func (c *cascade) complete(m *Match, winnerSlot int) error {
	m.WinnerSlot = &winnerSlot
	m.Status = MatchCompleted
	c.rec.matchCompleted(m)

	winner, _ := m.Winner()
	loser, _ := m.Loser()

	var touched []*Round
	switch {
	case m.Section == FinalsSection:
		if m.Round == 0 && c.b.GrandFinalReset && winnerSlot == 2 && loser.isReal() {
			// the losers-bracket champion handed the winners-bracket champion
			// a first loss, so the two play again
			reset := c.b.Finals[1]
			if err := c.place(destination{reset, 0, 1}, m.Player1); err != nil {
				return err
			}
			if err := c.place(destination{reset, 0, 2}, m.Player2); err != nil {
				return err
			}
			touched = append(touched, reset)
		} else if err := c.decide(winner); err != nil {
			return err
		}
	default:
		if dest, ok := c.winnerDestination(m); ok {
			if err := c.place(dest, winner); err != nil {
				return err
			}
			touched = append(touched, dest.round)
		} else if err := c.decide(winner); err != nil {
			return err
		}
	}

	if dest, ok := c.loserDestination(m); ok {
		if err := c.place(dest, loser); err != nil {
			return err
		}
		touched = append(touched, dest.round)
	}

	if err := c.checkCompletion(c.b.roundOf(m)); err != nil {
		return err
	}
	for _, rd := range touched {
		if err := c.tryActivate(rd); err != nil {
			return err
		}
	}
	return nil
}

// Outcome describes what a reported result changed.
type Outcome struct {
	WinnerID uuid.UUID
	// Completed is true when this result decided the tournament.
	Completed bool
	Events    []Event
}

// ReportResult applies a score to an active match and runs the whole cascade
// on a copy of t. The copy is returned only when every step succeeded, so a
// rejected report leaves t exactly as it was.
func ReportResult(t *Tournament, matchID uuid.UUID, score1, score2 int) (*Tournament, *Outcome, error) {
	if t.Bracket == nil {
		return nil, nil, ErrMatchNotFound.Withf("%s", matchID)
	}
	if m, ok := t.Bracket.Match(matchID); !ok {
		return nil, nil, ErrMatchNotFound.Withf("%s", matchID)
	} else if m.Status != MatchActive {
		return nil, nil, ErrInvalidMatchState.Withf("match %s is %s", matchID, m.Status)
	}
	if t.Status != TournamentActive {
		return nil, nil, ErrTournamentNotActive.Withf("tournament %s is %s", t.ID, t.Status)
	}
	if score1 < 0 || score2 < 0 {
		return nil, nil, ErrInvalidScore
	}
	if score1 == score2 {
		return nil, nil, ErrTiedScore.Withf("%d-%d", score1, score2)
	}

	next := t.Clone()
	m, _ := next.Bracket.Match(matchID)
	m.Score1, m.Score2 = score1, score2

	winnerSlot := 1
	if score2 > score1 {
		winnerSlot = 2
	}

	c := newCascade(next.Bracket)
	if err := c.complete(m, winnerSlot); err != nil {
		return nil, nil, err
	}

	outcome := &Outcome{}
	outcome.WinnerID, _ = m.WinnerID()

	if c.champion != nil {
		if next.ChampionID != nil {
			return nil, nil, ErrInvariantViolation.Withf("champion already set for tournament %s", t.ID)
		}
		champion := c.champion.ParticipantID
		next.ChampionID = &champion
		next.Status = TournamentCompleted
		outcome.Completed = true
		c.rec.events = append(c.rec.events, Event{Type: EventTournamentCompleted, ParticipantID: &champion})
	}

	outcome.Events = c.rec.events
	return next, outcome, nil
}
