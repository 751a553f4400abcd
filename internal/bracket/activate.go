package bracket

// cascade carries one command through everything it triggers: match
// completion, routing, round activation and possibly the final decision.
type cascade struct {
	b   *Bracket
	rec *recorder
	// champion is set when the terminal match of the format completes
	champion *Seat
}

func newCascade(b *Bracket) *cascade {
	return &cascade{b: b, rec: &recorder{}}
}

// tryActivate promotes a waiting round once every one of its matches has both
// slots resolved. It is safe to call any number of times and in any order,
// which is what lets the two feeds of a losers intake round arrive in either
// order.
func (c *cascade) tryActivate(rd *Round) error {
	if rd.Status != RoundWaiting {
		return nil
	}
	for _, m := range rd.Matches {
		if m.Status != MatchPending {
			return nil
		}
	}

	rd.Status = RoundActive
	c.rec.roundActivated(rd)

	var byes []*Match
	for _, m := range rd.Matches {
		m.Status = MatchActive
		if m.hasBye() {
			byes = append(byes, m)
		}
	}

	for _, m := range byes {
		if err := c.completeBye(m); err != nil {
			return err
		}
	}
	return nil
}

// checkCompletion closes a round whose matches are all completed and then
// gives every round it feeds a chance to activate.
func (c *cascade) checkCompletion(rd *Round) error {
	if rd.Status != RoundActive || !rd.completed() {
		return nil
	}

	rd.Status = RoundCompleted
	c.rec.roundCompleted(rd)

	for _, next := range c.feeds(rd) {
		if err := c.tryActivate(next); err != nil {
			return err
		}
	}
	return nil
}

// feeds lists the rounds that receive seats from rd.
func (c *cascade) feeds(rd *Round) []*Round {
	b := c.b
	var next []*Round

	switch rd.Section {
	case WinnersSection:
		if rd.Index+1 < len(b.Winners) {
			next = append(next, b.Winners[rd.Index+1])
		} else if b.Format == DoubleElimination {
			next = append(next, b.Finals[0])
		}
		if b.Format == DoubleElimination {
			if rd.Index == 0 {
				next = append(next, b.Losers[0])
			} else {
				next = append(next, b.Losers[2*rd.Index-1])
			}
		}
	case LosersSection:
		if rd.Index+1 < len(b.Losers) {
			next = append(next, b.Losers[rd.Index+1])
		} else {
			next = append(next, b.Finals[0])
		}
	case FinalsSection:
		if rd.Index+1 < len(b.Finals) {
			next = append(next, b.Finals[rd.Index+1])
		}
	}
	return next
}

func (c *cascade) completeBye(m *Match) error {
	m.IsBye = true
	winnerSlot := 1
	if !m.Player1.isReal() && m.Player2.isReal() {
		winnerSlot = 2
	}
	return c.complete(m, winnerSlot)
}
