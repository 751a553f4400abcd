package bracket

import (
	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchWaiting   MatchStatus = "waiting"
	MatchPending   MatchStatus = "pending"
	MatchActive    MatchStatus = "active"
	MatchCompleted MatchStatus = "completed"
)

type Section string

const (
	WinnersSection Section = "winners"
	LosersSection  Section = "losers"
	FinalsSection  Section = "finals"
)

// Seat is one side of a match. A nil *Seat is a slot that is not resolved yet.
type Seat struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	Bye           bool      `json:"bye,omitempty"`
}

func ParticipantSeat(id uuid.UUID) *Seat {
	return &Seat{ParticipantID: id}
}

func ByeSeat() *Seat {
	return &Seat{Bye: true}
}

func (s *Seat) isReal() bool {
	return s != nil && !s.Bye
}

type Match struct {
	ID uuid.UUID `json:"id"`

	// Position in the bracket; routing is computed from these, never from IDs
	Section Section `json:"section"`
	Round   int     `json:"round"`
	Slot    int     `json:"slot"`

	Player1 *Seat `json:"player1,omitempty"`
	Player2 *Seat `json:"player2,omitempty"`

	Score1 int         `json:"score1"`
	Score2 int         `json:"score2"`
	Status MatchStatus `json:"status"`

	// WinnerSlot is 1 or 2 and only set once the match is completed
	WinnerSlot *int `json:"winner_slot,omitempty"`
	IsBye      bool `json:"is_bye,omitempty"`
}

func (m *Match) IsWinner(slot int) bool {
	return m.Status == MatchCompleted && m.WinnerSlot != nil && *m.WinnerSlot == slot
}

func (m *Match) IsLoser(slot int) bool {
	return m.Status == MatchCompleted && m.WinnerSlot != nil && *m.WinnerSlot != slot
}

func (m *Match) seat(slot int) *Seat {
	if slot == 1 {
		return m.Player1
	}
	return m.Player2
}

// Winner returns the winning seat. It is only available once the match is completed.
func (m *Match) Winner() (*Seat, bool) {
	if m.Status != MatchCompleted || m.WinnerSlot == nil {
		return nil, false
	}
	return m.seat(*m.WinnerSlot), true
}

// Loser returns the losing seat. It is only available once the match is completed.
func (m *Match) Loser() (*Seat, bool) {
	if m.Status != MatchCompleted || m.WinnerSlot == nil {
		return nil, false
	}
	return m.seat(3 - *m.WinnerSlot), true
}

// WinnerID is the winning participant, absent for unfinished matches and for
// a bye that beat another bye.
func (m *Match) WinnerID() (uuid.UUID, bool) {
	seat, ok := m.Winner()
	if !ok || !seat.isReal() {
		return uuid.Nil, false
	}
	return seat.ParticipantID, true
}

func (m *Match) resolved() bool {
	return m.Player1 != nil && m.Player2 != nil
}

func (m *Match) hasBye() bool {
	return (m.Player1 != nil && m.Player1.Bye) || (m.Player2 != nil && m.Player2.Bye)
}

func (m *Match) clone() *Match {
	c := *m
	if m.Player1 != nil {
		p := *m.Player1
		c.Player1 = &p
	}
	if m.Player2 != nil {
		p := *m.Player2
		c.Player2 = &p
	}
	if m.WinnerSlot != nil {
		w := *m.WinnerSlot
		c.WinnerSlot = &w
	}
	return &c
}
