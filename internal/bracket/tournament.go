package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentRegistration TournamentStatus = "registration"
	TournamentActive       TournamentStatus = "active"
	TournamentCompleted    TournamentStatus = "completed"
	TournamentCancelled    TournamentStatus = "cancelled"
)

type Format string

const (
	SingleElimination Format = "single"
	DoubleElimination Format = "double"
)

func (f Format) Valid() bool {
	return f == SingleElimination || f == DoubleElimination
}

// Bracket holds the rounds of each section in positional order. Single
// elimination only uses Winners.
type Bracket struct {
	Format          Format   `json:"format"`
	GrandFinalReset bool     `json:"grand_final_reset,omitempty"`
	Winners         []*Round `json:"winners"`
	Losers          []*Round `json:"losers,omitempty"`
	Finals          []*Round `json:"finals,omitempty"`
}

type Tournament struct {
	ID              uuid.UUID        `json:"id"`
	Name            string           `json:"name"`
	Format          Format           `json:"format"`
	Status          TournamentStatus `json:"status"`
	Seeding         string           `json:"seeding"`
	GrandFinalReset bool             `json:"grand_final_reset,omitempty"`
	MaxPlayers      int              `json:"max_players"`
	EntryFee        int64            `json:"entry_fee"`
	PrizePool       int64            `json:"prize_pool"`
	// PrizeTable maps a finishing place (1 = champion) to the amount it pays.
	PrizeTable   map[int]int64 `json:"prize_table,omitempty"`
	Participants []Participant `json:"participants"`
	Bracket      *Bracket      `json:"bracket,omitempty"`
	ChampionID   *uuid.UUID    `json:"champion_id,omitempty"`
	StartsAt     *time.Time    `json:"starts_at,omitempty"`
	// CreatedBy is the organizer, the only player allowed to start or cancel
	// the tournament by hand.
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func (b *Bracket) sections() [][]*Round {
	return [][]*Round{b.Winners, b.Losers, b.Finals}
}

// Rounds returns every round, Winners first, then Losers, then Finals.
func (b *Bracket) Rounds() []*Round {
	var rounds []*Round
	for _, section := range b.sections() {
		rounds = append(rounds, section...)
	}
	return rounds
}

func (b *Bracket) Matches() []*Match {
	var matches []*Match
	for _, r := range b.Rounds() {
		matches = append(matches, r.Matches...)
	}
	return matches
}

func (b *Bracket) Match(id uuid.UUID) (*Match, bool) {
	for _, m := range b.Matches() {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

func (b *Bracket) section(s Section) []*Round {
	switch s {
	case WinnersSection:
		return b.Winners
	case LosersSection:
		return b.Losers
	default:
		return b.Finals
	}
}

func (b *Bracket) roundOf(m *Match) *Round {
	return b.section(m.Section)[m.Round]
}

// ActiveMatches lists every match currently waiting for a result.
func (b *Bracket) ActiveMatches() []*Match {
	var active []*Match
	for _, m := range b.Matches() {
		if m.Status == MatchActive {
			active = append(active, m)
		}
	}
	return active
}

func (b *Bracket) clone() *Bracket {
	c := *b
	cloneRounds := func(rounds []*Round) []*Round {
		if rounds == nil {
			return nil
		}
		out := make([]*Round, len(rounds))
		for i, r := range rounds {
			out[i] = r.clone()
		}
		return out
	}
	c.Winners = cloneRounds(b.Winners)
	c.Losers = cloneRounds(b.Losers)
	c.Finals = cloneRounds(b.Finals)
	return &c
}

// Clone returns a deep copy. Reads are served from clones and every command
// mutates a clone, so a rejected command leaves nothing behind.
func (t *Tournament) Clone() *Tournament {
	c := *t
	if t.PrizeTable != nil {
		c.PrizeTable = make(map[int]int64, len(t.PrizeTable))
		for k, v := range t.PrizeTable {
			c.PrizeTable[k] = v
		}
	}
	if t.Participants != nil {
		c.Participants = make([]Participant, len(t.Participants))
		copy(c.Participants, t.Participants)
	}
	if t.Bracket != nil {
		c.Bracket = t.Bracket.clone()
	}
	if t.ChampionID != nil {
		id := *t.ChampionID
		c.ChampionID = &id
	}
	if t.StartsAt != nil {
		at := *t.StartsAt
		c.StartsAt = &at
	}
	return &c
}

func (t *Tournament) Participant(id uuid.UUID) (Participant, bool) {
	for _, p := range t.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

func (t *Tournament) IsFull() bool {
	return len(t.Participants) >= t.MaxPlayers
}

// MatchIDs lists the bracket's match IDs, empty before activation.
func (t *Tournament) MatchIDs() []uuid.UUID {
	if t.Bracket == nil {
		return nil
	}
	matches := t.Bracket.Matches()
	ids := make([]uuid.UUID, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	return ids
}
