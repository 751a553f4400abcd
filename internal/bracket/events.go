package bracket

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTournamentActivated   EventType = "tournament_activated"
	EventRoundActivated        EventType = "round_activated"
	EventRoundCompleted        EventType = "round_completed"
	EventMatchCompleted        EventType = "match_completed"
	EventTournamentCompleted   EventType = "tournament_completed"
	EventParticipantRegistered EventType = "participant_registered"
	EventParticipantWithdrawn  EventType = "participant_withdrawn"
	EventTournamentCancelled   EventType = "tournament_cancelled"
)

// Event is a domain event produced by a command. ID, TournamentID and
// OccurredAt are stamped by whoever commits the command.
type Event struct {
	ID           uuid.UUID  `json:"id"`
	Type         EventType  `json:"type"`
	TournamentID uuid.UUID  `json:"tournament_id"`
	Section      Section    `json:"section,omitempty"`
	Round        *int       `json:"round,omitempty"`
	MatchID      *uuid.UUID `json:"match_id,omitempty"`
	// ParticipantID is the match winner, the champion, or the registrant,
	// depending on Type.
	ParticipantID *uuid.UUID `json:"participant_id,omitempty"`
	Score1        *int       `json:"score1,omitempty"`
	Score2        *int       `json:"score2,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

type recorder struct {
	events []Event
}

func (r *recorder) roundActivated(rd *Round) {
	index := rd.Index
	r.events = append(r.events, Event{Type: EventRoundActivated, Section: rd.Section, Round: &index})
}

func (r *recorder) roundCompleted(rd *Round) {
	index := rd.Index
	r.events = append(r.events, Event{Type: EventRoundCompleted, Section: rd.Section, Round: &index})
}

func (r *recorder) matchCompleted(m *Match) {
	index := m.Round
	id := m.ID
	ev := Event{Type: EventMatchCompleted, Section: m.Section, Round: &index, MatchID: &id}
	if winner, ok := m.WinnerID(); ok {
		ev.ParticipantID = &winner
	}
	if !m.IsBye {
		s1, s2 := m.Score1, m.Score2
		ev.Score1, ev.Score2 = &s1, &s2
	}
	r.events = append(r.events, ev)
}
