package bracket

import "github.com/google/uuid"

type Participant struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	// Seed is 0 until the bracket is built.
	Seed   int `json:"seed"`
	Rating int `json:"rating"`
	// EntryID identifies one registration; a participant who withdraws and
	// registers again gets a new one so their fee keys never collide.
	EntryID uuid.UUID `json:"entry_id"`
}
