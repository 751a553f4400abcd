package store

import (
	"context"
	"sync"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/google/uuid"
)

// MemoryStore keeps tournaments in process. It is the default for local runs
// and the repository the service tests run against.
type MemoryStore struct {
	mu          sync.RWMutex
	tournaments map[uuid.UUID]*bracket.Tournament
	matchIndex  map[uuid.UUID]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tournaments: make(map[uuid.UUID]*bracket.Tournament),
		matchIndex:  make(map[uuid.UUID]uuid.UUID),
	}
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound.Withf("%s", id)
	}
	return t.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, t *bracket.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tournaments[t.ID] = t.Clone()
	for _, matchID := range t.MatchIDs() {
		s.matchIndex[matchID] = t.ID
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context, filter Filter) ([]*bracket.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*bracket.Tournament
	for _, t := range s.tournaments {
		if filter.Match(t) {
			out = append(out, t.Clone())
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) TournamentIDForMatch(_ context.Context, matchID uuid.UUID) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.matchIndex[matchID]
	if !ok {
		return uuid.Nil, bracket.ErrMatchNotFound.Withf("%s", matchID)
	}
	return id, nil
}
