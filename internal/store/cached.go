package store

import (
	"context"
	"sync"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/google/uuid"
)

// Cached serves Get from process memory and writes through to a backing
// repository. It assumes this process is the only writer, which holds because
// every mutation goes through the service's per-tournament lock.
type Cached struct {
	backing Repository

	mu          sync.RWMutex
	tournaments map[uuid.UUID]*bracket.Tournament
	matchIndex  map[uuid.UUID]uuid.UUID
}

func NewCached(backing Repository) *Cached {
	return &Cached{
		backing:     backing,
		tournaments: make(map[uuid.UUID]*bracket.Tournament),
		matchIndex:  make(map[uuid.UUID]uuid.UUID),
	}
}

func (c *Cached) Get(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	c.mu.RLock()
	t, ok := c.tournaments[id]
	c.mu.RUnlock()
	if ok {
		return t.Clone(), nil
	}

	t, err := c.backing.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.remember(t)
	return t.Clone(), nil
}

func (c *Cached) Save(ctx context.Context, t *bracket.Tournament) error {
	if err := c.backing.Save(ctx, t); err != nil {
		return err
	}
	c.remember(t.Clone())
	return nil
}

// List always reads through so filters see rows written by earlier runs.
func (c *Cached) List(ctx context.Context, filter Filter) ([]*bracket.Tournament, error) {
	return c.backing.List(ctx, filter)
}

func (c *Cached) TournamentIDForMatch(ctx context.Context, matchID uuid.UUID) (uuid.UUID, error) {
	c.mu.RLock()
	id, ok := c.matchIndex[matchID]
	c.mu.RUnlock()
	if ok {
		return id, nil
	}
	return c.backing.TournamentIDForMatch(ctx, matchID)
}

func (c *Cached) remember(t *bracket.Tournament) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tournaments[t.ID] = t
	for _, matchID := range t.MatchIDs() {
		c.matchIndex[matchID] = t.ID
	}
}
