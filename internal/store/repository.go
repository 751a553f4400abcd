package store

import (
	"context"
	"sort"
	"time"

	"github.com/AdamBeresnev/bracket-engine/internal/apperr"
	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/google/uuid"
)

var ErrTournamentNotFound = apperr.New(apperr.KindNotFound, "TOURNAMENT_NOT_FOUND", "tournament not found")

// Repository persists whole tournament aggregates. Get always returns a
// snapshot the caller owns; mutating it does not affect stored state until
// it is passed back to Save.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error)
	Save(ctx context.Context, t *bracket.Tournament) error
	List(ctx context.Context, filter Filter) ([]*bracket.Tournament, error)
	TournamentIDForMatch(ctx context.Context, matchID uuid.UUID) (uuid.UUID, error)
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Status       bracket.TournamentStatus
	Format       bracket.Format
	StartsBefore *time.Time
}

func (f Filter) Match(t *bracket.Tournament) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Format != "" && t.Format != f.Format {
		return false
	}
	if f.StartsBefore != nil && (t.StartsAt == nil || t.StartsAt.After(*f.StartsBefore)) {
		return false
	}
	return true
}

// sortNewestFirst orders tournaments the way every List implementation returns them.
func sortNewestFirst(tournaments []*bracket.Tournament) {
	sort.SliceStable(tournaments, func(i, j int) bool {
		return tournaments[i].CreatedAt.After(tournaments[j].CreatedAt)
	})
}
