package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each tournament as one JSON value. A set lists every
// tournament and a hash maps match IDs back to their tournament.
type RedisStore struct{ rdb *redis.Client }

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) keyTournament(id uuid.UUID) string { return "tournament:" + id.String() }
func (s *RedisStore) keyAll() string                    { return "tournaments" }
func (s *RedisStore) keyMatchIndex() string             { return "tournament:match-index" }

func (s *RedisStore) Save(ctx context.Context, t *bracket.Tournament) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.keyTournament(t.ID), raw, 0)
		pipe.SAdd(ctx, s.keyAll(), t.ID.String())
		if ids := t.MatchIDs(); len(ids) > 0 {
			index := make(map[string]any, len(ids))
			for _, id := range ids {
				index[id.String()] = t.ID.String()
			}
			pipe.HSet(ctx, s.keyMatchIndex(), index)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save tournament %s: %w", t.ID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	raw, err := s.rdb.Get(ctx, s.keyTournament(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTournamentNotFound.Withf("%s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}

	var t bracket.Tournament
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("failed to decode tournament %s: %w", id, err)
	}
	return &t, nil
}

func (s *RedisStore) List(ctx context.Context, filter Filter) ([]*bracket.Tournament, error) {
	ids, err := s.rdb.SMembers(ctx, s.keyAll()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = "tournament:" + id
	}
	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load tournaments: %w", err)
	}

	var out []*bracket.Tournament
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// listed but expired or deleted
			continue
		}
		var t bracket.Tournament
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, fmt.Errorf("failed to decode tournament %s: %w", ids[i], err)
		}
		if filter.Match(&t) {
			out = append(out, &t)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *RedisStore) TournamentIDForMatch(ctx context.Context, matchID uuid.UUID) (uuid.UUID, error) {
	raw, err := s.rdb.HGet(ctx, s.keyMatchIndex(), matchID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, bracket.ErrMatchNotFound.Withf("%s", matchID)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up match %s: %w", matchID, err)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse tournament id for match %s: %w", matchID, err)
	}
	return id, nil
}
