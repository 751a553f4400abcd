package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SQLStore keeps each tournament as a JSON document next to the columns List
// filters on, plus one row per match so a match ID can be resolved to its
// tournament without decoding documents. Works on sqlite and postgres.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db}
}

type tournamentRow struct {
	ID         uuid.UUID  `db:"id"`
	Name       string     `db:"name"`
	Format     string     `db:"format"`
	Status     string     `db:"status"`
	MaxPlayers int        `db:"max_players"`
	EntryFee   int64      `db:"entry_fee"`
	PrizePool  int64      `db:"prize_pool"`
	ChampionID *uuid.UUID `db:"champion_id"`
	StartsAt   *int64     `db:"starts_at_unix"`
	CreatedAt  int64      `db:"created_at_unix"`
	Document   string     `db:"document"`
}

type matchRow struct {
	ID           uuid.UUID `db:"id"`
	TournamentID uuid.UUID `db:"tournament_id"`
	Section      string    `db:"section"`
	RoundNumber  int       `db:"round_number"`
	MatchOrder   int       `db:"match_order"`
	Status       string    `db:"status"`
}

func toRow(t *bracket.Tournament) (tournamentRow, error) {
	doc, err := json.Marshal(t)
	if err != nil {
		return tournamentRow{}, fmt.Errorf("failed to encode tournament %s: %w", t.ID, err)
	}

	row := tournamentRow{
		ID:         t.ID,
		Name:       t.Name,
		Format:     string(t.Format),
		Status:     string(t.Status),
		MaxPlayers: t.MaxPlayers,
		EntryFee:   t.EntryFee,
		PrizePool:  t.PrizePool,
		ChampionID: t.ChampionID,
		CreatedAt:  t.CreatedAt.Unix(),
		Document:   string(doc),
	}
	if t.StartsAt != nil {
		at := t.StartsAt.Unix()
		row.StartsAt = &at
	}
	return row, nil
}

func fromRow(row tournamentRow) (*bracket.Tournament, error) {
	var t bracket.Tournament
	if err := json.Unmarshal([]byte(row.Document), &t); err != nil {
		return nil, fmt.Errorf("failed to decode tournament %s: %w", row.ID, err)
	}
	return &t, nil
}

const upsertTournament = `INSERT INTO tournaments
	(id, name, format, status, max_players, entry_fee, prize_pool, champion_id, starts_at_unix, created_at_unix, document)
	VALUES (:id, :name, :format, :status, :max_players, :entry_fee, :prize_pool, :champion_id, :starts_at_unix, :created_at_unix, :document)
	ON CONFLICT (id) DO UPDATE SET
		name = excluded.name,
		format = excluded.format,
		status = excluded.status,
		max_players = excluded.max_players,
		entry_fee = excluded.entry_fee,
		prize_pool = excluded.prize_pool,
		champion_id = excluded.champion_id,
		starts_at_unix = excluded.starts_at_unix,
		document = excluded.document`

func (s *SQLStore) Save(ctx context.Context, t *bracket.Tournament) error {
	row, err := toRow(t)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, upsertTournament, row); err != nil {
		return fmt.Errorf("failed to save tournament %s: %w", t.ID, err)
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM matches WHERE tournament_id = ?"), t.ID); err != nil {
		return fmt.Errorf("failed to clear matches of %s: %w", t.ID, err)
	}

	if t.Bracket != nil {
		var matches []matchRow
		for _, m := range t.Bracket.Matches() {
			matches = append(matches, matchRow{
				ID:           m.ID,
				TournamentID: t.ID,
				Section:      string(m.Section),
				RoundNumber:  m.Round,
				MatchOrder:   m.Slot,
				Status:       string(m.Status),
			})
		}
		if len(matches) > 0 {
			_, err := tx.NamedExecContext(ctx, `INSERT INTO matches (id, tournament_id, section, round_number, match_order, status)
				VALUES (:id, :tournament_id, :section, :round_number, :match_order, :status)`, matches)
			if err != nil {
				return fmt.Errorf("failed to save matches of %s: %w", t.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tournament %s: %w", t.ID, err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	var row tournamentRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind("SELECT * FROM tournaments WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTournamentNotFound.Withf("%s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament %s: %w", id, err)
	}
	return fromRow(row)
}

func (s *SQLStore) List(ctx context.Context, filter Filter) ([]*bracket.Tournament, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Format != "" {
		where = append(where, "format = ?")
		args = append(args, string(filter.Format))
	}
	if filter.StartsBefore != nil {
		where = append(where, "starts_at_unix IS NOT NULL AND starts_at_unix <= ?")
		args = append(args, filter.StartsBefore.Unix())
	}

	query := "SELECT * FROM tournaments"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at_unix DESC"

	var rows []tournamentRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}

	out := make([]*bracket.Tournament, 0, len(rows))
	for _, row := range rows {
		t, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *SQLStore) TournamentIDForMatch(ctx context.Context, matchID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.GetContext(ctx, &id, s.db.Rebind("SELECT tournament_id FROM matches WHERE id = ?"), matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, bracket.ErrMatchNotFound.Withf("%s", matchID)
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up match %s: %w", matchID, err)
	}
	return id, nil
}
