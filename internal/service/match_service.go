package service

import (
	"context"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/wallet"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MatchResult struct {
	TournamentID uuid.UUID
	WinnerID     uuid.UUID
	// Completed is true when this result decided the tournament.
	Completed  bool
	Tournament *bracket.Tournament
}

// ReportMatchResult applies a score and everything it triggers as one unit.
// A duplicate or late report for the same match is rejected.
func (s *TournamentService) ReportMatchResult(ctx context.Context, matchID uuid.UUID, score1, score2 int) (*MatchResult, error) {
	tournamentID, err := s.repo.TournamentIDForMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	var outcome *bracket.Outcome
	t, err := s.mutate(ctx, tournamentID, func(t *bracket.Tournament, c *change) (*bracket.Tournament, error) {
		next, o, err := bracket.ReportResult(t, matchID, score1, score2)
		if err != nil {
			return nil, err
		}
		c.emit(o.Events...)

		if o.Completed {
			intents, err := s.onTournamentCompleted(next)
			if err != nil {
				return nil, err
			}
			c.pay(intents...)
		}

		outcome = o
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	return &MatchResult{
		TournamentID: tournamentID,
		WinnerID:     outcome.WinnerID,
		Completed:    outcome.Completed,
		Tournament:   t,
	}, nil
}

// onTournamentCompleted turns the final standings into prize credits.
func (s *TournamentService) onTournamentCompleted(t *bracket.Tournament) ([]wallet.Intent, error) {
	standings, err := bracket.Standings(t)
	if err != nil {
		return nil, err
	}

	var intents []wallet.Intent
	for _, st := range standings {
		if st.Prize > 0 {
			intents = append(intents, wallet.Prize(t.ID, st.ParticipantID, st.Prize, st.Place))
		}
	}

	s.logger.Info("tournament completed",
		zap.Stringer("tournament_id", t.ID),
		zap.Stringer("champion_id", t.ChampionID),
		zap.Int("prizes", len(intents)),
	)
	return intents, nil
}

func (s *TournamentService) Standings(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Standing, error) {
	t, err := s.repo.Get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return bracket.Standings(t)
}
