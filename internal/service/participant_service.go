package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/bracket-engine/internal/bracket"
	"github.com/AdamBeresnev/bracket-engine/internal/wallet"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RegistrationInput struct {
	ID     uuid.UUID
	Name   string
	Rating int
}

func checkRegistration(t *bracket.Tournament, participantID uuid.UUID) error {
	if t.IsFull() {
		return ErrTournamentFull.Withf("%d of %d seats taken", len(t.Participants), t.MaxPlayers)
	}
	if t.Status != bracket.TournamentRegistration {
		return ErrNotInRegistration.Withf("tournament %s is %s", t.ID, t.Status)
	}
	if _, ok := t.Participant(participantID); ok {
		return ErrAlreadyRegistered.Withf("%s", participantID)
	}
	return nil
}

// RegisterParticipant charges the entry fee and takes a seat. The fee has to
// clear before the seat is taken, so the debit runs outside the exclusive
// section and is refunded if the seat is gone by the time the lock is held.
// Taking the last seat activates the tournament.
func (s *TournamentService) RegisterParticipant(ctx context.Context, tournamentID uuid.UUID, in RegistrationInput) (*bracket.Tournament, error) {
	if in.ID == uuid.Nil || strings.TrimSpace(in.Name) == "" {
		return nil, ErrInvalidParticipant.Withf("id and name are required")
	}

	snapshot, err := s.repo.Get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := checkRegistration(snapshot, in.ID); err != nil {
		return nil, err
	}

	entryID := uuid.New()
	fee := snapshot.EntryFee
	if fee > 0 {
		if err := s.wallet.Execute(ctx, wallet.EntryFee(tournamentID, in.ID, entryID, fee)); err != nil {
			return nil, fmt.Errorf("failed to charge entry fee: %w", err)
		}
	}

	t, err := s.mutate(ctx, tournamentID, func(t *bracket.Tournament, c *change) (*bracket.Tournament, error) {
		if err := checkRegistration(t, in.ID); err != nil {
			return nil, err
		}

		t.Participants = append(t.Participants, bracket.Participant{
			ID:      in.ID,
			Name:    strings.TrimSpace(in.Name),
			Rating:  in.Rating,
			EntryID: entryID,
		})
		t.PrizePool += fee

		participantID := in.ID
		c.emit(bracket.Event{Type: bracket.EventParticipantRegistered, ParticipantID: &participantID})

		if t.IsFull() {
			return s.activate(t, c, false)
		}
		return t, nil
	})
	if err != nil && fee > 0 {
		s.logger.Info("registration rejected after charging, refunding",
			zap.Stringer("tournament_id", tournamentID),
			zap.Stringer("participant_id", in.ID),
			zap.Error(err),
		)
		refund := wallet.Refund(tournamentID, in.ID, entryID, fee, "registration rejected")
		if rerr := s.wallet.Execute(ctx, refund); rerr != nil {
			s.logger.Error("refund failed", zap.Stringer("key", refund.Key), zap.Error(rerr))
		}
	}
	return t, err
}

// WithdrawParticipant gives the seat back and refunds the entry fee.
func (s *TournamentService) WithdrawParticipant(ctx context.Context, tournamentID, participantID uuid.UUID) (*bracket.Tournament, error) {
	return s.mutate(ctx, tournamentID, func(t *bracket.Tournament, c *change) (*bracket.Tournament, error) {
		if t.Status != bracket.TournamentRegistration {
			return nil, ErrNotInRegistration.Withf("tournament %s is %s", t.ID, t.Status)
		}

		index := -1
		for i, p := range t.Participants {
			if p.ID == participantID {
				index = i
				break
			}
		}
		if index < 0 {
			return nil, ErrNotRegistered.Withf("%s", participantID)
		}

		p := t.Participants[index]
		t.Participants = append(t.Participants[:index], t.Participants[index+1:]...)
		t.PrizePool -= t.EntryFee

		if t.EntryFee > 0 {
			c.pay(wallet.Refund(t.ID, p.ID, p.EntryID, t.EntryFee, "withdrawn"))
		}
		c.emit(bracket.Event{Type: bracket.EventParticipantWithdrawn, ParticipantID: &p.ID})
		return t, nil
	})
}
