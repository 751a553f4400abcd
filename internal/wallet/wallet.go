// Package wallet is the currency collaborator the tournament engine pays
// through. Every movement carries an idempotency key so a retried or replayed
// intent never moves money twice.
package wallet

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/bracket-engine/internal/apperr"
	"github.com/google/uuid"
)

var ErrInsufficientFunds = apperr.New(apperr.KindInsufficientFunds, "INSUFFICIENT_FUNDS", "not enough funds")

type Wallet interface {
	Debit(ctx context.Context, participantID uuid.UUID, amount int64, key Key, reason string) error
	Credit(ctx context.Context, participantID uuid.UUID, amount int64, key Key, reason string) error
}

type Purpose string

const (
	PurposeEntryFee Purpose = "entry_fee"
	PurposeRefund   Purpose = "refund"
	PurposePrize    Purpose = "prize"
)

// Key identifies one money movement. Subject is the registration (EntryID)
// for fees and refunds and the participant for prizes.
type Key struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	Subject      uuid.UUID `json:"subject"`
	Purpose      Purpose   `json:"purpose"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s", k.TournamentID, k.Subject, k.Purpose)
}

type Kind string

const (
	KindDebit  Kind = "debit"
	KindCredit Kind = "credit"
)

// Intent is a wallet call decided inside a tournament's critical section and
// executed after it is released.
type Intent struct {
	Key           Key       `json:"key"`
	Kind          Kind      `json:"kind"`
	ParticipantID uuid.UUID `json:"participant_id"`
	Amount        int64     `json:"amount"`
	Reason        string    `json:"reason"`
}

func EntryFee(tournamentID, participantID, entryID uuid.UUID, amount int64) Intent {
	return Intent{
		Key:           Key{TournamentID: tournamentID, Subject: entryID, Purpose: PurposeEntryFee},
		Kind:          KindDebit,
		ParticipantID: participantID,
		Amount:        amount,
		Reason:        "tournament entry fee",
	}
}

func Refund(tournamentID, participantID, entryID uuid.UUID, amount int64, reason string) Intent {
	return Intent{
		Key:           Key{TournamentID: tournamentID, Subject: entryID, Purpose: PurposeRefund},
		Kind:          KindCredit,
		ParticipantID: participantID,
		Amount:        amount,
		Reason:        reason,
	}
}

func Prize(tournamentID, participantID uuid.UUID, amount int64, place int) Intent {
	return Intent{
		Key:           Key{TournamentID: tournamentID, Subject: participantID, Purpose: PurposePrize},
		Kind:          KindCredit,
		ParticipantID: participantID,
		Amount:        amount,
		Reason:        fmt.Sprintf("tournament prize, place %d", place),
	}
}

func apply(ctx context.Context, w Wallet, in Intent) error {
	switch in.Kind {
	case KindDebit:
		return w.Debit(ctx, in.ParticipantID, in.Amount, in.Key, in.Reason)
	case KindCredit:
		return w.Credit(ctx, in.ParticipantID, in.Amount, in.Key, in.Reason)
	default:
		return fmt.Errorf("unknown intent kind %q", in.Kind)
	}
}
