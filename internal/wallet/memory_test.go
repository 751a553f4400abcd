package wallet

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/bracket-engine/internal/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWalletIsIdempotent(t *testing.T) {
	ctx := context.Background()
	w := NewMemoryWallet(100)
	player := uuid.New()
	key := Key{TournamentID: uuid.New(), Subject: uuid.New(), Purpose: PurposeEntryFee}

	require.NoError(t, w.Debit(ctx, player, 30, key, "fee"))
	require.NoError(t, w.Debit(ctx, player, 30, key, "fee"))
	assert.Equal(t, int64(70), w.Balance(player))
	assert.Len(t, w.Ledger(), 1)

	refund := key
	refund.Purpose = PurposeRefund
	require.NoError(t, w.Credit(ctx, player, 30, refund, "refund"))
	require.NoError(t, w.Credit(ctx, player, 30, refund, "refund"))
	assert.Equal(t, int64(100), w.Balance(player))
	assert.Len(t, w.Ledger(), 2)
}

func TestMemoryWalletInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	w := NewMemoryWallet(0)
	player := uuid.New()
	w.Deposit(player, 10)

	err := w.Debit(ctx, player, 11, Key{Subject: uuid.New(), Purpose: PurposeEntryFee}, "fee")
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, apperr.KindInsufficientFunds, apperr.KindOf(err))
	assert.Equal(t, int64(10), w.Balance(player))
	assert.Empty(t, w.Ledger())
}

func TestIntentConstructors(t *testing.T) {
	tid, pid, entry := uuid.New(), uuid.New(), uuid.New()

	fee := EntryFee(tid, pid, entry, 25)
	refund := Refund(tid, pid, entry, 25, "withdrawn")
	prize := Prize(tid, pid, 300, 1)

	assert.Equal(t, KindDebit, fee.Kind)
	assert.Equal(t, KindCredit, refund.Kind)
	assert.Equal(t, fee.Key.Subject, refund.Key.Subject)
	assert.NotEqual(t, fee.Key, refund.Key)
	assert.Equal(t, pid, prize.Key.Subject)
	assert.Equal(t, "tournament prize, place 1", prize.Reason)
}
