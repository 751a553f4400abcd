package wallet

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Entry is one applied movement. Amount is negative for debits.
type Entry struct {
	Key           Key
	ParticipantID uuid.UUID
	Amount        int64
	Reason        string
}

// MemoryWallet is an in-process ledger. Accounts open lazily with the
// starting balance, and a key that was already applied is a no-op.
type MemoryWallet struct {
	mu       sync.Mutex
	starting int64
	balances map[uuid.UUID]int64
	applied  map[Key]bool
	ledger   []Entry
}

func NewMemoryWallet(startingBalance int64) *MemoryWallet {
	return &MemoryWallet{
		starting: startingBalance,
		balances: make(map[uuid.UUID]int64),
		applied:  make(map[Key]bool),
	}
}

func (w *MemoryWallet) balance(id uuid.UUID) int64 {
	b, ok := w.balances[id]
	if !ok {
		b = w.starting
		w.balances[id] = b
	}
	return b
}

func (w *MemoryWallet) Balance(id uuid.UUID) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance(id)
}

func (w *MemoryWallet) Deposit(id uuid.UUID, amount int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[id] = w.balance(id) + amount
}

func (w *MemoryWallet) Debit(_ context.Context, participantID uuid.UUID, amount int64, key Key, reason string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.applied[key] {
		return nil
	}
	balance := w.balance(participantID)
	if balance < amount {
		return ErrInsufficientFunds.Withf("balance %d, need %d", balance, amount)
	}

	w.balances[participantID] = balance - amount
	w.record(Entry{Key: key, ParticipantID: participantID, Amount: -amount, Reason: reason})
	return nil
}

func (w *MemoryWallet) Credit(_ context.Context, participantID uuid.UUID, amount int64, key Key, reason string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.applied[key] {
		return nil
	}

	w.balances[participantID] = w.balance(participantID) + amount
	w.record(Entry{Key: key, ParticipantID: participantID, Amount: amount, Reason: reason})
	return nil
}

func (w *MemoryWallet) record(e Entry) {
	w.applied[e.Key] = true
	w.ledger = append(w.ledger, e)
}

// Ledger returns the applied movements in order.
func (w *MemoryWallet) Ledger() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]Entry, len(w.ledger))
	copy(out, w.ledger)
	return out
}
