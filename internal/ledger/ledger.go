// Package ledger owns the session's balances and the append-only
// transaction log. Every balance mutation goes through a Wallet method so
// that debits are validated before any state changes and every movement
// leaves a log entry.
package ledger

import (
	"errors"
	"time"
)

var ErrInsufficientBalance = errors.New("insufficient_balance")

type Kind string

const (
	KindCredit     Kind = "credit"
	KindDebit      Kind = "debit"
	KindTokenEvent Kind = "token_event"
)

// Entry is immutable once appended.
type Entry struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Kind        Kind      `json:"kind"`
}

// Wallet holds the fiat balance, the token balance, the pending mining
// pool and the transaction log. It is embedded in the session state and
// serialized with it.
type Wallet struct {
	FiatBalance  float64 `json:"fiat_balance"`
	TokenBalance float64 `json:"token_balance"`
	PendingPool  float64 `json:"pending_pool"`
	Log          []Entry `json:"log"`
}

func (w *Wallet) Append(id string, now time.Time, desc string, amount float64, kind Kind) {
	w.Log = append(w.Log, Entry{
		ID:          id,
		Timestamp:   now,
		Description: desc,
		Amount:      amount,
		Kind:        kind,
	})
}

// DebitToken removes amount from the token balance and logs it as a
// negative movement. The balance is checked before anything mutates.
func (w *Wallet) DebitToken(id string, now time.Time, desc string, amount float64, kind Kind) error {
	if w.TokenBalance < amount {
		return ErrInsufficientBalance
	}
	w.TokenBalance -= amount
	w.Append(id, now, desc, -amount, kind)
	return nil
}

func (w *Wallet) CreditToken(id string, now time.Time, desc string, amount float64, kind Kind) {
	w.TokenBalance += amount
	w.Append(id, now, desc, amount, kind)
}

// DebitFiat removes amount from the fiat balance, validating first.
func (w *Wallet) DebitFiat(id string, now time.Time, desc string, amount float64, kind Kind) error {
	if w.FiatBalance < amount {
		return ErrInsufficientBalance
	}
	w.FiatBalance -= amount
	w.Append(id, now, desc, -amount, kind)
	return nil
}

func (w *Wallet) CreditFiat(id string, now time.Time, desc string, amount float64, kind Kind) {
	w.FiatBalance += amount
	w.Append(id, now, desc, amount, kind)
}
