package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind classifies a movement for display.
type MovementKind string

const (
	MovementDeposit    MovementKind = "deposit"
	MovementWithdrawal MovementKind = "withdrawal"
)

// Movement is a single signed monetary entry and the instant it was posted.
type Movement struct {
	Amount decimal.Decimal // negative = withdrawal, positive = deposit
	Date   time.Time
}

// Kind reports deposit for strictly positive amounts and withdrawal otherwise.
func (m Movement) Kind() MovementKind {
	if m.Amount.IsPositive() {
		return MovementDeposit
	}
	return MovementWithdrawal
}

// Account is one registered user and their movement history.
// Balance is never stored; see the ledger package.
type Account struct {
	Owner        string
	Username     string // derived from Owner by the directory
	PIN          int
	Movements    []Movement
	InterestRate decimal.Decimal // percent, 1.2 means 1.2%
	Currency     string          // ISO 4217, formatting hint only
	Locale       string          // BCP 47, formatting hint only
}

// Amounts returns the movement amounts in insertion order.
func (a Account) Amounts() []decimal.Decimal {
	out := make([]decimal.Decimal, len(a.Movements))
	for i, m := range a.Movements {
		out[i] = m.Amount
	}
	return out
}

// Dates returns the movement dates, index-aligned with Amounts.
func (a Account) Dates() []time.Time {
	out := make([]time.Time, len(a.Movements))
	for i, m := range a.Movements {
		out[i] = m.Date
	}
	return out
}

// Clone returns a copy that shares no movement storage with a.
func (a Account) Clone() Account {
	cp := a
	cp.Movements = make([]Movement, len(a.Movements))
	copy(cp.Movements, a.Movements)
	return cp
}
