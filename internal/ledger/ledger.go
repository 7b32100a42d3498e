// Package ledger derives balances, totals and display views from an
// account's movement history.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankist-dev/bankist/internal/model"
)

// MinInterest is the smallest per-deposit interest amount that is credited.
var MinInterest = decimal.NewFromInt(1)

var hundred = decimal.NewFromInt(100)

// Summary holds the derived figures shown next to the movement list.
type Summary struct {
	Balance  decimal.Decimal
	Income   decimal.Decimal
	Expense  decimal.Decimal
	Interest decimal.Decimal
}

// Balance returns the sum of all movements.
func Balance(acct model.Account) decimal.Decimal {
	total := decimal.Zero
	for _, m := range acct.Movements {
		total = total.Add(m.Amount)
	}
	return total
}

// TotalIncome returns the sum of all deposits.
func TotalIncome(acct model.Account) decimal.Decimal {
	total := decimal.Zero
	for _, m := range acct.Movements {
		if m.Amount.IsPositive() {
			total = total.Add(m.Amount)
		}
	}
	return total
}

// TotalExpense returns the absolute sum of all withdrawals, zero when there are none.
func TotalExpense(acct model.Account) decimal.Decimal {
	total := decimal.Zero
	for _, m := range acct.Movements {
		if m.Amount.IsNegative() {
			total = total.Add(m.Amount)
		}
	}
	return total.Abs()
}

// TotalInterest returns the interest earned on deposits. Interest below
// MinInterest on a single deposit is not credited.
func TotalInterest(acct model.Account) decimal.Decimal {
	total := decimal.Zero
	for _, m := range acct.Movements {
		if !m.Amount.IsPositive() {
			continue
		}
		interest := m.Amount.Mul(acct.InterestRate).Div(hundred)
		if interest.LessThan(MinInterest) {
			continue
		}
		total = total.Add(interest)
	}
	return total
}

// Summarize computes every derived figure for acct.
func Summarize(acct model.Account) Summary {
	return Summary{
		Balance:  Balance(acct),
		Income:   TotalIncome(acct),
		Expense:  TotalExpense(acct),
		Interest: TotalInterest(acct),
	}
}

// Append records a movement. Amount and sign are not validated here.
func Append(acct *model.Account, amount decimal.Decimal, at time.Time) {
	acct.Movements = append(acct.Movements, model.Movement{Amount: amount, Date: at})
}

// Sorted returns a copy of movs ordered by ascending amount. Equal amounts
// keep their insertion order. movs is not modified.
func Sorted(movs []model.Movement) []model.Movement {
	out := make([]model.Movement, len(movs))
	copy(out, movs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.LessThan(out[j].Amount)
	})
	return out
}

// View returns the movements in display order: insertion order, or ascending
// by amount when sorted is set. The result is always a fresh copy.
func View(acct model.Account, sorted bool) []model.Movement {
	if sorted {
		return Sorted(acct.Movements)
	}
	out := make([]model.Movement, len(acct.Movements))
	copy(out, acct.Movements)
	return out
}
