// Package view assembles everything a front end shows for one account.
package view

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankist-dev/bankist/internal/ledger"
	"github.com/bankist-dev/bankist/internal/model"
)

// Row is one displayed movement.
type Row struct {
	Index  int // 1-based position in the displayed order
	Kind   model.MovementKind
	Date   time.Time
	Label  ledger.DateLabel
	Amount decimal.Decimal
}

// Overview is the derived state of an account at one instant.
type Overview struct {
	Username  string
	Owner     string
	FirstName string
	Currency  string
	Locale    string
	Now       time.Time
	Sorted    bool

	Balance  decimal.Decimal
	Income   decimal.Decimal
	Expense  decimal.Decimal
	Interest decimal.Decimal

	// Rows are oldest first (or smallest first when Sorted). Front ends
	// usually print them in reverse.
	Rows []Row
}

// Build derives the overview of acct as seen at now.
func Build(acct model.Account, sorted bool, now time.Time) Overview {
	sum := ledger.Summarize(acct)
	movs := ledger.View(acct, sorted)

	rows := make([]Row, len(movs))
	for i, m := range movs {
		rows[i] = Row{
			Index:  i + 1,
			Kind:   m.Kind(),
			Date:   m.Date,
			Label:  ledger.RelativeDate(m.Date, now),
			Amount: m.Amount,
		}
	}

	return Overview{
		Username:  acct.Username,
		Owner:     acct.Owner,
		FirstName: FirstName(acct.Owner),
		Currency:  acct.Currency,
		Locale:    acct.Locale,
		Now:       now,
		Sorted:    sorted,
		Balance:   sum.Balance,
		Income:    sum.Income,
		Expense:   sum.Expense,
		Interest:  sum.Interest,
		Rows:      rows,
	}
}

// FirstName returns the first word of owner.
func FirstName(owner string) string {
	fields := strings.Fields(owner)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
