package directory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/bankist-dev/bankist/internal/ledger"
	"github.com/bankist-dev/bankist/internal/model"
)

// Header is the CSV header written by WriteAccounts.
const Header = "username,owner,currency,locale,interest_rate,movements,balance"

const (
	numFields    = 7
	colUsername  = 0
	colOwner     = 1
	colCurrency  = 2
	colLocale    = 3
	colRate      = 4
	colMovements = 5
	colBalance   = 6
)

// WriteAccounts writes one row per account, including the derived balance.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colUsername] = acct.Username
	row[colOwner] = acct.Owner
	row[colCurrency] = acct.Currency
	row[colLocale] = acct.Locale
	row[colRate] = acct.InterestRate.String()
	row[colMovements] = fmt.Sprint(len(acct.Movements))
	row[colBalance] = ledger.Balance(acct).StringFixed(2)
	return row
}
