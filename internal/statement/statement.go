// Package statement exports an account's movements as CSV.
package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankist-dev/bankist/internal/ledger"
	"github.com/bankist-dev/bankist/internal/model"
	"github.com/bankist-dev/bankist/internal/view"
)

// Header is the CSV header for a statement.
const Header = "index,type,date,label,amount"

const (
	numFields  = 5
	dateFormat = "2006-01-02"
	colIndex   = 0
	colType    = 1
	colDate    = 2
	colLabel   = 3
	colAmount  = 4
)

// Row is one parsed statement line.
type Row struct {
	Index  int
	Kind   model.MovementKind
	Date   time.Time
	Label  string
	Amount decimal.Decimal
}

// Write writes acct's movements as seen at now, in insertion order or
// ascending by amount when sorted is set.
func Write(w io.Writer, acct model.Account, now time.Time, sorted bool) error {
	ov := view.Build(acct, sorted, now)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range ov.Rows {
		if err := cw.Write(MarshalRow(r)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalRow converts a displayed movement to a CSV row.
func MarshalRow(r view.Row) []string {
	row := make([]string, numFields)
	row[colIndex] = strconv.Itoa(r.Index)
	row[colType] = string(r.Kind)
	row[colDate] = r.Date.UTC().Format(dateFormat)
	if r.Label.Kind == ledger.LabelAbsolute {
		row[colLabel] = row[colDate]
	} else {
		row[colLabel] = r.Label.String()
	}
	row[colAmount] = r.Amount.StringFixed(2)
	return row
}

// Read parses a statement written by Write.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading statement CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var rows []Row
	for i, rec := range records[1:] {
		row, err := UnmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// UnmarshalRow converts a CSV record to a Row.
func UnmarshalRow(rec []string) (Row, error) {
	if len(rec) != numFields {
		return Row{}, fmt.Errorf("expected %d fields, got %d", numFields, len(rec))
	}

	idx, err := strconv.Atoi(rec[colIndex])
	if err != nil {
		return Row{}, fmt.Errorf("parsing index %q: %w", rec[colIndex], err)
	}

	kind := model.MovementKind(rec[colType])
	if kind != model.MovementDeposit && kind != model.MovementWithdrawal {
		return Row{}, fmt.Errorf("unknown movement type %q", rec[colType])
	}

	date, err := time.Parse(dateFormat, rec[colDate])
	if err != nil {
		return Row{}, fmt.Errorf("parsing date %q: %w", rec[colDate], err)
	}

	amount, err := decimal.NewFromString(rec[colAmount])
	if err != nil {
		return Row{}, fmt.Errorf("parsing amount %q: %w", rec[colAmount], err)
	}

	return Row{
		Index:  idx,
		Kind:   kind,
		Date:   date,
		Label:  rec[colLabel],
		Amount: amount,
	}, nil
}
