package shell

import (
	"fmt"
	"strings"

	"github.com/bankist-dev/bankist/internal/format"
	"github.com/bankist-dev/bankist/internal/view"
)

// Render lays out an overview: balance, movements newest first, then the
// summary line.
func Render(f *format.Formatter, ov view.Overview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current balance (as of %s): %s\n",
		f.DateTime(ov.Now, ov.Locale),
		f.Currency(ov.Balance, ov.Locale, ov.Currency))

	for i := len(ov.Rows) - 1; i >= 0; i-- {
		r := ov.Rows[i]
		fmt.Fprintf(&b, "  %2d %-10s  %-12s %16s\n",
			r.Index,
			strings.ToUpper(string(r.Kind)),
			f.Label(r.Label, r.Date, ov.Locale),
			f.Currency(r.Amount, ov.Locale, ov.Currency))
	}

	fmt.Fprintf(&b, "In %s  Out %s  Interest %s\n",
		f.Currency(ov.Income, ov.Locale, ov.Currency),
		f.Currency(ov.Expense, ov.Locale, ov.Currency),
		f.Currency(ov.Interest, ov.Locale, ov.Currency))
	if ov.Sorted {
		b.WriteString("Sorted by amount\n")
	}
	return b.String()
}
