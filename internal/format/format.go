// Package format renders amounts and dates for a locale and currency.
package format

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/bankist-dev/bankist/internal/ledger"
)

// Date layouts keyed by full tag, then by base language.
var dateLayouts = map[string]string{
	"en-US": "1/2/2006",
	"en-GB": "02/01/2006",
	"en":    "1/2/2006",
	"pt":    "02/01/2006",
	"de":    "2.1.2006",
	"fr":    "02/01/2006",
	"es":    "2/1/2006",
	"it":    "2/1/2006",
	"ja":    "2006/1/2",
}

var dateTimeLayouts = map[string]string{
	"en-US": "01/02/2006, 15:04",
	"en-GB": "02/01/2006, 15:04",
	"en":    "01/02/2006, 15:04",
	"pt":    "02/01/2006, 15:04",
	"de":    "02.01.2006, 15:04",
	"fr":    "02/01/2006 15:04",
	"es":    "02/01/2006, 15:04",
	"it":    "02/01/2006, 15:04",
	"ja":    "2006/01/02 15:04",
}

const (
	isoDate     = "2006-01-02"
	isoDateTime = "2006-01-02 15:04"
)

// Formatter turns raw values into display text. It caches one printer per
// locale and is safe for concurrent use.
type Formatter struct {
	mu       sync.Mutex
	printers map[language.Tag]*message.Printer
}

// New returns an empty Formatter.
func New() *Formatter {
	return &Formatter{printers: make(map[language.Tag]*message.Printer)}
}

// Currency formats value with two decimals, locale digit grouping and the
// ISO code of cur. "26552.59", "en-US", "USD" -> "26,552.59 USD"
func (f *Formatter) Currency(value decimal.Decimal, locale, cur string) string {
	p := f.printer(locale)
	amount := p.Sprint(number.Decimal(value.Round(2).InexactFloat64(), number.Scale(2)))
	return amount + " " + currencyCode(cur)
}

// Date formats t as a calendar date for locale.
func (f *Formatter) Date(t time.Time, locale string) string {
	return t.Format(lookupLayout(dateLayouts, locale, isoDate))
}

// DateTime formats t as date plus hours and minutes for locale.
func (f *Formatter) DateTime(t time.Time, locale string) string {
	return t.Format(lookupLayout(dateTimeLayouts, locale, isoDateTime))
}

// Label renders a relative date label, falling back to the calendar date for
// older movements.
func (f *Formatter) Label(label ledger.DateLabel, date time.Time, locale string) string {
	if label.Kind == ledger.LabelAbsolute {
		return f.Date(date, locale)
	}
	return label.String()
}

// Countdown renders remaining seconds as mm:ss.
func Countdown(ticks int) string {
	if ticks < 0 {
		ticks = 0
	}
	return fmt.Sprintf("%02d:%02d", ticks/60, ticks%60)
}

func (f *Formatter) printer(locale string) *message.Printer {
	tag := parseTag(locale)
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.printers[tag]
	if !ok {
		p = message.NewPrinter(tag)
		f.printers[tag] = p
	}
	return p
}

func parseTag(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return language.AmericanEnglish
	}
	return tag
}

func lookupLayout(layouts map[string]string, locale, fallback string) string {
	tag := parseTag(locale)
	if l, ok := layouts[tag.String()]; ok {
		return l
	}
	base, _ := tag.Base()
	if l, ok := layouts[base.String()]; ok {
		return l
	}
	return fallback
}

// currencyCode returns the canonical ISO 4217 code, or the input upper-cased
// when it is not a known currency.
func currencyCode(cur string) string {
	unit, err := currency.ParseISO(cur)
	if err != nil {
		return strings.ToUpper(cur)
	}
	return unit.String()
}
