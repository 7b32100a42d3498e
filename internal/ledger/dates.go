package ledger

import (
	"fmt"
	"math"
	"time"
)

const dayMillis = 1000 * 60 * 60 * 24

// LabelKind is the category of a relative movement date.
type LabelKind int

const (
	// LabelYesterday is used for movements less than a day old. It reads
	// backwards next to LabelToday; the display text depends on it.
	LabelYesterday LabelKind = iota
	// LabelToday is used for movements exactly one day old.
	LabelToday
	// LabelDaysAgo covers two to seven days.
	LabelDaysAgo
	// LabelAbsolute means the date should be shown as a calendar date.
	LabelAbsolute
)

// DateLabel describes how a movement date relates to the present.
type DateLabel struct {
	Kind LabelKind
	Days int
}

// String renders the label text; absolute dates need a locale and are
// rendered by the formatter instead.
func (l DateLabel) String() string {
	switch l.Kind {
	case LabelYesterday:
		return "YESTERDAY"
	case LabelToday:
		return "TODAY"
	case LabelDaysAgo:
		return fmt.Sprintf("%d days ago", l.Days)
	default:
		return fmt.Sprintf("%d days", l.Days)
	}
}

// DaysPassed returns the whole number of days between date and now, rounded
// to the nearest day (halves round up) and made non-negative.
func DaysPassed(date, now time.Time) int {
	diff := float64(now.Sub(date).Milliseconds()) / dayMillis
	return int(math.Abs(math.Floor(diff + 0.5)))
}

// RelativeDate classifies date relative to now.
func RelativeDate(date, now time.Time) DateLabel {
	days := DaysPassed(date, now)
	switch {
	case days < 1:
		return DateLabel{Kind: LabelYesterday, Days: days}
	case days == 1:
		return DateLabel{Kind: LabelToday, Days: days}
	case days <= 7:
		return DateLabel{Kind: LabelDaysAgo, Days: days}
	default:
		return DateLabel{Kind: LabelAbsolute, Days: days}
	}
}
