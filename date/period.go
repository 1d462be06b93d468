package date

import (
	"fmt"
	"iter"
	"strings"
	"time"
)

// Period is a calendar period used to slice the trading history.
type Period int

const (
	Weekly Period = iota
	Monthly
	Quarterly
	Yearly
)

func (p Period) String() string {
	switch p {
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case Yearly:
		return "yearly"
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

// ParsePeriod parses a period name, either the adjective or the noun.
func ParsePeriod(p string) (Period, error) {
	switch strings.ToLower(p) {
	case "weekly", "week":
		return Weekly, nil
	case "monthly", "month":
		return Monthly, nil
	case "quarterly", "quarter":
		return Quarterly, nil
	case "yearly", "year":
		return Yearly, nil
	default:
		return Monthly, fmt.Errorf("unknown period %q", p)
	}
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// StartOf returns the first day of the period containing d. Weeks start on Monday.
func (d Date) StartOf(p Period) Date {
	switch p {
	case Weekly:
		offset := (int(d.Weekday()) + 6) % 7 // days since Monday
		return d.Add(-offset)
	case Monthly:
		return New(d.y, d.m, 1)
	case Quarterly:
		return New(d.y, (d.m-1)/3*3+1, 1)
	case Yearly:
		return New(d.y, time.January, 1)
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

// EndOf returns the last day of the period containing d.
func (d Date) EndOf(p Period) Date {
	switch p {
	case Weekly:
		return d.StartOf(Weekly).Add(6)
	case Monthly:
		return New(d.y, d.m+1, 0)
	case Quarterly:
		return New(d.y, (d.m-1)/3*3+4, 0)
	case Yearly:
		return New(d.y+1, time.January, 0)
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

// Range returns the period containing d.
func (p Period) Range(d Date) Range { return Range{From: d.StartOf(p), To: d.EndOf(p)} }

// Identifier names the period range starting on from, e.g. 2025-W23,
// 2025-06, 2025-Q2 or 2025.
func (p Period) Identifier(from Date) string {
	switch p {
	case Weekly:
		year, week := from.time().ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case Monthly:
		return from.time().Format("2006-01")
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", from.y, (from.m-1)/3+1)
	case Yearly:
		return fmt.Sprintf("%d", from.y)
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

// Split yields the consecutive periods of kind p covering r. r must be closed.
func (r Range) Split(p Period) iter.Seq[Range] {
	return func(yield func(Range) bool) {
		if r.From.IsZero() || r.To.IsZero() {
			return
		}
		for current := r.From; !current.After(r.To); {
			period := p.Range(current)
			if !yield(period) {
				return
			}
			current = period.To.Add(1)
		}
	}
}
