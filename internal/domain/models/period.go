package models

import "time"

// Period selects how far back the analysis window reaches.
type Period string

const (
	PeriodSixMonths Period = "6m"
	PeriodOneYear   Period = "1y"
	PeriodTwoYears  Period = "2y"
	PeriodAllTime   Period = "all"
)

// IsValid returns true if p is a supported period.
func (p Period) IsValid() bool {
	switch p {
	case PeriodSixMonths, PeriodOneYear, PeriodTwoYears, PeriodAllTime:
		return true
	default:
		return false
	}
}

// DefaultPeriod returns the period used when none is requested.
func DefaultPeriod() Period { return PeriodOneYear }

// NormalizePeriod converts raw string to a valid period (or default).
func NormalizePeriod(s string) Period {
	p := Period(s)
	if p.IsValid() {
		return p
	}
	return DefaultPeriod()
}

// Cutoff returns the inclusive lower bound of the period relative to now.
// All-time returns the zero time.
func (p Period) Cutoff(now time.Time) time.Time {
	switch p {
	case PeriodSixMonths:
		return now.AddDate(0, -6, 0)
	case PeriodOneYear:
		return now.AddDate(-1, 0, 0)
	case PeriodTwoYears:
		return now.AddDate(-2, 0, 0)
	default:
		return time.Time{}
	}
}
