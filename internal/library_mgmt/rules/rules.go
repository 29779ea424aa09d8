// Package rules holds the checks shared by more than one library resource:
// loan states, calendar dates, money amounts and free-text observations.
package rules

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"library-backend/internal/platform/apierr"
	"library-backend/internal/platform/clock"
)

const (
	StateActive   = "ACTIVE"
	StateOverdue  = "OVERDUE"
	StateReturned = "RETURNED"
)

// ActiveStates are the loan states that still hold a copy.
var ActiveStates = []string{StateActive, StateOverdue}

const DateLayout = "2006-01-02"

const MaxObservations = 25

// MaxLoanDays is the longest allowed gap between date_loan and due_date.
const MaxLoanDays = 7

var maxMoney = decimal.RequireFromString("9999.99")

// ParseDate parses YYYY-MM-DD into UTC midnight.
func ParseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apierr.ErrField(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// DateOnly drops the clock part, keeping the calendar date of t's own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Today(c clock.Clock) time.Time { return DateOnly(c.Now()) }

func FormatDate(t time.Time) string { return DateOnly(t).Format(DateLayout) }

// CheckMoney enforces 0 <= d <= 9999.99 with at most two decimals.
func CheckMoney(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return apierr.ErrField(field, fmt.Sprintf("%s cannot be negative", field))
	}
	if d.GreaterThan(maxMoney) {
		return apierr.ErrField(field, fmt.Sprintf("%s must be at most 9999.99", field))
	}
	if !d.Equal(d.Truncate(2)) {
		return apierr.ErrField(field, fmt.Sprintf("%s may have at most 2 decimal places", field))
	}
	return nil
}

func CheckObservations(s *string) error {
	if s != nil && utf8.RuneCountInString(*s) > MaxObservations {
		return apierr.ErrField("observations", fmt.Sprintf("observations must be at most %d characters", MaxObservations))
	}
	return nil
}

// ActivePlaceholders returns "?, ?" and the matching args for ActiveStates.
func ActivePlaceholders() (string, []any) {
	args := make([]any, len(ActiveStates))
	ph := ""
	for i, s := range ActiveStates {
		if i > 0 {
			ph += ", "
		}
		ph += "?"
		args[i] = s
	}
	return ph, args
}
