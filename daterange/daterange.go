// Package daterange computes the day partition keys that make up a month.
package daterange

import (
	"errors"
	"fmt"
	"time"

	"github.com/faretracker/fareexport/types"
)

// AssumeNonLeapFebruary pins February to 28 days regardless of the year. The
// store was populated under this assumption, so February 29 is never exported
// while it is true.
const AssumeNonLeapFebruary = true

// referenceYear is used by DaysInMonth, which has no year to work with. It is
// not a leap year.
const referenceYear = 2021

var (
	// ErrInvalidYear is returned when a year has fewer than four digits.
	ErrInvalidYear = errors.New("year must have 4 digits")

	// ErrInvalidMonth is returned when a month is outside 1..12.
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
)

// DaysInMonth returns the day numbers 1..N of the given month.
func DaysInMonth(month time.Month) ([]int, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}

	return days(lastDay(referenceYear, month)), nil
}

// FormatDayKeys returns one YY-MM-DD key per day of the month, in ascending
// day order. YY is the year modulo 100, zero padded.
func FormatDayKeys(year int, month time.Month) ([]types.DayKey, error) {
	if year < 1000 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidYear, year)
	}

	if err := validateMonth(month); err != nil {
		return nil, err
	}

	n := lastDay(year, month)
	keys := make([]types.DayKey, 0, n)

	for _, d := range days(n) {
		keys = append(keys, FormatDayKey(year, month, d))
	}

	return keys, nil
}

// FormatDayKey formats a single date as a partition key.
func FormatDayKey(year int, month time.Month, day int) types.DayKey {
	return types.DayKey(fmt.Sprintf("%02d-%02d-%02d", year%100, int(month), day))
}

func validateMonth(month time.Month) error {
	if month < time.January || month > time.December {
		return fmt.Errorf("%w: got %d", ErrInvalidMonth, int(month))
	}

	return nil
}

func lastDay(year int, month time.Month) int {
	if month == time.February && AssumeNonLeapFebruary {
		return 28
	}

	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func days(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}

	return out
}
