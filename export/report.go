package export

import (
	"errors"
	"time"

	"github.com/faretracker/fareexport/types"
)

// Status is the outcome of one day.
type Status string

const (
	StatusFetched Status = "fetched"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// DayResult records what happened to one day key.
type DayResult struct {
	Key    types.DayKey
	Status Status
	Count  int
	Rows   int
	Path   string
	Err    error
}

// Report is the outcome of one monthly run. Days are in processing order.
type Report struct {
	Year  int
	Month time.Month
	Days  []DayResult
}

// Count returns how many days ended with the given status.
func (r *Report) Count(status Status) int {
	n := 0

	for _, d := range r.Days {
		if d.Status == status {
			n++
		}
	}

	return n
}

// Err joins the errors of all failed days, or returns nil.
func (r *Report) Err() error {
	var errs []error

	for _, d := range r.Days {
		if d.Err != nil {
			errs = append(errs, d.Err)
		}
	}

	return errors.Join(errs...)
}
