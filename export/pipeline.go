package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/faretracker/fareexport/daterange"
	"github.com/faretracker/fareexport/types"
)

var (
	// ErrQueryFailure wraps any error returned while querying a day partition.
	ErrQueryFailure = errors.New("partition query failed")

	// ErrWriteFailure wraps any error returned while writing a day file.
	ErrWriteFailure = errors.New("export write failed")

	// ErrMalformedPrice is returned under [PriceStrict] for prices that cannot
	// be sanitized into a bare number.
	ErrMalformedPrice = errors.New("malformed price")
)

// Header is the first row of every exported file.
var Header = []string{"Hour", "Price"}

// Querier fetches one day partition from the store.
type Querier interface {
	QueryByKey(ctx context.Context, key types.DayKey) (*types.PartitionQueryResult, error)
}

// Writer persists the rows of one day and returns where they were written.
type Writer interface {
	WriteDay(key types.DayKey, header []string, rows [][]string) (string, error)
}

// Notifier is told about every day file that was written.
type Notifier interface {
	NotifyDayExported(ctx context.Context, export types.DayExport) error
}

// Recorder receives metrics about a run.
type Recorder interface {
	ObserveQuery(key types.DayKey, d time.Duration, err error)
	DayCompleted(status Status, rows int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveQuery(types.DayKey, time.Duration, error) {}
func (nopRecorder) DayCompleted(Status, int)                        {}

// Pipeline exports the day partitions of a month to CSV files.
type Pipeline struct {
	querier Querier
	writer  Writer
	logger  types.Logger
	opts    *Options
}

// New creates a Pipeline reading from querier and writing through writer.
func New(querier Querier, writer Writer, logger types.Logger, opts ...Option) (*Pipeline, error) {
	if querier == nil {
		return nil, errors.New("querier cannot be nil")
	}

	if writer == nil {
		return nil, errors.New("writer cannot be nil")
	}

	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	options := newOptions()

	for _, o := range opts {
		o(options)
	}

	if err := options.validate(); err != nil {
		return nil, fmt.Errorf("invalid export options: %w", err)
	}

	return &Pipeline{
		querier: querier,
		writer:  writer,
		logger:  logger.WithField("component", "export"),
		opts:    options,
	}, nil
}

// Run exports every day of the given month in ascending order.
//
// An invalid year or month is reported before any query is made. Under
// [FailureAbort] the first failed day ends the run and its error is returned
// together with the partial report. Under [FailureContinue] failed days are
// recorded in the report and Run returns a nil error; use [Report.Err] to
// inspect them. A cancelled context always ends the run.
func (p *Pipeline) Run(ctx context.Context, year int, month time.Month) (*Report, error) {
	keys, err := daterange.FormatDayKeys(year, month)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Year:  year,
		Month: month,
		Days:  make([]DayResult, 0, len(keys)),
	}

	logger := p.logger.WithFields(map[string]any{"year": year, "month": int(month)})
	logger.Infof("Exporting %d days", len(keys))

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		day := p.exportDay(ctx, key)

		report.Days = append(report.Days, day)
		p.opts.recorder.DayCompleted(day.Status, day.Rows)

		if day.Err == nil {
			continue
		}

		if p.opts.failurePolicy == FailureAbort || ctx.Err() != nil {
			logger.Errorf("Export stopped at %s: %v", key, day.Err)
			return report, day.Err
		}
	}

	logger.Info("Done")

	return report, nil
}

func (p *Pipeline) exportDay(ctx context.Context, key types.DayKey) DayResult {
	logger := p.logger.WithField("day_key", key)
	day := DayResult{Key: key}

	fail := func(err error) DayResult {
		day.Status = StatusFailed
		day.Err = err
		logger.Errorf("Failed to export %s: %v", key, err)
		return day
	}

	result, err := p.query(ctx, key)
	if err != nil {
		return fail(fmt.Errorf("%w for %s: %w", ErrQueryFailure, key, err))
	}

	day.Count = result.Count

	if result.Count <= p.opts.threshold {
		day.Status = StatusSkipped
		logger.WithField("count", result.Count).Infof("Not fetching data from %s because less than 50%% filled or is in the future", key)
		return day
	}

	rows := make([][]string, 0, len(result.Items))

	for _, item := range result.Items {
		clean, err := p.opts.sanitizer.Sanitize(item)
		if err != nil {
			return fail(fmt.Errorf("day %s: %w", key, err))
		}

		rows = append(rows, []string{clean.Time, clean.Price})
	}

	path, err := p.writer.WriteDay(key, Header, rows)
	if err != nil {
		return fail(fmt.Errorf("%w for %s: %w", ErrWriteFailure, key, err))
	}

	day.Status = StatusFetched
	day.Rows = len(rows)
	day.Path = path

	logger.WithFields(map[string]any{"count": result.Count, "rows": len(rows), "path": path}).Infof("Fetched %s data", key)

	p.notify(ctx, day)

	return day
}

func (p *Pipeline) query(ctx context.Context, key types.DayKey) (*types.PartitionQueryResult, error) {
	if p.opts.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.queryTimeout)
		defer cancel()
	}

	started := p.opts.clock()

	result, err := p.querier.QueryByKey(ctx, key)

	p.opts.recorder.ObserveQuery(key, p.opts.clock().Sub(started), err)

	if err != nil {
		return nil, err
	}

	if result == nil {
		return &types.PartitionQueryResult{}, nil
	}

	return result, nil
}

// notify logs delivery failures without failing the day, since the file has
// already been written.
func (p *Pipeline) notify(ctx context.Context, day DayResult) {
	if p.opts.notifier == nil {
		return
	}

	export := types.DayExport{
		Key:        day.Key,
		Path:       day.Path,
		Count:      day.Count,
		Rows:       day.Rows,
		ExportedAt: p.opts.clock().UTC(),
	}

	if err := p.opts.notifier.NotifyDayExported(ctx, export); err != nil {
		p.logger.WithField("day_key", day.Key).Warnf("Failed to send export notification: %v", err)
	}
}
