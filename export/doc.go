// Package export runs the monthly export: it enumerates the day keys of a
// month, queries each day partition, skips days whose record count does not
// exceed the completeness threshold, sanitizes the prices and writes one CSV
// file per exported day.
//
// Days are processed one at a time in ascending order. A [Pipeline] holds no
// state between runs; concurrent runs against the same output directory must
// be serialized by the caller.
//
//	pipeline, err := export.New(store, writer, logger)
//	if err != nil {
//	    return err
//	}
//
//	report, err := pipeline.Run(ctx, 2023, time.March)
//
// By default the first failed query aborts the run, matching the behaviour of
// the tool this replaces. [WithFailurePolicy] set to [FailureContinue] records
// the failure against the day and moves on.
package export
