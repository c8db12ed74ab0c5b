package export

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultThreshold is the record count a day must exceed to be exported.
	// A complete day holds 1440 minute records, so 700 means a little under
	// half of the day is present. Days in the future have few or no records
	// and fall below it as well.
	DefaultThreshold = 700

	// DefaultSeparator is the thousands separator removed from prices.
	DefaultSeparator = ","

	// DefaultSuffixLength is the length of the unit suffix dropped from the
	// end of every price, e.g. "USD".
	DefaultSuffixLength = 3
)

// FailurePolicy decides whether a failed day stops the run.
type FailurePolicy string

const (
	// FailureAbort stops the run at the first failed day.
	FailureAbort FailurePolicy = "abort"

	// FailureContinue records the failure against the day and carries on with
	// the next one.
	FailureContinue FailurePolicy = "continue"
)

// ParseFailurePolicy converts a configuration string into a FailurePolicy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(s); p {
	case FailureAbort, FailureContinue:
		return p, nil
	default:
		return "", fmt.Errorf("invalid failure policy %q", s)
	}
}

// Option is a functional option for configuring a [Pipeline].
type Option func(*Options)

// Options holds the configuration for a [Pipeline].
type Options struct {
	threshold     int
	sanitizer     Sanitizer
	failurePolicy FailurePolicy
	queryTimeout  time.Duration
	notifier      Notifier
	recorder      Recorder
	clock         func() time.Time
}

func newOptions() *Options {
	return &Options{
		threshold:     DefaultThreshold,
		sanitizer:     DefaultSanitizer(),
		failurePolicy: FailureAbort,
		recorder:      nopRecorder{},
		clock:         time.Now,
	}
}

func (o *Options) validate() error {
	if o.threshold < 0 {
		return errors.New("threshold cannot be negative")
	}

	if o.sanitizer.SuffixLength < 0 {
		return errors.New("suffix length cannot be negative")
	}

	switch o.sanitizer.Policy {
	case PriceBestEffort, PriceStrict:
	default:
		return fmt.Errorf("invalid price policy %q", o.sanitizer.Policy)
	}

	if _, err := ParseFailurePolicy(string(o.failurePolicy)); err != nil {
		return err
	}

	if o.queryTimeout < 0 {
		return errors.New("query timeout cannot be negative")
	}

	return nil
}

// WithThreshold sets the record count a day must exceed to be exported.
// Default: 700.
func WithThreshold(n int) Option {
	return func(o *Options) {
		o.threshold = n
	}
}

// WithSeparator sets the thousands separator removed from prices.
// Default: ",".
func WithSeparator(sep string) Option {
	return func(o *Options) {
		o.sanitizer.Separator = sep
	}
}

// WithSuffixLength sets how many trailing characters are dropped from every
// price. Default: 3.
func WithSuffixLength(n int) Option {
	return func(o *Options) {
		o.sanitizer.SuffixLength = n
	}
}

// WithPricePolicy sets how malformed prices are handled. Default:
// [PriceBestEffort].
func WithPricePolicy(p PricePolicy) Option {
	return func(o *Options) {
		o.sanitizer.Policy = p
	}
}

// WithFailurePolicy sets whether a failed day aborts the run. Default:
// [FailureAbort].
func WithFailurePolicy(p FailurePolicy) Option {
	return func(o *Options) {
		o.failurePolicy = p
	}
}

// WithQueryTimeout bounds each partition query individually. Zero (the
// default) means no deadline beyond the run's context.
func WithQueryTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.queryTimeout = d
	}
}

// WithNotifier sets a [Notifier] told about every exported day.
func WithNotifier(n Notifier) Option {
	return func(o *Options) {
		o.notifier = n
	}
}

// WithRecorder sets the [Recorder] that receives run metrics.
func WithRecorder(r Recorder) Option {
	return func(o *Options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithClock sets the clock used for timestamps and query durations.
// Defaults to [time.Now].
func WithClock(clock func() time.Time) Option {
	return func(o *Options) {
		o.clock = clock
	}
}
