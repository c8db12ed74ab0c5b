package export_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/faretracker/fareexport/export"
	"github.com/faretracker/fareexport/types"
)

// mockLogger records Info and Error messages for assertions.
type mockLogger struct {
	mu     *sync.Mutex
	infos  *[]string
	errors *[]string
	warns  *[]string
}

func newMockLogger() *mockLogger {
	return &mockLogger{mu: &sync.Mutex{}, infos: &[]string{}, errors: &[]string{}, warns: &[]string{}}
}

func (m *mockLogger) record(dst *[]string, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*dst = append(*dst, msg)
}

func (m *mockLogger) Infos() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), *m.infos...)
}

func (m *mockLogger) Errors() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), *m.errors...)
}

func (m *mockLogger) Warns() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), *m.warns...)
}

//nolint:ireturn // Must return interface to implement types.Logger
func (m *mockLogger) WithField(_ string, _ any) types.Logger { return m }

//nolint:ireturn // Must return interface to implement types.Logger
func (m *mockLogger) WithFields(_ map[string]any) types.Logger { return m }
func (m *mockLogger) Debug(_ string)                           {}
func (m *mockLogger) Debugf(_ string, _ ...any)                {}
func (m *mockLogger) Info(msg string)                          { m.record(m.infos, msg) }
func (m *mockLogger) Infof(format string, args ...any)         { m.record(m.infos, fmt.Sprintf(format, args...)) }
func (m *mockLogger) Warn(msg string)                          { m.record(m.warns, msg) }
func (m *mockLogger) Warnf(format string, args ...any)         { m.record(m.warns, fmt.Sprintf(format, args...)) }
func (m *mockLogger) Error(msg string)                         { m.record(m.errors, msg) }
func (m *mockLogger) Errorf(format string, args ...any)        { m.record(m.errors, fmt.Sprintf(format, args...)) }

// mockQuerier serves canned partitions. Keys without an entry return an
// empty partition.
type mockQuerier struct {
	results map[types.DayKey]*types.PartitionQueryResult
	errs    map[types.DayKey]error
	queried []types.DayKey
	onQuery func(ctx context.Context, key types.DayKey)
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{
		results: map[types.DayKey]*types.PartitionQueryResult{},
		errs:    map[types.DayKey]error{},
	}
}

func (m *mockQuerier) QueryByKey(ctx context.Context, key types.DayKey) (*types.PartitionQueryResult, error) {
	m.queried = append(m.queried, key)

	if m.onQuery != nil {
		m.onQuery(ctx, key)
	}

	if err, ok := m.errs[key]; ok {
		return nil, err
	}

	if r, ok := m.results[key]; ok {
		return r, nil
	}

	return &types.PartitionQueryResult{}, nil
}

// mockWriter keeps written days in memory.
type mockWriter struct {
	files map[types.DayKey][][]string
	err   error
}

func newMockWriter() *mockWriter {
	return &mockWriter{files: map[types.DayKey][][]string{}}
}

func (m *mockWriter) WriteDay(key types.DayKey, header []string, rows [][]string) (string, error) {
	if m.err != nil {
		return "", m.err
	}

	m.files[key] = append(append(m.files[key], header), rows...)

	return "mem/" + string(key) + ".csv", nil
}

type mockNotifier struct {
	exports []types.DayExport
	err     error
}

func (m *mockNotifier) NotifyDayExported(_ context.Context, e types.DayExport) error {
	m.exports = append(m.exports, e)
	return m.err
}

type mockRecorder struct {
	queries  int
	statuses map[export.Status]int
	rows     int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{statuses: map[export.Status]int{}}
}

func (m *mockRecorder) ObserveQuery(_ types.DayKey, _ time.Duration, _ error) { m.queries++ }

func (m *mockRecorder) DayCompleted(status export.Status, rows int) {
	m.statuses[status]++
	m.rows += rows
}

func partition(count int, records ...types.RawRecord) *types.PartitionQueryResult {
	return &types.PartitionQueryResult{Count: count, Items: records}
}
