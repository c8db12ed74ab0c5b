package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/faretracker/fareexport/export"
	"github.com/stretchr/testify/assert"
)

func TestPrintReport(t *testing.T) {
	t.Parallel()

	report := &export.Report{
		Year:  2021,
		Month: 3,
		Days: []export.DayResult{
			{Key: "21-03-01", Status: export.StatusFetched, Count: 1440, Rows: 1440, Path: "data/21-03-01.csv"},
			{Key: "21-03-02", Status: export.StatusSkipped, Count: 12},
			{Key: "21-03-03", Status: export.StatusFailed, Err: errors.New("throttled")},
		},
	}

	var buf bytes.Buffer
	printReport(&buf, report)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	assert.Len(t, lines, 5)
	assert.Contains(t, lines[1], "data/21-03-01.csv")
	assert.Contains(t, lines[2], "skipped")
	assert.Contains(t, lines[3], "throttled")
	assert.Equal(t, "1 fetched, 1 skipped, 1 failed", lines[4])
}
