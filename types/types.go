// Package types holds the values shared by the store clients, the CSV writer
// and the export pipeline.
package types

import "time"

// DayKey identifies one calendar day partition in the store, formatted
// YY-MM-DD (for example "23-03-07").
type DayKey string

func (k DayKey) String() string {
	return string(k)
}

// RawRecord is a single minute record as returned by the store. Price is the
// unsanitized monetary string, e.g. "1,234.56 USD".
type RawRecord struct {
	Time  string `json:"time"`
	Price string `json:"price"`
}

// CleanRecord is a RawRecord whose price has had its separators and trailing
// unit suffix removed.
type CleanRecord struct {
	Time  string `json:"time"`
	Price string `json:"price"`
}

// PartitionQueryResult is the outcome of querying one day partition. Count is
// the number of records the store reports for the partition; Items are in the
// order the store returned them.
type PartitionQueryResult struct {
	Count int
	Items []RawRecord
}

// DayExport describes a day file that has just been written.
type DayExport struct {
	Key        DayKey    `json:"day_key"`
	Path       string    `json:"path"`
	Count      int       `json:"count"`
	Rows       int       `json:"rows"`
	ExportedAt time.Time `json:"exported_at"`
}
