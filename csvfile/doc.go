// Package csvfile writes one CSV file per exported day.
//
// Files live at {dir}/{day key}.csv. What happens when a file for the day
// already exists is decided by the [WritePolicy]:
//
//   - [PolicyOverwrite] replaces the file atomically (the default).
//   - [PolicyAppend] appends a new header and rows to the existing file, so a
//     rerun leaves two headers and duplicated rows behind.
//   - [PolicyReject] refuses to touch the file and returns [ErrExportExists].
//
// The parent directory is created on first write.
package csvfile
