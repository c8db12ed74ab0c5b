package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/faretracker/fareexport/types"
)

// DefaultDir is the output directory used when none is configured.
const DefaultDir = "data"

// ErrExportExists is returned under [PolicyReject] when the day file is
// already present.
var ErrExportExists = errors.New("export file already exists")

// Writer writes day files below a single output directory.
type Writer struct {
	dir  string
	opts *Options
}

// New creates a Writer rooted at dir. An empty dir means [DefaultDir].
func New(dir string, opts ...Option) (*Writer, error) {
	options := newOptions()

	for _, o := range opts {
		o(options)
	}

	if err := options.validate(); err != nil {
		return nil, fmt.Errorf("invalid CSV writer options: %w", err)
	}

	if dir == "" {
		dir = DefaultDir
	}

	return &Writer{dir: dir, opts: options}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Policy returns the configured write policy.
func (w *Writer) Policy() WritePolicy {
	return w.opts.policy
}

// Path returns the file path used for the given day.
func (w *Writer) Path(key types.DayKey) string {
	return filepath.Join(w.dir, string(key)+".csv")
}

// WriteDay writes header followed by rows to the day's file and returns the
// file path.
func (w *Writer) WriteDay(key types.DayKey, header []string, rows [][]string) (string, error) {
	if key == "" {
		return "", errors.New("day key cannot be empty")
	}

	path := w.Path(key)

	if err := os.MkdirAll(w.dir, w.opts.dirMode); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", w.dir, err)
	}

	var err error

	switch w.opts.policy {
	case PolicyAppend:
		err = w.writeFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, header, rows)
	case PolicyReject:
		err = w.writeFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, header, rows)
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrExportExists, path)
		}
	default:
		err = w.replaceFile(path, header, rows)
	}

	if err != nil {
		return "", err
	}

	return path, nil
}

func (w *Writer) writeFile(path string, flags int, header []string, rows [][]string) error {
	file, err := os.OpenFile(path, flags, w.opts.fileMode)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	if err := w.encode(file, header, rows); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	return nil
}

// replaceFile writes to a temporary file in the same directory and renames it
// over path, so readers never observe a partially written day.
func (w *Writer) replaceFile(path string, header []string, rows [][]string) error {
	tmp, err := os.CreateTemp(w.dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}

	tmpName := tmp.Name()

	defer func() { _ = os.Remove(tmpName) }() // No-op after a successful rename

	if err := w.encode(tmp, header, rows); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := tmp.Chmod(w.opts.fileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set mode on %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file for %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

func (w *Writer) encode(out io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(out)
	writer.UseCRLF = w.opts.useCRLF

	if len(header) > 0 {
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	writer.Flush()

	return writer.Error()
}
