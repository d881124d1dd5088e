// Package csv persists quotes as a delimited text file.
// The file is replaced as a whole on every write: readers observe either
// the previous content or the full new content, never a partial table
package csv

import (
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/sig-0/ptax/quote"
	"github.com/sig-0/ptax/storage"
)

var ErrInvalidHeader = errors.New("invalid header")

type Option func(w *Writer)

// WithLogger specifies the logger for the writer
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) {
		w.logger = l
	}
}

// Writer replaces the destination file with the header and one row per quote
type Writer struct {
	logger *slog.Logger
	path   string
}

// NewWriter creates a new file writer for the given destination
func NewWriter(path string, opts ...Option) *Writer {
	w := &Writer{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		path:   path,
	}

	// Apply the options
	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteQuotes writes the quotes to a temporary sibling file,
// and renames it over the destination once complete
func (w *Writer) WriteQuotes(ctx context.Context, quotes []quote.Quote) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrWrite, err)
	}

	dir, base := filepath.Split(w.path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: unable to create temporary file: %w", storage.ErrWrite, err)
	}

	tmpPath := tmp.Name()
	renamed := false

	defer func() {
		if renamed {
			return
		}

		_ = tmp.Close()

		if removeErr := os.Remove(tmpPath); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			w.logger.Warn(
				"unable to remove temporary file",
				"path", tmpPath,
				"err", removeErr,
			)
		}
	}()

	if err := encode(tmp, quotes); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrWrite, err)
	}

	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: unable to sync temporary file: %w", storage.ErrWrite, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: unable to close temporary file: %w", storage.ErrWrite, err)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("%w: unable to set file mode: %w", storage.ErrWrite, err)
	}

	if err := os.Rename(tmpPath, w.path); err != nil {
		return fmt.Errorf("%w: unable to replace %s: %w", storage.ErrWrite, w.path, err)
	}

	renamed = true

	w.logger.Info(
		"quotes file replaced",
		"path", w.path,
		"rows", len(quotes),
	)

	return nil
}

func encode(out io.Writer, quotes []quote.Quote) error {
	cw := stdcsv.NewWriter(out)

	if err := cw.Write(quote.Header); err != nil {
		return fmt.Errorf("unable to write header: %w", err)
	}

	for _, q := range quotes {
		if err := cw.Write(q.Record()); err != nil {
			return fmt.Errorf("unable to write row: %w", err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("unable to flush rows: %w", err)
	}

	return nil
}

// Read loads the quotes from a file previously produced by a Writer
func Read(path string) ([]quote.Quote, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open quotes file: %w", err)
	}
	defer f.Close()

	return decode(f)
}

func decode(in io.Reader) ([]quote.Quote, error) {
	cr := stdcsv.NewReader(in)
	cr.FieldsPerRecord = len(quote.Header)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to read header: %w", err)
	}

	if !slices.Equal(header, quote.Header) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, header)
	}

	var quotes []quote.Quote

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("unable to read row: %w", err)
		}

		currency, err := quote.ParseCurrency(record[1])
		if err != nil {
			return nil, fmt.Errorf("unable to parse row currency: %w", err)
		}

		q, err := quote.New(record[0], currency, record[2], record[3], record[4])
		if err != nil {
			return nil, fmt.Errorf("unable to parse row: %w", err)
		}

		quotes = append(quotes, q)
	}

	return quotes, nil
}
