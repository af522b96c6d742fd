// Package csv provides CSV file reading for tabular data.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Reader reads feature vectors from CSV files.
type Reader struct {
	file      *os.File
	reader    *csv.Reader
	hasHeader bool
	headers   []string
	columns   []int
	strict    bool
}

// Option configures a CSV reader.
type Option func(*Reader)

// WithHeader indicates the CSV has a header row.
func WithHeader(has bool) Option {
	return func(r *Reader) {
		r.hasHeader = has
	}
}

// WithColumns restricts parsing to the given column indices, in order.
// By default all columns are read.
func WithColumns(cols []int) Option {
	return func(r *Reader) {
		r.columns = cols
	}
}

// WithStrict makes malformed rows fail the read instead of being skipped.
func WithStrict(strict bool) Option {
	return func(r *Reader) {
		r.strict = strict
	}
}

// NewReader creates a new CSV reader.
func NewReader(filename string, opts ...Option) (*Reader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	r := &Reader{
		file:      file,
		reader:    csv.NewReader(file),
		hasHeader: true,
	}

	for _, opt := range opts {
		opt(r)
	}

	// Read header if present
	if r.hasHeader {
		headers, err := r.reader.Read()
		if err != nil {
			file.Close()
			return nil, err
		}
		r.headers = headers
	}

	return r, nil
}

// Headers returns the column headers.
func (r *Reader) Headers() []string {
	return r.headers
}

// Read returns all data as a 2D float slice.
func (r *Reader) Read() ([][]float64, error) {
	var data [][]float64

	for {
		record, err := r.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row, err := r.parseRow(record)
		if err != nil {
			if r.strict {
				return nil, err
			}
			continue // skip malformed rows
		}
		data = append(data, row)
	}

	return data, nil
}

// Stream returns a channel of rows for real-time processing.
func (r *Reader) Stream(ctx context.Context) (<-chan []float64, error) {
	out := make(chan []float64, 100)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				record, err := r.reader.Read()
				if err == io.EOF {
					return
				}
				if err != nil {
					continue
				}

				row, err := r.parseRow(record)
				if err != nil {
					continue
				}

				select {
				case out <- row:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close releases resources.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// parseRow converts a CSV record to a feature vector, honoring the
// configured column selection.
func (r *Reader) parseRow(record []string) ([]float64, error) {
	if len(record) == 0 {
		return nil, errors.New("empty row")
	}

	cols := r.columns
	if cols == nil {
		cols = make([]int, len(record))
		for i := range cols {
			cols[i] = i
		}
	}

	row := make([]float64, len(cols))
	for i, c := range cols {
		if c < 0 || c >= len(record) {
			return nil, fmt.Errorf("column %d out of range for row of %d fields", c, len(record))
		}
		f, err := strconv.ParseFloat(record[c], 64)
		if err != nil {
			return nil, err
		}
		row[i] = f
	}
	return row, nil
}
