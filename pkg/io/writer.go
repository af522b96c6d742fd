package io

import (
	"encoding/json"
	"io"
	"os"
)

// JSONLWriter writes results as JSON Lines, one result per line.
type JSONLWriter struct {
	enc    *json.Encoder
	closer io.Closer
}

// NewJSONLWriter creates a writer emitting to w. Close is a no-op; the
// caller keeps ownership of w.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{enc: json.NewEncoder(w)}
}

// NewJSONLFile creates a writer emitting to a new file at path. Close
// closes the file.
func NewJSONLFile(path string) (*JSONLWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &JSONLWriter{enc: json.NewEncoder(file), closer: file}, nil
}

// Write outputs a single result.
func (j *JSONLWriter) Write(result Result) error {
	return j.enc.Encode(result)
}

// WriteAll outputs multiple results.
func (j *JSONLWriter) WriteAll(results []Result) error {
	for _, r := range results {
		if err := j.enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying file, if the writer owns one.
func (j *JSONLWriter) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
