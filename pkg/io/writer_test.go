package io

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf)

	results := []Result{
		{Index: 0, Score: 0.5, IsAnomaly: false, Features: []float64{1, 2}},
		{Index: 1, Score: 9.25, IsAnomaly: true, Features: []float64{100, 200}},
	}
	require.NoError(t, w.WriteAll(results))
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var decoded Result
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &decoded))
	assert.Equal(t, results[1], decoded)
}

func TestJSONLFile(t *testing.T) {
	path := t.TempDir() + "/results.jsonl"

	w, err := NewJSONLFile(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(Result{Index: 3, Score: 1.5}))
	require.NoError(t, w.Close())

	var reopened Result
	data, err := readFirstLine(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &reopened))
	assert.Equal(t, 3, reopened.Index)
	assert.Equal(t, 1.5, reopened.Score)
}

func readFirstLine(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return data[:i], nil
	}
	return data, nil
}
