package csv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRead(t *testing.T) {
	path := writeTempCSV(t, "a,b,c\n1,2,3\n4,5,6\n")

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"a", "b", "c"}, r.Headers())

	data, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2, 3}, {4, 5, 6}}, data)
}

func TestReadNoHeader(t *testing.T) {
	path := writeTempCSV(t, "1,2\n3,4\n")

	r, err := NewReader(path, WithHeader(false))
	require.NoError(t, err)
	defer r.Close()

	data, err := r.Read()
	require.NoError(t, err)
	assert.Len(t, data, 2)
	assert.Empty(t, r.Headers())
}

func TestReadColumns(t *testing.T) {
	path := writeTempCSV(t, "id,x,y,label\n7,1.5,2.5,ok\n8,3.5,4.5,ok\n")

	r, err := NewReader(path, WithColumns([]int{1, 2}))
	require.NoError(t, err)
	defer r.Close()

	data, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1.5, 2.5}, {3.5, 4.5}}, data)
}

func TestReadColumnOutOfRange(t *testing.T) {
	path := writeTempCSV(t, "x,y\n1,2\n")

	r, err := NewReader(path, WithColumns([]int{5}), WithStrict(true))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Read()
	assert.Error(t, err)
}

func TestReadSkipsMalformedRows(t *testing.T) {
	path := writeTempCSV(t, "x,y\n1,2\nfoo,bar\n3,4\n")

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	data, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, data)
}

func TestReadStrictFailsOnMalformedRows(t *testing.T) {
	path := writeTempCSV(t, "x,y\n1,2\nfoo,bar\n")

	r, err := NewReader(path, WithStrict(true))
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Read()
	assert.Error(t, err)
}

func TestStream(t *testing.T) {
	path := writeTempCSV(t, "x,y\n1,2\n3,4\n5,6\n")

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	ch, err := r.Stream(context.Background())
	require.NoError(t, err)

	var rows [][]float64
	for row := range ch {
		rows = append(rows, row)
	}
	assert.Len(t, rows, 3)
}

func TestMissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
