package metric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinDistances(t *testing.T) {
	a := []float64{0, 0}
	b := []float64{3, 4}

	tests := []struct {
		name   string
		metric Metric
		want   float64
	}{
		{name: "euclidean", metric: Euclidean{}, want: 5},
		{name: "sqeuclidean", metric: SqEuclidean{}, want: 25},
		{name: "manhattan", metric: Manhattan{}, want: 7},
		{name: "chebyshev", metric: Chebyshev{}, want: 4},
		{name: "minkowski p=2", metric: Minkowski{P: 2}, want: 5},
		{name: "minkowski p=1", metric: Minkowski{P: 1}, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.metric.Distance(a, b), 1e-12)
		})
	}
}

func TestDistanceIdentity(t *testing.T) {
	v := []float64{1.5, -2.25, 3.75}
	for _, m := range []Metric{Euclidean{}, SqEuclidean{}, Manhattan{}, Chebyshev{}, Minkowski{P: 3}} {
		assert.Zero(t, m.Distance(v, v))
	}
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine{}.Distance([]float64{1, 0}, []float64{0, 1}), 1e-12)
	assert.InDelta(t, 0.0, Cosine{}.Distance([]float64{1, 0}, []float64{2, 0}), 1e-12)
	assert.InDelta(t, 2.0, Cosine{}.Distance([]float64{1, 0}, []float64{-1, 0}), 1e-12)
}

func TestCosineZeroVectors(t *testing.T) {
	zero := []float64{0, 0}
	v := []float64{3, 4}

	assert.False(t, math.IsNaN(Cosine{}.Distance(zero, zero)))
	assert.Zero(t, Cosine{}.Distance(zero, zero))
	assert.Equal(t, 1.0, Cosine{}.Distance(zero, v))
	assert.Equal(t, 1.0, Cosine{}.Distance(v, zero))
}

func TestFuncAdapter(t *testing.T) {
	m := Func(func(a, b []float64) float64 { return math.Abs(a[0] - b[0]) })
	assert.Equal(t, 2.0, m.Distance([]float64{3}, []float64{1}))
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		metricName string
		params     *Params
		wantErr    bool
	}{
		{name: "euclidean", metricName: "euclidean"},
		{name: "l2 alias", metricName: "l2"},
		{name: "manhattan", metricName: "manhattan"},
		{name: "cityblock alias", metricName: "cityblock"},
		{name: "l1 alias", metricName: "l1"},
		{name: "sqeuclidean", metricName: "sqeuclidean"},
		{name: "chebyshev", metricName: "chebyshev"},
		{name: "cosine", metricName: "cosine"},
		{name: "minkowski default order", metricName: "minkowski"},
		{name: "minkowski custom order", metricName: "minkowski", params: &Params{P: 3}},
		{name: "minkowski order below one", metricName: "minkowski", params: &Params{P: 0.5}, wantErr: true},
		{name: "mahalanobis without covariance", metricName: "mahalanobis", wantErr: true},
		{name: "mahalanobis with covariance", metricName: "mahalanobis", params: &Params{Covariance: [][]float64{{1, 0}, {0, 1}}}},
		{name: "unknown name", metricName: "haversine", wantErr: true},
		{name: "empty name", metricName: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Resolve(tt.metricName, tt.params)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, m)
			}
		})
	}
}

func TestResolveMinkowskiDefaultsToEuclidean(t *testing.T) {
	m, err := Resolve("minkowski", nil)
	require.NoError(t, err)

	a := []float64{1, 2, 3}
	b := []float64{4, 6, 3}
	assert.InDelta(t, Euclidean{}.Distance(a, b), m.Distance(a, b), 1e-12)
}

func TestPairwise(t *testing.T) {
	x := [][]float64{{0, 0}, {1, 0}}
	y := [][]float64{{0, 0}, {0, 3}, {4, 0}}

	got := Pairwise(Euclidean{}, x, y)
	require.Len(t, got, 2)
	assert.InDeltaSlice(t, []float64{0, 3, 4}, got[0], 1e-12)
	assert.InDeltaSlice(t, []float64{1, math.Sqrt(10), 3}, got[1], 1e-12)
}

func TestNearestDistances(t *testing.T) {
	refs := [][]float64{{0, 0}, {10, 0}}
	queries := [][]float64{{1, 0}, {9, 0}, {5, 0}}

	got := NearestDistances(Euclidean{}, queries, refs)
	assert.InDeltaSlice(t, []float64{1, 1, 5}, got, 1e-12)
}

func TestNearestDistancesMatchesPairwiseRowMin(t *testing.T) {
	queries := [][]float64{{0.2, 1.1}, {-3, 4}, {7, 7}}
	refs := [][]float64{{0, 0}, {1, 1}, {-2, 5}, {6, 8}}

	matrix := Pairwise(Manhattan{}, queries, refs)
	direct := NearestDistances(Manhattan{}, queries, refs)

	for i, row := range matrix {
		min := math.Inf(1)
		for _, d := range row {
			if d < min {
				min = d
			}
		}
		assert.InDelta(t, min, direct[i], 1e-12)
	}
}

func TestMahalanobis(t *testing.T) {
	t.Run("identity covariance equals euclidean", func(t *testing.T) {
		m, err := NewMahalanobis([][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}})
		require.NoError(t, err)

		a := []float64{1, 2, 3}
		b := []float64{4, 0, -1}
		assert.InDelta(t, Euclidean{}.Distance(a, b), m.Distance(a, b), 1e-10)
	})

	t.Run("diagonal covariance scales axes", func(t *testing.T) {
		m, err := NewMahalanobis([][]float64{{4, 0}, {0, 1}})
		require.NoError(t, err)

		// variance 4 along x: a displacement of 2 counts as 1
		assert.InDelta(t, 1.0, m.Distance([]float64{0, 0}, []float64{2, 0}), 1e-10)
		assert.InDelta(t, 2.0, m.Distance([]float64{0, 0}, []float64{0, 2}), 1e-10)
	})

	t.Run("not positive definite", func(t *testing.T) {
		_, err := NewMahalanobis([][]float64{{1, 2}, {2, 1}})
		assert.Error(t, err)
	})

	t.Run("not square", func(t *testing.T) {
		_, err := NewMahalanobis([][]float64{{1, 0, 0}, {0, 1, 0}})
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := NewMahalanobis(nil)
		assert.Error(t, err)
	})
}

func TestMahalanobisFromData(t *testing.T) {
	data := [][]float64{
		{1, 10}, {2, 12}, {3, 11}, {4, 13}, {5, 12},
		{6, 14}, {7, 13}, {8, 15}, {9, 14}, {10, 16},
	}

	m, err := MahalanobisFromData(data)
	require.NoError(t, err)

	d := m.Distance(data[0], data[9])
	assert.Greater(t, d, 0.0)
	assert.Zero(t, m.Distance(data[3], data[3]))

	// Hand-computed sample covariance of the data above
	cov := m.Covariance()
	require.Len(t, cov, 2)
	assert.InDelta(t, 82.5/9, cov[0][0], 1e-10)
	assert.InDelta(t, 30.0/9, cov[1][1], 1e-10)
	assert.InDelta(t, 5.0, cov[0][1], 1e-10)
	assert.InDelta(t, 5.0, cov[1][0], 1e-10)

	t.Run("empty data", func(t *testing.T) {
		_, err := MahalanobisFromData(nil)
		assert.Error(t, err)
	})

	t.Run("ragged data", func(t *testing.T) {
		_, err := MahalanobisFromData([][]float64{{1, 2}, {1}})
		assert.Error(t, err)
	})
}
