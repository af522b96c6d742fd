// Package metric provides distance metrics for comparing feature vectors.
//
// A Metric computes the distance between two vectors of equal length.
// Built-in metrics cover the Minkowski family (Euclidean, Manhattan,
// Chebyshev, arbitrary order), cosine distance, and Mahalanobis distance.
// Custom distance functions can be adapted via Func.
package metric

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Metric computes the distance between two equal-length vectors.
// Implementations assume len(a) == len(b); the caller is responsible
// for dimension checks.
type Metric interface {
	Distance(a, b []float64) float64
}

// Func adapts a plain distance function into a Metric.
type Func func(a, b []float64) float64

// Distance calls f.
func (f Func) Distance(a, b []float64) float64 { return f(a, b) }

// Euclidean computes the Euclidean (L2) distance.
type Euclidean struct{}

func (Euclidean) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// SqEuclidean computes the squared Euclidean distance (skips the sqrt).
type SqEuclidean struct{}

func (SqEuclidean) Distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Manhattan computes the Manhattan (L1 / city-block) distance.
type Manhattan struct{}

func (Manhattan) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 1)
}

// Chebyshev computes the Chebyshev (L-infinity) distance.
type Chebyshev struct{}

func (Chebyshev) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, math.Inf(1))
}

// Minkowski computes the Minkowski distance of order P. P must be >= 1.
type Minkowski struct {
	P float64
}

func (m Minkowski) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, m.P)
}

// Cosine computes the cosine distance: 1 - cosine_similarity.
// Zero vectors have no direction; two zero vectors are treated as identical
// (distance 0) and a zero vector against a non-zero one as orthogonal
// (distance 1), keeping scores NaN-free.
type Cosine struct{}

func (Cosine) Distance(a, b []float64) float64 {
	dot := floats.Dot(a, b)
	normA := math.Sqrt(floats.Dot(a, a))
	normB := math.Sqrt(floats.Dot(b, b))
	if normA == 0 || normB == 0 {
		if normA == normB {
			return 0
		}
		return 1
	}
	return 1 - dot/(normA*normB)
}

// Pairwise computes the full len(x) x len(y) distance matrix between two
// point sets under m.
func Pairwise(m Metric, x, y [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, a := range x {
		row := make([]float64, len(y))
		for j, b := range y {
			row[j] = m.Distance(a, b)
		}
		out[i] = row
	}
	return out
}

// NearestDistances reduces the pairwise matrix between queries and refs to
// its row-wise minimum: one nearest-reference distance per query point.
// refs must be non-empty.
func NearestDistances(m Metric, queries, refs [][]float64) []float64 {
	scores := make([]float64, len(queries))
	for i, q := range queries {
		best := math.Inf(1)
		for _, r := range refs {
			if d := m.Distance(q, r); d < best {
				best = d
			}
		}
		scores[i] = best
	}
	return scores
}

// Params carries optional metric parameters forwarded to Resolve.
type Params struct {
	// P is the Minkowski order. Zero means the default (2).
	P float64
	// Covariance is the covariance matrix for the Mahalanobis metric,
	// row-major, square, symmetric positive definite.
	Covariance [][]float64
}

// Resolve maps a metric name plus optional parameters to a Metric.
// params may be nil. Unknown names and malformed parameters are errors.
func Resolve(name string, params *Params) (Metric, error) {
	switch name {
	case "euclidean", "l2":
		return Euclidean{}, nil
	case "sqeuclidean":
		return SqEuclidean{}, nil
	case "manhattan", "cityblock", "l1":
		return Manhattan{}, nil
	case "chebyshev":
		return Chebyshev{}, nil
	case "cosine":
		return Cosine{}, nil
	case "minkowski":
		p := 2.0
		if params != nil && params.P != 0 {
			p = params.P
		}
		if p < 1 {
			return nil, fmt.Errorf("minkowski order %v must be >= 1", p)
		}
		return Minkowski{P: p}, nil
	case "mahalanobis":
		if params == nil || params.Covariance == nil {
			return nil, fmt.Errorf("mahalanobis metric requires a covariance matrix")
		}
		return NewMahalanobis(params.Covariance)
	default:
		return nil, fmt.Errorf("unknown metric %q", name)
	}
}
