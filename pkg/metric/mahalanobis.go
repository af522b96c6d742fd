package metric

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Mahalanobis computes the Mahalanobis distance under a fixed covariance
// matrix. The Cholesky factorization is computed once at construction and
// reused for every distance call.
type Mahalanobis struct {
	cov  [][]float64
	chol *mat.Cholesky
	dim  int
}

// NewMahalanobis builds the metric from a square, symmetric positive
// definite covariance matrix. Only the upper triangle is read.
func NewMahalanobis(cov [][]float64) (*Mahalanobis, error) {
	n := len(cov)
	if n == 0 {
		return nil, fmt.Errorf("mahalanobis covariance matrix is empty")
	}
	data := make([]float64, 0, n*n)
	for _, row := range cov {
		if len(row) != n {
			return nil, fmt.Errorf("mahalanobis covariance matrix must be square, got row of length %d in a %dx%d matrix", len(row), n, n)
		}
		data = append(data, row...)
	}

	sym := mat.NewSymDense(n, data)
	chol := &mat.Cholesky{}
	if ok := chol.Factorize(sym); !ok {
		return nil, fmt.Errorf("mahalanobis covariance matrix is not positive definite")
	}

	return &Mahalanobis{cov: cov, chol: chol, dim: n}, nil
}

// MahalanobisFromData estimates the covariance matrix from the rows of data
// and builds the metric from it.
func MahalanobisFromData(data [][]float64) (*Mahalanobis, error) {
	if len(data) == 0 || len(data[0]) == 0 {
		return nil, fmt.Errorf("mahalanobis covariance estimation requires non-empty data")
	}
	n, d := len(data), len(data[0])
	x := mat.NewDense(n, d, nil)
	for i, row := range data {
		if len(row) != d {
			return nil, fmt.Errorf("mahalanobis covariance estimation requires rectangular data, row %d has %d features, want %d", i, len(row), d)
		}
		x.SetRow(i, row)
	}

	sym := mat.NewSymDense(d, nil)
	stat.CovarianceMatrix(sym, x, nil)
	cov := make([][]float64, d)
	for i := range cov {
		cov[i] = make([]float64, d)
		for j := range cov[i] {
			cov[i][j] = sym.At(i, j)
		}
	}
	return NewMahalanobis(cov)
}

// Distance returns sqrt((a-b)^T S^-1 (a-b)) for covariance S.
func (m *Mahalanobis) Distance(a, b []float64) float64 {
	return stat.Mahalanobis(mat.NewVecDense(len(a), a), mat.NewVecDense(len(b), b), m.chol)
}

// Covariance returns the covariance matrix the metric was built from.
func (m *Mahalanobis) Covariance() [][]float64 { return m.cov }
