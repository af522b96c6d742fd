package sampling

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/hed1ad/gosod/pkg/detectors"
)

// resolveSubsetSize converts the configured subset size or fraction into an
// absolute row count for a dataset of n rows. A fraction, when given, takes
// precedence and is converted via floor(fraction * n). An empty subset
// (explicit 0 or a fraction flooring to 0) is rejected: the nearest-reference
// distance is undefined without at least one reference point.
func resolveSubsetSize(size int, fraction float64, useFraction bool, n int) (int, error) {
	if useFraction {
		if fraction <= 0 || fraction > 1 {
			return 0, fmt.Errorf("%w: subset fraction %v must be in (0.0, 1.0]", detectors.ErrInvalidParameter, fraction)
		}
		size = int(math.Floor(fraction * float64(n)))
	}
	if size < 1 || size > n {
		return 0, fmt.Errorf("%w: subset size %d must be between 1 and n_samples=%d", detectors.ErrInvalidParameter, size, n)
	}
	return size, nil
}

// sampleSubset draws size distinct rows from data without replacement using
// rng. Rows are copied, so the returned subset is independent of the caller's
// dataset. The same rng state always yields the same subset.
func sampleSubset(rng *rand.Rand, data [][]float64, size int) [][]float64 {
	indices := rng.Perm(len(data))[:size]
	subset := make([][]float64, size)
	for i, idx := range indices {
		row := make([]float64, len(data[idx]))
		copy(row, data[idx])
		subset[i] = row
	}
	return subset
}
