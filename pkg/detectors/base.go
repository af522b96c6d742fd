package detectors

import (
	"fmt"
	"sort"
)

// ValidateContamination checks that the contamination ratio lies in (0, 0.5).
func ValidateContamination(c float64) error {
	if c <= 0 || c >= 0.5 {
		return fmt.Errorf("%w: contamination %v must be in (0, 0.5)", ErrInvalidParameter, c)
	}
	return nil
}

// Threshold returns the score cutoff implied by the contamination ratio:
// the value at the contamination-quantile from the top of the sorted
// training scores. Samples scoring at or above it are considered outliers.
func Threshold(scores []float64, contamination float64) float64 {
	return percentile(scores, 100*(1-contamination))
}

// Labels derives binary outlier labels from scores: 1 where the score is at
// or above the threshold, 0 otherwise.
func Labels(scores []float64, threshold float64) []int {
	labels := make([]int, len(scores))
	for i, s := range scores {
		if s >= threshold {
			labels[i] = 1
		}
	}
	return labels
}

// ProcessScores computes the threshold and binary labels for a training
// score vector. Detectors call this once per successful Fit.
func ProcessScores(scores []float64, contamination float64) (float64, []int) {
	threshold := Threshold(scores, contamination)
	return threshold, Labels(scores, threshold)
}

// percentile calculates the p-th percentile of the data.
func percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	idx := int(float64(len(sorted)-1) * p / 100)
	return sorted[idx]
}
