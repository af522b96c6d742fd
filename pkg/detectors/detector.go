// Package detectors provides unsupervised anomaly detection algorithms.
package detectors

import "context"

// Detector is the common interface for all anomaly detection algorithms.
type Detector interface {
	// Fit trains the detector on historical data.
	// data is a 2D slice where each row is a sample and each column is a feature.
	Fit(data [][]float64) error

	// Score returns anomaly scores for the given samples.
	// Higher values indicate more anomalous samples.
	Score(data [][]float64) ([]float64, error)

	// ScoreOne returns the anomaly score for a single sample.
	ScoreOne(sample []float64) (float64, error)

	// Save serializes the trained model to bytes.
	Save() ([]byte, error)

	// Load deserializes a trained model from bytes.
	Load(data []byte) error
}

// StreamDetector extends Detector with streaming capabilities.
type StreamDetector interface {
	Detector

	// ScoreStream processes samples from a channel and outputs detections.
	ScoreStream(ctx context.Context, input <-chan []float64, output chan<- Detection) error
}

// Detection represents a single scored sample.
type Detection struct {
	// Value is the anomaly score. Higher means more anomalous.
	Value float64
	// IsAnomaly indicates if the score reaches the detector's threshold.
	IsAnomaly bool
	// Features contains the original input features.
	Features []float64
	// Metadata contains additional information.
	Metadata map[string]any
}
