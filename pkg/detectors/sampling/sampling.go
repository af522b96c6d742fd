// Package sampling implements distance-to-sample outlier detection.
//
// A small random subset of the training data, drawn once at fit time, serves
// as a fixed reference set. A sample's anomaly score is its distance to the
// nearest reference point under a configurable metric: points close to at
// least one reference point are ordinary, points far from every reference
// point are anomalous (Sugiyama & Borgwardt, NIPS 2013).
package sampling

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/hed1ad/gosod/pkg/detectors"
	"github.com/hed1ad/gosod/pkg/metric"
)

// Sampling detects outliers by distance to a fixed random subset of the
// training data.
//
// Fit is exclusive; Score and the other read paths are safe to call
// concurrently once Fit has returned.
type Sampling struct {
	mu sync.RWMutex

	// Configuration, validated at Fit
	subsetSize     int
	subsetFraction float64
	useFraction    bool
	contamination  float64
	metricName     string
	metricParams   *metric.Params
	metricFunc     metric.Func
	rng            *rand.Rand

	// Fitted model
	model *model

	// Training artifacts
	decisionScores []float64
	threshold      float64
	labels         []int
}

// model is the state established by a successful Fit: the reference subset,
// its dimensionality, and the resolved metric. It is built completely before
// being swapped in, so a failed Fit never exposes partial state.
type model struct {
	subset [][]float64
	dim    int
	dist   metric.Metric
}

var (
	_ detectors.Detector       = (*Sampling)(nil)
	_ detectors.StreamDetector = (*Sampling)(nil)
)

// Option configures a Sampling detector.
type Option func(*Sampling)

// WithSubsetSize sets the reference subset size as an absolute row count.
func WithSubsetSize(n int) Option {
	return func(s *Sampling) {
		s.subsetSize = n
		s.subsetFraction = 0
		s.useFraction = false
	}
}

// WithSubsetFraction sets the reference subset size as a fraction of the
// training set, in (0.0, 1.0]. Takes precedence over WithSubsetSize;
// out-of-range values, including 0.0, fail at Fit.
func WithSubsetFraction(f float64) Option {
	return func(s *Sampling) {
		s.subsetFraction = f
		s.useFraction = true
	}
}

// WithContamination sets the expected proportion of anomalies, in (0, 0.5).
func WithContamination(c float64) Option {
	return func(s *Sampling) {
		s.contamination = c
	}
}

// WithMetric sets the distance metric by name (see metric.Resolve).
func WithMetric(name string) Option {
	return func(s *Sampling) {
		s.metricName = name
		s.metricFunc = nil
	}
}

// WithMetricParams sets extra metric parameters, forwarded verbatim to
// metric resolution at fit time.
func WithMetricParams(p *metric.Params) Option {
	return func(s *Sampling) {
		s.metricParams = p
	}
}

// WithMetricFunc sets a custom distance function, overriding WithMetric.
// Models using a custom function cannot be serialized with Save.
func WithMetricFunc(f metric.Func) Option {
	return func(s *Sampling) {
		s.metricFunc = f
	}
}

// WithSeed sets the random seed for reproducible subset sampling.
func WithSeed(seed int64) Option {
	return func(s *Sampling) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRandomSource sets the random source directly, for callers that manage
// generator state themselves.
func WithRandomSource(rng *rand.Rand) Option {
	return func(s *Sampling) {
		s.rng = rng
	}
}

// New creates a new Sampling detector with the given options.
// Configuration is validated lazily, at Fit time.
func New(opts ...Option) *Sampling {
	s := &Sampling{
		subsetSize:    20,
		contamination: 0.1,
		metricName:    "minkowski",
		rng:           rand.New(rand.NewSource(42)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Fit draws the reference subset from data, resolves the metric, and scores
// the training set. On success the detector is fitted; training scores,
// threshold, and labels become available. A second Fit replaces the previous
// model wholesale. On failure the previous state is kept intact.
func (s *Sampling) Fit(data [][]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(data) == 0 {
		return errors.New("empty training data")
	}
	dim := len(data[0])
	for _, row := range data[1:] {
		if len(row) != dim {
			return &detectors.DimensionError{Expected: dim, Actual: len(row)}
		}
	}

	if err := detectors.ValidateContamination(s.contamination); err != nil {
		return err
	}

	size, err := resolveSubsetSize(s.subsetSize, s.subsetFraction, s.useFraction, len(data))
	if err != nil {
		return err
	}

	dist, err := s.resolveMetric()
	if err != nil {
		return err
	}

	m := &model{
		subset: sampleSubset(s.rng, data, size),
		dim:    dim,
		dist:   dist,
	}
	scores := metric.NearestDistances(m.dist, data, m.subset)

	s.model = m
	s.decisionScores = scores
	s.threshold, s.labels = detectors.ProcessScores(scores, s.contamination)

	return nil
}

// resolveMetric turns the configured metric name or function into a Metric.
func (s *Sampling) resolveMetric() (metric.Metric, error) {
	if s.metricFunc != nil {
		return s.metricFunc, nil
	}
	m, err := metric.Resolve(s.metricName, s.metricParams)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", detectors.ErrInvalidParameter, err)
	}
	return m, nil
}

// Score returns the nearest-reference distance for each sample. It requires
// a fitted detector and does not alter stored state; the metric and subset
// in effect are the ones resolved by the last successful Fit.
func (s *Sampling) Score(data [][]float64) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.score(data)
}

func (s *Sampling) score(data [][]float64) ([]float64, error) {
	if s.model == nil {
		return nil, detectors.ErrNotFitted
	}
	for _, row := range data {
		if len(row) != s.model.dim {
			return nil, &detectors.DimensionError{Expected: s.model.dim, Actual: len(row)}
		}
	}

	return metric.NearestDistances(s.model.dist, data, s.model.subset), nil
}

// ScoreOne returns the anomaly score for a single sample.
func (s *Sampling) ScoreOne(sample []float64) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scores, err := s.score([][]float64{sample})
	if err != nil {
		return 0, err
	}
	return scores[0], nil
}

// ScoreStream processes samples from a channel, emitting one detection per
// sample. Samples that fail to score (e.g. wrong dimension) are skipped.
func (s *Sampling) ScoreStream(ctx context.Context, input <-chan []float64, output chan<- detectors.Detection) error {
	s.mu.RLock()
	fitted := s.model != nil
	s.mu.RUnlock()
	if !fitted {
		return detectors.ErrNotFitted
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sample, ok := <-input:
			if !ok {
				return nil
			}

			score, err := s.ScoreOne(sample)
			if err != nil {
				continue
			}

			select {
			case output <- detectors.Detection{
				Value:     score,
				IsAnomaly: score >= s.Threshold(),
				Features:  sample,
			}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// DecisionScores returns a copy of the training anomaly scores from the last
// successful Fit.
func (s *Sampling) DecisionScores() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]float64, len(s.decisionScores))
	copy(out, s.decisionScores)
	return out
}

// Labels returns a copy of the binary training labels (1 = outlier) from the
// last successful Fit.
func (s *Sampling) Labels() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int, len(s.labels))
	copy(out, s.labels)
	return out
}

// Subset returns a copy of the fitted reference subset, or nil if the
// detector has not been fitted.
func (s *Sampling) Subset() [][]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.model == nil {
		return nil
	}
	out := make([][]float64, len(s.model.subset))
	for i, row := range s.model.subset {
		out[i] = make([]float64, len(row))
		copy(out[i], row)
	}
	return out
}

// Threshold returns the current anomaly threshold.
func (s *Sampling) Threshold() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threshold
}

// SetThreshold overrides the anomaly threshold used by ScoreStream.
func (s *Sampling) SetThreshold(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threshold = t
}

// savedModel is the gob representation of a fitted detector.
type savedModel struct {
	Subset         [][]float64
	Dim            int
	MetricName     string
	MetricParams   metric.Params
	Contamination  float64
	Threshold      float64
	DecisionScores []float64
	Labels         []int
	SubsetSize     int
	SubsetFraction float64
	UseFraction    bool
}

// Save serializes the fitted model. Detectors configured with a custom
// metric function cannot be serialized.
func (s *Sampling) Save() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.model == nil {
		return nil, detectors.ErrNotFitted
	}
	if s.metricFunc != nil {
		return nil, fmt.Errorf("%w: custom metric functions cannot be serialized", detectors.ErrInvalidParameter)
	}

	var params metric.Params
	if s.metricParams != nil {
		params = *s.metricParams
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	err := enc.Encode(savedModel{
		Subset:         s.model.subset,
		Dim:            s.model.dim,
		MetricName:     s.metricName,
		MetricParams:   params,
		Contamination:  s.contamination,
		Threshold:      s.threshold,
		DecisionScores: s.decisionScores,
		Labels:         s.labels,
		SubsetSize:     s.subsetSize,
		SubsetFraction: s.subsetFraction,
		UseFraction:    s.useFraction,
	})
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Load deserializes a fitted model, replacing the detector's configuration
// and state.
func (s *Sampling) Load(data []byte) error {
	var saved savedModel
	dec := gob.NewDecoder(bytes.NewBuffer(data))
	if err := dec.Decode(&saved); err != nil {
		return err
	}

	dist, err := metric.Resolve(saved.MetricName, &saved.MetricParams)
	if err != nil {
		return fmt.Errorf("%w: %v", detectors.ErrInvalidParameter, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.subsetSize = saved.SubsetSize
	s.subsetFraction = saved.SubsetFraction
	s.useFraction = saved.UseFraction
	s.contamination = saved.Contamination
	s.metricName = saved.MetricName
	s.metricParams = &saved.MetricParams
	s.metricFunc = nil
	s.model = &model{
		subset: saved.Subset,
		dim:    saved.Dim,
		dist:   dist,
	}
	s.decisionScores = saved.DecisionScores
	s.threshold = saved.Threshold
	s.labels = saved.Labels

	return nil
}
