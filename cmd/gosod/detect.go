package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hed1ad/gosod/pkg/detectors/sampling"
	gosodio "github.com/hed1ad/gosod/pkg/io"
	"github.com/hed1ad/gosod/pkg/io/csv"
	"github.com/hed1ad/gosod/pkg/metric"
)

var detectFlags struct {
	train          string
	score          string
	subsetSize     int
	subsetFraction float64
	contamination  float64
	metricName     string
	minkowskiP     float64
	seed           int64
	noHeader       bool
	columns        []int
	output         string
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Fit on a CSV file and report outliers",
	Long: "Fit the sampling detector on a training CSV and write per-row scores " +
		"as JSON Lines. Without --score the training rows themselves are reported, " +
		"using the labels derived from the contamination ratio.",
	RunE: runDetect,
}

func init() {
	f := detectCmd.Flags()
	f.StringVar(&detectFlags.train, "train", "", "training CSV file (required)")
	f.StringVar(&detectFlags.score, "score", "", "CSV file to score; defaults to the training file rows")
	f.IntVar(&detectFlags.subsetSize, "subset-size", 20, "reference subset size (rows)")
	f.Float64Var(&detectFlags.subsetFraction, "subset-fraction", 0, "reference subset size as a fraction of the training set; overrides --subset-size")
	f.Float64Var(&detectFlags.contamination, "contamination", 0.1, "expected proportion of outliers, in (0, 0.5)")
	f.StringVar(&detectFlags.metricName, "metric", "minkowski", "distance metric: euclidean, sqeuclidean, manhattan, chebyshev, cosine, minkowski, mahalanobis")
	f.Float64Var(&detectFlags.minkowskiP, "minkowski-p", 2, "order for the minkowski metric")
	f.Int64Var(&detectFlags.seed, "seed", 42, "random seed for subset sampling")
	f.BoolVar(&detectFlags.noHeader, "no-header", false, "treat the first CSV row as data")
	f.IntSliceVar(&detectFlags.columns, "columns", nil, "feature column indices; defaults to all columns")
	f.StringVar(&detectFlags.output, "output", "", "write results to this file instead of stdout")
	_ = detectCmd.MarkFlagRequired("train")

	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	train, err := readCSV(detectFlags.train)
	if err != nil {
		return fmt.Errorf("reading training data: %w", err)
	}

	params := &metric.Params{P: detectFlags.minkowskiP}
	if detectFlags.metricName == "mahalanobis" {
		// No covariance on the command line; estimate it from the training data.
		m, err := metric.MahalanobisFromData(train)
		if err != nil {
			return fmt.Errorf("estimating covariance: %w", err)
		}
		params.Covariance = m.Covariance()
	}

	opts := []sampling.Option{
		sampling.WithSubsetSize(detectFlags.subsetSize),
		sampling.WithContamination(detectFlags.contamination),
		sampling.WithMetric(detectFlags.metricName),
		sampling.WithMetricParams(params),
		sampling.WithSeed(detectFlags.seed),
	}
	if cmd.Flags().Changed("subset-fraction") {
		opts = append(opts, sampling.WithSubsetFraction(detectFlags.subsetFraction))
	}

	detector := sampling.New(opts...)
	if err := detector.Fit(train); err != nil {
		return fmt.Errorf("fitting detector: %w", err)
	}

	var rows [][]float64
	var scores []float64
	if detectFlags.score == "" {
		rows = train
		scores = detector.DecisionScores()
	} else {
		rows, err = readCSV(detectFlags.score)
		if err != nil {
			return fmt.Errorf("reading scoring data: %w", err)
		}
		scores, err = detector.Score(rows)
		if err != nil {
			return fmt.Errorf("scoring: %w", err)
		}
	}

	writer, err := openWriter(detectFlags.output)
	if err != nil {
		return err
	}
	defer writer.Close()

	threshold := detector.Threshold()
	results := make([]gosodio.Result, len(rows))
	for i, row := range rows {
		results[i] = gosodio.Result{
			Index:     i,
			Score:     scores[i],
			IsAnomaly: scores[i] >= threshold,
			Features:  row,
		}
	}
	if err := writer.WriteAll(results); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}

	return nil
}

func readCSV(filename string) ([][]float64, error) {
	opts := []csv.Option{csv.WithHeader(!detectFlags.noHeader)}
	if detectFlags.columns != nil {
		opts = append(opts, csv.WithColumns(detectFlags.columns))
	}
	reader, err := csv.NewReader(filename, opts...)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return reader.Read()
}

func openWriter(output string) (gosodio.Writer, error) {
	if output == "" {
		return gosodio.NewJSONLWriter(os.Stdout), nil
	}
	return gosodio.NewJSONLFile(output)
}
