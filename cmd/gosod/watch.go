package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hed1ad/gosod/pkg/detectors"
	"github.com/hed1ad/gosod/pkg/detectors/sampling"
	gosodio "github.com/hed1ad/gosod/pkg/io"
	"github.com/hed1ad/gosod/pkg/io/pcap"
)

var watchFlags struct {
	train         string
	iface         string
	snaplen       int32
	promisc       bool
	timeout       time.Duration
	subsetSize    int
	contamination float64
	seed          int64
	allPackets    bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Fit on a pcap capture and score live traffic",
	Long: "Fit the sampling detector on packet features extracted from a baseline " +
		"pcap capture, then score packets from a live interface as they arrive. " +
		"Anomalous packets are written as JSON Lines to stdout.",
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.StringVar(&watchFlags.train, "train", "", "baseline pcap capture to fit on (required)")
	f.StringVar(&watchFlags.iface, "iface", "", "interface to capture from (required)")
	f.Int32Var(&watchFlags.snaplen, "snaplen", 1600, "capture snapshot length")
	f.BoolVar(&watchFlags.promisc, "promisc", false, "capture in promiscuous mode")
	f.DurationVar(&watchFlags.timeout, "timeout", pcap.BlockForever, "capture read timeout")
	f.IntVar(&watchFlags.subsetSize, "subset-size", 256, "reference subset size (packets)")
	f.Float64Var(&watchFlags.contamination, "contamination", 0.01, "expected proportion of anomalous packets, in (0, 0.5)")
	f.Int64Var(&watchFlags.seed, "seed", 42, "random seed for subset sampling")
	f.BoolVar(&watchFlags.allPackets, "all", false, "report every packet, not only anomalies")
	_ = watchCmd.MarkFlagRequired("train")
	_ = watchCmd.MarkFlagRequired("iface")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	baseline, err := pcap.NewFileReader(watchFlags.train)
	if err != nil {
		return fmt.Errorf("opening baseline capture: %w", err)
	}
	train, err := baseline.Read()
	baseline.Close()
	if err != nil {
		return fmt.Errorf("reading baseline capture: %w", err)
	}
	if len(train) == 0 {
		return fmt.Errorf("baseline capture %s contains no packets", watchFlags.train)
	}

	subsetSize := watchFlags.subsetSize
	if subsetSize > len(train) {
		subsetSize = len(train)
	}

	detector := sampling.New(
		sampling.WithSubsetSize(subsetSize),
		sampling.WithContamination(watchFlags.contamination),
		sampling.WithMetric("euclidean"),
		sampling.WithSeed(watchFlags.seed),
	)
	if err := detector.Fit(train); err != nil {
		return fmt.Errorf("fitting detector: %w", err)
	}
	fmt.Fprintf(os.Stderr, "fitted on %d packets, threshold %.4f\n", len(train), detector.Threshold())

	live, err := pcap.NewLiveReader(watchFlags.iface, watchFlags.snaplen, watchFlags.promisc, watchFlags.timeout)
	if err != nil {
		return fmt.Errorf("opening interface %s: %w", watchFlags.iface, err)
	}
	defer live.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input, err := live.Stream(ctx)
	if err != nil {
		return fmt.Errorf("streaming from %s: %w", watchFlags.iface, err)
	}

	output := make(chan detectors.Detection, 100)
	errc := make(chan error, 1)
	go func() {
		errc <- detector.ScoreStream(ctx, input, output)
		close(output)
	}()

	writer := gosodio.NewJSONLWriter(os.Stdout)
	index := 0
	for detection := range output {
		if !detection.IsAnomaly && !watchFlags.allPackets {
			index++
			continue
		}
		result := gosodio.Result{
			Index:     index,
			Timestamp: time.Now().Unix(),
			Score:     detection.Value,
			IsAnomaly: detection.IsAnomaly,
			Features:  detection.Features,
		}
		if err := writer.Write(result); err != nil {
			return fmt.Errorf("writing result: %w", err)
		}
		index++
	}

	if err := <-errc; err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
