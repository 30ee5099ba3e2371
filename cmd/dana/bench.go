package dana

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parsdesk/dana/pkg/config"
	"github.com/parsdesk/dana/pkg/eval"
	"github.com/parsdesk/dana/pkg/telemetry"
)

var benchCmd = &cobra.Command{
	Use:   "bench [benchmark.yaml]",
	Short: "Evaluate the pipeline against a benchmark suite",
	Args:  cobra.ExactArgs(1),
	RunE:  runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := buildLogger(cfg)
	defer flushTelemetry(logger)

	client, err := initializeClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dana: %w", err)
	}
	defer client.Close()

	cases, err := eval.LoadCases(args[0])
	if err != nil {
		return err
	}

	suite, err := client.Benchmark(cmd.Context(), cases)
	if err != nil {
		return err
	}

	for _, r := range suite.Results {
		fmt.Printf("%-20s composite=%.3f recall=%.3f similarity=%.3f judged=%t time=%dms\n",
			r.Case.ID, r.CompositeScore, r.KeywordRecall, r.SimilarityScore, r.Judged, r.TimeTakenMs)
	}
	fmt.Printf("\nmean composite score: %.3f over %d cases\n", suite.MeanScore, len(suite.Results))

	if cfg.Telemetry.ParquetPath != "" {
		writer, err := telemetry.NewBenchmarkWriter(cfg.Telemetry.ParquetPath)
		if err != nil {
			logger.Warn("benchmark telemetry disabled", "error", err)
			return nil
		}
		if runID, path, err := writer.WriteRun(suite.Results); err == nil {
			fmt.Printf("run %s written to %s\n", runID, path)
		}
	}
	return nil
}
