package dana

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/parsdesk/dana/pkg/config"
	"github.com/parsdesk/dana/pkg/eval"
)

var tuneCmd = &cobra.Command{
	Use:   "tune [benchmark.yaml]",
	Short: "Tune retrieval parameters against a benchmark suite",
	Long: `Evaluate the fixed strategy grid against the benchmark suite and print
the winning retrieval configuration. The first strategy whose mean composite
score reaches the acceptance threshold wins; otherwise the best-scoring
strategy does.`,
	Args: cobra.ExactArgs(1),
	RunE: runTune,
}

func init() {
	rootCmd.AddCommand(tuneCmd)
}

func runTune(cmd *cobra.Command, args []string) error {
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

	outcome, err := client.Tune(cmd.Context(), cases)
	if err != nil {
		return err
	}

	for _, step := range outcome.Steps {
		marker := " "
		if step.Pass {
			marker = "*"
		}
		fmt.Printf("%s %-16s score=%.3f\n", marker, step.StrategyName, step.Score)
	}

	fmt.Printf("\nwinning strategy: %s (score=%.3f, accepted=%t)\n",
		outcome.Best.StrategyName, outcome.Best.Score, outcome.Accepted)

	// Print the winning configuration as a config snippet.
	snippet, err := yaml.Marshal(map[string]interface{}{
		"retrieval": map[string]interface{}{
			"min_confidence": outcome.Best.Config.MinConfidence,
			"temperature":    outcome.Best.Config.Temperature,
			"vector_weight":  outcome.Best.Config.VectorWeight,
			"recall_size":    outcome.Best.Config.RecallSize,
			"top_k":          outcome.Best.Config.TopK,
		},
	})
	if err == nil {
		fmt.Printf("\n%s", snippet)
	}
	return nil
}
