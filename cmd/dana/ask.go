package dana

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parsdesk/dana/pkg/config"
	"github.com/parsdesk/dana/pkg/types"
)

var (
	askCategory string
	askDebug    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a support question from the command line",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&askCategory, "category", "", "Restrict retrieval to one category")
	askCmd.Flags().BoolVar(&askDebug, "debug", false, "Print pipeline debug info")
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	query := types.Query{
		Text:           strings.Join(args, " "),
		CategoryFilter: askCategory,
	}

	result, err := client.Ask(cmd.Context(), query)
	if err != nil {
		return err
	}

	if result.Error != types.ResultErrorNone && result.Text == "" {
		return fmt.Errorf("query failed: %s", result.Error)
	}

	fmt.Println(result.Text)

	if len(result.Sources) > 0 {
		fmt.Println("\nمنابع:")
		for _, src := range result.Sources {
			fmt.Printf("  - %s (%s)\n", src.Title, src.ID)
		}
	}

	if askDebug {
		fmt.Printf("\nstrategy=%s step=%s candidates=%d elapsed=%dms terms=%v\n",
			result.Debug.Strategy,
			result.Debug.LogicStep,
			result.Debug.CandidateCount,
			result.Debug.ProcessingTimeMs,
			result.Debug.ExtractedKeywords,
		)
	}
	return nil
}
