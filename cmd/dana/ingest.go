package dana

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parsdesk/dana/pkg/config"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [passages.yaml]",
	Short: "Embed and index passages from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
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

	count, err := client.IngestFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d passages\n", count)
	return nil
}
