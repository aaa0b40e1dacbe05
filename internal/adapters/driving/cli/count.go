package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Show how many chunks are indexed",
	Args:  cobra.NoArgs,
	RunE:  runCount,
}

func init() {
	rootCmd.AddCommand(countCmd)
}

func runCount(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd, Options{}); err != nil {
		return err
	}
	if indexService == nil {
		return errors.New("index service not configured")
	}

	stats := indexService.Stats(cmd.Context(), session)
	cmd.Printf("Chunks: %d\n", stats.Chunks)
	if stats.Model != "" {
		cmd.Printf("Model: %s\n", stats.Model)
	}
	if stats.Dimensions > 0 {
		cmd.Printf("Dimensions: %d\n", stats.Dimensions)
	}
	return nil
}
