package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FamilOrujov/semsearch/internal/connectors/filesystem"
	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Index a directory and keep indexing new files",
	Long: `Indexes every supported file under the directory, then watches it and
indexes files as they are created. Runs until interrupted.

Files already indexed in this run are skipped when they change.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd, Options{Ping: true, Guard: true}); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := cmd.Context()
	conn := filesystem.New(args[0])
	defer conn.Close()

	files, err := conn.Scan(ctx)
	if err != nil {
		return err
	}
	if err := ingestBatch(ctx, cmd, files); err != nil {
		return err
	}

	batches, errs, err := conn.Watch(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", conn.Root())

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-batches:
			if !ok {
				return nil
			}
			if err := ingestBatch(ctx, cmd, batch); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				logger.Warn("watch: %v", err)
			}
		case werr, ok := <-errs:
			if ok {
				logger.Warn("watch: %v", werr)
			}
		}
	}
}

func ingestBatch(ctx context.Context, cmd *cobra.Command, files []domain.SourceFile) error {
	if len(files) == 0 {
		return nil
	}
	report, err := ingestService.IngestFiles(ctx, session, files)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}
