package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/FamilOrujov/semsearch/internal/connectors/filesystem"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Index files or directories",
	Long: `Extracts, chunks and embeds PDF, TXT and DOCX files into the vector index.

Directories are scanned recursively. Hidden files and unsupported formats
are skipped. Files that fail to extract are reported and the rest are
still indexed.`,
	Example: `  semsearch ingest report.pdf notes.txt
  semsearch ingest ~/Documents/papers`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd, Options{Ping: true}); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := cmd.Context()
	files, err := filesystem.Collect(ctx, args...)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		cmd.Println("No supported files found.")
		return nil
	}

	report, err := ingestService.IngestFiles(ctx, session, files)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	printReport(cmd.OutOrStdout(), report)
	if len(report.Files) == 0 && len(report.Failed) > 0 {
		return errors.New("no files were indexed")
	}
	return nil
}

// printReport writes a human-readable ingest summary.
func printReport(w io.Writer, r *driving.IngestReport) {
	fmt.Fprintf(w, "Indexed %d file(s), %d chunk(s).\n", len(r.Files), r.Chunks)
	for _, f := range r.Files {
		fmt.Fprintf(w, "  + %s\n", f)
	}
	if len(r.AlreadyProcessed) > 0 {
		fmt.Fprintln(w, "Already processed:")
		for _, f := range r.AlreadyProcessed {
			fmt.Fprintf(w, "  = %s\n", f)
		}
	}
	if len(r.Unsupported) > 0 {
		fmt.Fprintln(w, "Unsupported:")
		for _, f := range r.Unsupported {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}
	if len(r.Failed) > 0 {
		fmt.Fprintln(w, "Failed:")
		for _, f := range r.Failed {
			fmt.Fprintf(w, "  ! %s: %v\n", f.Source, f.Err)
		}
	}
}
