package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every chunk from the index",
	Long: `Removes all records from the vector index. The index stays usable at the
same location. Asks for confirmation unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "do not ask for confirmation")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(cmd, Options{}); err != nil {
		return err
	}
	if indexService == nil {
		return errors.New("index service not configured")
	}

	ctx := cmd.Context()
	n := indexService.Count(ctx)

	if !resetForce {
		cmd.Printf("Delete %d chunk(s) from the index? [y/N]: ", n)
		answer := readLine(bufio.NewReader(cmd.InOrStdin()))
		if a := strings.ToLower(answer); a != "y" && a != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := indexService.Reset(ctx, session); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	cmd.Printf("Deleted %d chunk(s).\n", n)
	return nil
}
