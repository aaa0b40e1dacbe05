package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/FamilOrujov/semsearch/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive chat",
	Long: `Launch the interactive terminal chat for semsearch.

Type a question and press Enter. The answer streams into the transcript and
the sources it used are listed in the sidebar.

Commands:
  /add <path>...  Index files or directories
  /reset          Clear the index
  /copy           Copy the last answer
  /help           Show keys and commands
  /quit           Exit

Controls:
  Enter    - Ask
  Esc      - Stop the answer
  Tab      - Focus the source list
  Ctrl+Y   - Copy
  Ctrl+R   - Reset the index
  F1       - Help
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// tuiPorts builds the TUI ports from the wired services.
func tuiPorts() *tui.Ports {
	return &tui.Ports{
		Answer:       answerService,
		Index:        indexService,
		Ingest:       ingestService,
		Session:      session,
		ResultAction: resultActionService,
	}
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("panic in TUI: %v", r)
		}
	}()

	if err := ensureServices(cmd, Options{Ping: true, NeedLLM: true, Guard: true}); err != nil {
		return err
	}

	app, err := tui.NewApp(tuiPorts())
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
