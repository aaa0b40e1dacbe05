package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/FamilOrujov/semsearch/internal/core/services"
)

var askNoSources bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about your documents",
	Long: `Retrieves the chunks nearest to the question and streams an answer that
uses only those chunks. The sources are listed after the answer.

If the index is empty the model is not called and a fixed reply is printed.`,
	Example: `  semsearch ask "What was the revenue in Q3?"
  semsearch ask --top-k 8 summarise the design decisions`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askNoSources, "no-sources", false, "do not list sources after the answer")
	rootCmd.AddCommand(askCmd)
}

var sourcesStyle = lipgloss.NewStyle().Faint(true)

func runAsk(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd, Options{NeedLLM: true}); err != nil {
		return err
	}
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	question := strings.Join(args, " ")
	answer, err := answerService.Answer(cmd.Context(), question)
	if err != nil {
		return fmt.Errorf("answer failed: %w", err)
	}

	out := cmd.OutOrStdout()
	_, err = services.Collect(answer.Stream, func(fragment string) {
		fmt.Fprint(out, fragment)
	})
	fmt.Fprintln(out)
	if err != nil {
		return fmt.Errorf("answer interrupted: %w", err)
	}

	sources := answer.Retrieval.Sources()
	if askNoSources || len(sources) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("\nSources:\n")
	for _, s := range sources {
		fmt.Fprintf(&b, "  - %s\n", s)
	}
	text := b.String()
	if isTerminal(out) {
		text = sourcesStyle.Render(text)
	}
	fmt.Fprint(out, text)
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
