package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

const snippetRunes = 160

var (
	searchLimit    int
	searchJSON     bool
	searchMinScore float64
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed chunks",
	Long: `Embeds the query and lists the nearest chunks by cosine similarity.
No language model is involved.`,
	Example: `  semsearch search "quarterly revenue"
  semsearch search -n 10 --min-score 0.5 --json retention policy`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureServices(cmd, Options{}); err != nil {
			return err
		}
		if vectorIndex == nil {
			return errors.New("vector index not configured")
		}

		results, err := vectorIndex.Search(cmd.Context(), args[0], searchLimit)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		results = aboveScore(results, searchMinScore)

		out := cmd.OutOrStdout()
		if searchJSON {
			return writeHits(out, results)
		}
		writeResults(out, results)
		return nil
	},
}

func init() {
	f := searchCmd.Flags()
	f.IntVarP(&searchLimit, "limit", "n", domain.DefaultTopK, "maximum number of results")
	f.BoolVar(&searchJSON, "json", false, "output results as JSON")
	f.Float64Var(&searchMinScore, "min-score", 0, "drop results scoring below this value")
	rootCmd.AddCommand(searchCmd)
}

type searchHit struct {
	Source  string  `json:"source"`
	Page    int     `json:"page,omitempty"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

// aboveScore keeps results in rank order.
func aboveScore(results []domain.SearchResult, floor float64) []domain.SearchResult {
	if floor <= 0 {
		return results
	}
	kept := results[:0:0]
	for _, r := range results {
		if r.Score >= floor {
			kept = append(kept, r)
		}
	}
	return kept
}

func writeHits(w io.Writer, results []domain.SearchResult) error {
	hits := make([]searchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, searchHit{
			Source:  r.Chunk.Source,
			Page:    r.Chunk.Page,
			Score:   r.Score,
			Content: r.Chunk.Content,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(hits); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}

func writeResults(w io.Writer, results []domain.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}
	fmt.Fprint(w, "Results:\n\n")
	for i, r := range results {
		fmt.Fprintf(w, "  [%d] %s (%.2f)\n      %s\n\n",
			i+1, r.Chunk.Location(), r.Score, snippet(r.Chunk.Content, snippetRunes))
	}
}

// snippet collapses whitespace and cuts text to at most n runes.
func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if cut := []rune(text); len(cut) > n {
		return string(cut[:n]) + "..."
	}
	return text
}
