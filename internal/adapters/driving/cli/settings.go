package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
)

var errNoSettings = errors.New("settings service not configured")

// withSettings runs fn with the installed settings service.
func withSettings(fn func(cmd *cobra.Command, args []string, svc driving.SettingsService) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if settingsService == nil {
			return errNoSettings
		}
		return fn(cmd, args, settingsService)
	}
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure models, chunking, retrieval and index options.

Use subcommands to change a single setting or run the interactive wizard.
Environment variables prefixed with SEMSEARCH_ override the saved values.`,
	RunE: withSettings(showSettings),
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  withSettings(showSettings),
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a single setting",
	Example: `  semsearch settings set chunking.profile coarse
  semsearch settings set llm.model llama3.2
  semsearch settings set llm.api_key`,
	Args: cobra.RangeArgs(1, 2),
	RunE: withSettings(setSetting),
}

func init() {
	settingsSetCmd.Long = "Set a single setting by its key.\n\nKeys:\n" +
		settingKeysHelp() +
		"\nAPI keys may be omitted from the command line and are then read without echo."

	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsWizardCmd, settingsEmbeddingCmd, settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingsBlock is one bracketed group of the show output.
type settingsBlock struct {
	title string
	rows  [][2]string
}

func (b *settingsBlock) add(label, value string) {
	b.rows = append(b.rows, [2]string{label, value})
}

func (b *settingsBlock) writeTo(w io.Writer) {
	fmt.Fprintf(w, "[%s]\n", b.title)
	for _, r := range b.rows {
		fmt.Fprintf(w, "  %s: %s\n", r[0], r[1])
	}
	fmt.Fprintln(w)
}

func providerBlock(title string, p domain.AIProvider, model, baseURL, apiKey string, ready bool) *settingsBlock {
	b := &settingsBlock{title: title}
	b.add("Provider", p.Description())
	b.add("Model", model)
	b.add("Base URL", orDefault(baseURL))
	if p.RequiresAPIKey() {
		key := "(not set)"
		if apiKey != "" {
			key = maskAPIKey(apiKey)
		}
		b.add("API Key", key)
	}
	b.add("Status", map[bool]string{true: "configured", false: "not configured"}[ready])
	return b
}

func showSettings(cmd *cobra.Command, _ []string, svc driving.SettingsService) error {
	s, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprint(out, "Current Settings\n================\n\n")

	embed := providerBlock("Embedding", s.Embedding.Provider, s.Embedding.Model,
		s.Embedding.BaseURL, s.Embedding.APIKey, s.Embedding.IsConfigured())
	if s.Embedding.RequestsPerSecond > 0 {
		embed.add("Rate limit", fmt.Sprintf("%g req/s", s.Embedding.RequestsPerSecond))
	}
	llm := providerBlock("LLM", s.LLM.Provider, s.LLM.Model,
		s.LLM.BaseURL, s.LLM.APIKey, s.LLM.IsConfigured())

	size, overlap := s.Chunking.Effective()
	chunking := &settingsBlock{title: "Chunking"}
	chunking.add("Profile", string(s.Chunking.Profile))
	chunking.add("Chunk size", fmt.Sprint(size))
	chunking.add("Overlap", fmt.Sprint(overlap))

	retrieval := &settingsBlock{title: "Retrieval"}
	retrieval.add("Top K", fmt.Sprint(s.Retrieval.TopK))

	index := &settingsBlock{title: "Index"}
	index.add("Backend", string(s.Index.Backend))
	index.add("Directory", orDefault(s.Index.Dir))
	index.add("Connect attempts", fmt.Sprint(s.Backend.ConnectAttempts))
	index.add("Connect delay", s.Backend.ConnectDelay.String())

	for _, b := range []*settingsBlock{embed, llm, chunking, retrieval, index} {
		b.writeTo(out)
	}

	if err := svc.Validate(); err != nil {
		fmt.Fprintf(out, "Warning: %v\nRun 'semsearch settings wizard' to fix configuration issues.\n", err)
		return nil
	}
	fmt.Fprintln(out, "Configuration is valid.")
	return nil
}

func setSetting(cmd *cobra.Command, args []string, svc driving.SettingsService) error {
	key := args[0]
	secret := isSecretKey(key)

	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case secret:
		cmd.Printf("Enter value for %s: ", key)
		value = readPassword(cmd.InOrStdin())
		cmd.Println()
	default:
		return fmt.Errorf("missing value for %s", key)
	}

	s, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := applySetting(s, key, value); err != nil {
		return err
	}
	if err := svc.Save(s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	if secret {
		value = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, ".api_key")
}
