package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
)

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	Args:  cobra.NoArgs,
	RunE:  withSettings(runWizard),
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the provider and model used to embed chunks and questions.`,
	Args:  cobra.NoArgs,
	RunE: withSettings(func(cmd *cobra.Command, _ []string, svc driving.SettingsService) error {
		return newPrompter(cmd).embedding(svc)
	}),
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the provider and model used to answer questions.`,
	Args:  cobra.NoArgs,
	RunE: withSettings(func(cmd *cobra.Command, _ []string, svc driving.SettingsService) error {
		return newPrompter(cmd).llm(svc)
	}),
}

// prompter asks questions on the command's input and output.
type prompter struct {
	cmd *cobra.Command
	in  io.Reader
	r   *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	return &prompter{cmd: cmd, in: in, r: bufio.NewReader(in)}
}

func (p *prompter) heading(title string) {
	p.cmd.Println(title)
	p.cmd.Println(strings.Repeat("-", len(title)))
}

// ask prints question and returns the trimmed answer, or def when it is empty.
func (p *prompter) ask(question, def string) string {
	if def != "" {
		p.cmd.Printf("%s [%s]: ", question, def)
	} else {
		p.cmd.Printf("%s: ", question)
	}
	if answer := readLine(p.r); answer != "" {
		return answer
	}
	return def
}

// choose lists options numbered from one and returns the picked index.
func (p *prompter) choose(options []string) int {
	for i, o := range options {
		p.cmd.Printf("  %d. %s\n", i+1, o)
	}
	p.cmd.Print("\nEnter choice [1]: ")
	return parseChoice(readLine(p.r), len(options), 1) - 1
}

func (p *prompter) secret(question string) string {
	p.cmd.Printf("%s: ", question)
	defer p.cmd.Println()
	return readSecret(p.in, p.r)
}

// provider asks for a provider, a model and, when needed, an API key.
func (p *prompter) provider(title string, providers []domain.AIProvider, models map[domain.AIProvider]string) (domain.AIProvider, string, string, error) {
	p.cmd.Println(title)
	names := make([]string, len(providers))
	for i, pr := range providers {
		names[i] = pr.Description()
	}
	chosen := providers[p.choose(names)]
	model := p.ask("Enter model name", models[chosen])

	var apiKey string
	if chosen.RequiresAPIKey() {
		if apiKey = p.secret("Enter API key"); apiKey == "" {
			return "", "", "", errors.New("API key is required for this provider")
		}
	}
	return chosen, model, apiKey, nil
}

func (p *prompter) embedding(svc driving.SettingsService) error {
	provider, model, apiKey, err := p.provider("Select Embedding Provider",
		domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}
	if err := svc.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}
	if err := p.check(svc.ValidateEmbeddingConfig); err != nil {
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	p.cmd.Printf("Embedding provider configured: %s (%s)\n\n", provider.Description(), model)
	return nil
}

func (p *prompter) llm(svc driving.SettingsService) error {
	provider, model, apiKey, err := p.provider("Select LLM Provider",
		domain.AllLLMProviders(), domain.DefaultLLMModels())
	if err != nil {
		return err
	}
	if err := svc.SetLLMProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}
	if err := p.check(svc.ValidateLLMConfig); err != nil {
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	p.cmd.Printf("LLM provider configured: %s (%s)\n\n", provider.Description(), model)
	return nil
}

// check runs a provider ping and reports the outcome inline.
func (p *prompter) check(ping func() error) error {
	p.cmd.Print("Validating configuration... ")
	if err := ping(); err != nil {
		p.cmd.Printf("FAILED: %v\n", err)
		return err
	}
	p.cmd.Println("OK")
	return nil
}

func runWizard(cmd *cobra.Command, _ []string, svc driving.SettingsService) error {
	p := newPrompter(cmd)
	cmd.Print("semsearch Settings Wizard\n=========================\n\n")

	p.heading("Step 1: Configure Embedding Provider")
	if err := p.embedding(svc); err != nil {
		return err
	}

	p.heading("Step 2: Configure LLM Provider")
	if err := p.llm(svc); err != nil {
		return err
	}

	p.heading("Step 3: Select Chunk Profile")
	profiles := []domain.ChunkProfile{domain.ChunkProfileFine, domain.ChunkProfileCoarse}
	labels := make([]string, len(profiles))
	for i, pr := range profiles {
		size, overlap := pr.Sizes()
		labels[i] = fmt.Sprintf("%s (%d characters, %d overlap)", pr, size, overlap)
	}
	profile := profiles[p.choose(labels)]
	if err := svc.SetChunkProfile(profile); err != nil {
		return fmt.Errorf("failed to set chunk profile: %w", err)
	}
	cmd.Printf("Chunk profile set to: %s\n\n", profile)

	p.heading("Step 4: Chunks Per Question")
	answer := p.ask("Enter top k", strconv.Itoa(domain.DefaultTopK))
	topK, err := strconv.Atoi(answer)
	if err != nil || topK <= 0 {
		return fmt.Errorf("invalid top k: %s", answer)
	}
	if err := svc.SetTopK(topK); err != nil {
		return fmt.Errorf("failed to set top k: %w", err)
	}
	cmd.Printf("Top k set to: %d\n\n", topK)

	cmd.Print("Configuration Complete!\n=======================\n")
	if err := svc.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		return nil
	}
	cmd.Println("All settings are valid and saved.")
	return nil
}

//nolint:errcheck // a short read is treated as an empty answer
func readLine(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

// parseChoice returns the one-based choice, or def when input is out of range.
func parseChoice(input string, n, def int) int {
	v, err := strconv.Atoi(input)
	if err != nil || v < 1 || v > n {
		return def
	}
	return v
}

// readPassword reads a secret from in, without echo when in is a terminal.
func readPassword(in io.Reader) string {
	return readSecret(in, bufio.NewReader(in))
}

// readSecret reads without echo from a terminal and falls back to r.
func readSecret(in io.Reader, r *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if b, err := term.ReadPassword(int(f.Fd())); err == nil {
			return strings.TrimSpace(string(b))
		}
	}
	return readLine(r)
}
