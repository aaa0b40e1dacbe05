// Package cli provides the semsearch command line interface.
// It implements a driving adapter following hexagonal architecture principles.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
	"github.com/FamilOrujov/semsearch/internal/logger"
)

// version is set by Execute from the build.
var version = "dev"

// Options carries the global flags and a command's backend needs to the
// bootstrap hook.
type Options struct {
	// IndexDir overrides the configured index directory.
	IndexDir string

	// Ephemeral keeps the index in memory for this run.
	Ephemeral bool

	// TopK overrides the configured number of retrieved chunks when positive.
	TopK int

	// Profile overrides the configured chunk profile when set.
	Profile string

	// Ping checks that the embedding and LLM backends answer before returning.
	Ping bool

	// NeedLLM includes the LLM backend in the ping.
	NeedLLM bool

	// Guard wraps the AI services in the circuit breaker and rate limiter.
	Guard bool
}

// Services holds the wired core services.
type Services struct {
	Ingest       driving.IngestService
	Index        driving.IndexService
	VectorIndex  driving.VectorIndex
	Answer       driving.AnswerService
	Session      driving.ProcessedSet
	ResultAction driving.ResultActionService

	// Close releases the index. May be nil.
	Close func() error
}

// BootstrapFunc builds the core services for a command.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, error)

// Service instances, set via SetServices or built lazily by the bootstrap hook.
var (
	settingsService     driving.SettingsService
	ingestService       driving.IngestService
	indexService        driving.IndexService
	vectorIndex         driving.VectorIndex
	answerService       driving.AnswerService
	session             driving.ProcessedSet
	resultActionService driving.ResultActionService
	closeServices       func() error

	bootstrap BootstrapFunc
)

// Global flags.
var (
	flagIndexDir  string
	flagEphemeral bool
	flagTopK      int
	flagProfile   string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "semsearch",
	Short: "Ask questions about your documents",
	Long: `semsearch answers questions about your PDF, TXT and DOCX files.

Documents are split into chunks, embedded and stored in a local vector index.
Questions are answered by a language model that may only use the retrieved
chunks, and every answer lists the files it drew on.

By default semsearch talks to a local Ollama at http://localhost:11434.
Run 'semsearch settings wizard' to choose other models or OpenAI.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagIndexDir, "index-dir", "", "directory holding the vector index")
	pf.BoolVar(&flagEphemeral, "ephemeral", false, "keep the index in memory for this run only")
	pf.IntVar(&flagTopK, "top-k", 0, "number of chunks retrieved per question")
	pf.StringVar(&flagProfile, "profile", "", "chunk profile: fine or coarse")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "print debug logs to stderr")
}

// SetSettingsService sets the settings service used by the settings commands.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetBootstrap sets the hook that wires the core services on first use.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices installs already wired core services.
func SetServices(s *Services) {
	if s == nil {
		ingestService, indexService, vectorIndex = nil, nil, nil
		answerService, session, resultActionService = nil, nil, nil
		closeServices = nil
		return
	}
	ingestService = s.Ingest
	indexService = s.Index
	vectorIndex = s.VectorIndex
	answerService = s.Answer
	session = s.Session
	resultActionService = s.ResultAction
	closeServices = s.Close
}

// Execute runs the root command and releases the services afterwards.
func Execute(ctx context.Context, v string) error {
	version = v
	defer closeAll()
	return rootCmd.ExecuteContext(ctx)
}

func closeAll() {
	if closeServices == nil {
		return
	}
	if err := closeServices(); err != nil {
		logger.Warn("closing index: %v", err)
	}
	closeServices = nil
}

// ensureServices wires the core services unless they are already installed.
func ensureServices(cmd *cobra.Command, opts Options) error {
	if vectorIndex != nil {
		return nil
	}
	if bootstrap == nil {
		return errors.New("services not configured")
	}

	opts.IndexDir = flagIndexDir
	opts.Ephemeral = flagEphemeral
	opts.TopK = flagTopK
	opts.Profile = flagProfile

	svc, err := bootstrap(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("starting semsearch: %w", err)
	}
	SetServices(svc)
	return nil
}
