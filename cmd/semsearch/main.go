// Command semsearch answers questions about local documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/FamilOrujov/semsearch/internal/adapters/driven/ai"
	"github.com/FamilOrujov/semsearch/internal/adapters/driven/config/env"
	"github.com/FamilOrujov/semsearch/internal/adapters/driven/config/file"
	"github.com/FamilOrujov/semsearch/internal/adapters/driving/cli"
	"github.com/FamilOrujov/semsearch/internal/core/services"
	"github.com/FamilOrujov/semsearch/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if err := env.LoadDotEnv(); err != nil {
		logger.Warn("%v", err)
	}

	configStore, err := file.NewConfigStore(os.Getenv(configDirEnv))
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settings := services.NewSettingsService(configStore, ai.NewConfigValidator())

	overrides, err := env.Load()
	if err != nil {
		return err
	}

	w := &wiring{
		settings:  settings,
		overrides: overrides,
		promptDir: os.Getenv(promptDirEnv),
	}

	cli.SetSettingsService(settings)
	cli.SetBootstrap(w.bootstrap)
	return cli.Execute(ctx, version)
}
