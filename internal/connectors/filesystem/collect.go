package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

// Collect expands paths into source files. A file is named by its base
// name; a directory is scanned and its files are named relative to it.
// Unsupported files inside directories are skipped, while explicit file
// arguments are always returned so the caller can report them.
func Collect(ctx context.Context, paths ...string) ([]domain.SourceFile, error) {
	var files []domain.SourceFile
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			files = append(files, domain.SourceFile{Path: abs, Source: filepath.Base(abs)})
			continue
		}

		found, err := New(abs).Scan(ctx)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}
