package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNew(t *testing.T) {
	t.Run("implements Connector interface", func(t *testing.T) {
		var _ driven.Connector = New("/tmp")
	})

	t.Run("returns filesystem type", func(t *testing.T) {
		c := New("/tmp")
		assert.Equal(t, "filesystem", c.Type())
		assert.Equal(t, "/tmp", c.Root())
		assert.Equal(t, DefaultDebounce, c.debounce)
	})

	t.Run("ignores non-positive debounce", func(t *testing.T) {
		c := New("/tmp", WithDebounce(0))
		assert.Equal(t, DefaultDebounce, c.debounce)
	})
}

func TestConnector_Scan(t *testing.T) {
	t.Run("finds supported files recursively", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "b.txt"), "b")
		writeFile(t, filepath.Join(root, "docs", "a.pdf"), "%PDF")
		writeFile(t, filepath.Join(root, "docs", "notes.docx"), "zip")
		writeFile(t, filepath.Join(root, "image.png"), "png")
		writeFile(t, filepath.Join(root, ".hidden.txt"), "secret")
		writeFile(t, filepath.Join(root, ".git", "HEAD.txt"), "ref")

		files, err := New(root).Scan(context.Background())

		require.NoError(t, err)
		var sources []string
		for _, f := range files {
			sources = append(sources, f.Source)
			assert.True(t, strings.HasPrefix(f.Path, root))
		}
		assert.Equal(t, []string{"b.txt", "docs/a.pdf", "docs/notes.docx"}, sources)
	})

	t.Run("empty directory", func(t *testing.T) {
		files, err := New(t.TempDir()).Scan(context.Background())
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("custom filter", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "a.txt"), "a")
		writeFile(t, filepath.Join(root, "b.pdf"), "b")

		files, err := New(root, WithFilter(func(name string) bool {
			return domain.FormatFromName(name) == domain.FormatText
		})).Scan(context.Background())

		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "a.txt", files[0].Source)
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "nope")).Scan(context.Background())
		assert.Error(t, err)
	})

	t.Run("root is a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.txt")
		writeFile(t, path, "a")

		_, err := New(path).Scan(context.Background())
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("cancelled context", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "a.txt"), "a")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New(root).Scan(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestConnector_Watch(t *testing.T) {
	t.Run("emits debounced batch for new files", func(t *testing.T) {
		root := t.TempDir()
		c := New(root, WithDebounce(50*time.Millisecond))
		defer c.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		batches, _, err := c.Watch(ctx)
		require.NoError(t, err)

		writeFile(t, filepath.Join(root, "new.txt"), "hello")
		writeFile(t, filepath.Join(root, "skip.png"), "png")

		select {
		case batch := <-batches:
			require.Len(t, batch, 1)
			assert.Equal(t, "new.txt", batch[0].Source)
		case <-ctx.Done():
			t.Fatal("timed out waiting for batch")
		}
	})

	t.Run("closes channels on cancel", func(t *testing.T) {
		c := New(t.TempDir())
		ctx, cancel := context.WithCancel(context.Background())

		batches, errs, err := c.Watch(ctx)
		require.NoError(t, err)
		cancel()

		for range batches {
		}
		for range errs {
		}
	})

	t.Run("missing root", func(t *testing.T) {
		_, _, err := New(filepath.Join(t.TempDir(), "nope")).Watch(context.Background())
		assert.Error(t, err)
	})
}

func TestHandleFsEvent(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		dir        bool
		operation  fsnotify.Op
		wantSource string
	}{
		{name: "create file", file: "a.txt", operation: fsnotify.Create, wantSource: "a.txt"},
		{name: "write file", file: "a.txt", operation: fsnotify.Write, wantSource: "a.txt"},
		{name: "write and chmod", file: "a.txt", operation: fsnotify.Write | fsnotify.Chmod, wantSource: "a.txt"},
		{name: "nested file", file: "sub/a.pdf", operation: fsnotify.Create, wantSource: "sub/a.pdf"},
		{name: "chmod only", file: "a.txt", operation: fsnotify.Chmod},
		{name: "remove", file: "gone.txt", operation: fsnotify.Remove},
		{name: "rename", file: "gone.txt", operation: fsnotify.Rename},
		{name: "hidden file", file: ".a.txt", operation: fsnotify.Create},
		{name: "unsupported", file: "a.png", operation: fsnotify.Create},
		{name: "directory", file: "newdir", dir: true, operation: fsnotify.Create},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			path := filepath.Join(root, filepath.FromSlash(tt.file))
			switch {
			case tt.dir:
				require.NoError(t, os.Mkdir(path, 0o755))
			case tt.operation != fsnotify.Remove && tt.operation != fsnotify.Rename:
				writeFile(t, path, "content")
			}

			f, ok := New(root).handleFsEvent(nil, fsnotify.Event{Name: path, Op: tt.operation})

			if tt.wantSource == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantSource, f.Source)
			assert.Equal(t, path, f.Path)
		})
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{"path/.hidden/file.txt", true},
		{".config/.cache/data", true},
		{"file.txt", false},
		{"path/to/file.txt", false},
		{".", false},
		{"..", false},
		{"path/../file", false},
		{"file.hidden", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHidden(tt.path))
		})
	}
}

func TestCollect(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	require.NoError(t, os.MkdirAll(filepath.Join(docs, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "a.txt"), []byte("a"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "sub", "b.txt"), []byte("b"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "skip.png"), []byte("x"), 0600))
	single := filepath.Join(root, "photo.png")
	require.NoError(t, os.WriteFile(single, []byte("x"), 0600))

	files, err := Collect(context.Background(), docs, single)

	require.NoError(t, err)
	var sources []string
	for _, f := range files {
		sources = append(sources, f.Source)
		assert.True(t, filepath.IsAbs(f.Path))
	}
	assert.Equal(t, []string{"a.txt", "sub/b.txt", "photo.png"}, sources)
}

func TestCollect_MissingPath(t *testing.T) {
	_, err := Collect(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.True(t, os.IsNotExist(err))
}
