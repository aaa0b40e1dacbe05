package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FamilOrujov/semsearch/internal/core/ports/driving"
)

// writeFile creates a file in a fresh temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIngestCmd_RequiresPath(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("ingest")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestIngestCmd_IndexesFiles(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("ingest", writeFile(t, "a.txt", "alpha"), writeFile(t, "b.txt", "beta"))

	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 2 file(s), 4 chunk(s).")
	assert.Contains(t, out, "+ a.txt")
	assert.Equal(t, []string{"a.txt", "b.txt"}, ts.ingest.sources())
}

func TestIngestCmd_Directory(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.txt"), []byte("1"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "two.txt"), []byte("2"), 0o600))

	_, err := execute("ingest", dir)

	require.NoError(t, err)
	assert.Equal(t, []string{"one.txt", "sub/two.txt"}, ts.ingest.sources())
}

func TestIngestCmd_SecondRunSkipsProcessed(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	path := writeFile(t, "a.txt", "alpha")
	_, err := execute("ingest", path)
	require.NoError(t, err)

	out, err := execute("ingest", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 0 file(s), 0 chunk(s).")
	assert.Contains(t, out, "Already processed:")
}

func TestIngestCmd_AllFailed(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("ingest", writeFile(t, "broken.bad", "x"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files were indexed")
	assert.Contains(t, out, "! broken.bad: corrupt")
}

func TestIngestCmd_MissingPath(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("ingest", filepath.Join(t.TempDir(), "nope.pdf"))

	require.Error(t, err)
}

func TestIngestCmd_EmptyDirectory(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("ingest", t.TempDir())

	require.NoError(t, err)
	assert.Contains(t, out, "No supported files found.")
}

func TestIngestCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ingest.err = errors.New("embedding backend down")

	_, err := execute("ingest", writeFile(t, "a.txt", "alpha"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding backend down")
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, &driving.IngestReport{
		Files:            []string{"a.pdf"},
		Chunks:           5,
		AlreadyProcessed: []string{"b.txt"},
		Unsupported:      []string{"c.csv"},
		Failed:           []driving.FileFailure{{Source: "d.docx", Err: errors.New("bad zip")}},
	})

	out := buf.String()
	assert.Contains(t, out, "Indexed 1 file(s), 5 chunk(s).")
	assert.Contains(t, out, "= b.txt")
	assert.Contains(t, out, "- c.csv")
	assert.Contains(t, out, "! d.docx: bad zip")
}
