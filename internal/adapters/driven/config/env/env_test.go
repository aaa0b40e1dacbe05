package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

func TestParse_Empty(t *testing.T) {
	o, err := Parse(map[string]string{"UNRELATED": "x"})
	require.NoError(t, err)

	settings := domain.DefaultAppSettings()
	o.Apply(&settings)

	assert.Equal(t, domain.DefaultAppSettings(), settings)
}

func TestParse_AppliesOverrides(t *testing.T) {
	o, err := Parse(map[string]string{
		"SEMSEARCH_EMBEDDING_PROVIDER":            "openai",
		"SEMSEARCH_EMBEDDING_MODEL":               "text-embedding-3-small",
		"SEMSEARCH_EMBEDDING_REQUESTS_PER_SECOND": "2.5",
		"SEMSEARCH_LLM_MODEL":                     "llama3.2",
		"SEMSEARCH_CHUNK_PROFILE":                 "coarse",
		"SEMSEARCH_TOP_K":                         "7",
		"SEMSEARCH_INDEX_BACKEND":                 "memory",
		"SEMSEARCH_INDEX_DIR":                     "/tmp/idx",
		"SEMSEARCH_CONNECT_ATTEMPTS":              "5",
		"SEMSEARCH_CONNECT_DELAY":                 "250ms",
	})
	require.NoError(t, err)

	settings := domain.DefaultAppSettings()
	o.Apply(&settings)

	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Equal(t, 2.5, settings.Embedding.RequestsPerSecond)
	assert.Equal(t, "llama3.2", settings.LLM.Model)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider, "unset stays")
	assert.Equal(t, domain.ChunkProfileCoarse, settings.Chunking.Profile)
	assert.Equal(t, 7, settings.Retrieval.TopK)
	assert.Equal(t, domain.IndexBackendMemory, settings.Index.Backend)
	assert.Equal(t, "/tmp/idx", settings.Index.Dir)
	assert.Equal(t, uint(5), settings.Backend.ConnectAttempts)
	assert.Equal(t, 250*time.Millisecond, settings.Backend.ConnectDelay)
}

func TestApply_OpenAIKeyFillsEmptyKeys(t *testing.T) {
	o, err := Parse(map[string]string{
		"SEMSEARCH_OPENAI_API_KEY": "sk-shared",
		"SEMSEARCH_LLM_API_KEY":    "sk-llm",
	})
	require.NoError(t, err)

	settings := domain.DefaultAppSettings()
	o.Apply(&settings)

	assert.Equal(t, "sk-shared", settings.Embedding.APIKey)
	assert.Equal(t, "sk-llm", settings.LLM.APIKey)
}

func TestParse_InvalidValue(t *testing.T) {
	_, err := Parse(map[string]string{"SEMSEARCH_TOP_K": "many"})
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SEMSEARCH_TEST_DOTENV=from-file\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("SEMSEARCH_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))

	assert.Equal(t, "from-file", os.Getenv("SEMSEARCH_TEST_DOTENV"))
}

func TestLoadDotEnv_KeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SEMSEARCH_TEST_KEEP=file\n"), 0600))
	t.Setenv("SEMSEARCH_TEST_KEEP", "process")

	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "process", os.Getenv("SEMSEARCH_TEST_KEEP"))
}

func TestEnvironMap(t *testing.T) {
	m := environMap([]string{"A=1", "B=x=y", "broken"})
	assert.Equal(t, map[string]string{"A": "1", "B": "x=y"}, m)
}
