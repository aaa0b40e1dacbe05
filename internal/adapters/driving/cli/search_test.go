package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("search")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "4", flag.DefValue)
}

func TestSearchCmd_Table(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("search", "revenue")

	require.NoError(t, err)
	assert.Equal(t, "revenue", ts.index.lastQuery)
	assert.Equal(t, domain.DefaultTopK, ts.index.lastK)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1] report.pdf p.3 (0.91)")
	assert.Contains(t, out, "Revenue grew by 12% in Q3.")
}

func TestSearchCmd_Limit(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("search", "-n", "1", "revenue")

	require.NoError(t, err)
	assert.Equal(t, 1, ts.index.lastK)
	assert.NotContains(t, out, "[2]")
}

func TestSearchCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("search", "--json", "revenue")
	require.NoError(t, err)

	var hits []searchHit
	require.NoError(t, json.Unmarshal([]byte(out), &hits))
	require.Len(t, hits, 3)
	assert.Equal(t, "report.pdf", hits[0].Source)
	assert.Equal(t, 3, hits[0].Page)
	assert.InDelta(t, 0.91, hits[0].Score, 1e-9)
}

func TestSearchCmd_NoResults(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.results = nil

	out, err := execute("search", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.index.err = errors.New("dimension mismatch")

	_, err := execute("search", "q")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n  b\tc", 10))
	assert.Equal(t, "abc...", snippet("abcdef", 3))
	assert.Equal(t, strings.Repeat("é", 2)+"...", snippet("éééé", 2))
}

func TestSearchCmd_MinScore(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("search", "--min-score", "0.7", "revenue")

	require.NoError(t, err)
	assert.Contains(t, out, "[2] notes.txt (0.72)")
	assert.NotContains(t, out, "[3]")
	assert.NotContains(t, out, "Costs were flat.")
}

func TestAboveScore_KeepsOrder(t *testing.T) {
	results := testResults()

	assert.Equal(t, results, aboveScore(results, 0))
	kept := aboveScore(results, 0.6)
	require.Len(t, kept, 2)
	assert.Equal(t, "c1", kept[0].Chunk.ID)
	assert.Equal(t, "c2", kept[1].Chunk.ID)
	assert.Empty(t, aboveScore(results, 0.99))
}
