package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
)

func TestAskCmd_StreamsAnswerAndSources(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("ask", "how", "did", "revenue", "change?")

	require.NoError(t, err)
	assert.Equal(t, "how did revenue change?", ts.answer.question)
	assert.Contains(t, out, "Revenue grew 12%.\n")
	assert.Contains(t, out, "Sources:\n  - report.pdf p.3\n  - notes.txt\n")
}

func TestAskCmd_NoSourcesFlag(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute("ask", "--no-sources", "question")

	require.NoError(t, err)
	assert.NotContains(t, out, "Sources:")
}

func TestAskCmd_EmptyIndex(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.answer.results = nil

	out, err := execute("ask", "anything")

	require.NoError(t, err)
	assert.Contains(t, out, domain.NoDocumentsResponse)
	assert.NotContains(t, out, "Sources:")
}

func TestAskCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.answer.err = errors.New("model not found")

	_, err := execute("ask", "question")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("ask")

	assert.Error(t, err)
}

func TestIsTerminal_Buffer(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))
}
