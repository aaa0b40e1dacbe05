package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// createTestDOCX writes a minimal valid DOCX file and returns its path.
func createTestDOCX(t *testing.T, documentXML, coreXML string) string {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	// Add [Content_Types].xml (required for valid DOCX)
	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, _ = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))

	if documentXML != "" {
		doc, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, _ = doc.Write([]byte(documentXML))
	}

	if coreXML != "" {
		core, err := w.Create("docProps/core.xml")
		require.NoError(t, err)
		_, _ = core.Write([]byte(coreXML))
	}

	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "test.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func body(paragraphs string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<w:document ` + wordNS + `><w:body>` + paragraphs + `</w:body></w:document>`
}

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.Equal(t, []domain.Format{domain.FormatDOCX}, extractor.Formats())
}

func TestExtract_Success(t *testing.T) {
	coreXML := `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
xmlns:dc="http://purl.org/dc/elements/1.1/">
<dc:title>Test Document</dc:title>
</cp:coreProperties>`
	path := createTestDOCX(t, body(`<w:p><w:r><w:t>Hello World</w:t></w:r></w:p>`), coreXML)

	docs, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, domain.FormatDOCX, doc.Format)
	assert.Equal(t, 0, doc.Page)
	assert.Equal(t, "Hello World", doc.Content)
	assert.Equal(t, "docx", doc.Metadata[domain.MetaFormat])
	assert.Equal(t, "Test Document", doc.Metadata["title"])
}

func TestExtract_MultipleParagraphs(t *testing.T) {
	path := createTestDOCX(t, body(
		`<w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Third paragraph</w:t></w:r></w:p>`), "")

	docs, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "First paragraph\nSecond paragraph\nThird paragraph", docs[0].Content)
	_, hasTitle := docs[0].Metadata["title"]
	assert.False(t, hasTitle)
}

func TestExtract_MultipleRuns(t *testing.T) {
	path := createTestDOCX(t, body(
		`<w:p><w:r><w:t>Hello </w:t></w:r><w:r><w:t>World</w:t></w:r></w:p>`), "")

	docs, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", docs[0].Content)
}

func TestExtract_Hyperlink(t *testing.T) {
	path := createTestDOCX(t, body(
		`<w:p><w:r><w:t>See </w:t></w:r><w:hyperlink><w:r><w:t>the docs</w:t></w:r></w:hyperlink></w:p>`), "")

	docs, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "See the docs", docs[0].Content)
}

func TestExtract_EmptyDocument(t *testing.T) {
	path := createTestDOCX(t, body(""), "")

	docs, err := New().Extract(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Empty(t, docs[0].Content)
}

func TestExtract_MissingDocumentPart(t *testing.T) {
	path := createTestDOCX(t, "", "")

	_, err := New().Extract(context.Background(), path)
	assert.ErrorIs(t, err, ErrNoDocumentPart)
}

func TestExtract_InvalidZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip file"), 0o600))

	_, err := New().Extract(context.Background(), path)
	assert.Error(t, err)
}

func TestExtract_InvalidXML(t *testing.T) {
	path := createTestDOCX(t, "<w:document><w:body><w:p>", "")

	_, err := New().Extract(context.Background(), path)
	assert.Error(t, err)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Extractor = (*Extractor)(nil)
}
