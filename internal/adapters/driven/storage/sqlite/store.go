package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/FamilOrujov/semsearch/internal/adapters/driven/storage/similarity"
	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
	"github.com/FamilOrujov/semsearch/internal/logger"
)

// DBFile is the database file name inside the index directory.
const DBFile = "index.db"

const (
	metaModel      = "model"
	metaDimensions = "dimensions"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is a SQLite-backed driven.VectorStore.
type VectorStore struct {
	db    *sql.DB
	path  string
	model string
}

// NewVectorStore opens (or creates) the index at dir/index.db.
// If dir is empty, defaults to ~/.semsearch/index.
// model is recorded as the embedding model on first write.
func NewVectorStore(dir, model string) (*VectorStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".semsearch", "index")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dir, DBFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &VectorStore{
		db:    db,
		path:  dbPath,
		model: model,
	}

	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *VectorStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *VectorStore) Path() string {
	return s.path
}

// Add persists chunks in a single transaction.
func (s *VectorStore) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	for i := range chunks {
		if chunks[i].ID == "" || len(chunks[i].Embedding) == 0 {
			return fmt.Errorf("chunk %d: id and embedding required: %w", i, domain.ErrInvalidInput)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, content, position, start_offset, source, page, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		c := &chunks[i]
		metadata, err := encodeMetadata(c.Metadata)
		if err != nil {
			return fmt.Errorf("encoding metadata for chunk %s: %w", c.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			c.ID, c.DocumentID, c.Content, c.Position, c.StartOffset, c.Source, c.Page,
			float32SliceToBytes(c.Embedding), metadata,
		)
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	// First write wins; later writes keep the recorded values.
	for key, value := range map[string]string{
		metaModel:      s.model,
		metaDimensions: strconv.Itoa(len(chunks[0].Embedding)),
	} {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO index_meta (key, value) VALUES (?, ?)", key, value,
		); err != nil {
			return fmt.Errorf("recording index meta: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

// Search scans every stored vector and returns the k nearest, nearest first.
func (s *VectorStore) Search(ctx context.Context, vector []float32, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		return []domain.SearchResult{}, nil
	}

	rows, err := s.db.QueryContext(ctx, "SELECT seq, embedding FROM chunks ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("scanning embeddings: %w", err)
	}

	ranker := similarity.NewRanker(vector, k)
	for rows.Next() {
		var seq int64
		var blob []byte
		if err := rows.Scan(&seq, &blob); err != nil {
			rows.Close()
			return nil, fmt.Errorf("reading embedding: %w", err)
		}
		ranker.Offer(int(seq), bytesToFloat32Slice(blob))
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("scanning embeddings: %w", err)
	}
	rows.Close()

	if n := ranker.Skipped(); n > 0 {
		logger.Warn("sqlite: skipped %d records with dimensions other than %d", n, len(vector))
	}

	top := ranker.Top()
	results := make([]domain.SearchResult, 0, len(top))
	for _, hit := range top {
		chunk, err := s.getChunk(ctx, int64(hit.Index))
		if err != nil {
			return nil, err
		}
		results = append(results, domain.SearchResult{Chunk: *chunk, Score: hit.Score})
	}
	return results, nil
}

// getChunk loads a full chunk row.
func (s *VectorStore) getChunk(ctx context.Context, seq int64) (*domain.Chunk, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, content, position, start_offset, source, page, embedding, metadata
		FROM chunks WHERE seq = ?
	`, seq)
	return scanChunk(row)
}

// Reset deletes every record in one transaction. On failure nothing changes.
func (s *VectorStore) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM index_meta"); err != nil {
		return fmt.Errorf("deleting index meta: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reset: %w", err)
	}
	return nil
}

// Count returns the number of stored records.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Meta returns the recorded model and dimensionality. An empty index
// reports the model it was opened with.
func (s *VectorStore) Meta(ctx context.Context) (driven.IndexMeta, error) {
	meta := driven.IndexMeta{Model: s.model}

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM index_meta")
	if err != nil {
		return meta, fmt.Errorf("reading index meta: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return meta, fmt.Errorf("reading index meta: %w", err)
		}
		switch key {
		case metaModel:
			meta.Model = value
		case metaDimensions:
			meta.Dimensions, _ = strconv.Atoi(value)
		}
	}
	return meta, rows.Err()
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

func encodeMetadata(m map[string]any) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// scanChunk scans a single chunk row.
func scanChunk(row *sql.Row) (*domain.Chunk, error) {
	var c domain.Chunk
	var blob []byte
	var metadata sql.NullString

	err := row.Scan(&c.ID, &c.DocumentID, &c.Content, &c.Position, &c.StartOffset,
		&c.Source, &c.Page, &blob, &metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	c.Embedding = bytesToFloat32Slice(blob)
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &c.Metadata); err != nil {
			return nil, fmt.Errorf("decoding chunk metadata: %w", err)
		}
	}
	return &c, nil
}
