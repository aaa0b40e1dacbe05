// Package sqlite stores chunks and their embeddings in a single SQLite file,
// <index_dir>/index.db, through the pure Go modernc.org/sqlite driver.
//
// Search loads every vector and ranks by cosine similarity; no ANN index is
// built. The embedding model and dimension are kept in index_meta so that an
// index written with one model is not queried with another.
//
// Schema changes live in migrations/NNN_name.up.sql and are applied in
// order on open. The database runs in WAL mode with a busy timeout.
package sqlite
