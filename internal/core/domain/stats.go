package domain

// IndexStats summarises what has been ingested.
type IndexStats struct {
	// Files is the number of files processed in the current session.
	Files int

	// Chunks is the number of records in the vector index.
	Chunks int

	// Model is the embedding model recorded for the index, if any.
	Model string

	// Dimensions is the vector length recorded for the index, if any.
	Dimensions int
}

// IsEmpty returns true when the index holds no chunks.
func (s IndexStats) IsEmpty() bool {
	return s.Chunks == 0
}
