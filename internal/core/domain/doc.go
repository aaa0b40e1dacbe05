// Package domain holds the types every layer shares: Document (the text of
// one file or PDF page), Chunk (a bounded, overlapping slice of a Document),
// SearchResult, Answer and the application settings.
//
// It imports only the standard library.
package domain
