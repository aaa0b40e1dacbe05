// Package driven lists what the core needs from the outside world.
//
// Ingestion needs an Extractor per format (picked by an ExtractorRegistry),
// PostProcessors to repair and chunk text, an EmbeddingService and a
// VectorStore. Answering additionally needs an LLMService. Settings come
// from a ConfigStore.
//
// PromptStore, TokenCounter and AIConfigValidator may be nil. Without them
// the built-in prompt is used, answers report zero tokens and settings are
// saved unchecked.
//
// This package imports domain and nothing else from internal/.
package driven
