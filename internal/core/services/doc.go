// Package services implements the driving ports.
//
// Ingest: IngestService, ExtractorRegistry, PostProcessorPipeline,
// VectorIndexService. Questions: AnswerComposer, RetrieverService,
// VectorIndexService, LLMService.
package services
