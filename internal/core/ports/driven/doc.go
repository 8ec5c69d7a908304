// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CorpusLoader: Reads raw feedback rows from a CSV or XLSX source
//   - Enricher: Derives category, sentiment and topic labels
//   - PostProcessorPipeline: Splits record bodies into segments
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Stores entries and runs filtered similarity search
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ChartRenderer: Without it, visualization requests get a not-available message.
//   - LLMService: Without it, query rewriting is disabled.
//   - HistoryStore: Without it, turns carry no history.
//   - VocabularyStore: Without it, built-in keyword tables are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
