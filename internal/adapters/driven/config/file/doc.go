// Package file provides filesystem-backed driven adapters.
//
// Adapters:
//   - ConfigStore: TOML settings with VOCAL_* environment overrides
//   - PromptStore: editable LLM prompt templates
//   - VocabularyStore: YAML keyword tables for the intent classifier
package file
