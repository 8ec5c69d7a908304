// Package domain defines the core business entities for vocal.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - FeedbackRecord: An enriched customer response
//   - Segment: A chunk of a record body, the unit that gets embedded
//   - IndexedEntry: A segment with its vector and flattened metadata
//   - Snapshot: Immutable aggregate statistics over the corpus
//   - FilterSet: Conjunctive metadata predicates for retrieval
//   - Response: The structured answer to one conversational turn
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
