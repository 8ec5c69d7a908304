package domain

import "time"

// IndexStatus describes the published corpus.
type IndexStatus struct {
	// Ready is set once a corpus has been published.
	Ready bool

	// Rebuilding is set while the single writer holds the index.
	Rebuilding bool

	Source   string
	Backend  IndexBackend
	Model    string
	Records  int
	Segments int

	// Skipped counts rows dropped as too short or unparseable.
	Skipped int

	// Reused is set when a persisted index was kept instead of rebuilt.
	Reused bool

	BuiltAt  time.Time
	Duration time.Duration
}

// RebuildOptions controls a corpus rebuild.
type RebuildOptions struct {
	// Source overrides the configured corpus locator.
	Source string

	// Force discards a persisted index.
	Force bool
}

// IndexManifest records what a persisted index was built from.
// A rebuild reuses the index only when source and model still match.
type IndexManifest struct {
	Source     string
	Model      string
	Dimensions int
	Records    int
	BuiltAt    time.Time
}

// Matches reports whether the manifest was built from source with model.
func (m *IndexManifest) Matches(source, model string) bool {
	return m != nil && m.Source == source && m.Model == model
}
