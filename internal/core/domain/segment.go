package domain

import "time"

// Segment is a contiguous slice of a record body.
type Segment struct {
	// ID uniquely identifies the segment.
	ID string

	// RecordID references the source record.
	RecordID string

	// Content is the segment text.
	Content string

	// Index is the zero-based position within the record.
	Index int

	// Total is the number of segments produced for the record.
	Total int

	// Start is the rune offset of Content within the record body.
	Start int
}

// EntryMetadata is the flattened record metadata duplicated onto every
// segment of a record. Only Index and Total differ between segments.
type EntryMetadata struct {
	RecordID        string
	Score           int
	Category        ScoreCategory
	Market          string
	Region          string
	Country         string
	Timestamp       int64
	SentimentLabel  SentimentLabel
	SentimentScore  float64
	Topic           string
	TopicConfidence float64
	TokenCount      int
	ChunkIndex      int
	ChunkTotal      int
}

// Time returns the record timestamp.
func (m EntryMetadata) Time() time.Time {
	return time.Unix(m.Timestamp, 0).UTC()
}

// IndexedEntry is a segment plus its embedding and metadata.
// Owned exclusively by the embedding index.
type IndexedEntry struct {
	Segment   Segment
	Embedding []float32
	Metadata  EntryMetadata
}

// NewIndexedEntry builds an entry for seg of rec.
func NewIndexedEntry(rec *FeedbackRecord, seg Segment, embedding []float32) IndexedEntry {
	meta := rec.Metadata()
	meta.ChunkIndex = seg.Index
	meta.ChunkTotal = seg.Total
	return IndexedEntry{
		Segment:   seg,
		Embedding: embedding,
		Metadata:  meta,
	}
}
