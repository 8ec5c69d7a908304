// Package loader reads raw feedback rows from CSV and XLSX files.
//
// Both loaders map a header row onto domain.RawRecord fields. Recognised
// headers (case-insensitive):
//
//   - score: NPS, Score, Rating
//   - body: Verbatim, Body, Text, Comment, Feedback
//   - market: Market
//   - date: Date, Timestamp, Created
//   - sentiment, sentiment_score, topic, topic_confidence (optional labels)
//
// A source must have a score and a body column.
package loader
