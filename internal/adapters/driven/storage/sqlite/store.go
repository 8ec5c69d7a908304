package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/vocal/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/vocal/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.VectorIndex   = (*Store)(nil)
	_ driven.ManifestStore = (*Store)(nil)
)

// dbFile is the database file name inside the data directory.
const dbFile = "index.db"

// entryColumns lists the entries columns in scan order.
const entryColumns = `segment_id, record_id, content, chunk_index, chunk_total, start_offset, embedding,
	score, category, market, region, country, ts, sentiment_label, sentiment_score,
	topic, topic_confidence, token_count`

// Store is a persistent embedding index in a single SQLite file.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.vocal/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".vocal", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	// WAL lets searches read while the indexer writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_index.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Vector Index ====================

// Upsert inserts or replaces entries keyed by segment ID in one transaction.
func (s *Store) Upsert(ctx context.Context, entries []domain.IndexedEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(segment_id) DO UPDATE SET
			record_id = excluded.record_id,
			content = excluded.content,
			chunk_index = excluded.chunk_index,
			chunk_total = excluded.chunk_total,
			start_offset = excluded.start_offset,
			embedding = excluded.embedding,
			score = excluded.score,
			category = excluded.category,
			market = excluded.market,
			region = excluded.region,
			country = excluded.country,
			ts = excluded.ts,
			sentiment_label = excluded.sentiment_label,
			sentiment_score = excluded.sentiment_score,
			topic = excluded.topic,
			topic_confidence = excluded.topic_confidence,
			token_count = excluded.token_count
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if e.Segment.ID == "" {
			return fmt.Errorf("%w: entry without segment id", domain.ErrInvalidInput)
		}
		m := e.Metadata
		_, err := stmt.ExecContext(ctx,
			e.Segment.ID, e.Segment.RecordID, e.Segment.Content,
			e.Segment.Index, e.Segment.Total, e.Segment.Start,
			float32SliceToBytes(e.Embedding),
			m.Score, string(m.Category), m.Market, m.Region, m.Country, m.Timestamp,
			string(m.SentimentLabel), m.SentimentScore, m.Topic, m.TopicConfidence, m.TokenCount,
		)
		if err != nil {
			return fmt.Errorf("upserting segment %s: %w", e.Segment.ID, err)
		}
	}

	return tx.Commit()
}

// Search evaluates filters in SQL and ranks the remaining rows by cosine distance.
func (s *Store) Search(ctx context.Context, query []float32, k int, filters domain.FilterSet) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	where, args := filterClause(filters)
	rows, err := s.db.QueryContext(ctx, "SELECT "+entryColumns+" FROM entries"+where+" ORDER BY seq", args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		hits = append(hits, driven.VectorHit{
			Entry:    e,
			Distance: vecmath.CosineDistance(query, e.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Entry.Segment.ID < hits[j].Entry.Segment.ID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Scan calls fn for every entry in insertion order.
func (s *Store) Scan(ctx context.Context, fn func(domain.IndexedEntry) error) error {
	rows, err := s.db.QueryContext(ctx, "SELECT "+entryColumns+" FROM entries ORDER BY seq")
	if err != nil {
		return fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// Reset removes every entry and the manifest.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("deleting entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM manifest"); err != nil {
		return fmt.Errorf("deleting manifest: %w", err)
	}
	return tx.Commit()
}

// ==================== Manifest ====================

// LoadManifest returns the stored manifest or domain.ErrNotFound.
func (s *Store) LoadManifest(ctx context.Context) (*domain.IndexManifest, error) {
	var m domain.IndexManifest
	var builtAt int64
	err := s.db.QueryRowContext(ctx,
		"SELECT source, model, dimensions, records, built_at FROM manifest WHERE id = 1",
	).Scan(&m.Source, &m.Model, &m.Dimensions, &m.Records, &builtAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}
	m.BuiltAt = time.Unix(builtAt, 0).UTC()
	return &m, nil
}

// SaveManifest replaces the stored manifest.
func (s *Store) SaveManifest(ctx context.Context, m domain.IndexManifest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO manifest (id, source, model, dimensions, records, built_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			model = excluded.model,
			dimensions = excluded.dimensions,
			records = excluded.records,
			built_at = excluded.built_at
	`, m.Source, m.Model, m.Dimensions, m.Records, m.BuiltAt.Unix())
	if err != nil {
		return fmt.Errorf("saving manifest: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// filterClause renders the filter conjunction as a WHERE clause.
func filterClause(f domain.FilterSet) (string, []any) {
	var conds []string
	var args []any

	eq := func(column, value string) {
		if value != "" {
			conds = append(conds, column+" = ? COLLATE NOCASE")
			args = append(args, value)
		}
	}
	eq("market", f.Market)
	eq("region", f.Region)
	eq("country", f.Country)
	eq("topic", f.Topic)

	if f.Sentiment != "" {
		conds = append(conds, "sentiment_label = ?")
		args = append(args, string(f.Sentiment))
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, string(f.Category))
	}
	if from, ok := f.FromUnix(); ok {
		conds = append(conds, "ts >= ?")
		args = append(args, from)
	}
	if to, ok := f.ToUnix(); ok {
		conds = append(conds, "ts <= ?")
		args = append(args, to)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (domain.IndexedEntry, error) {
	var e domain.IndexedEntry
	var blob []byte
	var category, sentiment string

	err := row.Scan(
		&e.Segment.ID, &e.Segment.RecordID, &e.Segment.Content,
		&e.Segment.Index, &e.Segment.Total, &e.Segment.Start, &blob,
		&e.Metadata.Score, &category, &e.Metadata.Market, &e.Metadata.Region, &e.Metadata.Country,
		&e.Metadata.Timestamp, &sentiment, &e.Metadata.SentimentScore,
		&e.Metadata.Topic, &e.Metadata.TopicConfidence, &e.Metadata.TokenCount,
	)
	if err != nil {
		return e, fmt.Errorf("scanning entry: %w", err)
	}

	e.Embedding = bytesToFloat32Slice(blob)
	e.Metadata.RecordID = e.Segment.RecordID
	e.Metadata.Category = domain.ScoreCategory(category)
	e.Metadata.SentimentLabel = domain.SentimentLabel(sentiment)
	e.Metadata.ChunkIndex = e.Segment.Index
	e.Metadata.ChunkTotal = e.Segment.Total
	return e, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
