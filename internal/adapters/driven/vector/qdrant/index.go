// Package qdrant provides a driven.VectorIndex backed by a Qdrant collection.
//
// Record metadata is stored as point payload and metadata filters become
// Qdrant payload filters, so filtering happens inside the server before
// ranking. Keyword fields are stored upper-cased (market, region, country)
// or canonical (topic) because Qdrant keyword matches are exact.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// scrollPage is the number of points fetched per scroll request.
const scrollPage = 256

// Payload keys.
const (
	keyRecordID        = "record_id"
	keyContent         = "content"
	keyChunkIndex      = "chunk_index"
	keyChunkTotal      = "chunk_total"
	keyStart           = "start"
	keyScore           = "score"
	keyCategory        = "category"
	keyMarket          = "market"
	keyRegion          = "region"
	keyCountry         = "country"
	keyTimestamp       = "ts"
	keySentiment       = "sentiment_label"
	keySentimentScore  = "sentiment_score"
	keyTopic           = "topic"
	keyTopicConfidence = "topic_confidence"
	keyTokenCount      = "token_count"
)

// Index is a Qdrant-backed vector index. Scan returns entries without
// their embeddings.
type Index struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	dimensions  int
}

// New connects to addr (host:port of the gRPC endpoint) and ensures the
// collection exists with cosine distance and the given vector size.
func New(ctx context.Context, addr, collection string, dimensions int) (*Index, error) {
	if collection == "" || dimensions <= 0 {
		return nil, fmt.Errorf("%w: qdrant needs a collection and vector size", domain.ErrInvalidInput)
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}

	idx := &Index{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
		dimensions:  dimensions,
	}
	if err := idx.ensureCollection(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return idx, nil
}

func (i *Index) ensureCollection(ctx context.Context) error {
	resp, err := i.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{CollectionName: i.collection})
	if err != nil {
		return fmt.Errorf("%w: qdrant collection check: %v", domain.ErrVectorIndexUnavailable, err)
	}
	if resp.GetResult().GetExists() {
		return nil
	}
	return i.createCollection(ctx)
}

func (i *Index) createCollection(ctx context.Context) error {
	_, err := i.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: i.collection,
		VectorsConfig: &pb.VectorsConfig{Config: &pb.VectorsConfig_Params{
			Params: &pb.VectorParams{
				Size:     uint64(i.dimensions),
				Distance: pb.Distance_Cosine,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("qdrant create collection %s: %w", i.collection, err)
	}
	return nil
}

// Upsert inserts or replaces entries keyed by segment ID.
func (i *Index) Upsert(ctx context.Context, entries []domain.IndexedEntry) error {
	if len(entries) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(entries))
	for n, e := range entries {
		if e.Segment.ID == "" {
			return fmt.Errorf("%w: entry without segment id", domain.ErrInvalidInput)
		}
		points[n] = &pb.PointStruct{
			Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: e.Segment.ID}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: e.Embedding}}},
			Payload: toPayload(e),
		}
	}

	wait := true
	_, err := i.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: i.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

// Search returns up to k entries matching filters, closest first.
func (i *Index) Search(ctx context.Context, query []float32, k int, filters domain.FilterSet) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	resp, err := i.points.Search(ctx, &pb.SearchPoints{
		CollectionName: i.collection,
		Vector:         query,
		Limit:          uint64(k),
		Filter:         toFilter(filters),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	hits := make([]driven.VectorHit, len(resp.GetResult()))
	for n, pt := range resp.GetResult() {
		hits[n] = driven.VectorHit{
			Entry: fromPayload(pt.GetId().GetUuid(), pt.GetPayload()),
			// Qdrant reports cosine similarity.
			Distance: 1 - float64(pt.GetScore()),
		}
	}
	return hits, nil
}

// Scan pages through the collection and calls fn for every entry.
func (i *Index) Scan(ctx context.Context, fn func(domain.IndexedEntry) error) error {
	limit := uint32(scrollPage)
	var offset *pb.PointId

	for {
		resp, err := i.points.Scroll(ctx, &pb.ScrollPoints{
			CollectionName: i.collection,
			Offset:         offset,
			Limit:          &limit,
			WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
		})
		if err != nil {
			return fmt.Errorf("qdrant scroll: %w", err)
		}

		for _, pt := range resp.GetResult() {
			if err := fn(fromPayload(pt.GetId().GetUuid(), pt.GetPayload())); err != nil {
				return err
			}
		}

		offset = resp.GetNextPageOffset()
		if offset == nil {
			return nil
		}
	}
}

// Count returns the number of stored entries.
func (i *Index) Count(ctx context.Context) (int, error) {
	exact := true
	resp, err := i.points.Count(ctx, &pb.CountPoints{
		CollectionName: i.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant count: %w", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// Reset drops and recreates the collection.
func (i *Index) Reset(ctx context.Context) error {
	_, err := i.collections.Delete(ctx, &pb.DeleteCollection{CollectionName: i.collection})
	if err != nil {
		return fmt.Errorf("qdrant delete collection %s: %w", i.collection, err)
	}
	return i.createCollection(ctx)
}

// Close releases the gRPC connection.
func (i *Index) Close() error {
	if i.conn == nil {
		return errors.New("qdrant index not connected")
	}
	return i.conn.Close()
}

// ==================== Payload Mapping ====================

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func intValue(n int64) *pb.Value {
	return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: n}}
}

func doubleValue(f float64) *pb.Value {
	return &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: f}}
}

func toPayload(e domain.IndexedEntry) map[string]*pb.Value {
	m := e.Metadata
	return map[string]*pb.Value{
		keyRecordID:        stringValue(e.Segment.RecordID),
		keyContent:         stringValue(e.Segment.Content),
		keyChunkIndex:      intValue(int64(e.Segment.Index)),
		keyChunkTotal:      intValue(int64(e.Segment.Total)),
		keyStart:           intValue(int64(e.Segment.Start)),
		keyScore:           intValue(int64(m.Score)),
		keyCategory:        stringValue(string(m.Category)),
		keyMarket:          stringValue(strings.ToUpper(m.Market)),
		keyRegion:          stringValue(strings.ToUpper(m.Region)),
		keyCountry:         stringValue(strings.ToUpper(m.Country)),
		keyTimestamp:       intValue(m.Timestamp),
		keySentiment:       stringValue(string(m.SentimentLabel)),
		keySentimentScore:  doubleValue(m.SentimentScore),
		keyTopic:           stringValue(canonicalTopic(m.Topic)),
		keyTopicConfidence: doubleValue(m.TopicConfidence),
		keyTokenCount:      intValue(int64(m.TokenCount)),
	}
}

func fromPayload(id string, p map[string]*pb.Value) domain.IndexedEntry {
	str := func(k string) string { return p[k].GetStringValue() }
	num := func(k string) int64 { return p[k].GetIntegerValue() }
	dbl := func(k string) float64 { return p[k].GetDoubleValue() }

	seg := domain.Segment{
		ID:       id,
		RecordID: str(keyRecordID),
		Content:  str(keyContent),
		Index:    int(num(keyChunkIndex)),
		Total:    int(num(keyChunkTotal)),
		Start:    int(num(keyStart)),
	}
	return domain.IndexedEntry{
		Segment: seg,
		Metadata: domain.EntryMetadata{
			RecordID:        seg.RecordID,
			Score:           int(num(keyScore)),
			Category:        domain.ScoreCategory(str(keyCategory)),
			Market:          str(keyMarket),
			Region:          str(keyRegion),
			Country:         str(keyCountry),
			Timestamp:       num(keyTimestamp),
			SentimentLabel:  domain.SentimentLabel(str(keySentiment)),
			SentimentScore:  dbl(keySentimentScore),
			Topic:           str(keyTopic),
			TopicConfidence: dbl(keyTopicConfidence),
			TokenCount:      int(num(keyTokenCount)),
			ChunkIndex:      seg.Index,
			ChunkTotal:      seg.Total,
		},
	}
}

// toFilter renders the conjunction as Qdrant must-conditions.
// An empty filter set yields nil (no filtering).
func toFilter(f domain.FilterSet) *pb.Filter {
	var must []*pb.Condition

	keyword := func(key, value string) {
		if value == "" {
			return
		}
		must = append(must, &pb.Condition{ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key:   key,
				Match: &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: value}},
			},
		}})
	}
	keyword(keyMarket, strings.ToUpper(f.Market))
	keyword(keyRegion, strings.ToUpper(f.Region))
	keyword(keyCountry, strings.ToUpper(f.Country))
	keyword(keySentiment, string(f.Sentiment))
	keyword(keyCategory, string(f.Category))
	if f.Topic != "" {
		keyword(keyTopic, canonicalTopic(f.Topic))
	}

	from, hasFrom := f.FromUnix()
	to, hasTo := f.ToUnix()
	if hasFrom || hasTo {
		r := &pb.Range{}
		if hasFrom {
			v := float64(from)
			r.Gte = &v
		}
		if hasTo {
			v := float64(to)
			r.Lte = &v
		}
		must = append(must, &pb.Condition{ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{Key: keyTimestamp, Range: r},
		}})
	}

	if len(must) == 0 {
		return nil
	}
	return &pb.Filter{Must: must}
}

func canonicalTopic(topic string) string {
	if t, ok := domain.IsKnownTopic(topic); ok {
		return t
	}
	return topic
}
