package postprocessors

import (
	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
	"github.com/custodia-labs/vocal/internal/postprocessors/chunker"
	"github.com/custodia-labs/vocal/internal/postprocessors/markup"
	"github.com/custodia-labs/vocal/internal/postprocessors/minlength"
)

// Processor names.
const (
	MarkupName    = "markup"
	MinLengthName = "minlength"
	ChunkerName   = "chunker"
)

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(MarkupName, func(map[string]any) (driven.PostProcessor, error) { return markup.New(), nil })
	r.Register(MinLengthName, buildMinLength)
	r.Register(ChunkerName, buildChunker)
}

// NewDefaultPipeline builds the indexing pipeline from chunking settings:
// markup cleanup, the length gate, then the chunker.
func NewDefaultPipeline(settings domain.ChunkingSettings) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.BuildPipeline(
		[]string{MarkupName, MinLengthName, ChunkerName},
		map[string]map[string]any{
			ChunkerName: {
				"threshold":  settings.Threshold,
				"chunk_size": settings.Size,
				"overlap":    settings.Overlap,
			},
		},
	)
}

// buildMinLength creates the length gate from generic config.
// Supported config keys:
//   - min_length (int): Minimum trimmed body length in runes (default: 10)
func buildMinLength(cfg map[string]any) (driven.PostProcessor, error) {
	if n := getIntFromConfig(cfg, "min_length"); n > 0 {
		return minlength.New(n), nil
	}
	return minlength.New(minlength.DefaultMinLength), nil
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - threshold (int): Bodies shorter than this stay whole (default: 4000)
//   - chunk_size (int): Runes per segment (default: 3000)
//   - overlap (int): Overlapping runes between segments (default: 600)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if n := getIntFromConfig(cfg, "threshold"); n > 0 {
			opts = append(opts, chunker.WithThreshold(n))
		}
		if size := getIntFromConfig(cfg, "chunk_size"); size > 0 {
			opts = append(opts, chunker.WithChunkSize(size))
		}
		if _, ok := cfg["overlap"]; ok {
			opts = append(opts, chunker.WithOverlap(getIntFromConfig(cfg, "overlap")))
		}
	}

	return chunker.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
