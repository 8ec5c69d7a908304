package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for vocal resources.
	uriScheme = "vocal://"
)

// SnapshotOutput is the JSON view of the corpus statistics.
type SnapshotOutput struct {
	Empty         bool           `json:"empty"`
	TotalRecords  int            `json:"total_records"`
	TotalSegments int            `json:"total_segments"`
	Markets       []string       `json:"markets"`
	Categories    map[string]int `json:"categories"`
	Sentiments    map[string]int `json:"sentiments"`
	Topics        map[string]int `json:"topics"`
	PerMarket     map[string]int `json:"per_market"`
	DateFrom      string         `json:"date_from,omitempty"`
	DateTo        string         `json:"date_to,omitempty"`
	ScoreMean     float64        `json:"score_mean"`
	ScoreMedian   float64        `json:"score_median"`
	BuiltAt       string         `json:"built_at"`
}

// ChartCatalogEntry describes one renderable chart kind.
type ChartCatalogEntry struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Statistics != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "snapshot",
			Name:        "snapshot",
			Description: "Statistics snapshot of the indexed feedback corpus",
			MIMEType:    "application/json",
		}, s.handleSnapshotResource)
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "charts",
		Name:        "charts",
		Description: "Catalog of chart kinds accepted by create_chart",
		MIMEType:    "application/json",
	}, s.handleChartsResource)
}

func (s *Server) handleSnapshotResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	snap, err := s.ports.Statistics.Snapshot()
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, snapshotOutput(snap))
}

func (s *Server) handleChartsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	catalog := domain.ChartCatalog()
	entries := make([]ChartCatalogEntry, len(catalog))
	for i, spec := range catalog {
		entries[i] = ChartCatalogEntry{
			Kind:        string(spec.Kind),
			Title:       spec.Title,
			Description: spec.Description,
		}
	}
	return jsonResource(req.Params.URI, entries)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func snapshotOutput(snap *domain.Snapshot) SnapshotOutput {
	out := SnapshotOutput{
		Empty:         snap.Empty,
		TotalRecords:  snap.TotalRecords,
		TotalSegments: snap.TotalSegments,
		Markets:       snap.Markets,
		Categories:    countMap(snap.Categories),
		Sentiments:    countMap(snap.Sentiments),
		Topics:        countMap(snap.Topics),
		PerMarket:     countMap(snap.MarketDist),
		ScoreMean:     snap.Scores.Mean,
		ScoreMedian:   snap.Scores.Median,
		BuiltAt:       snap.BuiltAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if out.Markets == nil {
		out.Markets = []string{}
	}
	if snap.Dates.Known {
		out.DateFrom = snap.Dates.From.Format(domain.DateLayout)
		out.DateTo = snap.Dates.To.Format(domain.DateLayout)
	}
	return out
}

func countMap(d domain.Distribution) map[string]int {
	m := make(map[string]int, len(d))
	for _, c := range d {
		m[c.Label] = c.N
	}
	return m
}
