package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

var (
	searchLimit   int
	searchJSON    bool
	searchFilters domain.FilterInput
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search feedback by meaning",
	Long: `Runs a semantic search over the indexed feedback and lists the matching
records with their confidence. Matches below the rejection threshold are
never shown.

Filters narrow the search by record metadata. Unknown values are ignored
and reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultMaxResults, "maximum number of records")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	addFilterFlags(searchCmd, &searchFilters)
	rootCmd.AddCommand(searchCmd)
}

// addFilterFlags registers the metadata filter flags on cmd.
func addFilterFlags(cmd *cobra.Command, in *domain.FilterInput) {
	cmd.Flags().StringVar(&in.Market, "market", "", "market id, country code or country name")
	cmd.Flags().StringVar(&in.Region, "region", "", "region code")
	cmd.Flags().StringVar(&in.Country, "country", "", "country code or name")
	cmd.Flags().StringVar(&in.Sentiment, "sentiment", "", "positive, neutral or negative")
	cmd.Flags().StringVar(&in.Category, "category", "", "Promoter, Passive or Detractor")
	cmd.Flags().StringVar(&in.Topic, "topic", "", "feedback topic")
	cmd.Flags().StringVar(&in.DateFrom, "from", "", "start date YYYY-MM-DD")
	cmd.Flags().StringVar(&in.DateTo, "to", "", "end date YYYY-MM-DD")
}

func resolveFilters(in domain.FilterInput) (domain.FilterSet, []domain.IgnoredFilter) {
	if filterResolver != nil {
		return filterResolver.Resolve(in)
	}
	return in.FilterSet()
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}
	ensureIndex(cmd)

	filters, ignored := resolveFilters(searchFilters)
	for _, ig := range ignored {
		cmd.PrintErrf("Ignoring filter %s\n", ig)
	}

	result, err := retrievalService.Search(cmd.Context(), args[0], searchLimit, filters)
	if errors.Is(err, domain.ErrNoQualifyingResults) {
		cmd.Println("No feedback matched closely enough.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, searchView(result))
	}
	return outputSearchTable(cmd, result)
}

type searchHitJSON struct {
	RecordID   string  `json:"record_id"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Quality    string  `json:"quality"`
	Score      int     `json:"score"`
	Market     string  `json:"market"`
	Sentiment  string  `json:"sentiment"`
	Topic      string  `json:"topic"`
}

type searchJSONView struct {
	Query   string          `json:"query"`
	Quality string          `json:"quality"`
	Filters []string        `json:"filters,omitempty"`
	Results []searchHitJSON `json:"results"`
}

func searchView(result *domain.RetrievalResult) searchJSONView {
	view := searchJSONView{
		Query:   result.Query,
		Quality: string(result.Quality),
		Filters: result.Filters.Describe(),
		Results: make([]searchHitJSON, 0, result.Len()),
	}
	for _, h := range result.Hits {
		view.Results = append(view.Results, searchHitJSON{
			RecordID:   h.Metadata.RecordID,
			Text:       h.Segment.Content,
			Confidence: h.Confidence,
			Quality:    string(h.Quality),
			Score:      h.Metadata.Score,
			Market:     h.Metadata.Market,
			Sentiment:  string(h.Metadata.SentimentLabel),
			Topic:      h.Metadata.Topic,
		})
	}
	return view
}

func outputSearchTable(cmd *cobra.Command, result *domain.RetrievalResult) error {
	if result.Len() == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results (%s quality):\n", result.Quality)
	cmd.Println()
	for i, h := range result.Hits {
		// Format: [N] record - market, score category (confidence)
		cmd.Printf("  [%d] %s - %s, %d %s (%.0f%%)\n",
			i+1, h.Metadata.RecordID, h.Metadata.Market, h.Metadata.Score, h.Metadata.Category, h.Confidence*100)
		if h.Quality == domain.QualityLow {
			cmd.Println("      (weak match)")
		}
		cmd.Printf("      %s\n", snippet(h.Segment.Content, 240))
		cmd.Println()
	}
	return nil
}

func snippet(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
