package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus statistics",
	Long:  `Prints the statistics snapshot of the indexed feedback corpus.`,
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output the snapshot as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if statisticsService == nil {
		return errors.New("statistics service not configured")
	}
	ensureIndex(cmd)

	snap, err := statisticsService.Snapshot()
	if err != nil {
		return fmt.Errorf("no statistics available: %w", err)
	}

	if statsJSON {
		return outputJSON(cmd, snap)
	}
	printSnapshot(cmd, snap)
	return nil
}

func printSnapshot(cmd *cobra.Command, snap *domain.Snapshot) {
	if snap.Empty {
		cmd.Println("The corpus is empty.")
		return
	}

	cmd.Println("Corpus Statistics")
	cmd.Println("=================")
	cmd.Println()
	cmd.Printf("  Records:  %d\n", snap.TotalRecords)
	cmd.Printf("  Segments: %d\n", snap.TotalSegments)
	if snap.Dates.Known {
		cmd.Printf("  Period:   %s to %s\n", snap.Dates.From.Format(domain.DateLayout), snap.Dates.To.Format(domain.DateLayout))
	}
	cmd.Printf("  Score:    mean %.1f, median %.1f (%d-%d)\n", snap.Scores.Mean, snap.Scores.Median, snap.Scores.Min, snap.Scores.Max)
	cmd.Println()

	printDistribution(cmd, "Categories", snap.Categories)
	printDistribution(cmd, "Sentiment", snap.Sentiments)
	printDistribution(cmd, "Markets", snap.MarketDist)
	printDistribution(cmd, "Topics", snap.Topics)
}

func printDistribution(cmd *cobra.Command, title string, d domain.Distribution) {
	cmd.Printf("[%s]\n", title)
	if len(d) == 0 {
		cmd.Println("  (none)")
	}
	for _, c := range d {
		cmd.Printf("  %-20s %6d  %5.1f%%\n", c.Label, c.N, d.Percent(c.Label))
	}
	cmd.Println()
}
