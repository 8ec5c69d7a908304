package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

var (
	chartSize    string
	chartList    bool
	chartOpen    bool
	chartFilters domain.FilterInput
)

var chartCmd = &cobra.Command{
	Use:   "chart [kind]",
	Short: "Render a chart",
	Long: `Renders one chart from the catalog and prints the file path.
Use --list to show every chart kind.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChart,
}

func init() {
	chartCmd.Flags().StringVar(&chartSize, "size", "", "small, medium or large")
	chartCmd.Flags().BoolVarP(&chartList, "list", "l", false, "list chart kinds")
	chartCmd.Flags().BoolVarP(&chartOpen, "open", "o", false, "open the rendered chart")
	addFilterFlags(chartCmd, &chartFilters)
	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, args []string) error {
	if chartList || len(args) == 0 {
		printChartCatalog(cmd)
		return nil
	}
	if chartService == nil {
		return errors.New("chart service not configured")
	}

	kind := domain.ChartKind(strings.ToLower(args[0]))
	if !kind.IsValid() {
		return fmt.Errorf("unknown chart kind %q (see 'vocal chart --list')", args[0])
	}
	size := domain.SizeHint(strings.ToLower(chartSize))
	if chartSize != "" && !size.IsValid() {
		return fmt.Errorf("invalid size %q: use small, medium or large", chartSize)
	}
	ensureIndex(cmd)

	filters, ignored := resolveFilters(chartFilters)
	for _, ig := range ignored {
		cmd.PrintErrf("Ignoring filter %s\n", ig)
	}

	resp, err := chartService.Chart(cmd.Context(), domain.ChartRequest{Kind: kind, Filters: filters, Size: size})
	if err != nil {
		return fmt.Errorf("chart failed: %w", err)
	}
	printResponse(cmd, resp)

	if chartOpen && resp.ImagePath != "" {
		if err := openFile(resp.ImagePath); err != nil {
			cmd.PrintErrf("Could not open chart: %v\n", err)
		}
	}
	return nil
}

func printChartCatalog(cmd *cobra.Command) {
	cmd.Println("Chart kinds:")
	for _, spec := range domain.ChartCatalog() {
		cmd.Printf("  %-18s %s\n", spec.Kind, spec.Description)
	}
}
