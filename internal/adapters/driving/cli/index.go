package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

var indexForce bool

var indexCmd = &cobra.Command{
	Use:   "index [file]",
	Short: "Build the feedback index",
	Long: `Loads a CSV or XLSX feedback export, enriches and segments every record,
embeds the segments and publishes a new statistics snapshot.

Without an argument the configured corpus.source is used. A persisted
index built from the same file and model is reused unless --force is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVarP(&indexForce, "force", "f", false, "discard a persisted index and rebuild")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	opts := domain.RebuildOptions{Force: indexForce}
	if len(args) == 1 {
		opts.Source = args[0]
	}

	status, err := indexService.Rebuild(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	printIndexStatus(cmd, status)
	return nil
}

func printIndexStatus(cmd *cobra.Command, status domain.IndexStatus) {
	if status.Reused {
		cmd.Printf("Reused persisted index for %s\n", status.Source)
	} else {
		cmd.Printf("Indexed %s\n", status.Source)
	}
	cmd.Printf("  Records:  %d\n", status.Records)
	cmd.Printf("  Segments: %d\n", status.Segments)
	if status.Skipped > 0 {
		cmd.Printf("  Skipped:  %d\n", status.Skipped)
	}
	cmd.Printf("  Backend:  %s\n", status.Backend.Description())
	cmd.Printf("  Model:    %s\n", status.Model)
	if status.Duration > 0 {
		cmd.Printf("  Took:     %s\n", status.Duration.Round(time.Millisecond))
	}
}
