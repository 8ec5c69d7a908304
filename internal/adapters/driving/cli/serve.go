package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vocal/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/vocal/internal/adapters/driving/watch"
	"github.com/custodia-labs/vocal/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the assistant as a JSON API.

Routes:
  POST /api/ask       {"question": "...", "session_id": "..."}
  GET  /api/search    ?q=...&max_results=...&market=...&date_from=...
  GET  /api/stats
  GET  /api/charts    chart catalog
  POST /api/charts    {"kind": "...", "size": "...", filters...}
  POST /api/index     {"source": "...", "force": true}
  GET  /charts/:name  rendered chart files
  GET  /healthz

Use --watch to rebuild the index whenever the corpus file changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", ":8080", "listen address")
	serveCmd.Flags().BoolP("watch", "w", false, "rebuild when the corpus file changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if assistant == nil {
		return errors.New("assistant not configured")
	}
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}

	ensureIndex(cmd)

	server, err := httpapi.NewServer(&httpapi.Ports{
		Assistant:  assistant,
		Index:      indexService,
		Retrieval:  retrievalService,
		Filters:    filterResolver,
		Statistics: statisticsService,
		Charts:     chartService,
	}, httpapi.WithChartDir(chartDir))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if err := startWatch(ctx, cmd); err != nil {
		return err
	}

	cmd.Printf("HTTP API listening on %s\n", addr)
	return server.Run(ctx, addr)
}

// startWatch runs the corpus watcher in the background when --watch is set.
func startWatch(ctx context.Context, cmd *cobra.Command) error {
	enabled, err := cmd.Flags().GetBool("watch")
	if err != nil || !enabled {
		return err
	}
	if indexService == nil {
		return errors.New("index service not configured")
	}

	source := indexService.Status().Source
	if source == "" && settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			source = settings.Corpus.Source
		}
	}

	w, err := watch.New(indexService, source)
	if err != nil {
		return err
	}
	go func() {
		if err := w.Run(ctx); err != nil {
			logger.Error("corpus watcher stopped: %v", err)
		}
	}()
	return nil
}
