// Package cli provides the cobra command tree for vocal.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driving"
	"github.com/custodia-labs/vocal/internal/logger"
)

// skipServices marks commands that run without the assistant stack.
const skipServices = "skip-services"

// version is set at build time.
var version = "dev"

var verbose bool

// Services holds the driving ports used by commands.
type Services struct {
	Assistant  driving.Assistant
	Index      driving.IndexService
	Retrieval  driving.RetrievalService
	Filters    driving.FilterResolver
	Statistics driving.StatisticsService
	Charts     driving.ChartService
	Settings   driving.SettingsService

	// ChartDir is where rendered charts are written.
	ChartDir string

	// Close releases adapters. May be nil.
	Close func() error
}

// BootstrapFunc builds the services on first use.
type BootstrapFunc func(ctx context.Context) (*Services, error)

var (
	assistant         driving.Assistant
	indexService      driving.IndexService
	retrievalService  driving.RetrievalService
	filterResolver    driving.FilterResolver
	statisticsService driving.StatisticsService
	chartService      driving.ChartService
	settingsService   driving.SettingsService
	chartDir          string
	closeServices     func() error

	bootstrap BootstrapFunc
)

var rootCmd = &cobra.Command{
	Use:   "vocal",
	Short: "Ask questions about customer feedback",
	Long: `vocal indexes a customer-feedback export (CSV or XLSX) and answers
questions about it in German or English.

Statistics questions are answered from a precomputed snapshot, content
questions run a semantic search over the feedback, and chart requests
render a chart file.`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return shutdown()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap registers the function that builds the services.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetSettingsService sets the settings service independently of the
// bootstrap so a broken provider configuration can still be repaired.
func SetSettingsService(svc driving.SettingsService) {
	settingsService = svc
}

// SetServices installs the driving ports used by commands.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	assistant = s.Assistant
	indexService = s.Index
	retrievalService = s.Retrieval
	filterResolver = s.Filters
	statisticsService = s.Statistics
	chartService = s.Charts
	chartDir = s.ChartDir
	closeServices = s.Close
	if s.Settings != nil {
		settingsService = s.Settings
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[skipServices] == "true" || bootstrap == nil {
		return nil
	}

	svcs, err := bootstrap(cmd.Context())
	if err != nil {
		return fmt.Errorf("initialising services: %w", err)
	}
	SetServices(svcs)
	return nil
}

func shutdown() error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

// ensureIndex builds the index once when nothing has been published yet.
// A failure is reported but not fatal; the assistant answers with a
// not-ready message instead.
func ensureIndex(cmd *cobra.Command) {
	if indexService == nil || indexService.Status().Ready {
		return
	}

	status, err := indexService.Rebuild(cmd.Context(), domain.RebuildOptions{})
	if err != nil {
		logger.Warn("index not built: %v", err)
		if errors.Is(err, domain.ErrInvalidInput) {
			cmd.PrintErrln("No corpus indexed. Run 'vocal index <file>' or set corpus.source.")
		}
		return
	}
	logger.Info("indexed %d records (%d segments) from %s", status.Records, status.Segments, status.Source)
}

// Close releases services when a command exits early with an error.
func Close() error {
	return shutdown()
}
