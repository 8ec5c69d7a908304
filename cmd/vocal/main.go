// Command vocal answers questions about customer feedback exports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/vocal/internal/adapters/driven/ai"
	"github.com/custodia-labs/vocal/internal/adapters/driven/chart"
	"github.com/custodia-labs/vocal/internal/adapters/driven/config/file"
	"github.com/custodia-labs/vocal/internal/adapters/driven/enrich"
	"github.com/custodia-labs/vocal/internal/adapters/driven/loader"
	"github.com/custodia-labs/vocal/internal/adapters/driven/resilience"
	"github.com/custodia-labs/vocal/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/vocal/internal/adapters/driving/cli"
	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driven"
	"github.com/custodia-labs/vocal/internal/core/services"
	"github.com/custodia-labs/vocal/internal/logger"
	"github.com/custodia-labs/vocal/internal/postprocessors"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var configStore driven.ConfigStore
	if store, err := file.NewConfigStore(os.Getenv("VOCAL_CONFIG_DIR")); err != nil {
		logger.Warn("config unavailable, settings will not be saved: %v", err)
		configStore = memory.NewConfigStore()
	} else {
		configStore = store
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	cli.SetVersion(version)
	cli.SetSettingsService(settingsService)
	cli.SetBootstrap(func(ctx context.Context) (*cli.Services, error) {
		return bootstrap(ctx, settingsService)
	})

	err := cli.Execute(ctx)
	if cerr := cli.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// bootstrap builds every service from the saved settings.
func bootstrap(ctx context.Context, settingsService *services.SettingsService) (*cli.Services, error) {
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	var promptStore driven.PromptStore
	if prompts, err := file.NewPromptStore(""); err != nil {
		logger.Warn("prompt store unavailable, using built-in prompts: %v", err)
	} else {
		promptStore = prompts
	}

	adapters, err := ai.Init(ctx, *settings, promptStore)
	if err != nil {
		return nil, err
	}

	vocab, err := loadVocabulary(settings.Routing.VocabularyFile)
	if err != nil {
		adapters.Close()
		return nil, err
	}

	pipeline, err := postprocessors.NewDefaultPipeline(settings.Chunking)
	if err != nil {
		adapters.Close()
		return nil, fmt.Errorf("building chunking pipeline: %w", err)
	}

	corpus := services.NewCorpus()
	indexService := services.NewIndexService(
		[]driven.CorpusLoader{loader.NewCSVLoader(), loader.NewXLSXLoader()},
		enrich.New(),
		pipeline,
		adapters.EmbeddingService,
		adapters.VectorIndex,
		corpus,
		services.WithSource(settings.Corpus.Source),
		services.WithBackend(settings.Index.Backend),
	)

	engine := services.NewRetrievalEngine(adapters.VectorIndex, adapters.EmbeddingService, corpus, settings.Retrieval)
	extractor := services.NewExtractor(vocab, settings.Retrieval.DefaultMaxResults, engine.MaxResultsCeiling())

	var retrievalOpts []services.RetrievalOption
	if settings.Retrieval.QueryRewrite && adapters.LLMService != nil {
		retrievalOpts = append(retrievalOpts, services.WithQueryRewrite(adapters.LLMService))
	}
	retrieval := services.NewRetrievalSpecialist(engine, extractor, services.NewSummarizer(0), retrievalOpts...)

	var renderer driven.ChartRenderer
	chartDir := ""
	if r, err := chart.New(adapters.VectorIndex, settings.Chart); err != nil {
		logger.Warn("charts unavailable: %v", err)
	} else {
		renderer = resilience.WrapRenderer(r, resilience.PolicyFrom(settings.Upstream))
		chartDir = r.Dir()
	}
	charts := services.NewVisualizationSpecialist(renderer, extractor, vocab, corpus, settings.Chart.Size)

	registry, err := services.NewRegistry(services.NewStatisticsSpecialist(), retrieval, charts)
	if err != nil {
		adapters.Close()
		return nil, err
	}

	orchestrator := services.NewOrchestrator(
		services.NewClassifier(vocab, settings.Routing.Precedence),
		registry,
		corpus,
		services.WithHistory(memory.NewHistoryStore(0), settings.History.Window),
	)

	if settings.Corpus.ForceRebuild && settings.Corpus.Source != "" {
		if _, err := indexService.Rebuild(ctx, domain.RebuildOptions{Force: true}); err != nil {
			logger.Warn("forced rebuild failed: %v", err)
		}
	}

	return &cli.Services{
		Assistant:  orchestrator,
		Index:      indexService,
		Retrieval:  engine,
		Filters:    services.NewFilterResolver(corpus, vocab),
		Statistics: indexService,
		Charts:     charts,
		Settings:   settingsService,
		ChartDir:   chartDir,
		Close: func() error {
			adapters.Close()
			return nil
		},
	}, nil
}

// loadVocabulary merges the optional YAML override onto the built-in tables.
func loadVocabulary(path string) (domain.Vocabulary, error) {
	vocab := domain.DefaultVocabulary()
	if path == "" {
		return vocab, nil
	}
	override, err := file.NewVocabularyStore(path).Load()
	if err != nil {
		return vocab, fmt.Errorf("vocabulary file: %w", err)
	}
	return vocab.Merge(override), nil
}
