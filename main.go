package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"cancerdetect/artifact"
	"cancerdetect/config"
	"cancerdetect/db"
	chttp "cancerdetect/http"
	"cancerdetect/logging"
	"cancerdetect/monitoring"
	"cancerdetect/pipeline"
	"cancerdetect/view"
)

func main() {
	// Look for config in root even if run from cmd/
	configPath := "config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configPath = filepath.Join("..", "config.yaml")
	}

	// 1. Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Logger
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Artifacts. Any failure here is fatal; no request is served
	// without a complete bundle.
	source, closeSource, err := openSource(cfg)
	if err != nil {
		logger.Fatal("Failed to open artifact source", zap.Error(err))
	}
	defer closeSource()

	bundle, err := artifact.Load(ctx, source)
	if err != nil {
		logger.Fatal("Failed to load artifacts", zap.String("source", cfg.Artifacts.Source), zap.Error(err))
	}
	logger.Info("Artifacts loaded",
		zap.String("source", cfg.Artifacts.Source),
		zap.Int("features", bundle.Features.Len()),
	)

	// 4. Pipeline
	metrics := monitoring.NewMetricsCollector()
	p, err := pipeline.New(bundle,
		pipeline.WithCache(cfg.Pipeline.CacheSize),
		pipeline.WithObserver(metrics),
	)
	if err != nil {
		logger.Fatal("Failed to build pipeline", zap.Error(err))
	}

	// 5. Page
	layout, err := view.ResolveLayout(cfg.Page.Layout, cfg.Page.Columns, cfg.Page.Padding, cfg.Page.ShowHeader)
	if err != nil {
		logger.Fatal("Invalid page layout", zap.Error(err))
	}
	opts := view.Options{
		Layout:          layout,
		Title:           cfg.Page.Title,
		Subtitle:        cfg.Page.Subtitle,
		IntroMarkdown:   cfg.Page.IntroMarkdown,
		TitleCaseLabels: cfg.Page.TitleCaseLabels,
	}
	if cfg.Page.BackgroundImage != "" {
		background, err := view.LoadBackground(cfg.Page.BackgroundImage)
		if err != nil {
			logger.Warn("Background image unavailable, using plain background",
				zap.String("path", cfg.Page.BackgroundImage), zap.Error(err))
		} else {
			opts.Background = background
		}
	}

	// 6. HTTP server
	handlers := &chttp.Handlers{
		Pipeline:       p,
		Renderer:       view.NewRenderer(opts),
		Metrics:        metrics,
		Logger:         logger,
		AllowedOrigins: cfg.Http.AllowedOrigins,
	}
	server := chttp.NewServer(chttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		AllowedOrigins: cfg.Http.AllowedOrigins,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
		RateLimit:      rate.Limit(cfg.Http.RateLimit.RPS),
		RateBurst:      cfg.Http.RateLimit.Burst,
	}, handlers, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening", zap.String("addr", server.Addr()), zap.String("layout", cfg.Page.Layout))
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")
		return server.Stop()
	})

	// 7. Optional hot reload of file artifacts
	if fs, ok := source.(*artifact.FileSource); ok && cfg.Artifacts.Watch {
		watcher := &artifact.Watcher{
			Source:   fs,
			Debounce: cfg.Artifacts.Debounce,
			OnReload: p.Swap,
			Logger:   logger,
		}
		g.Go(func() error {
			if err := watcher.Run(gctx); err != nil {
				logger.Error("Artifact watcher stopped", zap.Error(err))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Exiting")
}

// openSource returns the configured artifact source and a close func.
func openSource(cfg *config.Config) (artifact.Source, func(), error) {
	switch cfg.Artifacts.Source {
	case "file":
		return &artifact.FileSource{
			Dir:          cfg.Artifacts.Dir,
			ModelFile:    cfg.Artifacts.ModelFile,
			ScalerFile:   cfg.Artifacts.ScalerFile,
			FeaturesFile: cfg.Artifacts.FeaturesFile,
		}, func() {}, nil
	case "sqlite3", "postgres":
		store, err := db.Open(cfg.Artifacts.Source, cfg.Artifacts.DSN)
		if err != nil {
			return nil, nil, err
		}
		return &artifact.StoreSource{Store: store}, func() { store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown artifact source %q", cfg.Artifacts.Source)
	}
}
