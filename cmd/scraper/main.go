package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-scrape-pokedex/config"
	"github.com/aluiziolira/go-scrape-pokedex/models"
	"github.com/aluiziolira/go-scrape-pokedex/parser"
	"github.com/aluiziolira/go-scrape-pokedex/pipeline"
	"github.com/aluiziolira/go-scrape-pokedex/scraper"
	"github.com/aluiziolira/go-scrape-pokedex/store"
)

func main() {
	defaultCfg := config.DefaultConfig()
	indexDefault := defaultCfg.IndexURL
	if value, ok := config.EnvString("POKEDEX_INDEX_URL"); ok {
		indexDefault = value
	}
	outputDefault := defaultCfg.OutputFile
	if value, ok := config.EnvString("POKEDEX_OUTPUT"); ok {
		outputDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("POKEDEX_METRICS_ADDR"); ok {
		metricsDefault = value
	}
	maxEntriesDefault := defaultCfg.MaxEntries
	if value, ok, err := config.EnvInt("POKEDEX_MAX_ENTRIES"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid POKEDEX_MAX_ENTRIES: %v\n", err)
		os.Exit(1)
	} else if ok {
		maxEntriesDefault = value
	}

	indexURL := flag.String("index-url", indexDefault, "Catalog index URL to crawl")
	outputFile := flag.String("output", outputDefault, "JSON store path")
	exportCSV := flag.String("export-csv", "", "Optional CSV summary path written after the crawl")
	delayMs := flag.Int("delay", int(defaultCfg.Delay/time.Millisecond), "Delay between entry fetches (milliseconds)")
	randomDelayMs := flag.Int("random-delay", 0, "Random jitter added to delay (milliseconds)")
	timeoutMs := flag.Int("timeout", int(defaultCfg.Timeout/time.Millisecond), "Per-request timeout (milliseconds)")
	maxRetries := flag.Int("max-retries", defaultCfg.MaxRetries, "Maximum retry attempts per URL")
	retryBackoffMs := flag.Int("retry-backoff", 200, "Initial retry backoff (milliseconds)")
	retryBackoffMaxMs := flag.Int("retry-backoff-max", 2000, "Maximum retry backoff (milliseconds)")
	maxEntries := flag.Int("max-entries", maxEntriesDefault, "Stop after persisting this many new entries (0 = unlimited)")
	respectRobots := flag.Bool("respect-robots", false, "Respect robots.txt directives")
	convertUnits := flag.Bool("convert-units", false, "Convert kg/m values to lb/ft")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := config.DefaultConfig()
	cfg.IndexURL = *indexURL
	cfg.OutputFile = *outputFile
	cfg.ExportCSVFile = *exportCSV
	cfg.Delay = time.Duration(*delayMs) * time.Millisecond
	cfg.RandomDelay = time.Duration(*randomDelayMs) * time.Millisecond
	cfg.Timeout = time.Duration(*timeoutMs) * time.Millisecond
	cfg.MaxRetries = *maxRetries
	cfg.RetryBackoff = time.Duration(*retryBackoffMs) * time.Millisecond
	cfg.RetryBackoffMax = time.Duration(*retryBackoffMaxMs) * time.Millisecond
	cfg.MaxEntries = *maxEntries
	cfg.RespectRobotsTxt = *respectRobots
	cfg.ConvertUnits = *convertUnits
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting crawl",
		slog.String("index_url", cfg.IndexURL),
		slog.String("output", cfg.OutputFile),
		slog.Duration("delay", cfg.Delay),
	)

	st, err := store.Open(cfg.OutputFile)
	if err != nil {
		slog.Error("opening store", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("store loaded", slog.Int("records", st.Len()))

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		os.Exit(1)
	}

	extractor := parser.NewExtractor()
	extractor.Norm.ConvertUnits = cfg.ConvertUnits

	p, err := pipeline.New(cfg, s, st, extractor, s.Metrics)
	if err != nil {
		slog.Error("initialising pipeline", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, finishing current entry")
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	result, err := p.Run(ctx)
	if err != nil {
		slog.Error("crawl failed", slog.Any("error", err))
	}

	if cfg.ExportCSVFile != "" {
		if err := st.ExportCSV(cfg.ExportCSVFile); err != nil {
			slog.Error("csv export failed", slog.Any("error", err))
		} else {
			slog.Info("csv summary written", slog.String("path", cfg.ExportCSVFile))
		}
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(result, st.Len(), cfg.OutputFile)
	if err != nil {
		os.Exit(1)
	}
}

func printSummary(result *models.CrawlResult, storeSize int, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Crawl complete")
	fmt.Printf("  Index entries: %d\n", result.Total)
	fmt.Printf("  Persisted:     %d\n", result.Processed)
	fmt.Printf("  Skipped:       %d\n", result.Skipped)
	fmt.Printf("  Failed:        %d\n", result.Failed)
	fmt.Printf("  Retries:       %d\n", result.RetryCount)
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:   %v\n", result.ErrorsByType)
	}
	fmt.Printf("  Store size:    %d\n", storeSize)
	fmt.Printf("  Duration:      %v\n", result.EndTime.Sub(result.StartTime))
	fmt.Printf("  Output file:   %s\n", outputFile)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
