// Package pipeline drives the crawl: enumerate the index, skip known
// entries, assemble new ones, persist after every entry.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-scrape-pokedex/config"
	"github.com/aluiziolira/go-scrape-pokedex/models"
	"github.com/aluiziolira/go-scrape-pokedex/parser"
	"github.com/aluiziolira/go-scrape-pokedex/scraper"
)

// Fetcher enumerates the index and materializes per-entry documents.
// *scraper.Scraper implements it.
type Fetcher interface {
	Entries(ctx context.Context) ([]models.IndexEntry, error)
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Persister is the durable store the pipeline writes through.
// *store.Store implements it.
type Persister interface {
	Has(name string) bool
	Upsert(name string, record *models.Record)
	Save() error
	Len() int
}

// Pipeline processes index entries one at a time: fetch, assemble,
// persist. Single-threaded by design; each entry fully completes before
// the next begins, so a crashed or cancelled run resumes correctly.
type Pipeline struct {
	cfg       *config.Config
	fetcher   Fetcher
	store     Persister
	extractor *parser.Extractor
	metrics   *scraper.Metrics

	// docs caches fetched documents by URL: index rows for alternate
	// forms share a page, and the cache keeps them to one fetch.
	docs *lru.Cache[string, *goquery.Document]
}

// New builds a pipeline. metrics may be nil.
func New(cfg *config.Config, fetcher Fetcher, persister Persister, extractor *parser.Extractor, metrics *scraper.Metrics) (*Pipeline, error) {
	docs, err := lru.New[string, *goquery.Document](cfg.DedupeMaxSize)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:       cfg,
		fetcher:   fetcher,
		store:     persister,
		extractor: extractor,
		metrics:   metrics,
		docs:      docs,
	}, nil
}

// Run crawls the index until done or cancelled. Fetch and assembly
// failures skip the entry and the run continues; a store write failure
// stops the run, since durability is gone once writes fail. The
// returned result is valid even on error.
func (p *Pipeline) Run(ctx context.Context) (*models.CrawlResult, error) {
	result := &models.CrawlResult{
		StartTime:    time.Now(),
		ErrorsByType: make(map[string]int),
	}
	defer func() {
		result.EndTime = time.Now()
		if counter, ok := p.fetcher.(interface{ TotalRetries() int }); ok {
			result.RetryCount = counter.TotalRetries()
		}
	}()

	entries, err := p.fetcher.Entries(ctx)
	if err != nil {
		return result, err
	}
	result.Total = len(entries)
	p.metrics.SetStoreSize(p.store.Len())

	fetched := false
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if p.cfg.MaxEntries > 0 && result.Processed >= p.cfg.MaxEntries {
			break
		}

		if p.store.Has(entry.Name) {
			result.Skipped++
			p.metrics.IncEntry("skipped")
			slog.Debug("entry already stored, skipping", slog.String("name", entry.Name))
			continue
		}

		doc, ok := p.docs.Get(entry.URL)
		if !ok {
			// Politeness delay between fetches, never before the first.
			if fetched {
				if err := sleepCtx(ctx, p.cfg.Delay); err != nil {
					break
				}
			}
			doc, err = p.fetcher.Fetch(ctx, entry.URL)
			fetched = true
			if err != nil {
				result.Failed++
				result.FailedURLs = append(result.FailedURLs, entry.URL)
				result.ErrorsByType["fetch"]++
				p.metrics.IncEntry("fetch_error")
				slog.Error("fetch failed, skipping entry",
					slog.String("name", entry.Name),
					slog.String("url", entry.URL),
					slog.Any("error", err),
				)
				continue
			}
			p.docs.Add(entry.URL, doc)
		}

		record, err := p.extractor.Assemble(doc)
		if err != nil {
			result.Failed++
			result.FailedURLs = append(result.FailedURLs, entry.URL)
			result.ErrorsByType["invalid_document"]++
			p.metrics.IncEntry("invalid_document")
			slog.Error("assembly failed, skipping entry",
				slog.String("name", entry.Name),
				slog.Any("error", err),
			)
			continue
		}

		p.store.Upsert(entry.Name, record)
		if err := p.store.Save(); err != nil {
			p.metrics.IncEntry("persist_error")
			return result, err
		}

		result.Processed++
		p.metrics.IncEntry("persisted")
		p.metrics.SetStoreSize(p.store.Len())
		slog.Info("entry persisted",
			slog.String("name", entry.Name),
			slog.Int("store_size", p.store.Len()),
		)
	}

	return result, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
