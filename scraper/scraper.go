// Package scraper fetches pokedex pages over HTTP and enumerates the
// catalog index.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-scrape-pokedex/config"
	"github.com/aluiziolira/go-scrape-pokedex/models"
)

// Scraper wraps the colly collector. Fetches run synchronously, one at
// a time; the pipeline owns pacing between entries.
type Scraper struct {
	cfg       *config.Config
	collector *colly.Collector
	Metrics   *Metrics

	retries int
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	parsed, err := url.Parse(cfg.IndexURL)
	if err != nil {
		return nil, fmt.Errorf("parse index url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("index url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Host),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = !cfg.RespectRobotsTxt
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		RandomDelay: cfg.RandomDelay,
	}); err != nil {
		return nil, fmt.Errorf("configure rate limits: %w", err)
	}

	return &Scraper{
		cfg:       cfg,
		collector: collector,
		Metrics:   NewMetrics(),
	}, nil
}

// Entries fetches the index page and returns its catalog entries in
// listing order. The canonical name prefers the muted secondary label
// over the primary display name when both exist.
func (s *Scraper) Entries(ctx context.Context) ([]models.IndexEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := s.collector.Clone()
	var entries []models.IndexEntry

	c.OnRequest(func(r *colly.Request) {
		s.Metrics.IncRequest("index")
	})
	c.OnHTML(".cell-name", func(e *colly.HTMLElement) {
		name := strings.TrimSpace(e.DOM.Find("small.text-muted").Text())
		if name == "" {
			name = strings.TrimSpace(e.DOM.Find(".ent-name").Text())
		}
		href, ok := e.DOM.Find("a").Attr("href")
		if name == "" || !ok {
			return
		}
		entries = append(entries, models.IndexEntry{
			Name: name,
			URL:  e.Request.AbsoluteURL(href),
		})
	})

	var fetchErr error
	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = classifyError(err, status)
	})

	if err := c.Visit(s.cfg.IndexURL); err != nil && fetchErr == nil {
		fetchErr = classifyError(err, 0)
	}
	if fetchErr != nil {
		fe := &FetchError{URL: s.cfg.IndexURL, Err: fetchErr}
		s.Metrics.IncError(fe.Type())
		return nil, fe
	}
	return entries, nil
}

// Fetch retrieves one page as a goquery document, retrying with capped
// exponential backoff up to MaxRetries.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := s.fetchOnce(pageURL)
		if err == nil {
			return doc, nil
		}
		lastErr = err

		if attempt >= s.cfg.MaxRetries {
			return nil, lastErr
		}
		s.retries++
		s.Metrics.IncRetries()
		delay := s.backoff(attempt + 1)
		slog.Debug("retrying fetch",
			slog.String("url", pageURL),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", delay),
			slog.Any("error", err),
		)
		if err := sleepCtx(ctx, delay); err != nil {
			return nil, lastErr
		}
	}
}

func (s *Scraper) fetchOnce(pageURL string) (*goquery.Document, error) {
	c := s.collector.Clone()

	var doc *goquery.Document
	var fetchErr error

	c.OnRequest(func(r *colly.Request) {
		r.Ctx.Put("start", time.Now())
		s.Metrics.IncRequest("detail")
	})
	c.OnResponse(func(r *colly.Response) {
		if start, ok := r.Ctx.GetAny("start").(time.Time); ok {
			s.Metrics.ObserveFetch(time.Since(start))
		}
		d, err := goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		if err != nil {
			fetchErr = fmt.Errorf("parse document: %w", err)
			return
		}
		doc = d
	})
	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = classifyError(err, status)
	})

	if err := c.Visit(pageURL); err != nil && fetchErr == nil {
		fetchErr = classifyError(err, 0)
	}
	if fetchErr != nil {
		fe := &FetchError{URL: pageURL, Err: fetchErr}
		s.Metrics.IncError(fe.Type())
		return nil, fe
	}
	if doc == nil {
		return nil, &FetchError{URL: pageURL, Err: errors.New("no response body")}
	}
	return doc, nil
}

// TotalRetries returns the number of retry attempts this scraper made.
func (s *Scraper) TotalRetries() int {
	return s.retries
}

func (s *Scraper) backoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}

	base := s.cfg.RetryBackoff
	if base <= 0 {
		base = 100 * time.Millisecond
	}

	delay := base * time.Duration(1<<(attempt-1))
	if max := s.cfg.RetryBackoffMax; max > 0 && delay > max {
		delay = max
	}
	return delay
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
