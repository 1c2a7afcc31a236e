package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds crawler configuration.
type Config struct {
	IndexURL         string
	OutputFile       string
	ExportCSVFile    string // optional post-crawl summary export
	Delay            time.Duration
	RandomDelay      time.Duration
	Timeout          time.Duration
	MaxRetries       int
	RetryBackoff     time.Duration
	RetryBackoffMax  time.Duration
	MaxEntries       int
	DedupeMaxSize    int
	UserAgent        string
	MetricsAddr      string
	ConvertUnits     bool
	Verbose          bool
	RespectRobotsTxt bool
}

// DefaultConfig returns polite defaults for the pokedex target. The
// one-second delay between entries is deliberate; lower it only against
// targets you control.
func DefaultConfig() *Config {
	return &Config{
		IndexURL:        "https://pokemondb.net/pokedex/all",
		OutputFile:      "output/pokemonData.json",
		Delay:           time.Second,
		RandomDelay:     0,
		Timeout:         10 * time.Second,
		MaxRetries:      2,
		RetryBackoff:    200 * time.Millisecond,
		RetryBackoffMax: 2 * time.Second,
		MaxEntries:      0, // unlimited
		DedupeMaxSize:   4096,
		UserAgent:       "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36",
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.IndexURL == "" {
		return fmt.Errorf("index URL cannot be empty")
	}

	parsedURL, err := url.Parse(c.IndexURL)
	if err != nil {
		return fmt.Errorf("invalid index URL: %w", err)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("index URL must include a host")
	}

	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}
	if c.RandomDelay < 0 {
		return fmt.Errorf("random delay cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}
	if c.MaxEntries < 0 {
		return fmt.Errorf("max entries cannot be negative")
	}
	if c.DedupeMaxSize <= 0 {
		return fmt.Errorf("dedupe max size must be positive")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}

	return nil
}
