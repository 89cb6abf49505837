package feed

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const userAgent = "Terrasaver/1.0 (+https://github.com/terrasaver/terrasaver)"

// Statuses of a news fetch result.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Result is the terminal outcome of a news fetch. Expected failures are
// reported through Status and Message rather than an error, so callers can
// always render something.
type Result struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
	Message      string    `json:"message,omitempty"`
}

// APIKeys holds the upstream API keys substituted into feed URL templates.
type APIKeys struct {
	News      string
	WorldNews string
}

// For picks the key matching a descriptor type.
func (k APIKeys) For(t Type) string {
	if t == TypeWorldNews {
		return k.WorldNews
	}
	return k.News
}

// Fetcher resolves a country's feed, fetches it and normalizes the content.
// On any failure it retries exactly once with the default descriptor before
// reporting a terminal error result.
type Fetcher struct {
	resolver *Resolver
	client   *http.Client
	keys     APIKeys
	log      *slog.Logger
}

// NewFetcher creates a news fetcher on top of the given resolver.
func NewFetcher(resolver *Resolver, keys APIKeys) *Fetcher {
	return &Fetcher{
		resolver: resolver,
		client:   &http.Client{Timeout: 15 * time.Second},
		keys:     keys,
		log:      slog.Default(),
	}
}

// FetchNews fetches and normalizes the news feed for a country. It never
// returns a Go error: unrecoverable failures yield Status == StatusError with
// an empty article list.
func (f *Fetcher) FetchNews(ctx context.Context, countryCode string) Result {
	desc, err := f.resolver.FeedFor(countryCode)
	if err != nil {
		return errorResult(err)
	}

	articles, err := f.tryFetch(ctx, desc, countryCode)
	if err == nil {
		return okResult(articles)
	}
	f.log.Warn("country feed failed, retrying with default", "country", countryCode, "feed", desc.Name, "error", err)

	cfg, cfgErr := f.resolver.Load()
	if cfgErr != nil {
		return errorResult(cfgErr)
	}
	articles, err = f.tryFetch(ctx, cfg.Default, countryCode)
	if err != nil {
		f.log.Error("default feed failed", "country", countryCode, "error", err)
		return errorResult(err)
	}
	return okResult(articles)
}

// tryFetch performs one fetch-and-parse round for a single descriptor.
func (f *Fetcher) tryFetch(ctx context.Context, desc Descriptor, countryCode string) ([]Article, error) {
	declared := desc.Type.Normalize()
	url := PrepareFeedURL(desc.FeedURL, countryCode, f.keys.For(declared))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	return ParseFeed(body, resp.Header.Get("Content-Type"), declared)
}

func okResult(articles []Article) Result {
	return Result{Status: StatusOK, TotalResults: len(articles), Articles: articles}
}

func errorResult(err error) Result {
	return Result{Status: StatusError, Message: err.Error(), Articles: []Article{}}
}
