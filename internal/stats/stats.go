// Package stats fetches country statistics from REST Countries and the World
// Bank, falling back to bundled static data per-field when a remote source
// fails.
package stats

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"
)

//go:embed country-stats.json
var bundledStats []byte

// indicatorTimeout bounds the combined wait for all indicator requests.
const indicatorTimeout = 8 * time.Second

// Currency describes a country's primary currency.
type Currency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// CountryStats is a normalized statistics snapshot. Pointer fields are nil
// when no source, remote or bundled, provides a value.
type CountryStats struct {
	Name        string    `json:"name"`
	Flag        string    `json:"flag"`
	Currency    *Currency `json:"currency"`
	Population  *int64    `json:"population"`
	GDP         *float64  `json:"gdp"`
	BirthRate   *float64  `json:"birthRate"`
	DeathRate   *float64  `json:"deathRate"`
	LastUpdated string    `json:"lastUpdated"`
}

// FetchError reports a failed primary country-metadata lookup with no bundled
// fallback available.
type FetchError struct {
	Code string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("country stats for %s: %v", e.Code, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// bundledEntry is one record of the embedded fallback data, keyed by
// lowercase ISO-2 code.
type bundledEntry struct {
	GDP         *float64 `json:"gdp"`
	BirthRate   *float64 `json:"birthRate"`
	DeathRate   *float64 `json:"deathRate"`
	LastUpdated string   `json:"lastUpdated"`
}

// Fetcher retrieves country statistics. Primary metadata comes from the
// country API; GDP and vital rates from the indicator API, raced against a
// timeout; bundled data fills whatever the remotes could not provide.
type Fetcher struct {
	client       *http.Client
	countryAPI   string
	indicatorAPI string
	timeout      time.Duration
	bundled      map[string]bundledEntry
	now          func() time.Time
	log          *slog.Logger
}

// NewFetcher creates a stats fetcher against the public REST Countries and
// World Bank endpoints. A malformed bundled data file is logged and treated
// as empty.
func NewFetcher() *Fetcher {
	f := &Fetcher{
		client:       &http.Client{Timeout: 15 * time.Second},
		countryAPI:   "https://restcountries.com/v3.1",
		indicatorAPI: "https://api.worldbank.org/v2",
		timeout:      indicatorTimeout,
		now:          time.Now,
		log:          slog.Default(),
	}
	bundled := make(map[string]bundledEntry)
	if err := json.Unmarshal(bundledStats, &bundled); err != nil {
		f.log.Warn("bundled country stats unavailable", "error", err)
		bundled = map[string]bundledEntry{}
	}
	f.bundled = bundled
	return f
}

// CountryStats fetches and merges statistics for a country. It fails only
// when the primary metadata lookup fails and no bundled entry exists for
// iso2; indicator failures and timeouts are always absorbed.
func (f *Fetcher) CountryStats(ctx context.Context, iso3, iso2 string) (CountryStats, error) {
	iso2 = strings.ToLower(strings.TrimSpace(iso2))
	bundled, haveBundled := f.bundled[iso2]

	record, err := f.fetchCountry(ctx, iso3)
	if err != nil {
		if !haveBundled {
			return CountryStats{}, &FetchError{Code: iso3, Err: err}
		}
		f.log.Warn("country metadata fetch failed, serving bundled snapshot", "iso3", iso3, "error", err)
		return f.bundledSnapshot(bundled), nil
	}

	population := record.Population
	out := CountryStats{
		Name:        record.Name.Common,
		Flag:        record.Flags.PNG,
		Currency:    firstCurrency(record),
		Population:  &population,
		GDP:         bundled.GDP,
		BirthRate:   bundled.BirthRate,
		DeathRate:   bundled.DeathRate,
		LastUpdated: f.lastUpdated(bundled),
	}

	values := gatherWithTimeout(ctx, f.timeout, []func(context.Context) (float64, bool){
		func(ctx context.Context) (float64, bool) { return f.fetchIndicator(ctx, iso2, indicatorGDPPerCapita) },
		func(ctx context.Context) (float64, bool) { return f.fetchIndicator(ctx, iso2, indicatorBirthRate) },
		func(ctx context.Context) (float64, bool) { return f.fetchIndicator(ctx, iso2, indicatorDeathRate) },
	})
	if values[0].OK {
		v := roundTo(values[0].Value, 2)
		out.GDP = &v
	}
	if values[1].OK {
		v := roundTo(values[1].Value, 1)
		out.BirthRate = &v
	}
	if values[2].OK {
		v := roundTo(values[2].Value, 1)
		out.DeathRate = &v
	}
	return out, nil
}

// bundledSnapshot builds a stats object from bundled data alone, used when
// the primary source is down but a fallback entry exists.
func (f *Fetcher) bundledSnapshot(entry bundledEntry) CountryStats {
	return CountryStats{
		GDP:         entry.GDP,
		BirthRate:   entry.BirthRate,
		DeathRate:   entry.DeathRate,
		LastUpdated: f.lastUpdated(entry),
	}
}

func (f *Fetcher) lastUpdated(entry bundledEntry) string {
	if entry.LastUpdated != "" {
		return entry.LastUpdated
	}
	return f.now().UTC().Format("2006-01-02")
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
