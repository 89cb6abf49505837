package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
)

// countryRecord is the subset of a REST Countries record this fetcher uses.
type countryRecord struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Flags struct {
		PNG string `json:"png"`
	} `json:"flags"`
	Currencies map[string]struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"currencies"`
	Population int64 `json:"population"`
}

// fetchCountry looks up country metadata by ISO-3 code. The API answers with
// an array holding the single matching record.
func (f *Fetcher) fetchCountry(ctx context.Context, iso3 string) (countryRecord, error) {
	var record countryRecord

	url := fmt.Sprintf("%s/alpha/%s", f.countryAPI, iso3)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return record, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return record, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return record, err
	}
	if resp.StatusCode != http.StatusOK {
		return record, fmt.Errorf("country API returned %d", resp.StatusCode)
	}

	var records []countryRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return record, fmt.Errorf("decode country record: %w", err)
	}
	if len(records) == 0 {
		return record, fmt.Errorf("country API returned no record for %q", iso3)
	}
	return records[0], nil
}

// firstCurrency picks one currency from the record. Countries can list
// several; the lowest key wins as a deterministic tie-break.
func firstCurrency(record countryRecord) *Currency {
	if len(record.Currencies) == 0 {
		return nil
	}
	codes := make([]string, 0, len(record.Currencies))
	for code := range record.Currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	c := record.Currencies[codes[0]]
	return &Currency{Code: codes[0], Name: c.Name, Symbol: c.Symbol}
}
