package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// World Bank indicator codes.
const (
	indicatorGDPPerCapita = "NY.GDP.PCAP.CD"  // GDP per capita, current US$
	indicatorBirthRate    = "SP.DYN.CBRT.IN"  // crude birth rate per 1,000
	indicatorDeathRate    = "SP.DYN.CDRT.IN"  // crude death rate per 1,000
	indicatorYearRange    = "2023:2021"
)

// wbDataPoint is one yearly observation of an indicator.
type wbDataPoint struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// fetchIndicator retrieves one indicator for one country. It returns
// ok == false when the indicator is unavailable for any reason; indicator
// failures never abort the surrounding stats fetch.
func (f *Fetcher) fetchIndicator(ctx context.Context, iso2, indicator string) (float64, bool) {
	url := fmt.Sprintf("%s/country/%s/indicator/%s?format=json&date=%s&per_page=10",
		f.indicatorAPI, strings.ToUpper(iso2), indicator, indicatorYearRange)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, false
	}
	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Debug("indicator fetch failed", "indicator", indicator, "error", err)
		return 0, false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		return 0, false
	}
	return parseIndicatorResponse(body)
}

// parseIndicatorResponse decodes the World Bank [metadata, dataPoints] tuple.
// An inline error object arrives as data[0] with a "message" field. The first
// non-null value wins; the upstream is assumed to order years newest-first.
func parseIndicatorResponse(body []byte) (float64, bool) {
	var tuple []json.RawMessage
	if err := json.Unmarshal(body, &tuple); err != nil {
		return 0, false
	}
	if len(tuple) > 0 {
		var errObj struct {
			Message []struct {
				Value string `json:"value"`
			} `json:"message"`
		}
		if err := json.Unmarshal(tuple[0], &errObj); err == nil && len(errObj.Message) > 0 {
			return 0, false
		}
	}
	if len(tuple) < 2 {
		return 0, false
	}

	var points []wbDataPoint
	if err := json.Unmarshal(tuple[1], &points); err != nil {
		return 0, false
	}
	for _, p := range points {
		if p.Value != nil {
			return *p.Value, true
		}
	}
	return 0, false
}
