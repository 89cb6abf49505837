package stats

import "testing"

func TestParseIndicatorResponse(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   float64
		wantOK bool
	}{
		{
			name:   "first value wins",
			body:   `[{"page":1},[{"date":"2023","value":42.5},{"date":"2022","value":40.1}]]`,
			want:   42.5,
			wantOK: true,
		},
		{
			name:   "null values skipped",
			body:   `[{"page":1},[{"date":"2023","value":null},{"date":"2022","value":40.1}]]`,
			want:   40.1,
			wantOK: true,
		},
		{
			name: "all null",
			body: `[{"page":1},[{"date":"2023","value":null},{"date":"2022","value":null}]]`,
		},
		{
			name: "inline error object",
			body: `[{"message":[{"id":"120","value":"Invalid value"}]}]`,
		},
		{
			name: "short tuple",
			body: `[{"page":1}]`,
		},
		{
			name: "empty series",
			body: `[{"page":1},[]]`,
		},
		{
			name: "not json",
			body: `<html>error</html>`,
		},
		{
			name: "object instead of tuple",
			body: `{"page":1}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseIndicatorResponse([]byte(tt.body))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("value = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		want     float64
	}{
		{44460.817, 2, 44460.82},
		{10.24, 1, 10.2},
		{10.25, 1, 10.3},
		{9.0, 1, 9.0},
	}
	for _, tt := range tests {
		if got := roundTo(tt.v, tt.decimals); got != tt.want {
			t.Errorf("roundTo(%v, %d) = %v, want %v", tt.v, tt.decimals, got, tt.want)
		}
	}
}
