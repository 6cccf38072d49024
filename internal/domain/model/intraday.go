package model

// IntradayPoint is one polled sample of a fund's estimated valuation.
// Time is a zero-padded "HH:MM" clock string, so lexicographic order is
// chronological order.
type IntradayPoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
	Rate  float64 `json:"rate"`
}

// IntradaySeries holds the self-accumulated samples for a single fund on a
// single trading day. The upstream API has no intraday history, so the
// series only ever grows from our own polling; once Date is no longer
// today the whole series is stale and must not be served.
type IntradaySeries struct {
	FundCode  string          `json:"fundCode"`
	Date      string          `json:"date"` // YYYY-MM-DD
	Points    []IntradayPoint `json:"points"`
	UpdatedAt int64           `json:"updatedAt"` // unix ms
}
