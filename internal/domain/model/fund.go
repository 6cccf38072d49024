package model

import (
	"strconv"
	"strings"
)

// Fund 基金基本信息
type Fund struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Estimate is the live valuation of a fund as reported upstream.
// EstimateRate keeps the upstream decimal string ("1.24", "-0.58") so the
// UI shows exactly what the source published.
type Estimate struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	NetValue      float64 `json:"netValue"`      // last confirmed unit net value
	EstimateValue float64 `json:"estimateValue"` // estimated current value
	EstimateRate  string  `json:"estimateRate"`  // estimated change, percent
	EstimateTime  string  `json:"estimateTime"`  // upstream wall-clock string
}

// RateValue parses EstimateRate, returning 0 for empty or malformed input.
func (e Estimate) RateValue() float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(e.EstimateRate), 64)
	if err != nil {
		return 0
	}
	return n
}

// NetValueHistory 历史净值
type NetValueHistory struct {
	Date        string  `json:"date"`
	NetValue    float64 `json:"netValue"`
	AccNetValue float64 `json:"accNetValue"`
	Rate        string  `json:"rate"`
}

// HoldingStock is one of a fund's top reported stock holdings.
type HoldingStock struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Ratio  string `json:"ratio"`  // share of net assets, e.g. "4.55%"
	Amount string `json:"amount"` // market value held, upstream units
	Change string `json:"change"` // change vs previous report
}

// WatchlistEntry 自选基金
type WatchlistEntry struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	AddedAt int64  `json:"addedAt"` // unix ms
}
