package model

// Position is the derived per-fund aggregate maintained by the ledger.
// It is a cache over the transaction history, never authored directly.
type Position struct {
	FundCode string  `json:"fundCode"`
	FundName string  `json:"fundName"`
	Shares   float64 `json:"shares"`
	Cost     float64 `json:"cost"`    // cumulative cost basis
	AvgCost  float64 `json:"avgCost"` // cost/shares, 0 when flat
}

// ProfitStats 收益统计, recomputed in full every refresh cycle.
type ProfitStats struct {
	TotalCost       float64 `json:"totalCost"`
	TotalValue      float64 `json:"totalValue"`
	TotalProfit     float64 `json:"totalProfit"`
	TotalProfitRate float64 `json:"totalProfitRate"` // percent
	TodayProfit     float64 `json:"todayProfit"`
}
