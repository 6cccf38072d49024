package service

import "fundtrack/internal/domain/model"

// ComputeStats aggregates portfolio-wide profit figures from positions and
// the current refresh cycle's estimates. A position whose fund has no
// estimate this cycle (fetch failed, fund unknown) is skipped entirely, so
// a partial upstream outage degrades the totals instead of corrupting them.
func ComputeStats(positions []model.Position, estimates map[string]model.Estimate) model.ProfitStats {
	var stats model.ProfitStats

	for _, p := range positions {
		est, ok := estimates[p.FundCode]
		if !ok {
			continue
		}
		stats.TotalCost += p.Cost
		stats.TotalValue += p.Shares * est.EstimateValue
		stats.TodayProfit += p.Shares * est.NetValue * (est.RateValue() / 100)
	}

	stats.TotalProfit = stats.TotalValue - stats.TotalCost
	if stats.TotalCost > 0 {
		stats.TotalProfitRate = stats.TotalProfit / stats.TotalCost * 100
	}
	return stats
}
