package service

import (
	"sort"

	"fundtrack/internal/domain/model"
)

// Apply folds one transaction into a position using the weighted-average
// cost method. The zero Position is a valid starting point; pass it with
// FundCode/FundName unset for a fund's first trade.
//
// Buys capitalize the fee into cost basis. Sells remove the sold shares at
// the pre-transaction average cost, not at the execution net value, and the
// sell fee does not touch cost basis.
func Apply(pos model.Position, tx model.Transaction) model.Position {
	if pos.FundCode == "" {
		pos.FundCode = tx.FundCode
	}
	if pos.FundName == "" {
		pos.FundName = tx.FundCode
	}

	switch tx.Type {
	case model.TradeBuy:
		pos.Shares += tx.Shares
		pos.Cost += tx.Amount + tx.Fee
	case model.TradeSell:
		pos.Shares -= tx.Shares
		pos.Cost -= tx.Shares * pos.AvgCost
	}

	if pos.Shares > 0 {
		pos.AvgCost = pos.Cost / pos.Shares
	} else {
		pos.AvgCost = 0
	}
	return pos
}

// Replay rebuilds a position from scratch out of a fund's complete
// transaction history. Ordering is by trade date, then creation timestamp
// for same-day trades, so repeated replays are deterministic.
func Replay(txs []model.Transaction) model.Position {
	ordered := make([]model.Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Date != ordered[j].Date {
			return ordered[i].Date < ordered[j].Date
		}
		return ordered[i].CreatedAt < ordered[j].CreatedAt
	})

	var pos model.Position
	for _, tx := range ordered {
		pos = Apply(pos, tx)
	}
	return pos
}
