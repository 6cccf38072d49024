package service

import (
	"math"
	"testing"

	"fundtrack/internal/domain/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestApplyBuyAccumulates(t *testing.T) {
	var pos model.Position

	pos = Apply(pos, model.Transaction{
		FundCode: "161725", Type: model.TradeBuy,
		Amount: 1000, Shares: 500, NetValue: 2.0, Fee: 5,
	})
	pos = Apply(pos, model.Transaction{
		FundCode: "161725", Type: model.TradeBuy,
		Amount: 500, Shares: 250, NetValue: 2.0, Fee: 2.5,
	})

	if !almostEqual(pos.Shares, 750) {
		t.Errorf("shares: expected 750, got %v", pos.Shares)
	}
	// cost is sum of amount+fee over buys
	if !almostEqual(pos.Cost, 1507.5) {
		t.Errorf("cost: expected 1507.5, got %v", pos.Cost)
	}
	if !almostEqual(pos.AvgCost, 1507.5/750) {
		t.Errorf("avgCost: expected %v, got %v", 1507.5/750, pos.AvgCost)
	}
}

func TestApplyInitializesNameFromCode(t *testing.T) {
	pos := Apply(model.Position{}, model.Transaction{
		FundCode: "000001", Type: model.TradeBuy, Amount: 100, Shares: 50, NetValue: 2.0,
	})
	if pos.FundCode != "000001" {
		t.Errorf("fundCode: expected 000001, got %q", pos.FundCode)
	}
	if pos.FundName != "000001" {
		t.Errorf("fundName should fall back to code, got %q", pos.FundName)
	}
}

func TestApplySellRemovesAtAverageCost(t *testing.T) {
	// scenario from the accounting walkthrough: buy 1000@2.0 fee 5,
	// then sell 200 shares at 2.05
	pos := Apply(model.Position{}, model.Transaction{
		FundCode: "161725", Type: model.TradeBuy,
		Amount: 1000, Shares: 500, NetValue: 2.0, Fee: 5,
	})
	if !almostEqual(pos.Shares, 500) || !almostEqual(pos.Cost, 1005) || !almostEqual(pos.AvgCost, 2.01) {
		t.Fatalf("after buy: got %+v", pos)
	}

	pos = Apply(pos, model.Transaction{
		FundCode: "161725", Type: model.TradeSell,
		Amount: 410, Shares: 200, NetValue: 2.05, Fee: 0,
	})
	if !almostEqual(pos.Shares, 300) {
		t.Errorf("shares: expected 300, got %v", pos.Shares)
	}
	if !almostEqual(pos.Cost, 603) {
		t.Errorf("cost: expected 603, got %v", pos.Cost)
	}
	if !almostEqual(pos.AvgCost, 2.01) {
		t.Errorf("avgCost should be unchanged by the sell, got %v", pos.AvgCost)
	}
}

func TestApplyFullSellZeroesPosition(t *testing.T) {
	pos := Apply(model.Position{}, model.Transaction{
		FundCode: "161725", Type: model.TradeBuy,
		Amount: 1000, Shares: 500, NetValue: 2.0, Fee: 0,
	})
	pos = Apply(pos, model.Transaction{
		FundCode: "161725", Type: model.TradeSell,
		Amount: 1100, Shares: 500, NetValue: 2.2, Fee: 0,
	})

	if pos.Shares != 0 {
		t.Errorf("shares: expected exactly 0, got %v", pos.Shares)
	}
	if !almostEqual(pos.Cost, 0) {
		t.Errorf("cost: expected 0, got %v", pos.Cost)
	}
	if pos.AvgCost != 0 {
		t.Errorf("avgCost: expected 0 when flat, got %v", pos.AvgCost)
	}
}

func TestApplyOversellGoesNegative(t *testing.T) {
	// oversell is not clamped; the ledger trusts its input
	pos := Apply(model.Position{}, model.Transaction{
		FundCode: "161725", Type: model.TradeBuy,
		Amount: 200, Shares: 100, NetValue: 2.0, Fee: 0,
	})
	pos = Apply(pos, model.Transaction{
		FundCode: "161725", Type: model.TradeSell,
		Amount: 300, Shares: 150, NetValue: 2.0, Fee: 0,
	})
	if pos.Shares >= 0 {
		t.Errorf("expected negative shares after oversell, got %v", pos.Shares)
	}
	if pos.AvgCost != 0 {
		t.Errorf("avgCost: expected 0 when shares <= 0, got %v", pos.AvgCost)
	}
}

func TestReplayDeterministic(t *testing.T) {
	txs := []model.Transaction{
		{ID: "c", FundCode: "161725", Type: model.TradeSell, Amount: 410, Shares: 200, NetValue: 2.05, Date: "2024-03-02", CreatedAt: 300},
		{ID: "a", FundCode: "161725", Type: model.TradeBuy, Amount: 1000, Shares: 500, NetValue: 2.0, Fee: 5, Date: "2024-03-01", CreatedAt: 100},
		{ID: "b", FundCode: "161725", Type: model.TradeBuy, Amount: 500, Shares: 250, NetValue: 2.0, Fee: 0, Date: "2024-03-01", CreatedAt: 200},
	}

	first := Replay(txs)
	second := Replay(txs)
	if first != second {
		t.Fatalf("replay not deterministic: %+v vs %+v", first, second)
	}

	// same-day ordering by CreatedAt: buys land before the next-day sell
	if !almostEqual(first.Shares, 550) {
		t.Errorf("shares: expected 550, got %v", first.Shares)
	}
}

func TestReplayDoesNotMutateInput(t *testing.T) {
	txs := []model.Transaction{
		{ID: "b", FundCode: "x", Type: model.TradeBuy, Amount: 10, Shares: 5, Date: "2024-01-02", CreatedAt: 2},
		{ID: "a", FundCode: "x", Type: model.TradeBuy, Amount: 10, Shares: 5, Date: "2024-01-01", CreatedAt: 1},
	}
	Replay(txs)
	if txs[0].ID != "b" || txs[1].ID != "a" {
		t.Error("Replay reordered the caller's slice")
	}
}
