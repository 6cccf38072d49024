package model

// TradeType 交易方向
type TradeType string

const (
	TradeBuy  TradeType = "buy"
	TradeSell TradeType = "sell"
)

func (t TradeType) Valid() bool {
	return t == TradeBuy || t == TradeSell
}

// Transaction is one user-entered trade. Records are immutable once
// written; an edit is a delete followed by a recreate. Shares and Amount
// are both stored as entered and never recomputed from each other.
type Transaction struct {
	ID        string    `json:"id"`
	FundCode  string    `json:"fundCode"`
	Type      TradeType `json:"type"`
	Amount    float64   `json:"amount"`   // cash amount
	Shares    float64   `json:"shares"`   // share quantity
	NetValue  float64   `json:"netValue"` // execution price per share
	Fee       float64   `json:"fee"`
	Date      string    `json:"date"`      // trade date, YYYY-MM-DD
	CreatedAt int64     `json:"createdAt"` // unix ms, tie-break for same-day ordering
}
