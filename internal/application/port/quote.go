package port

import (
	"context"

	"fundtrack/internal/domain/model"
)

// QuoteGateway resolves fund codes against the upstream quote source. All
// of the scraping lives behind this interface; payloads are parsed into
// typed values before they cross into the core.
type QuoteGateway interface {
	// Estimate fetches the live valuation estimate for one fund.
	Estimate(ctx context.Context, code string) (model.Estimate, error)

	// Batch fetches estimates for many funds concurrently. Best-effort:
	// a missing key means that fund's fetch failed this cycle.
	Batch(ctx context.Context, codes []string) map[string]model.Estimate

	// History returns one page of confirmed daily net values, newest first.
	History(ctx context.Context, code string, page, perPage int) ([]model.NetValueHistory, error)

	// Search looks funds up by code or name fragment.
	Search(ctx context.Context, keyword string) ([]model.Fund, error)

	// HoldingStocks returns the fund's top reported stock holdings.
	HoldingStocks(ctx context.Context, code string) ([]model.HoldingStock, error)
}
