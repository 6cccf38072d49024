package eastmoney

import (
	"context"
	"fmt"

	"fundtrack/internal/domain/model"
)

// HoldingStocks returns the fund's top reported stock holdings, scraped
// from the archive endpoint (type=jjcc).
func (c *Client) HoldingStocks(ctx context.Context, code string) ([]model.HoldingStock, error) {
	url := fmt.Sprintf("%s/FundArchivesDatas.aspx?type=jjcc&code=%s&topline=10", c.f10URL, code)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseHoldings(string(body)), nil
}

func parseHoldings(body string) []model.HoldingStock {
	stocks := []model.HoldingStock{}

	tbody := tbodyRe.FindStringSubmatch(body)
	if tbody == nil {
		return stocks
	}

	// row layout: index, stock code, stock name, latest price, daily change,
	// news links, share of net assets, shares held, market value held
	for _, row := range rowRe.FindAllStringSubmatch(tbody[1], -1) {
		cells := cellRe.FindAllStringSubmatch(row[1], -1)
		if len(cells) < 7 {
			continue
		}

		stockCode := anchorText(cells[1][1])
		stockName := anchorText(cells[2][1])
		amount := ""
		if len(cells) > 8 {
			amount = stripTags(cells[8][1])
		}
		// the top-10 view carries no change-vs-previous column; the
		// upstream site labels these rows 新增
		stocks = append(stocks, model.HoldingStock{
			Code:   stockCode,
			Name:   stockName,
			Ratio:  stripTags(cells[6][1]),
			Amount: amount,
			Change: "新增",
		})
	}
	return stocks
}

func anchorText(cell string) string {
	if m := linkRe.FindStringSubmatch(cell); m != nil {
		return stripTags(m[1])
	}
	return stripTags(cell)
}
