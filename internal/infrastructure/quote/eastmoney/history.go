package eastmoney

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"fundtrack/internal/domain/model"
)

// The F10 endpoints return javascript assigning an HTML fragment:
// var apidata={ content:"<table>...<tbody><tr><td>...</td></tr></tbody></table>",... };
// Rows are scraped with regexps; the fragments are machine-generated and
// structurally stable.
var (
	tbodyRe = regexp.MustCompile(`(?s)<tbody>(.*?)</tbody>`)
	rowRe   = regexp.MustCompile(`(?s)<tr>(.*?)</tr>`)
	cellRe  = regexp.MustCompile(`(?s)<td[^>]*>(.*?)</td>`)
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	linkRe  = regexp.MustCompile(`(?s)<a[^>]*>(.*?)</a>`)
)

func stripTags(cell string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(cell, ""))
}

// History returns one page of confirmed daily net values, newest first,
// scraped from the F10 net-value table (type=lsjz).
func (c *Client) History(ctx context.Context, code string, page, perPage int) ([]model.NetValueHistory, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 30
	}
	url := fmt.Sprintf("%s/F10DataApi.aspx?type=lsjz&code=%s&page=%d&per=%d", c.f10URL, code, page, perPage)
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseHistory(string(body)), nil
}

func parseHistory(body string) []model.NetValueHistory {
	history := []model.NetValueHistory{}

	tbody := tbodyRe.FindStringSubmatch(body)
	if tbody == nil {
		return history
	}

	for _, row := range rowRe.FindAllStringSubmatch(tbody[1], -1) {
		cells := cellRe.FindAllStringSubmatch(row[1], -1)
		// date, net value, accumulated net value, daily change
		if len(cells) < 4 {
			continue
		}
		netValue, _ := strconv.ParseFloat(stripTags(cells[1][1]), 64)
		accNetValue, _ := strconv.ParseFloat(stripTags(cells[2][1]), 64)
		rate := stripTags(cells[3][1])
		if rate == "" {
			rate = "0.00%"
		}
		history = append(history, model.NetValueHistory{
			Date:        stripTags(cells[0][1]),
			NetValue:    netValue,
			AccNetValue: accNetValue,
			Rate:        rate,
		})
	}
	return history
}
