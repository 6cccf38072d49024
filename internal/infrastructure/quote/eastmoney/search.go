package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"

	"fundtrack/internal/domain/model"
)

// cb({"Datas":[{"CODE":"161725","NAME":"招商中证白酒指数"},...],...})
var jsonpCbRe = regexp.MustCompile(`(?s)cb\((.*)\)`)

type searchPayload struct {
	Datas []struct {
		Code string `json:"CODE"`
		Name string `json:"NAME"`
	} `json:"Datas"`
}

// Search looks funds up by code or name fragment.
func (c *Client) Search(ctx context.Context, keyword string) ([]model.Fund, error) {
	u := fmt.Sprintf("%s/FundSearch/api/FundSearchAPI.ashx?callback=cb&m=1&key=%s",
		c.searchURL, url.QueryEscape(keyword))
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	return parseSearch(body)
}

func parseSearch(body []byte) ([]model.Fund, error) {
	m := jsonpCbRe.FindSubmatch(body)
	if m == nil {
		return nil, ErrBadPayload
	}

	var p searchPayload
	if err := json.Unmarshal(m[1], &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	funds := make([]model.Fund, 0, len(p.Datas))
	for _, d := range p.Datas {
		if d.Code == "" {
			continue
		}
		funds = append(funds, model.Fund{Code: d.Code, Name: d.Name})
	}
	return funds, nil
}
