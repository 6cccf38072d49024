package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"sync"
	"time"

	"fundtrack/internal/domain/model"
)

// jsonpgz({"fundcode":"161725","name":"...","dwjz":"0.7350","gsz":"0.7423","gszzl":"0.99","gztime":"2024-01-15 14:30"});
var jsonpgzRe = regexp.MustCompile(`jsonpgz\((.*)\)`)

// estimatePayload is the upstream JSONP body. Numbers arrive as strings.
type estimatePayload struct {
	FundCode     string `json:"fundcode"`
	Name         string `json:"name"`
	NetValue     string `json:"dwjz"`
	EstimateVal  string `json:"gsz"`
	EstimateRate string `json:"gszzl"`
	EstimateTime string `json:"gztime"`
}

// Estimate fetches the live valuation estimate for one fund.
func (c *Client) Estimate(ctx context.Context, code string) (model.Estimate, error) {
	url := fmt.Sprintf("%s/js/%s.js?rt=%d", c.gzURL, code, time.Now().UnixMilli())
	body, err := c.get(ctx, url)
	if err != nil {
		return model.Estimate{}, err
	}
	return parseEstimate(body)
}

func parseEstimate(body []byte) (model.Estimate, error) {
	m := jsonpgzRe.FindSubmatch(body)
	if m == nil {
		return model.Estimate{}, ErrBadPayload
	}

	var p estimatePayload
	if err := json.Unmarshal(m[1], &p); err != nil {
		return model.Estimate{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if p.FundCode == "" {
		return model.Estimate{}, ErrBadPayload
	}

	netValue, err := strconv.ParseFloat(p.NetValue, 64)
	if err != nil {
		return model.Estimate{}, fmt.Errorf("%w: dwjz %q", ErrBadPayload, p.NetValue)
	}
	estimateVal, err := strconv.ParseFloat(p.EstimateVal, 64)
	if err != nil {
		return model.Estimate{}, fmt.Errorf("%w: gsz %q", ErrBadPayload, p.EstimateVal)
	}

	return model.Estimate{
		Code:          p.FundCode,
		Name:          p.Name,
		NetValue:      netValue,
		EstimateValue: estimateVal,
		EstimateRate:  p.EstimateRate,
		EstimateTime:  p.EstimateTime,
	}, nil
}

// Batch fetches estimates for all codes concurrently, one request per
// fund. A failed or unparseable fetch drops only that fund from the
// result; the rest of the cycle proceeds.
func (c *Client) Batch(ctx context.Context, codes []string) map[string]model.Estimate {
	out := make(map[string]model.Estimate, len(codes))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, code := range codes {
		wg.Add(1)
		go func(code string) {
			defer wg.Done()
			est, err := c.Estimate(ctx, code)
			if err != nil {
				return
			}
			mu.Lock()
			out[code] = est
			mu.Unlock()
		}(code)
	}
	wg.Wait()
	return out
}
