package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appsvc "fundtrack/internal/application/service"
	"fundtrack/internal/application/usecase/tracker"
	"fundtrack/internal/domain/model"
	"fundtrack/internal/infrastructure/storage/memory"
)

type stubGateway struct {
	estimates map[string]model.Estimate
	funds     []model.Fund
	history   []model.NetValueHistory
	err       error
}

func (g *stubGateway) Estimate(ctx context.Context, code string) (model.Estimate, error) {
	if g.err != nil {
		return model.Estimate{}, g.err
	}
	return g.estimates[code], nil
}

func (g *stubGateway) Batch(ctx context.Context, codes []string) map[string]model.Estimate {
	out := map[string]model.Estimate{}
	for _, code := range codes {
		if est, ok := g.estimates[code]; ok {
			out[code] = est
		}
	}
	return out
}

func (g *stubGateway) History(ctx context.Context, code string, page, perPage int) ([]model.NetValueHistory, error) {
	return g.history, g.err
}

func (g *stubGateway) Search(ctx context.Context, keyword string) ([]model.Fund, error) {
	return g.funds, g.err
}

func (g *stubGateway) HoldingStocks(ctx context.Context, code string) ([]model.HoldingStock, error) {
	return nil, g.err
}

func newTestServer(t *testing.T, gw *stubGateway) (*httptest.Server, *memory.Repo) {
	t.Helper()
	store := memory.New()
	intraday := appsvc.NewIntradayService(store)
	trk := tracker.NewService(tracker.ServiceDeps{
		Store:        store,
		Gateway:      gw,
		Intraday:     intraday,
		RefreshEvery: time.Minute,
		PruneEvery:   time.Hour,
	})
	srv := NewServer(Deps{
		Portfolio: appsvc.NewPortfolioService(store),
		Watchlist: appsvc.NewWatchlistService(store),
		Intraday:  intraday,
		Export:    appsvc.NewExportService(store),
		Tracker:   trk,
		Gateway:   gw,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAddTransactionCreatesPosition(t *testing.T) {
	ts, store := newTestServer(t, &stubGateway{})

	resp := postJSON(t, ts.URL+"/api/transactions", `{
		"fundCode": "161725", "fundName": "白酒指数", "type": "buy",
		"amount": 1000, "shares": 500, "netValue": 2.0, "fee": 5, "date": "2024-05-01"
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status: got %d", resp.StatusCode)
	}

	var tx model.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&tx); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if tx.ID == "" {
		t.Error("server must assign a transaction id")
	}

	pos, err := store.GetPosition(context.Background(), "161725")
	if err != nil {
		t.Fatalf("GetPosition failed: %v", err)
	}
	if pos.Shares != 500 || pos.Cost != 1005 {
		t.Errorf("position: got %+v", pos)
	}
}

func TestAddTransactionRejectsBadInput(t *testing.T) {
	ts, _ := newTestServer(t, &stubGateway{})

	cases := []struct {
		name string
		body string
	}{
		{"missing fund code", `{"type":"buy","amount":10,"shares":5,"netValue":2,"date":"2024-05-01"}`},
		{"unknown type", `{"fundCode":"161725","type":"hold","amount":10,"shares":5,"netValue":2,"date":"2024-05-01"}`},
		{"negative amount", `{"fundCode":"161725","type":"buy","amount":-10,"shares":5,"netValue":2,"date":"2024-05-01"}`},
		{"not json", `{{{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/transactions", tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestDeleteTransactionNotFound(t *testing.T) {
	ts, _ := newTestServer(t, &stubGateway{})

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/transactions/nope", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestPortfolioEnrichesFromState(t *testing.T) {
	gw := &stubGateway{estimates: map[string]model.Estimate{
		"161725": {Code: "161725", NetValue: 2.0, EstimateValue: 2.1, EstimateRate: "1.00"},
	}}
	ts, store := newTestServer(t, gw)

	_ = store.PutPosition(context.Background(), model.Position{
		FundCode: "161725", FundName: "白酒指数", Shares: 500, Cost: 1005, AvgCost: 2.01,
	})

	// populate tracker state first
	resp := postJSON(t, ts.URL+"/api/refresh", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status: got %d", resp.StatusCode)
	}

	getResp, err := http.Get(ts.URL + "/api/portfolio")
	if err != nil {
		t.Fatalf("GET portfolio failed: %v", err)
	}
	defer getResp.Body.Close()

	var body struct {
		Positions []positionView    `json:"positions"`
		Stats     model.ProfitStats `json:"stats"`
	}
	if err := json.NewDecoder(getResp.Body).Decode(&body); err != nil {
		t.Fatalf("decode portfolio: %v", err)
	}
	if len(body.Positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(body.Positions))
	}
	if body.Positions[0].MarketValue != 500*2.1 {
		t.Errorf("market value: got %v", body.Positions[0].MarketValue)
	}
	if body.Stats.TotalCost != 1005 {
		t.Errorf("total cost: got %v", body.Stats.TotalCost)
	}
}

func TestWatchlistLifecycle(t *testing.T) {
	ts, _ := newTestServer(t, &stubGateway{})

	resp := postJSON(t, ts.URL+"/api/watchlist", `{"code":"000001","name":"华夏成长"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status: got %d", resp.StatusCode)
	}

	listResp, err := http.Get(ts.URL + "/api/watchlist")
	if err != nil {
		t.Fatalf("GET watchlist failed: %v", err)
	}
	defer listResp.Body.Close()
	var entries []model.WatchlistEntry
	_ = json.NewDecoder(listResp.Body).Decode(&entries)
	if len(entries) != 1 || entries[0].Code != "000001" {
		t.Fatalf("watchlist: got %+v", entries)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/watchlist/000001", nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	defer delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status: got %d", delResp.StatusCode)
	}
}

func TestSearchRequiresKeyword(t *testing.T) {
	ts, _ := newTestServer(t, &stubGateway{})
	resp, err := http.Get(ts.URL + "/api/funds/search")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", resp.StatusCode)
	}
}

func TestHistoryUpstreamFailure(t *testing.T) {
	ts, _ := newTestServer(t, &stubGateway{err: errors.New("upstream down")})
	resp, err := http.Get(ts.URL + "/api/funds/161725/history")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", resp.StatusCode)
	}
}

type brokenImportStore struct {
	*memory.Repo
}

func (s brokenImportStore) ImportAll(ctx context.Context, txs []model.Transaction, positions []model.Position, watchlist []model.WatchlistEntry) error {
	return errors.New("disk full")
}

func TestImportStatusByFailureKind(t *testing.T) {
	ts, _ := newTestServer(t, &stubGateway{})

	// malformed document is the caller's fault
	resp := postJSON(t, ts.URL+"/api/import", "{not json")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed import: got %d, want 400", resp.StatusCode)
	}

	// a valid document failing at the store is ours
	store := brokenImportStore{memory.New()}
	srv := NewServer(Deps{
		Portfolio: appsvc.NewPortfolioService(store),
		Watchlist: appsvc.NewWatchlistService(store),
		Intraday:  appsvc.NewIntradayService(store),
		Export:    appsvc.NewExportService(store),
		Tracker: tracker.NewService(tracker.ServiceDeps{
			Store:        store,
			Gateway:      &stubGateway{},
			Intraday:     appsvc.NewIntradayService(store),
			RefreshEvery: time.Minute,
			PruneEvery:   time.Hour,
		}),
		Gateway: &stubGateway{},
	})
	ts2 := httptest.NewServer(srv.Handler())
	t.Cleanup(ts2.Close)

	resp = postJSON(t, ts2.URL+"/api/import", `{"transactions":[],"positions":[],"watchlist":[]}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("store failure on import: got %d, want 500", resp.StatusCode)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ts, store := newTestServer(t, &stubGateway{})
	ctx := context.Background()

	_ = store.PutTransaction(ctx, model.Transaction{
		ID: "t1", FundCode: "161725", Type: model.TradeBuy,
		Amount: 1000, Shares: 500, NetValue: 2, Fee: 5, Date: "2024-05-01", CreatedAt: 1,
	})

	resp, err := http.Get(ts.URL + "/api/export")
	if err != nil {
		t.Fatalf("GET export failed: %v", err)
	}
	defer resp.Body.Close()
	var doc appsvc.ExportDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(doc.Transactions) != 1 {
		t.Fatalf("export transactions: got %d", len(doc.Transactions))
	}

	// import into a fresh server
	ts2, store2 := newTestServer(t, &stubGateway{})
	raw, _ := json.Marshal(doc)
	impResp := postJSON(t, ts2.URL+"/api/import", string(raw))
	if impResp.StatusCode != http.StatusNoContent {
		t.Fatalf("import status: got %d", impResp.StatusCode)
	}
	if _, err := store2.GetTransaction(ctx, "t1"); err != nil {
		t.Errorf("imported transaction missing: %v", err)
	}
}
