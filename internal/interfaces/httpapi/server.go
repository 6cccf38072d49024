package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"fundtrack/internal/application/port"
	appsvc "fundtrack/internal/application/service"
	"fundtrack/internal/application/usecase/tracker"
	"fundtrack/internal/domain/model"
)

type Deps struct {
	Portfolio *appsvc.PortfolioService
	Watchlist *appsvc.WatchlistService
	Intraday  *appsvc.IntradayService
	Export    *appsvc.ExportService
	Tracker   *tracker.Service
	Gateway   port.QuoteGateway
	Hub       *Hub
}

type Server struct {
	deps Deps
	mux  *http.ServeMux
}

func NewServer(deps Deps) *Server {
	s := &Server{deps: deps, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/portfolio", s.handlePortfolio)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)

	s.mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	s.mux.HandleFunc("POST /api/transactions", s.handleAddTransaction)
	s.mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	s.mux.HandleFunc("GET /api/watchlist", s.handleListWatchlist)
	s.mux.HandleFunc("POST /api/watchlist", s.handleAddWatch)
	s.mux.HandleFunc("DELETE /api/watchlist/{code}", s.handleRemoveWatch)

	s.mux.HandleFunc("DELETE /api/funds/{code}", s.handleRemoveFund)
	s.mux.HandleFunc("GET /api/funds/search", s.handleSearch)
	s.mux.HandleFunc("GET /api/funds/{code}/intraday", s.handleIntraday)
	s.mux.HandleFunc("GET /api/funds/{code}/history", s.handleHistory)
	s.mux.HandleFunc("GET /api/funds/{code}/holdings", s.handleHoldings)

	s.mux.HandleFunc("GET /api/export", s.handleExport)
	s.mux.HandleFunc("POST /api/import", s.handleImport)

	if s.deps.Hub != nil {
		s.mux.HandleFunc("GET /ws", s.deps.Hub.handleWS)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response failed")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, port.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, appsvc.ErrEmptyFundCode),
		errors.Is(err, appsvc.ErrUnknownTradeType),
		errors.Is(err, appsvc.ErrInvalidTransaction),
		errors.Is(err, appsvc.ErrInvalidImport):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	return dec.Decode(v)
}

type portfolioResponse struct {
	Positions []positionView `json:"positions"`
	Stats     any            `json:"stats"`
	Refreshed time.Time      `json:"refreshedAt"`
}

type positionView struct {
	FundCode string  `json:"fundCode"`
	FundName string  `json:"fundName"`
	Shares   float64 `json:"shares"`
	Cost     float64 `json:"cost"`
	AvgCost  float64 `json:"avgCost"`

	NetValue      float64 `json:"netValue,omitempty"`
	EstimateValue float64 `json:"estimateValue,omitempty"`
	EstimateRate  string  `json:"estimateRate,omitempty"`
	MarketValue   float64 `json:"marketValue,omitempty"`
	TodayProfit   float64 `json:"todayProfit,omitempty"`
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	positions, err := s.deps.Portfolio.Positions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	snap := s.deps.Tracker.State().Snapshot()
	views := make([]positionView, 0, len(positions))
	for _, pos := range positions {
		v := positionView{
			FundCode: pos.FundCode, FundName: pos.FundName,
			Shares: pos.Shares, Cost: pos.Cost, AvgCost: pos.AvgCost,
		}
		if est, ok := snap.Estimates[pos.FundCode]; ok {
			v.NetValue = est.NetValue
			v.EstimateValue = est.EstimateValue
			v.EstimateRate = est.EstimateRate
			v.MarketValue = pos.Shares * est.EstimateValue
			v.TodayProfit = pos.Shares * est.NetValue * (est.RateValue() / 100)
		}
		views = append(views, v)
	}

	writeJSON(w, http.StatusOK, portfolioResponse{
		Positions: views,
		Stats:     snap.Stats,
		Refreshed: snap.RefreshedAt,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Tracker.Refresh(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.deps.Portfolio.Transactions(r.Context(), r.URL.Query().Get("fund"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

type addTransactionRequest struct {
	FundCode string  `json:"fundCode"`
	FundName string  `json:"fundName"`
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	Shares   float64 `json:"shares"`
	NetValue float64 `json:"netValue"`
	Fee      float64 `json:"fee"`
	Date     string  `json:"date"`
}

func (req addTransactionRequest) toModel() model.Transaction {
	return model.Transaction{
		FundCode: req.FundCode,
		Type:     model.TradeType(req.Type),
		Amount:   req.Amount,
		Shares:   req.Shares,
		NetValue: req.NetValue,
		Fee:      req.Fee,
		Date:     req.Date,
	}
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req addTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}

	tx, err := s.deps.Portfolio.AddTransaction(r.Context(), req.toModel(), req.FundName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Portfolio.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListWatchlist(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.Watchlist.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAddWatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}
	if err := s.deps.Watchlist.Add(r.Context(), req.Code, req.Name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleRemoveWatch(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Watchlist.Remove(r.Context(), r.PathValue("code")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveFund(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Portfolio.RemoveFund(r.Context(), r.PathValue("code")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing keyword parameter"})
		return
	}
	funds, err := s.deps.Gateway.Search(r.Context(), keyword)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, funds)
}

func (s *Server) handleIntraday(w http.ResponseWriter, r *http.Request) {
	points, err := s.deps.Intraday.Read(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per", 30)
	history, err := s.deps.Gateway.History(r.Context(), r.PathValue("code"), page, perPage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	stocks, err := s.deps.Gateway.HoldingStocks(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stocks)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.deps.Export.ExportJSON(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="fundtrack-export.json"`)
	_, _ = w.Write(data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, 8<<20))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.deps.Export.Import(r.Context(), data); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
