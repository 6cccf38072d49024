package memory

import (
	"context"
	"sort"
	"sync"

	"fundtrack/internal/application/port"
	"fundtrack/internal/domain/model"
)

// Repo is the in-memory Store used for tests and throwaway runs. All
// collections live in maps behind one mutex; ImportAll is trivially atomic
// under it.
type Repo struct {
	mu           sync.RWMutex
	transactions map[string]model.Transaction
	positions    map[string]model.Position
	watchlist    map[string]model.WatchlistEntry
	intraday     map[string]model.IntradaySeries
}

func New() *Repo {
	return &Repo{
		transactions: make(map[string]model.Transaction),
		positions:    make(map[string]model.Position),
		watchlist:    make(map[string]model.WatchlistEntry),
		intraday:     make(map[string]model.IntradaySeries),
	}
}

func (r *Repo) PutTransaction(ctx context.Context, tx model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions[tx.ID] = tx
	return nil
}

func (r *Repo) GetTransaction(ctx context.Context, id string) (model.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.transactions[id]
	if !ok {
		return model.Transaction{}, port.ErrNotFound
	}
	return tx, nil
}

func (r *Repo) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Transaction, 0, len(r.transactions))
	for _, tx := range r.transactions {
		out = append(out, tx)
	}
	sortTransactions(out)
	return out, nil
}

func (r *Repo) ListTransactionsByFund(ctx context.Context, fundCode string) ([]model.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Transaction, 0)
	for _, tx := range r.transactions {
		if tx.FundCode == fundCode {
			out = append(out, tx)
		}
	}
	sortTransactions(out)
	return out, nil
}

func (r *Repo) DeleteTransaction(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[id]; !ok {
		return port.ErrNotFound
	}
	delete(r.transactions, id)
	return nil
}

func (r *Repo) PutPosition(ctx context.Context, pos model.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions[pos.FundCode] = pos
	return nil
}

func (r *Repo) GetPosition(ctx context.Context, fundCode string) (model.Position, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pos, ok := r.positions[fundCode]
	if !ok {
		return model.Position{}, port.ErrNotFound
	}
	return pos, nil
}

func (r *Repo) ListPositions(ctx context.Context) ([]model.Position, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Position, 0, len(r.positions))
	for _, pos := range r.positions {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FundCode < out[j].FundCode })
	return out, nil
}

func (r *Repo) DeletePosition(ctx context.Context, fundCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.positions, fundCode)
	return nil
}

func (r *Repo) PutWatch(ctx context.Context, entry model.WatchlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchlist[entry.Code] = entry
	return nil
}

func (r *Repo) ListWatchlist(ctx context.Context) ([]model.WatchlistEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.WatchlistEntry, 0, len(r.watchlist))
	for _, entry := range r.watchlist {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AddedAt != out[j].AddedAt {
			return out[i].AddedAt < out[j].AddedAt
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (r *Repo) DeleteWatch(ctx context.Context, fundCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.watchlist, fundCode)
	return nil
}

func (r *Repo) PutIntraday(ctx context.Context, series model.IntradaySeries) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	series.Points = copyPoints(series.Points)
	r.intraday[series.FundCode] = series
	return nil
}

func (r *Repo) GetIntraday(ctx context.Context, fundCode string) (model.IntradaySeries, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	series, ok := r.intraday[fundCode]
	if !ok {
		return model.IntradaySeries{}, port.ErrNotFound
	}
	series.Points = copyPoints(series.Points)
	return series, nil
}

func (r *Repo) ListIntraday(ctx context.Context) ([]model.IntradaySeries, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.IntradaySeries, 0, len(r.intraday))
	for _, series := range r.intraday {
		series.Points = copyPoints(series.Points)
		out = append(out, series)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FundCode < out[j].FundCode })
	return out, nil
}

// copyPoints detaches a series' point slice so callers never share the
// stored backing array. Without it an in-place overwrite during append
// races a slice handed out by an earlier read.
func copyPoints(points []model.IntradayPoint) []model.IntradayPoint {
	if points == nil {
		return nil
	}
	out := make([]model.IntradayPoint, len(points))
	copy(out, points)
	return out
}

func (r *Repo) DeleteIntraday(ctx context.Context, fundCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.intraday, fundCode)
	return nil
}

func (r *Repo) ImportAll(ctx context.Context, txs []model.Transaction, positions []model.Position, watchlist []model.WatchlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range txs {
		r.transactions[tx.ID] = tx
	}
	for _, pos := range positions {
		r.positions[pos.FundCode] = pos
	}
	for _, entry := range watchlist {
		r.watchlist[entry.Code] = entry
	}
	return nil
}

func (r *Repo) Close() error { return nil }

func sortTransactions(txs []model.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Date != txs[j].Date {
			return txs[i].Date < txs[j].Date
		}
		return txs[i].CreatedAt < txs[j].CreatedAt
	})
}

var _ port.Store = (*Repo)(nil)
