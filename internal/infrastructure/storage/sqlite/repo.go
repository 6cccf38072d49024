package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"fundtrack/internal/application/port"
	"fundtrack/internal/domain/model"
)

// Repo is the sqlite-backed Store. A single connection serializes all
// writes, which also makes the intraday read-modify-write safe at the
// storage level.
type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  fund_code TEXT NOT NULL,
  trade_type TEXT NOT NULL,
  amount REAL NOT NULL,
  shares REAL NOT NULL,
  net_value REAL NOT NULL,
  fee REAL NOT NULL,
  trade_date TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tx_fund ON transactions(fund_code);
CREATE INDEX IF NOT EXISTS idx_tx_date ON transactions(trade_date);

CREATE TABLE IF NOT EXISTS positions (
  fund_code TEXT PRIMARY KEY,
  fund_name TEXT NOT NULL,
  shares REAL NOT NULL,
  cost REAL NOT NULL,
  avg_cost REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS watchlist (
  fund_code TEXT PRIMARY KEY,
  fund_name TEXT NOT NULL,
  added_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS intraday (
  fund_code TEXT PRIMARY KEY,
  series_date TEXT NOT NULL,
  points TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_intraday_date ON intraday(series_date);
`)
	return err
}

func (r *Repo) PutTransaction(ctx context.Context, tx model.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions(id, fund_code, trade_type, amount, shares, net_value, fee, trade_date, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		fund_code=excluded.fund_code, trade_type=excluded.trade_type, amount=excluded.amount,
		shares=excluded.shares, net_value=excluded.net_value, fee=excluded.fee,
		trade_date=excluded.trade_date, created_at=excluded.created_at
	`, tx.ID, tx.FundCode, string(tx.Type), tx.Amount, tx.Shares, tx.NetValue, tx.Fee, tx.Date, tx.CreatedAt)
	return err
}

func (r *Repo) GetTransaction(ctx context.Context, id string) (model.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, fund_code, trade_type, amount, shares, net_value, fee, trade_date, created_at
		FROM transactions WHERE id=?`, id)
	return scanTransaction(row)
}

func (r *Repo) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	return r.queryTransactions(ctx, `
		SELECT id, fund_code, trade_type, amount, shares, net_value, fee, trade_date, created_at
		FROM transactions ORDER BY trade_date, created_at`)
}

func (r *Repo) ListTransactionsByFund(ctx context.Context, fundCode string) ([]model.Transaction, error) {
	return r.queryTransactions(ctx, `
		SELECT id, fund_code, trade_type, amount, shares, net_value, fee, trade_date, created_at
		FROM transactions WHERE fund_code=? ORDER BY trade_date, created_at`, fundCode)
}

func (r *Repo) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := []model.Transaction{}
	for rows.Next() {
		var tx model.Transaction
		var tradeType string
		if err := rows.Scan(&tx.ID, &tx.FundCode, &tradeType, &tx.Amount, &tx.Shares, &tx.NetValue, &tx.Fee, &tx.Date, &tx.CreatedAt); err != nil {
			return nil, err
		}
		tx.Type = model.TradeType(tradeType)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func scanTransaction(row *sql.Row) (model.Transaction, error) {
	var tx model.Transaction
	var tradeType string
	err := row.Scan(&tx.ID, &tx.FundCode, &tradeType, &tx.Amount, &tx.Shares, &tx.NetValue, &tx.Fee, &tx.Date, &tx.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, port.ErrNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}
	tx.Type = model.TradeType(tradeType)
	return tx, nil
}

func (r *Repo) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrNotFound
	}
	return nil
}

func (r *Repo) PutPosition(ctx context.Context, pos model.Position) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO positions(fund_code, fund_name, shares, cost, avg_cost)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(fund_code) DO UPDATE SET
		fund_name=excluded.fund_name, shares=excluded.shares, cost=excluded.cost, avg_cost=excluded.avg_cost
	`, pos.FundCode, pos.FundName, pos.Shares, pos.Cost, pos.AvgCost)
	return err
}

func (r *Repo) GetPosition(ctx context.Context, fundCode string) (model.Position, error) {
	var pos model.Position
	err := r.db.QueryRowContext(ctx, `
		SELECT fund_code, fund_name, shares, cost, avg_cost FROM positions WHERE fund_code=?`, fundCode).
		Scan(&pos.FundCode, &pos.FundName, &pos.Shares, &pos.Cost, &pos.AvgCost)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Position{}, port.ErrNotFound
	}
	return pos, err
}

func (r *Repo) ListPositions(ctx context.Context) ([]model.Position, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT fund_code, fund_name, shares, cost, avg_cost FROM positions ORDER BY fund_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	positions := []model.Position{}
	for rows.Next() {
		var pos model.Position
		if err := rows.Scan(&pos.FundCode, &pos.FundName, &pos.Shares, &pos.Cost, &pos.AvgCost); err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}

func (r *Repo) DeletePosition(ctx context.Context, fundCode string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM positions WHERE fund_code=?`, fundCode)
	return err
}

func (r *Repo) PutWatch(ctx context.Context, entry model.WatchlistEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO watchlist(fund_code, fund_name, added_at)
		VALUES(?, ?, ?)
		ON CONFLICT(fund_code) DO UPDATE SET fund_name=excluded.fund_name
	`, entry.Code, entry.Name, entry.AddedAt)
	return err
}

func (r *Repo) ListWatchlist(ctx context.Context) ([]model.WatchlistEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT fund_code, fund_name, added_at FROM watchlist ORDER BY added_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.WatchlistEntry{}
	for rows.Next() {
		var e model.WatchlistEntry
		if err := rows.Scan(&e.Code, &e.Name, &e.AddedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *Repo) DeleteWatch(ctx context.Context, fundCode string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM watchlist WHERE fund_code=?`, fundCode)
	return err
}

func (r *Repo) PutIntraday(ctx context.Context, series model.IntradaySeries) error {
	points, err := json.Marshal(series.Points)
	if err != nil {
		return fmt.Errorf("marshal points: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO intraday(fund_code, series_date, points, updated_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(fund_code) DO UPDATE SET
		series_date=excluded.series_date, points=excluded.points, updated_at=excluded.updated_at
	`, series.FundCode, series.Date, string(points), series.UpdatedAt)
	return err
}

func (r *Repo) GetIntraday(ctx context.Context, fundCode string) (model.IntradaySeries, error) {
	var series model.IntradaySeries
	var points string
	err := r.db.QueryRowContext(ctx, `
		SELECT fund_code, series_date, points, updated_at FROM intraday WHERE fund_code=?`, fundCode).
		Scan(&series.FundCode, &series.Date, &points, &series.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.IntradaySeries{}, port.ErrNotFound
	}
	if err != nil {
		return model.IntradaySeries{}, err
	}
	if err := json.Unmarshal([]byte(points), &series.Points); err != nil {
		return model.IntradaySeries{}, fmt.Errorf("unmarshal points: %w", err)
	}
	return series, nil
}

func (r *Repo) ListIntraday(ctx context.Context) ([]model.IntradaySeries, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT fund_code, series_date, points, updated_at FROM intraday`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.IntradaySeries{}
	for rows.Next() {
		var series model.IntradaySeries
		var points string
		if err := rows.Scan(&series.FundCode, &series.Date, &points, &series.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(points), &series.Points); err != nil {
			return nil, fmt.Errorf("unmarshal points: %w", err)
		}
		out = append(out, series)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteIntraday(ctx context.Context, fundCode string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM intraday WHERE fund_code=?`, fundCode)
	return err
}

// ImportAll upserts all records inside one database transaction, so a
// half-written import never becomes visible.
func (r *Repo) ImportAll(ctx context.Context, txs []model.Transaction, positions []model.Position, watchlist []model.WatchlistEntry) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer dbTx.Rollback()

	for _, tx := range txs {
		if _, err := dbTx.ExecContext(ctx, `
			INSERT INTO transactions(id, fund_code, trade_type, amount, shares, net_value, fee, trade_date, created_at)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
			fund_code=excluded.fund_code, trade_type=excluded.trade_type, amount=excluded.amount,
			shares=excluded.shares, net_value=excluded.net_value, fee=excluded.fee,
			trade_date=excluded.trade_date, created_at=excluded.created_at
		`, tx.ID, tx.FundCode, string(tx.Type), tx.Amount, tx.Shares, tx.NetValue, tx.Fee, tx.Date, tx.CreatedAt); err != nil {
			return err
		}
	}
	for _, pos := range positions {
		if _, err := dbTx.ExecContext(ctx, `
			INSERT INTO positions(fund_code, fund_name, shares, cost, avg_cost)
			VALUES(?, ?, ?, ?, ?)
			ON CONFLICT(fund_code) DO UPDATE SET
			fund_name=excluded.fund_name, shares=excluded.shares, cost=excluded.cost, avg_cost=excluded.avg_cost
		`, pos.FundCode, pos.FundName, pos.Shares, pos.Cost, pos.AvgCost); err != nil {
			return err
		}
	}
	for _, entry := range watchlist {
		if _, err := dbTx.ExecContext(ctx, `
			INSERT INTO watchlist(fund_code, fund_name, added_at)
			VALUES(?, ?, ?)
			ON CONFLICT(fund_code) DO UPDATE SET fund_name=excluded.fund_name
		`, entry.Code, entry.Name, entry.AddedAt); err != nil {
			return err
		}
	}
	return dbTx.Commit()
}

var _ port.Store = (*Repo)(nil)
