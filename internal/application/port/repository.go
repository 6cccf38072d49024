package port

import (
	"context"
	"errors"

	"fundtrack/internal/domain/model"
)

// ErrNotFound is returned by lookups when the record does not exist.
// Store implementations map their driver-specific miss onto it.
var ErrNotFound = errors.New("record not found")

// Store is the key-value style persistence surface over the four logical
// collections: transactions (by id, secondary lookup by fund code),
// positions (by fund code), watchlist (by fund code), intraday series
// (by fund code). ImportAll is the atomic multi-collection bulk upsert
// backing merge-import.
type Store interface {
	// Transactions
	PutTransaction(ctx context.Context, tx model.Transaction) error
	GetTransaction(ctx context.Context, id string) (model.Transaction, error)
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	ListTransactionsByFund(ctx context.Context, fundCode string) ([]model.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	// Positions
	PutPosition(ctx context.Context, pos model.Position) error
	GetPosition(ctx context.Context, fundCode string) (model.Position, error)
	ListPositions(ctx context.Context) ([]model.Position, error)
	DeletePosition(ctx context.Context, fundCode string) error

	// Watchlist
	PutWatch(ctx context.Context, entry model.WatchlistEntry) error
	ListWatchlist(ctx context.Context) ([]model.WatchlistEntry, error)
	DeleteWatch(ctx context.Context, fundCode string) error

	// Intraday series
	PutIntraday(ctx context.Context, series model.IntradaySeries) error
	GetIntraday(ctx context.Context, fundCode string) (model.IntradaySeries, error)
	ListIntraday(ctx context.Context) ([]model.IntradaySeries, error)
	DeleteIntraday(ctx context.Context, fundCode string) error

	// ImportAll upserts every given record in a single storage transaction.
	// Pre-existing unrelated records are left alone.
	ImportAll(ctx context.Context, txs []model.Transaction, positions []model.Position, watchlist []model.WatchlistEntry) error

	Close() error
}
