package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fundtrack/internal/application/port"
	"fundtrack/internal/domain/model"
	domain "fundtrack/internal/domain/service"
)

// PortfolioService owns the transaction log and the positions derived from
// it. Writes run one at a time from the single user-facing input surface;
// validation happens here, before anything reaches the ledger.
type PortfolioService struct {
	store port.Store
}

func NewPortfolioService(store port.Store) *PortfolioService {
	return &PortfolioService{store: store}
}

// AddTransaction validates and records a trade, then folds it into the
// fund's position. fundName is the display name to use when the trade
// opens a new position; pass "" when unknown and the fund code is used.
// The transaction is persisted before the position so a failed write
// leaves derived state untouched.
func (s *PortfolioService) AddTransaction(ctx context.Context, tx model.Transaction, fundName string) (model.Transaction, error) {
	if tx.FundCode == "" {
		return model.Transaction{}, ErrEmptyFundCode
	}
	if !tx.Type.Valid() {
		return model.Transaction{}, ErrUnknownTradeType
	}
	if tx.Amount <= 0 || tx.Shares <= 0 || tx.NetValue <= 0 || tx.Fee < 0 {
		return model.Transaction{}, ErrInvalidTransaction
	}

	now := time.Now()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.CreatedAt == 0 {
		tx.CreatedAt = now.UnixMilli()
	}
	if tx.Date == "" {
		tx.Date = domain.DayKey(now)
	}

	if err := s.store.PutTransaction(ctx, tx); err != nil {
		return model.Transaction{}, fmt.Errorf("put transaction: %w", err)
	}

	pos, err := s.store.GetPosition(ctx, tx.FundCode)
	if errors.Is(err, port.ErrNotFound) {
		pos = model.Position{FundCode: tx.FundCode, FundName: fundName}
	} else if err != nil {
		return model.Transaction{}, fmt.Errorf("get position: %w", err)
	}

	pos = domain.Apply(pos, tx)
	if err := s.store.PutPosition(ctx, pos); err != nil {
		return model.Transaction{}, fmt.Errorf("put position: %w", err)
	}
	return tx, nil
}

// DeleteTransaction removes a trade and rebuilds the fund's position by
// replaying the remaining history. An empty history leaves a flat
// position record behind; positions are only deleted when the fund is
// removed from tracking.
func (s *PortfolioService) DeleteTransaction(ctx context.Context, id string) error {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return s.rebuild(ctx, tx.FundCode)
}

func (s *PortfolioService) rebuild(ctx context.Context, fundCode string) error {
	txs, err := s.store.ListTransactionsByFund(ctx, fundCode)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	pos := domain.Replay(txs)
	pos.FundCode = fundCode

	// keep the display name the old position carried
	if old, err := s.store.GetPosition(ctx, fundCode); err == nil && old.FundName != "" {
		pos.FundName = old.FundName
	}
	if pos.FundName == "" {
		pos.FundName = fundCode
	}

	if err := s.store.PutPosition(ctx, pos); err != nil {
		return fmt.Errorf("put position: %w", err)
	}
	return nil
}

func (s *PortfolioService) Positions(ctx context.Context) ([]model.Position, error) {
	return s.store.ListPositions(ctx)
}

func (s *PortfolioService) Transactions(ctx context.Context, fundCode string) ([]model.Transaction, error) {
	if fundCode == "" {
		return s.store.ListTransactions(ctx)
	}
	return s.store.ListTransactionsByFund(ctx, fundCode)
}

// RemoveFund drops the fund from tracking: watchlist entry and position
// both go. The transaction log is kept as a historical record.
func (s *PortfolioService) RemoveFund(ctx context.Context, fundCode string) error {
	if fundCode == "" {
		return ErrEmptyFundCode
	}
	if err := s.store.DeleteWatch(ctx, fundCode); err != nil && !errors.Is(err, port.ErrNotFound) {
		return fmt.Errorf("delete watch: %w", err)
	}
	if err := s.store.DeletePosition(ctx, fundCode); err != nil && !errors.Is(err, port.ErrNotFound) {
		return fmt.Errorf("delete position: %w", err)
	}
	return nil
}
