package service

import (
	"context"
	"time"

	"fundtrack/internal/application/port"
	"fundtrack/internal/domain/model"
)

// WatchlistService manages the watched funds. Watching and holding are
// independent: a fund can be watched without a position and held without
// being watched.
type WatchlistService struct {
	store port.Store
}

func NewWatchlistService(store port.Store) *WatchlistService {
	return &WatchlistService{store: store}
}

func (s *WatchlistService) Add(ctx context.Context, code, name string) error {
	if code == "" {
		return ErrEmptyFundCode
	}
	return s.store.PutWatch(ctx, model.WatchlistEntry{
		Code:    code,
		Name:    name,
		AddedAt: time.Now().UnixMilli(),
	})
}

func (s *WatchlistService) List(ctx context.Context) ([]model.WatchlistEntry, error) {
	return s.store.ListWatchlist(ctx)
}

func (s *WatchlistService) Remove(ctx context.Context, code string) error {
	if code == "" {
		return ErrEmptyFundCode
	}
	return s.store.DeleteWatch(ctx, code)
}
