package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"fundtrack/internal/application/port"
	"fundtrack/internal/domain/model"
	domain "fundtrack/internal/domain/service"
)

// IntradayService owns the self-accumulating per-fund intraday series.
// The upstream offers no intraday history, so the series is built from our
// own polling: append merges by time key, the first append of a new day
// discards yesterday's points, and reads filter out stale days on their
// own so correctness never depends on pruning.
type IntradayService struct {
	store port.Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per fund; append is read-modify-write
}

func NewIntradayService(store port.Store) *IntradayService {
	return &IntradayService{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *IntradayService) lockFor(fundCode string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.locks[fundCode]
	if l == nil {
		l = &sync.Mutex{}
		s.locks[fundCode] = l
	}
	return l
}

// Append records one polled sample. Appends for the same fund are
// serialized so a concurrent re-poll cannot lose a point; different funds
// do not contend.
func (s *IntradayService) Append(ctx context.Context, fundCode string, point model.IntradayPoint) error {
	if fundCode == "" {
		return ErrEmptyFundCode
	}

	l := s.lockFor(fundCode)
	l.Lock()
	defer l.Unlock()

	today := domain.DayKey(time.Now())

	series, err := s.store.GetIntraday(ctx, fundCode)
	if errors.Is(err, port.ErrNotFound) || (err == nil && series.Date != today) {
		// day rollover: yesterday's accumulation is discarded, no archive
		series = model.IntradaySeries{FundCode: fundCode, Date: today}
	} else if err != nil {
		return fmt.Errorf("get intraday: %w", err)
	}

	replaced := false
	for i := range series.Points {
		if series.Points[i].Time == point.Time {
			series.Points[i] = point // idempotent re-poll
			replaced = true
			break
		}
	}
	if !replaced {
		series.Points = append(series.Points, point)
		sort.Slice(series.Points, func(i, j int) bool {
			return series.Points[i].Time < series.Points[j].Time
		})
	}
	series.UpdatedAt = time.Now().UnixMilli()

	if err := s.store.PutIntraday(ctx, series); err != nil {
		return fmt.Errorf("put intraday: %w", err)
	}
	return nil
}

// Read returns today's points for the fund, oldest first. A stored series
// from a prior day is treated as absent even if nothing has been appended
// yet today.
func (s *IntradayService) Read(ctx context.Context, fundCode string) ([]model.IntradayPoint, error) {
	series, err := s.store.GetIntraday(ctx, fundCode)
	if errors.Is(err, port.ErrNotFound) {
		return []model.IntradayPoint{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get intraday: %w", err)
	}
	if series.Date != domain.DayKey(time.Now()) {
		return []model.IntradayPoint{}, nil
	}
	if series.Points == nil {
		return []model.IntradayPoint{}, nil
	}
	return series.Points, nil
}

// Prune deletes every stored series whose date is not today. Best-effort
// housekeeping to bound storage growth; reads are already stale-safe.
func (s *IntradayService) Prune(ctx context.Context) (int, error) {
	all, err := s.store.ListIntraday(ctx)
	if err != nil {
		return 0, fmt.Errorf("list intraday: %w", err)
	}

	today := domain.DayKey(time.Now())
	removed := 0
	for _, series := range all {
		if series.Date == today {
			continue
		}
		if err := s.store.DeleteIntraday(ctx, series.FundCode); err != nil {
			return removed, fmt.Errorf("delete intraday %s: %w", series.FundCode, err)
		}
		removed++
	}
	return removed, nil
}
