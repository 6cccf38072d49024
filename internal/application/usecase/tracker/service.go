package tracker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"fundtrack/internal/application/port"
	appsvc "fundtrack/internal/application/service"
	"fundtrack/internal/domain/model"
	domainsvc "fundtrack/internal/domain/service"
)

// Broadcaster pushes a refresh payload to connected clients.
type Broadcaster interface {
	Broadcast(payload []byte)
}

type ServiceDeps struct {
	Store        port.Store
	Gateway      port.QuoteGateway
	Intraday     *appsvc.IntradayService
	Cache        port.EstimateCache // optional
	Broadcast    Broadcaster        // optional
	RefreshEvery time.Duration
	PruneEvery   time.Duration
}

// Service drives the periodic refresh loop: pull estimates for every
// held and watched fund, recompute profit stats, record intraday points
// during the trading session, and fan the snapshot out.
type Service struct {
	deps ServiceDeps
	st   *State
	now  func() time.Time
}

func NewService(deps ServiceDeps) *Service {
	return &Service{deps: deps, st: NewState(), now: time.Now}
}

func (s *Service) State() *State { return s.st }

// Refresh performs one pull-and-recompute cycle. Funds whose estimate
// fetch failed are simply absent from the result this round.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	positions, err := s.deps.Store.ListPositions(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	watchlist, err := s.deps.Store.ListWatchlist(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	codes := make([]string, 0, len(positions)+len(watchlist))
	seen := map[string]struct{}{}
	for _, pos := range positions {
		if _, ok := seen[pos.FundCode]; !ok {
			seen[pos.FundCode] = struct{}{}
			codes = append(codes, pos.FundCode)
		}
	}
	for _, entry := range watchlist {
		if _, ok := seen[entry.Code]; !ok {
			seen[entry.Code] = struct{}{}
			codes = append(codes, entry.Code)
		}
	}

	now := s.now()
	estimates := map[string]model.Estimate{}
	if len(codes) > 0 {
		estimates = s.deps.Gateway.Batch(ctx, codes)
	}

	stats := domainsvc.ComputeStats(positions, estimates)
	s.st.SetRefresh(estimates, stats, now)

	if domainsvc.InTradingSession(now) {
		clock := domainsvc.ClockKey(now)
		for code, est := range estimates {
			point := model.IntradayPoint{Time: clock, Value: est.EstimateValue, Rate: est.RateValue()}
			if err := s.deps.Intraday.Append(ctx, code, point); err != nil {
				log.Warn().Err(err).Str("fund", code).Msg("intraday append failed")
			}
		}
	}

	snap := s.st.Snapshot()
	s.publish(ctx, snap)
	return snap, nil
}

func (s *Service) publish(ctx context.Context, snap Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		log.Warn().Err(err).Msg("marshal snapshot failed")
		return
	}
	if s.deps.Cache != nil {
		if err := s.deps.Cache.PutEstimates(ctx, snap.Estimates); err != nil {
			log.Warn().Err(err).Msg("cache estimates failed")
		}
		if err := s.deps.Cache.PublishRefresh(ctx, payload); err != nil {
			log.Warn().Err(err).Msg("publish refresh failed")
		}
	}
	if s.deps.Broadcast != nil {
		s.deps.Broadcast.Broadcast(payload)
	}
}

// Run blocks until ctx is cancelled, refreshing and pruning on their
// own tickers. The first refresh happens immediately.
func (s *Service) Run(ctx context.Context) error {
	if _, err := s.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("initial refresh failed")
	}

	refreshTicker := time.NewTicker(s.deps.RefreshEvery)
	defer refreshTicker.Stop()
	pruneTicker := time.NewTicker(s.deps.PruneEvery)
	defer pruneTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-refreshTicker.C:
			if _, err := s.Refresh(ctx); err != nil {
				log.Warn().Err(err).Msg("refresh failed")
			}

		case <-pruneTicker.C:
			n, err := s.deps.Intraday.Prune(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("prune failed")
				continue
			}
			if n > 0 {
				log.Info().Int("removed", n).Msg("stale intraday series pruned")
			}
		}
	}
}
