package tracker

import (
	"sync"
	"time"

	"fundtrack/internal/domain/model"
)

// Snapshot 一次刷新后的完整视图，HTTP 层与 WebSocket 推送共用
type Snapshot struct {
	Estimates   map[string]model.Estimate `json:"estimates"`
	Stats       model.ProfitStats         `json:"stats"`
	RefreshedAt time.Time                 `json:"refreshedAt"`
}

// State holds the latest refresh result. Writers replace the whole
// estimate map at once so readers never observe a half-applied refresh.
type State struct {
	mu sync.Mutex

	estimates   map[string]model.Estimate
	stats       model.ProfitStats
	refreshedAt time.Time
}

func NewState() *State {
	return &State{estimates: map[string]model.Estimate{}}
}

func (s *State) SetRefresh(estimates map[string]model.Estimate, stats model.ProfitStats, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.estimates = estimates
	s.stats = stats
	s.refreshedAt = at
}

func (s *State) Estimate(fundCode string) (model.Estimate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	est, ok := s.estimates[fundCode]
	return est, ok
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]model.Estimate, len(s.estimates))
	for k, v := range s.estimates {
		out[k] = v
	}
	return Snapshot{Estimates: out, Stats: s.stats, RefreshedAt: s.refreshedAt}
}
