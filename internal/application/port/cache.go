package port

import (
	"context"

	"fundtrack/internal/domain/model"
)

// EstimateCache mirrors each refresh cycle's estimates into a shared cache
// and fans the refresh payload out to external consumers. Writes are
// best-effort: the tracker logs and carries on when the cache is down.
type EstimateCache interface {
	PutEstimates(ctx context.Context, estimates map[string]model.Estimate) error
	PublishRefresh(ctx context.Context, payload []byte) error
	Close() error
}
