package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fundtrack/internal/application/port"
	"fundtrack/internal/domain/model"
)

// ExportDocument is the single-file backup shape: the full transaction
// log, positions and watchlist plus the export timestamp. Intraday series
// are excluded since they only ever describe the current day.
type ExportDocument struct {
	Transactions []model.Transaction    `json:"transactions"`
	Positions    []model.Position       `json:"positions"`
	Watchlist    []model.WatchlistEntry `json:"watchlist"`
	ExportedAt   string                 `json:"exportedAt"`
}

type ExportService struct {
	store port.Store
}

func NewExportService(store port.Store) *ExportService {
	return &ExportService{store: store}
}

func (s *ExportService) Export(ctx context.Context) (ExportDocument, error) {
	doc := ExportDocument{
		Transactions: []model.Transaction{},
		Positions:    []model.Position{},
		Watchlist:    []model.WatchlistEntry{},
		ExportedAt:   time.Now().Format(time.RFC3339),
	}

	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return ExportDocument{}, fmt.Errorf("list transactions: %w", err)
	}
	positions, err := s.store.ListPositions(ctx)
	if err != nil {
		return ExportDocument{}, fmt.Errorf("list positions: %w", err)
	}
	watchlist, err := s.store.ListWatchlist(ctx)
	if err != nil {
		return ExportDocument{}, fmt.Errorf("list watchlist: %w", err)
	}

	doc.Transactions = append(doc.Transactions, txs...)
	doc.Positions = append(doc.Positions, positions...)
	doc.Watchlist = append(doc.Watchlist, watchlist...)
	return doc, nil
}

func (s *ExportService) ExportJSON(ctx context.Context) ([]byte, error) {
	doc, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Import upserts every record from the document into its collection in one
// storage transaction. Merge semantics: records already in the store but
// absent from the document are untouched.
func (s *ExportService) Import(ctx context.Context, data []byte) error {
	var doc ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if err := s.store.ImportAll(ctx, doc.Transactions, doc.Positions, doc.Watchlist); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return nil
}
