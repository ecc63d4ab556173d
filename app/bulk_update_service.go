package app

import (
	"context"
	"fmt"

	"colprofile/domain/core"
	"colprofile/domain/dataset"
	"colprofile/domain/profiling"
	"colprofile/internal"
)

// BulkUpdateService fills rows of a dataset with column statistics
type BulkUpdateService struct {
	profiles *ProfileService
	resolver *BulkValueResolver
	logger   *internal.Logger
}

// FillResult is one resolved row
type FillResult struct {
	Index   int         `json:"index"`
	Before  dataset.Row `json:"before"`
	After   dataset.Row `json:"after"`
	Updated int         `json:"updated_fields"`
}

// NewBulkUpdateService creates a bulk update service
func NewBulkUpdateService(profiles *ProfileService, resolver *BulkValueResolver, logger *internal.Logger) *BulkUpdateService {
	if resolver == nil {
		resolver = NewBulkValueResolver(nil)
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &BulkUpdateService{profiles: profiles, resolver: resolver, logger: logger.With("bulk-update")}
}

// FillRow resolves the row at index against the dataset's statistics
func (s *BulkUpdateService) FillRow(ctx context.Context, ds *dataset.Dataset, index int, kind profiling.StatKind) (*FillResult, error) {
	if ds == nil {
		return nil, fmt.Errorf("fill row: %w", core.ErrEmptyDataset)
	}
	if index < 0 || index >= len(ds.Rows) {
		return nil, core.NewRowNotFoundError(index, len(ds.Rows))
	}
	stats, err := s.profiles.Statistics(ctx, ds, nil)
	if err != nil {
		return nil, fmt.Errorf("fill row %d: %w", index, err)
	}

	after, updated := s.resolver.Resolve(ds.Rows[index], stats, kind)
	s.logger.Info("filled %d fields of row %d with %s", updated, index, kind)
	return &FillResult{Index: index, Before: ds.Rows[index], After: after, Updated: updated}, nil
}

// Preview resolves the first limit rows without changing the dataset
func (s *BulkUpdateService) Preview(ctx context.Context, ds *dataset.Dataset, kind profiling.StatKind, limit int) ([]FillResult, error) {
	if ds == nil {
		return nil, fmt.Errorf("preview fill: %w", core.ErrEmptyDataset)
	}
	stats, err := s.profiles.Statistics(ctx, ds, nil)
	if err != nil {
		return nil, fmt.Errorf("preview fill: %w", err)
	}

	if limit <= 0 || limit > len(ds.Rows) {
		limit = len(ds.Rows)
	}
	previews := make([]FillResult, 0, limit)
	for i := 0; i < limit; i++ {
		after, updated := s.resolver.Resolve(ds.Rows[i], stats, kind)
		previews = append(previews, FillResult{Index: i, Before: ds.Rows[i], After: after, Updated: updated})
	}
	return previews, nil
}

// ApplyAll resolves every row and returns the edited dataset together with the total
// number of fields changed. The input dataset is left unchanged; the result keeps
// its ID.
func (s *BulkUpdateService) ApplyAll(ctx context.Context, ds *dataset.Dataset, kind profiling.StatKind) (*dataset.Dataset, int, error) {
	if ds == nil {
		return nil, 0, fmt.Errorf("apply fill: %w", core.ErrEmptyDataset)
	}
	stats, err := s.profiles.Statistics(ctx, ds, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("apply fill: %w", err)
	}

	rows := make([]dataset.Row, len(ds.Rows))
	total := 0
	for i, row := range ds.Rows {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		var n int
		rows[i], n = s.resolver.Resolve(row, stats, kind)
		total += n
	}

	out := &dataset.Dataset{ID: ds.ID, Columns: append([]string(nil), ds.Columns...), Rows: rows}
	s.logger.Info("filled %d fields across %d rows with %s", total, len(rows), kind)
	return out, total, nil
}
