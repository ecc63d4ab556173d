package datareadiness

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"colprofile/adapters/datareadiness/coercer"
	"colprofile/adapters/stats/correlation"
	"colprofile/domain/core"
	"colprofile/domain/dataset"
	"colprofile/domain/profiling"
	"colprofile/internal"
)

// ProfilerAdapter profiles a whole dataset: type detection, per-column statistics,
// the dataset summary and the numeric correlation matrix.
type ProfilerAdapter struct {
	coercer *coercer.TypeCoercer
	config  profiling.ProfilingConfig
	logger  *internal.Logger
}

// NewProfilerAdapter creates a profiler. A nil coercer or logger uses the defaults.
func NewProfilerAdapter(c *coercer.TypeCoercer, config profiling.ProfilingConfig, logger *internal.Logger) *ProfilerAdapter {
	if c == nil {
		c = coercer.NewDefaultTypeCoercer()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ProfilerAdapter{coercer: c, config: config, logger: logger.With("profiler")}
}

// Config returns the profiling config in use
func (p *ProfilerAdapter) Config() profiling.ProfilingConfig {
	return p.config
}

// Profile implements ports.StatisticsProvider
func (p *ProfilerAdapter) Profile(ctx context.Context, ds *dataset.Dataset, columns []string) (*profiling.DatasetProfile, error) {
	return p.ProfileDataset(ctx, ds, columns)
}

// ProfileDataset profiles the listed columns (all columns when empty). Errors come only
// from bad input or cancellation; degenerate columns produce degraded records.
func (p *ProfilerAdapter) ProfileDataset(ctx context.Context, ds *dataset.Dataset, columns []string) (*profiling.DatasetProfile, error) {
	if ds == nil {
		return nil, fmt.Errorf("profile dataset: %w", core.ErrEmptyDataset)
	}
	if err := p.config.Validate(); err != nil {
		return nil, fmt.Errorf("profile dataset: %w", err)
	}
	if len(columns) == 0 {
		columns = ds.Columns
	}
	for _, c := range columns {
		if !ds.HasColumn(c) {
			return nil, core.NewColumnNotFoundError(c)
		}
	}

	start := time.Now()
	detector := NewTypeDetector(p.coercer, p.config)
	calculator := NewStatisticsCalculator(p.coercer, p.config)

	results := make([]profiling.ColumnStatistics, len(columns))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.MaxWorkers)
	for i, column := range columns {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.profileColumn(detector, calculator, column, ds.Values(column))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("profile dataset %s: %w", ds.ID, err)
	}

	profile := &profiling.DatasetProfile{
		DatasetID:  ds.ID,
		Hash:       ds.Hash(columns),
		Columns:    columns,
		Statistics: results,
		Summary:    Summarize(len(ds.Rows), results),
		ComputedAt: core.Now(),
	}
	if !p.config.SkipCorrelation {
		analyzer := correlation.NewAnalyzer(p.config.Significance, p.logger)
		corr := analyzer.Compute(p.numericVectors(ds, results))
		profile.Correlation = &corr
	}

	p.logger.Info("profiled dataset %s: %d rows, %d columns in %.2fms",
		ds.ID, len(ds.Rows), len(columns), float64(time.Since(start).Nanoseconds())/1e6)
	return profile, nil
}

func (p *ProfilerAdapter) profileColumn(detector *TypeDetector, calculator *StatisticsCalculator, column string, values []dataset.CellValue) profiling.ColumnStatistics {
	stats := calculator.Compute(column, values, p.detect(detector, column, values))
	p.logger.Debug("column %q: type=%s total=%d missing=%d", column, stats.Type, stats.Total, stats.Missing)
	return stats
}

// detect honours a type override before running inference. The binary hint is
// recomputed by the calculator over the full column.
func (p *ProfilerAdapter) detect(detector *TypeDetector, column string, values []dataset.CellValue) profiling.DataType {
	if t, ok := p.config.TypeOverrides[column]; ok {
		return t
	}
	return detector.Infer(values)
}

// numericVectors lines numeric columns up by row, with NaN where a cell is missing
// or does not read as a number.
func (p *ProfilerAdapter) numericVectors(ds *dataset.Dataset, results []profiling.ColumnStatistics) map[string][]float64 {
	vectors := make(map[string][]float64)
	for _, s := range results {
		if !s.Type.IsNumeric() {
			continue
		}
		vec := make([]float64, len(ds.Rows))
		for i, v := range ds.Values(s.Column) {
			f, ok := p.coercer.ParseNumber(v)
			if !ok {
				f = math.NaN()
			}
			vec[i] = f
		}
		vectors[s.Column] = vec
	}
	return vectors
}

// Summarize classifies columns for the dataset summary
func Summarize(rowCount int, results []profiling.ColumnStatistics) profiling.DatasetSummary {
	summary := profiling.DatasetSummary{
		RowCount:           rowCount,
		ColumnCount:        len(results),
		NumericColumns:     []string{},
		CategoricalColumns: []string{},
		TemporalColumns:    []string{},
	}
	for _, s := range results {
		summary.MissingCells += s.Missing
		switch {
		case s.Type.IsNumeric():
			summary.NumericColumns = append(summary.NumericColumns, s.Column)
		case s.Type.IsTemporal() || s.Type == profiling.TypeTime:
			summary.TemporalColumns = append(summary.TemporalColumns, s.Column)
		case s.Type.IsStringLike():
			summary.CategoricalColumns = append(summary.CategoricalColumns, s.Column)
		}
	}
	return summary
}
