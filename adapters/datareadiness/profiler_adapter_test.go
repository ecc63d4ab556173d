package datareadiness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colprofile/domain/core"
	"colprofile/domain/dataset"
	"colprofile/domain/profiling"
	"colprofile/internal"
)

func quietProfiler(cfg profiling.ProfilingConfig) *ProfilerAdapter {
	return NewProfilerAdapter(nil, cfg, internal.NewLogger(internal.LogLevelError))
}

func sampleDataset() *dataset.Dataset {
	rows := []dataset.Row{
		{"age": dataset.NewString("25"), "income": dataset.NewNumber(40000), "region": dataset.NewString("North"), "joined": dataset.NewString("2024-01-15"), "active": dataset.NewString("true")},
		{"age": dataset.NewString("34"), "income": dataset.NewNumber(52000), "region": dataset.NewString("South"), "joined": dataset.NewString("2024-02-01"), "active": dataset.NewString("false")},
		{"age": dataset.NewString("45"), "income": dataset.NewNumber(71000), "region": dataset.NewString("North"), "joined": dataset.NewString("2023-12-31"), "active": dataset.NewString("true")},
		{"age": dataset.NewString("28"), "income": dataset.NewNumber(45000), "region": dataset.NewString("South"), "joined": dataset.NewNull(), "active": dataset.NewString("true")},
		{"age": dataset.NewString("52"), "income": dataset.NewNumber(83000), "region": dataset.NewString("North"), "joined": dataset.NewString("2024-03-10"), "active": dataset.NewString("false")},
	}
	return dataset.New([]string{"age", "income", "region", "joined", "active"}, rows)
}

func TestProfileDataset_EndToEnd(t *testing.T) {
	ds := sampleDataset()
	profile, err := quietProfiler(profiling.DefaultProfilingConfig()).Profile(context.Background(), ds, nil)
	require.NoError(t, err)

	assert.Equal(t, ds.ID, profile.DatasetID)
	assert.Equal(t, ds.Hash(ds.Columns), profile.Hash)
	assert.Equal(t, ds.Columns, profile.Columns)
	require.Len(t, profile.Statistics, 5)

	types := map[string]profiling.DataType{}
	for _, s := range profile.Statistics {
		types[s.Column] = s.Type
	}
	assert.Equal(t, profiling.TypeInteger, types["age"])
	assert.Equal(t, profiling.TypeInteger, types["income"])
	assert.Equal(t, profiling.TypeCategory, types["region"])
	assert.Equal(t, profiling.TypeDate, types["joined"])
	assert.Equal(t, profiling.TypeBoolean, types["active"])

	assert.Equal(t, 5, profile.Summary.RowCount)
	assert.Equal(t, 5, profile.Summary.ColumnCount)
	assert.Equal(t, 1, profile.Summary.MissingCells)
	assert.Equal(t, []string{"age", "income"}, profile.Summary.NumericColumns)
	assert.Equal(t, []string{"region"}, profile.Summary.CategoricalColumns)
	assert.Equal(t, []string{"joined"}, profile.Summary.TemporalColumns)

	require.NotNil(t, profile.Correlation)
	assert.Equal(t, []string{"age", "income"}, profile.Correlation.Matrix.Columns)
	r, ok := profile.Correlation.Matrix.At("age", "income")
	require.True(t, ok)
	assert.Greater(t, r, 0.9)
	assert.LessOrEqual(t, r, 1.0)
}

func TestProfileDataset_StatisticsAreDeterministic(t *testing.T) {
	ds := sampleDataset()
	cfg := profiling.DefaultProfilingConfig()
	cfg.MaxWorkers = 4
	p := quietProfiler(cfg)

	first, err := p.Profile(context.Background(), ds, nil)
	require.NoError(t, err)
	second, err := p.Profile(context.Background(), ds, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Statistics, second.Statistics)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Correlation, second.Correlation)
	assert.Equal(t, first.Hash, second.Hash)
}

func TestProfileDataset_ColumnSubset(t *testing.T) {
	ds := sampleDataset()
	profile, err := quietProfiler(profiling.DefaultProfilingConfig()).Profile(context.Background(), ds, []string{"region", "age"})
	require.NoError(t, err)

	require.Len(t, profile.Statistics, 2)
	assert.Equal(t, "region", profile.Statistics[0].Column)
	assert.Equal(t, "age", profile.Statistics[1].Column)
	assert.NotEqual(t, ds.Hash(ds.Columns), profile.Hash)
}

func TestProfileDataset_TypeOverrides(t *testing.T) {
	cfg := profiling.DefaultProfilingConfig()
	cfg.TypeOverrides = map[string]profiling.DataType{"age": profiling.TypeString}

	profile, err := quietProfiler(cfg).Profile(context.Background(), sampleDataset(), nil)
	require.NoError(t, err)

	age, ok := profile.Column("age")
	require.True(t, ok)
	assert.Equal(t, profiling.TypeString, age.Type)
	require.NotNil(t, age.Frequency)
	assert.Nil(t, age.Numeric)
	assert.Equal(t, 5, age.Frequency.UniqueCount)
	assert.Equal(t, []string{"income"}, profile.Summary.NumericColumns)
}

func TestProfileDataset_SkipCorrelation(t *testing.T) {
	cfg := profiling.DefaultProfilingConfig()
	cfg.SkipCorrelation = true

	profile, err := quietProfiler(cfg).Profile(context.Background(), sampleDataset(), nil)
	require.NoError(t, err)
	assert.Nil(t, profile.Correlation)
}

func TestProfileDataset_Errors(t *testing.T) {
	p := quietProfiler(profiling.DefaultProfilingConfig())

	_, err := p.Profile(context.Background(), nil, nil)
	assert.ErrorIs(t, err, core.ErrEmptyDataset)

	_, err = p.Profile(context.Background(), sampleDataset(), []string{"missing"})
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
	assert.True(t, core.IsNotFoundError(err))

	bad := profiling.DefaultProfilingConfig()
	bad.TopN = 0
	_, err = quietProfiler(bad).Profile(context.Background(), sampleDataset(), nil)
	assert.Error(t, err)
}

func TestProfileDataset_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := quietProfiler(profiling.DefaultProfilingConfig()).Profile(ctx, sampleDataset(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProfileDataset_NoRows(t *testing.T) {
	ds := dataset.New([]string{"a", "b"}, nil)
	profile, err := quietProfiler(profiling.DefaultProfilingConfig()).Profile(context.Background(), ds, nil)
	require.NoError(t, err)

	for _, s := range profile.Statistics {
		assert.Equal(t, profiling.TypeEmpty, s.Type)
		assert.Equal(t, 0, s.Total)
	}
	assert.Empty(t, profile.Correlation.Matrix.Columns)
}

func TestSummarize(t *testing.T) {
	summary := Summarize(4, []profiling.ColumnStatistics{
		{Column: "f", Type: profiling.TypeFloat, Missing: 1},
		{Column: "t", Type: profiling.TypeTime},
		{Column: "o", Type: profiling.TypeObject, Missing: 2},
		{Column: "ts", Type: profiling.TypeTimestamp},
		{Column: "b", Type: profiling.TypeBoolean},
		{Column: "e", Type: profiling.TypeEmpty, Missing: 4},
	})

	assert.Equal(t, 4, summary.RowCount)
	assert.Equal(t, 6, summary.ColumnCount)
	assert.Equal(t, 7, summary.MissingCells)
	assert.Equal(t, []string{"f"}, summary.NumericColumns)
	assert.Equal(t, []string{"o"}, summary.CategoricalColumns)
	assert.Equal(t, []string{"t", "ts"}, summary.TemporalColumns)
}
