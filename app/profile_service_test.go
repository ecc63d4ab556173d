package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"colprofile/adapters/datareadiness"
	"colprofile/domain/dataset"
	"colprofile/domain/profiling"
	"colprofile/internal"
)

type MockStatisticsProvider struct {
	mock.Mock
}

func (m *MockStatisticsProvider) Profile(ctx context.Context, ds *dataset.Dataset, columns []string) (*profiling.DatasetProfile, error) {
	args := m.Called(ctx, ds, columns)
	if p := args.Get(0); p != nil {
		return p.(*profiling.DatasetProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

func quietLogger() *internal.Logger {
	return internal.NewLogger(internal.LogLevelError)
}

func scoreDataset() *dataset.Dataset {
	return dataset.New([]string{"score"}, []dataset.Row{
		{"score": dataset.NewNumber(3)},
		{"score": dataset.NewNumber(4)},
	})
}

func TestProfileService_Memoizes(t *testing.T) {
	ds := scoreDataset()
	profile := &profiling.DatasetProfile{
		DatasetID:  ds.ID,
		Columns:    []string{"score"},
		Statistics: []profiling.ColumnStatistics{{Column: "score", Type: profiling.TypeInteger}},
	}

	provider := new(MockStatisticsProvider)
	provider.On("Profile", mock.Anything, ds, []string{"score"}).Return(profile, nil).Once()

	svc := NewProfileService(provider, quietLogger())
	first, err := svc.Profile(context.Background(), ds, nil)
	require.NoError(t, err)
	second, err := svc.Profile(context.Background(), ds, []string{"score"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, ProfileCacheStats{Hits: 1, Misses: 1}, svc.CacheStats())
	provider.AssertExpectations(t)
}

func TestProfileService_RecomputesOnChange(t *testing.T) {
	ds := scoreDataset()
	provider := new(MockStatisticsProvider)
	provider.On("Profile", mock.Anything, mock.Anything, mock.Anything).Return(&profiling.DatasetProfile{}, nil)

	svc := NewProfileService(provider, quietLogger())
	_, err := svc.Profile(context.Background(), ds, nil)
	require.NoError(t, err)

	ds.Rows[0]["score"] = dataset.NewNumber(10)
	_, err = svc.Profile(context.Background(), ds, nil)
	require.NoError(t, err)

	svc.Invalidate()
	_, err = svc.Profile(context.Background(), ds, nil)
	require.NoError(t, err)

	provider.AssertNumberOfCalls(t, "Profile", 3)
}

func TestProfileService_ErrorsAreNotCached(t *testing.T) {
	ds := scoreDataset()
	provider := new(MockStatisticsProvider)
	provider.On("Profile", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("unavailable")).Once()
	provider.On("Profile", mock.Anything, mock.Anything, mock.Anything).Return(&profiling.DatasetProfile{}, nil).Once()

	svc := NewProfileService(provider, quietLogger())
	_, err := svc.Profile(context.Background(), ds, nil)
	require.Error(t, err)

	_, err = svc.Profile(context.Background(), ds, nil)
	require.NoError(t, err)
	provider.AssertExpectations(t)
}

func TestProfileService_Statistics(t *testing.T) {
	ds := scoreDataset()
	provider := new(MockStatisticsProvider)
	provider.On("Profile", mock.Anything, ds, mock.Anything).Return(&profiling.DatasetProfile{
		Statistics: []profiling.ColumnStatistics{{Column: "score", Type: profiling.TypeFloat}},
	}, nil)

	stats, err := NewProfileService(provider, quietLogger()).Statistics(context.Background(), ds, nil)
	require.NoError(t, err)
	require.Contains(t, stats, "score")
	assert.Equal(t, profiling.TypeFloat, stats["score"].Type)
}

func TestProfileService_CallerEditsDoNotReachMemo(t *testing.T) {
	ds := scoreDataset()
	provider := new(MockStatisticsProvider)
	provider.On("Profile", mock.Anything, mock.Anything, mock.Anything).Return(&profiling.DatasetProfile{
		Columns: []string{"score"},
		Statistics: []profiling.ColumnStatistics{{
			Column:  "score",
			Type:    profiling.TypeInteger,
			Numeric: &profiling.NumericStats{Mean: 3.5, Outliers: []float64{}},
		}},
		Correlation: &profiling.CorrelationResult{
			Matrix: profiling.CorrelationMatrix{Columns: []string{"score"}, Values: [][]float64{{1}}},
		},
	}, nil).Once()

	svc := NewProfileService(provider, quietLogger())
	first, err := svc.Profile(context.Background(), ds, nil)
	require.NoError(t, err)
	first.Statistics[0].Numeric.Mean = -1
	first.Correlation.Matrix.Values[0][0] = 0

	second, err := svc.Profile(context.Background(), ds, nil)
	require.NoError(t, err)
	second.Statistics[0].Numeric.Outliers = append(second.Statistics[0].Numeric.Outliers, 99)

	third, err := svc.Profile(context.Background(), ds, nil)
	require.NoError(t, err)
	assert.Equal(t, 3.5, third.Statistics[0].Numeric.Mean)
	assert.Equal(t, 1.0, third.Correlation.Matrix.Values[0][0])
	assert.Empty(t, third.Statistics[0].Numeric.Outliers)
	provider.AssertExpectations(t)
}

func TestProfileService_SubSecondTimesAreDistinct(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	seen := func(ms ...int) *dataset.Dataset {
		rows := make([]dataset.Row, len(ms))
		for i, m := range ms {
			rows[i] = dataset.Row{"seen": dataset.NewTime(base.Add(time.Duration(m) * time.Millisecond))}
		}
		return dataset.New([]string{"seen"}, rows)
	}

	profiler := datareadiness.NewProfilerAdapter(nil, profiling.DefaultProfilingConfig(), quietLogger())
	svc := NewProfileService(profiler, quietLogger())

	_, err := svc.Profile(context.Background(), seen(100, 900), nil)
	require.NoError(t, err)
	later, err := svc.Profile(context.Background(), seen(500, 600), nil)
	require.NoError(t, err)

	stats, ok := later.Column("seen")
	require.True(t, ok)
	require.NotNil(t, stats.Temporal)
	assert.Equal(t, base.Add(500*time.Millisecond), stats.Temporal.Earliest)
	assert.Equal(t, ProfileCacheStats{Hits: 0, Misses: 2}, svc.CacheStats())
}
