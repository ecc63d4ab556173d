package container

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colprofile/adapters/api"
	"colprofile/adapters/datareadiness"
	"colprofile/domain/profiling"
	"colprofile/internal"
	"colprofile/internal/config"
)

func testConfig() *config.Config {
	defaults := profiling.DefaultProfilingConfig()
	return &config.Config{
		Server: config.ServerConfig{Port: "8080"},
		Stats: config.StatsConfig{
			TopN:              defaults.TopN,
			CategoryMaxUnique: defaults.CategoryMaxUnique,
			CategoryMaxRatio:  defaults.CategoryMaxRatio,
			OutlierFence:      defaults.OutlierFence,
			SignificanceMode:  defaults.Significance,
			MaxWorkers:        1,
			ReservedFields:    config.DefaultReservedFields,
		},
	}
}

func TestNew_LocalProvider(t *testing.T) {
	c, err := New(testConfig(), internal.NewLogger(internal.LogLevelError))
	require.NoError(t, err)

	assert.IsType(t, &datareadiness.ProfilerAdapter{}, c.Provider)
	assert.NotNil(t, c.Profiles)
	assert.NotNil(t, c.Bulk)
	assert.NotNil(t, c.Handler)
	assert.NoError(t, c.Shutdown(context.Background()))
}

func TestNew_RemoteProvider(t *testing.T) {
	cfg := testConfig()
	cfg.Remote = config.RemoteConfig{URL: "http://stats.local", Timeout: time.Second}

	c, err := New(cfg, internal.NewLogger(internal.LogLevelError))
	require.NoError(t, err)
	assert.IsType(t, &api.RemoteProvider{}, c.Provider)
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestNew_ProfilingOverride(t *testing.T) {
	pc := profiling.DefaultProfilingConfig()
	pc.TopN = 0

	_, err := New(testConfig(), nil, WithProfilingConfig(pc))
	assert.Error(t, err)

	pc.TopN = 5
	c, err := New(testConfig(), internal.NewLogger(internal.LogLevelError), WithProfilingConfig(pc))
	require.NoError(t, err)
	assert.Equal(t, 5, c.Provider.(*datareadiness.ProfilerAdapter).Config().TopN)
}
