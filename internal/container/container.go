package container

import (
	"context"
	"fmt"

	"colprofile/adapters/api"
	"colprofile/adapters/datareadiness"
	"colprofile/adapters/datareadiness/coercer"
	"colprofile/adapters/excel"
	"colprofile/app"
	"colprofile/domain/profiling"
	"colprofile/internal"
	"colprofile/internal/config"
	"colprofile/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Statistics engine, local or remote
	Provider ports.StatisticsProvider

	// Services
	Profiles *app.ProfileService
	Bulk     *app.BulkUpdateService

	// Ingestion and transport
	Reader  *excel.DataReader
	Handler *api.Handler
}

// Option adjusts how the container is wired
type Option func(*options)

type options struct {
	profiling *profiling.ProfilingConfig
}

// WithProfilingConfig replaces the engine config derived from the environment
func WithProfilingConfig(pc profiling.ProfilingConfig) Option {
	return func(o *options) { o.profiling = &pc }
}

// New wires the application from cfg. When a remote stats URL is configured the
// profiles come from that service instead of the in-process engine.
func New(cfg *config.Config, logger *internal.Logger, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	pc := cfg.ProfilingConfig()
	if o.profiling != nil {
		pc = *o.profiling
	}
	if err := pc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profiling config: %w", err)
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Remote.URL != "" {
		clientConfig := api.DefaultClientConfig(cfg.Remote.URL)
		clientConfig.Timeout = cfg.Remote.Timeout
		c.Provider = api.NewRemoteProvider(clientConfig, logger)
		logger.Info("using remote statistics service at %s", cfg.Remote.URL)
	} else {
		c.Provider = datareadiness.NewProfilerAdapter(coercer.NewDefaultTypeCoercer(), pc, logger)
	}

	c.Profiles = app.NewProfileService(c.Provider, logger)
	c.Bulk = app.NewBulkUpdateService(c.Profiles, app.NewBulkValueResolver(cfg.Stats.ReservedFields), logger)
	c.Reader = excel.NewDataReader(excel.DefaultReaderConfig(), logger)
	c.Handler = api.NewHandler(c.Profiles, c.Bulk, c.Reader, logger)

	return c, nil
}

// Shutdown releases cached state
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Profiles != nil {
		c.Profiles.Invalidate()
	}
	c.Logger.Info("container shut down")
	return ctx.Err()
}
