package ports

import (
	"context"

	"colprofile/domain/dataset"
	"colprofile/domain/profiling"
)

// StatisticsProvider computes the profile of a dataset, either in process or by
// calling a remote /data_stats service
type StatisticsProvider interface {
	Profile(ctx context.Context, ds *dataset.Dataset, columns []string) (*profiling.DatasetProfile, error)
}
