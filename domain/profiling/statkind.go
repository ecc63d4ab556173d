package profiling

import (
	"fmt"
	"strings"

	"colprofile/domain/core"
)

// StatKind names the statistic used to fill fields in a bulk edit
type StatKind string

const (
	StatMean       StatKind = "mean"
	StatMedian     StatKind = "median"
	StatMode       StatKind = "mode"
	StatMostCommon StatKind = "mostCommon"
	StatEarliest   StatKind = "earliest"
	StatLatest     StatKind = "latest"
)

var statKinds = []StatKind{StatMean, StatMedian, StatMode, StatMostCommon, StatEarliest, StatLatest}

// ParseStatKind accepts the canonical names case-insensitively, plus most_common.
func ParseStatKind(s string) (StatKind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "")
	for _, k := range statKinds {
		if strings.ToLower(string(k)) == norm {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", core.ErrUnknownStatKind, s)
}
