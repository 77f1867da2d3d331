package domain

import (
	"sort"
	"time"
)

// DisplayedTagCount is how many recent tags are shown to the operator.
const DisplayedTagCount = 4

// Tag is an image tag as reported by the registry.
type Tag struct {
	Name        string
	LastUpdated time.Time
}

// LatestTags sorts tags ascending by LastUpdated and returns the names of the
// last n, oldest of them first. Equal timestamps keep registry order.
func LatestTags(tags []Tag, n int) []string {
	sorted := make([]Tag, len(tags))
	copy(sorted, tags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastUpdated.Before(sorted[j].LastUpdated)
	})

	if n < 0 {
		n = 0
	}
	if len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}

	names := make([]string, 0, len(sorted))
	for _, t := range sorted {
		names = append(names, t.Name)
	}
	return names
}
