// Package memory provides map-backed implementations of the repository ports.
// They back DB_DRIVER=memory for local runs and the service and API tests.
package memory

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

// newID returns an id in the same hex ObjectID form the mongo adapter uses.
func newID() string {
	return primitive.NewObjectID().Hex()
}

// sortedPage orders items by the field named in opts, then slices out the
// requested page. compare must return a cmp.Compare style result.
func sortedPage[T any](items []T, opts domain.ListOptions, compare func(a, b T, field string) int) ([]T, int64) {
	opts = opts.Normalize()
	slices.SortStableFunc(items, func(a, b T) int {
		c := compare(a, b, opts.SortBy)
		if opts.SortDesc {
			return -c
		}
		return c
	})

	total := int64(len(items))
	start := opts.Skip()
	if start >= len(items) {
		return []T{}, total
	}
	end := min(start+opts.Limit, len(items))
	return items[start:end], total
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

func compareFold(a, b string) int {
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
