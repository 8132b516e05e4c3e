// AngelaMos | 2026
// filter.go

package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RelationMode controls what happens to a book's link sets when an
// update omits them. Replace mode (full update) resets omitted sets to
// empty; merge mode (partial update) leaves them untouched.
type RelationMode int

const (
	RelationMerge RelationMode = iota
	RelationReplace
)

// BookFilter narrows a book listing to books linked to at least one of
// each non-nil id set. A nil slice means the dimension is unfiltered; an
// empty non-nil slice matches nothing.
type BookFilter struct {
	TagIDs    []int64
	AuthorIDs []int64
}

// ParseIDList reads a comma-separated id list from a query parameter.
// An absent or empty value means no filter and returns nil. Ids that
// resolve to nothing simply match nothing; only non-integer tokens are
// rejected. Results are deduplicated and sorted.
func ParseIDList(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	seen := make(map[int64]struct{})
	ids := make([]int64, 0)

	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, fmt.Errorf("empty id in list")
		}

		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", token)
		}

		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

// dedupeIDs keeps the first occurrence of each id, preserving request
// order so validation errors point at what the caller sent.
func dedupeIDs(ids []int64) []int64 {
	if ids == nil {
		return nil
	}

	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
