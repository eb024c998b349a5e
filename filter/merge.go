// Package filter compiles client filter values into allow-listed predicates.
package filter

import (
	"github.com/datastax/query-plan-apis/types"
)

// Merge combines the filter sources of one request. Sources are given from the lowest to the
// highest priority: a key set by a later source replaces the value of an earlier one but keeps
// the position where the key first appeared. Nil sources are skipped.
func Merge(defaults, request, override, system *types.Values) *types.Values {
	merged := types.NewValues()
	for _, source := range []*types.Values{defaults, request, override, system} {
		if source == nil {
			continue
		}
		for pair := source.Oldest(); pair != nil; pair = pair.Next() {
			merged.Set(pair.Key, pair.Value)
		}
	}
	return merged
}
