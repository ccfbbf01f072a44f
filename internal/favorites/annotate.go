// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package favorites

import "github.com/pdiddy/bookfinder/pkg/types"

// SavedSet returns the bare work keys present in entries.
func SavedSet(entries []types.FavoriteEntry) map[string]struct{} {
	set := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		set[types.WorkKey(e.ID)] = struct{}{}
	}
	return set
}

// Annotate joins works with the favorites snapshot, preserving order. A
// search id "OL1W" matches a saved "/works/OL1W".
func Annotate(works []types.Work, entries []types.FavoriteEntry) []types.WorkView {
	saved := SavedSet(entries)
	views := make([]types.WorkView, len(works))
	for i, w := range works {
		_, ok := saved[types.WorkKey(w.ID)]
		views[i] = types.WorkView{Work: w, IsSaved: ok}
	}
	return views
}
