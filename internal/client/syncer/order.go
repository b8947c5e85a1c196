package syncer

import "slices"

// parentsFirst orders items so that every item comes after the items it
// references, as far as those are present in the slice. Unknown references
// and loops end the walk.
func parentsFirst[T any](items []T, id func(T) string, parent func(T) *string) []T {
	parents := make(map[string]*string, len(items))
	for _, it := range items {
		parents[id(it)] = parent(it)
	}

	depth := make(map[string]int, len(items))
	depthOf := func(start string) int {
		if d, ok := depth[start]; ok {
			return d
		}
		d := 0
		seen := map[string]bool{start: true}
		for p := parents[start]; p != nil; p = parents[*p] {
			if _, known := parents[*p]; !known || seen[*p] {
				break
			}
			seen[*p] = true
			d++
		}
		depth[start] = d
		return d
	}

	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		return depthOf(id(a)) - depthOf(id(b))
	})
	return out
}
