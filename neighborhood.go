package namematch

// deletionNeighborhood streams every distinct string obtainable by
// deleting 0 to k code points from s, in depth-first order, calling
// yield for each one including s itself (spec.md §4.2). Iteration
// stops early if yield returns false.
//
// The generator only recurses when the current candidate has more
// than two code points, and only decrements depth per recursion
// level — this prunes strings shorter than 3 code points from further
// deletion, exactly as spec.md §4.2 requires. Adapted from the
// BFS-queue shape of the pack's symspell `generateDeletes` (see
// DESIGN.md) to depth-first with an explicit visited set, since the
// spec leaves iteration order unspecified but requires determinism
// for a given (s, k).
func deletionNeighborhood(s string, k int, yield func(string) bool) {
	seen := make(map[string]struct{})
	var walk func(cur string, depth int) bool
	walk = func(cur string, depth int) bool {
		if _, dup := seen[cur]; dup {
			return true
		}
		seen[cur] = struct{}{}
		if depth == 0 || utf8Length(cur) >= 2 {
			if !yield(cur) {
				return false
			}
		}
		if depth >= k {
			return true
		}
		runes := []rune(cur)
		if len(runes) <= 2 {
			return true
		}
		for i := range runes {
			next := string(append(append([]rune{}, runes[:i]...), runes[i+1:]...))
			if !walk(next, depth+1) {
				return false
			}
		}
		return true
	}
	walk(s, 0)
}

// deletionNeighborhoodSet materializes deletionNeighborhood into a
// deduplicated slice. Prefer the streaming form for large inputs; this
// helper exists for call sites (tests, small query-side expansion)
// that want the whole set at once.
func deletionNeighborhoodSet(s string, k int) []string {
	var out []string
	deletionNeighborhood(s, k, func(v string) bool {
		out = append(out, v)
		return true
	})
	return out
}
