package namematch

// postFilterAndPaginate applies spec.md §6's post-filter ("keep rows
// where score >= min_score and (is_match or not only_direct)") and
// pagination ("result[(page_num-1)*page_size .. page_num*page_size)")
// to an already-ranked result list. Concatenating every page 1..∞ of a
// fixed page_size reproduces the unpaginated filtered list (spec.md
// §8 property 7), since filtering happens once, up front, over the
// full ranked slice.
func postFilterAndPaginate(ranked []Result, p QueryParams) []Result {
	p = clampQueryParams(p)

	filtered := make([]Result, 0, len(ranked))
	for _, r := range ranked {
		if r.Score < p.MinScore {
			continue
		}
		if p.OnlyDirect && !r.IsMatch {
			continue
		}
		filtered = append(filtered, r)
	}

	start := (p.PageNum - 1) * p.PageSize
	if start >= len(filtered) {
		return nil
	}
	end := start + p.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	out := make([]Result, end-start)
	copy(out, filtered[start:end])
	return out
}
