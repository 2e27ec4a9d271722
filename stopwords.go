package namematch

import (
	"bufio"
	"fmt"
	"os"
)

// StopwordSet is the set of words never indexed or queried (spec.md
// §3, §6). An empty path yields the empty set, not an error.
type StopwordSet map[string]struct{}

// Contains reports whether w is a stopword.
func (s StopwordSet) Contains(w string) bool {
	if s == nil {
		return false
	}
	_, ok := s[w]
	return ok
}

// loadStopwords reads a sequence of UTF-8 words, one per record
// (line), from path. An empty path returns the empty set with no
// error (spec.md §6).
func loadStopwords(path string) (StopwordSet, error) {
	if path == "" {
		return StopwordSet{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, newErr(KindInvalidArgument, "loadStopwords", fmt.Errorf("open %s: %w", path, err))
	}
	defer f.Close()

	set := make(StopwordSet)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := sc.Text()
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, newErr(KindInternal, "loadStopwords", fmt.Errorf("scan %s: %w", path, err))
	}
	return set, nil
}
