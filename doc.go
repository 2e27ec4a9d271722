/*
Package namematch provides a fuzzy name-matching engine for resolving
free-text name queries against a corpus of entities with one or more
known names (aliases).

# Overview

Given a corpus of (entity_id, name) rows, the engine builds three
compact indexes — NameIndex, NameIDIndex, EntityIDIndex — and answers
queries of the form "find entities whose name is close to this text"
with a ranked, scored, paginated result list. Closeness combines two
signals: an edit-distance neighborhood around each query word (typo
tolerance) and a phonetic code (Double Metaphone) of each query word
(sounds-like tolerance).

# Quick Start

	import "github.com/wallarm/namematch"

	eng, _ := namematch.NewEngine(namematch.EngineConfig{
		Backend:        namematch.BackendMemory,
		QueryCacheSize: 10000,
	}, namematch.CleanerFunc(strings.ToUpper), namematch.DistancerFunc(func(w string) int {
		if len(w) <= 4 {
			return 1
		}
		return 2
	}))

	report, _ := eng.Build(ctx, []namematch.RawRecord{
		{EntityID: "e-1", Name: "JOHN SMITH"},
		{EntityID: "e-1", Name: "J SMITH"},
		{EntityID: "e-2", Name: "JON SMYTHE"},
	})

	results, _ := eng.BestMatches(ctx, namematch.QueryParams{
		Name:     "JOHN SMITHE",
		PageSize: 20,
		PageNum:  1,
	})

# Build Pipeline

Build (see BuildReport) runs nine steps against the raw corpus:
deduplicate rows, filter corrupt rows, assign dense name_ids, clean
each name with the caller-supplied Cleaner, tokenize and stopword-
filter, expand every surviving word into its deletion neighborhood and
Double Metaphone code, write NameIndex, write NameIDIndex, write
EntityIDIndex. Expansion is fanned out across a worker pool
(golang.org/x/sync/errgroup) and merged back deterministically, so two
builds of the same corpus with the same Cleaner/Distancer always
produce byte-identical stores.

# Query Pipeline

BestMatches (see matcher.go) tokenizes the query the same way the
builder tokenizes names, expands each query word into the same
neighborhood and phonetic hash space, probes NameIndex, reduces
candidates to one best edit distance per (name_id, word_id), aggregates
per name, scores per entity, keeps the top entities under the
configured max_direct budget, and expands the survivors back into full
records via EntityIDIndex. Query-side deletion-neighborhood variants
are additionally filtered by word validity, a build/query asymmetry
documented in DESIGN.md.

Ranked results are cached under a bounded LRU keyed on the normalized
query token set (github.com/hashicorp/golang-lru/v2), so repeat
queries with different page_num/page_size/min_score/only_direct
settings skip the match pipeline entirely.

# Scoring

Each candidate entity receives a score in 0..100:

	score = max(0, 100 - matchedWordCountPenalty - editDistancePenalty - queryWordCountPenalty)

where the first and last penalties are ten times a ratio — words in the
stored name that went unmatched, and query words that matched nothing
in this name relative to the query's best-matching candidate — and the
middle one is ten times the total edit distance summed across matched
words. A score of 100 requires every stored word to match at edit
distance 0 and the name to match as many query words as the
best-matching candidate; query words that match no indexed name at all
cost nothing.

# Cleaner and Distancer

Callers supply two pure functions: Cleaner normalizes a name before
tokenization (case folding, punctuation stripping, whatever the
corpus's domain requires), and Distancer picks the maximum edit
distance to tolerate per word, typically scaled by word length. Both
must be pure — the build and query paths depend on calling them with
identical semantics so neighborhoods line up.

# Errors

All engine errors are *Error, carrying a Kind (see errors.go) that
callers can branch on with errors.Is against the package's Err*
sentinels: invalid configuration, a store that's missing or corrupt,
a query whose NameIndex fan-out exceeded the configured cap, or
cooperative cancellation via context.Context.

# Storage Backends

BackendMemory keeps all three indexes in process memory; BackendFile
persists each to its own file in a small framed gob format with a
trailing sha256 digest, reopened on the next NewEngine call against the
same paths.
*/
package namematch
