package namematch

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
)

// defaultMaxDirect is spec.md §4.5's default max_direct.
const defaultMaxDirect = 2000

// defaultFanoutCap is the implementation-chosen cap referenced by
// spec.md §7's IndexFanoutLimit: a single NameIndex key fanning out
// past this many payloads makes the candidate set too large to score
// reliably for that query.
const defaultFanoutCap = 20000

// nameAggregate is one row of the per-name aggregation (spec.md §4.5
// stage 5).
type nameAggregate struct {
	nameID  uint32
	matched int
	edSum   int
}

// bestMatches runs spec.md §4.5's ten stages against query, honoring
// ctx cancellation at every stage boundary (SPEC_FULL.md §5). It
// returns the full ranked, top-K-selected, entity-expanded result set
// — callers apply spec.md §6's min_score/only_direct/pagination
// post-filter separately (postFilterAndPaginate), so the same ranked
// set can serve multiple pages or filter settings without recomputing
// the match.
func bestMatches(
	ctx context.Context,
	query string,
	nameIdx NameIndexStore,
	nameIDIdx NameIDIndexStore,
	entityIdx EntityIDIndexStore,
	clean Cleaner,
	dist Distancer,
	stopwords StopwordSet,
	maxDirect int,
	fanoutCap int,
) ([]Result, error) {
	if maxDirect <= 0 {
		maxDirect = defaultMaxDirect
	}
	if fanoutCap <= 0 {
		fanoutCap = defaultFanoutCap
	}

	// Stage 1: query tokenization.
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	qTokens := tokenizeQuery(clean.Clean(query), stopwords)
	q := len(qTokens)
	if q == 0 {
		return nil, nil
	}

	// Stage 2: query expansion.
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	hashes, err := expandQueryHashes(qTokens, dist)
	if err != nil {
		return nil, err
	}

	// Stage 3: probe.
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	var candidates []IndexEntry
	for h := range hashes {
		payloads, err := nameIdx.Lookup(h)
		if err != nil {
			return nil, newErr(KindInternal, "BestMatches", err)
		}
		if len(payloads) > fanoutCap {
			return nil, newErr(KindIndexFanoutLimit, "BestMatches",
				fmt.Errorf("name_hash %d fanned out to %d payloads (cap %d)", h, len(payloads), fanoutCap))
		}
		candidates = append(candidates, payloads...)
	}

	// Stage 4: per-(name_id, word_id) reduction, smallest edit_distance wins.
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	type posKey struct {
		nameID uint32
		wordID uint8
	}
	best := make(map[posKey]uint8, len(candidates))
	for _, c := range candidates {
		k := posKey{c.NameID, c.WordID}
		if cur, ok := best[k]; !ok || c.EditDistance < cur {
			best[k] = c.EditDistance
		}
	}

	// Stage 5: per-name aggregation.
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	agg := make(map[uint32]*nameAggregate)
	for k, ed := range best {
		a, ok := agg[k.nameID]
		if !ok {
			a = &nameAggregate{nameID: k.nameID}
			agg[k.nameID] = a
		}
		a.matched++
		a.edSum += int(ed)
	}
	if len(agg) == 0 {
		return nil, nil
	}

	// Stage 6: max_matched.
	maxMatched := 0
	for _, a := range agg {
		if a.matched > maxMatched {
			maxMatched = a.matched
		}
	}

	// Stage 7: resolve to entity + score.
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	type scored struct {
		entityID string
		nameID   uint32
		score    uint8
	}
	var rows []scored
	for nameID, a := range agg {
		rec, ok, err := nameIDIdx.Lookup(nameID)
		if err != nil {
			return nil, newErr(KindInternal, "BestMatches", err)
		}
		if !ok {
			continue
		}
		score := computeScore(maxMatched, a.matched, a.edSum, int(rec.WordCount))
		rows = append(rows, scored{entityID: rec.EntityID, nameID: nameID, score: score})
	}

	// Stage 8: per-entity collapse, keep max score.
	bestByEntity := make(map[string]uint8)
	matchedNameIDByEntity := make(map[string]map[uint32]bool)
	for _, r := range rows {
		if cur, ok := bestByEntity[r.entityID]; !ok || r.score > cur {
			bestByEntity[r.entityID] = r.score
		}
		if matchedNameIDByEntity[r.entityID] == nil {
			matchedNameIDByEntity[r.entityID] = make(map[uint32]bool)
		}
		matchedNameIDByEntity[r.entityID][r.nameID] = true
	}

	// Stage 9: top-K selection by cumulative count <= max_direct.
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	keptEntities := topKByScore(bestByEntity, maxDirect)

	// Stage 10: expand to full records via EntityIDIndex.
	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	var results []Result
	for entityID := range keptEntities {
		recs, err := entityIdx.Lookup(entityID)
		if err != nil {
			return nil, newErr(KindInternal, "BestMatches", err)
		}
		score := bestByEntity[entityID]
		matchedIDs := matchedNameIDByEntity[entityID]
		for _, rec := range recs {
			results = append(results, Result{
				EntityID:   rec.EntityID,
				NameID:     rec.NameID,
				NameIDGUID: rec.NameIDGUID,
				FullName:   string(rec.FullName),
				Score:      score,
				IsMatch:    matchedIDs[rec.NameID],
			})
		}
	}

	sortResults(results)
	return results, nil
}

// tokenizeQuery mirrors spec.md §4.5 stage 1: split, dedupe+filter,
// then subtract stopwords.
func tokenizeQuery(cleaned string, stopwords StopwordSet) []string {
	words := splitWords(cleaned)
	seen := make(map[string]struct{}, len(words))
	var out []string
	for _, w := range words {
		if !isValidWord(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if stopwords.Contains(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// expandQueryHashes implements spec.md §4.5 stage 2, including the
// open-question asymmetry that neighborhood outputs are filtered by
// is_valid_word only on the query side (spec.md §9, DESIGN.md).
func expandQueryHashes(tokens []string, dist Distancer) (map[uint64]struct{}, error) {
	hashes := make(map[uint64]struct{})
	for _, t := range tokens {
		d, err := validatedDist(dist, t)
		if err != nil {
			return nil, err
		}
		deletionNeighborhood(t, d, func(variant string) bool {
			if isValidWord(variant) {
				hashes[hash64(variant)] = struct{}{}
			}
			return true
		})
		hashes[hash64(doubleMetaphone(asciiProject(t)))] = struct{}{}
	}
	return hashes, nil
}

// computeScore implements spec.md §4.5's exact scoring formula.
func computeScore(maxMatched, matched, edSum, wordCount int) uint8 {
	var matchedWordCountRatio float64
	if wordCount != 0 {
		matchedWordCountRatio = float64(wordCount-matched) / float64(wordCount)
	}
	queryWordCountRatio := float64(maxMatched-matched) / float64(maxMatched)

	matchedWordCountPenalty := 10 * matchedWordCountRatio
	editDistancePenalty := 10 * float64(edSum)
	queryWordCountPenalty := 10 * queryWordCountRatio

	score := 100 - matchedWordCountPenalty - editDistancePenalty - queryWordCountPenalty
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return uint8(math.Trunc(score))
}

// topKByScore implements spec.md §4.5 stage 9: sort distinct scores
// descending, accumulate count per score, keep every entity whose
// score belongs to the largest prefix of scores whose cumulative
// count <= maxDirect (or the single top score alone if it already
// exceeds maxDirect).
func topKByScore(byEntity map[string]uint8, maxDirect int) map[string]struct{} {
	scoreCounts := make(map[uint8]int)
	for _, s := range byEntity {
		scoreCounts[s]++
	}
	scores := make([]uint8, 0, len(scoreCounts))
	for s := range scoreCounts {
		scores = append(scores, s)
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i] > scores[j] })

	keptScores := make(map[uint8]struct{})
	cumulative := 0
	for i, s := range scores {
		cumulative += scoreCounts[s]
		keptScores[s] = struct{}{}
		if cumulative > maxDirect && i > 0 {
			delete(keptScores, s)
			break
		}
		if cumulative > maxDirect {
			break // single top score already exceeds maxDirect; keep it alone
		}
	}

	kept := make(map[string]struct{})
	for entityID, s := range byEntity {
		if _, ok := keptScores[s]; ok {
			kept[entityID] = struct{}{}
		}
	}
	return kept
}

// sortResults applies spec.md §5's paginator sort key: score
// descending, then entity_id ascending, then is_match true before
// false.
func sortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.EntityID != b.EntityID {
			return a.EntityID < b.EntityID
		}
		if a.IsMatch != b.IsMatch {
			return a.IsMatch
		}
		return a.NameID < b.NameID
	})
}

func checkCancel(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return newErr(KindCancelled, "BestMatches", err)
	}
	return nil
}

// cacheKey builds the query-result cache key (SPEC_FULL.md §4.5): the
// normalized, stopword-filtered token set, order-independent so
// "SMITH JOHN" and "JOHN SMITH" share a cache entry.
func cacheKey(tokens []string) string {
	sorted := append([]string(nil), tokens...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x1f")
}
