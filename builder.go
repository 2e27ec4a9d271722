package namematch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// BuildReport carries build-time diagnostics alongside (never instead
// of) the pipeline's success/failure result — pure observability, the
// way the teacher carries Stats/StatsWithHistory (SPEC_FULL.md §3).
type BuildReport struct {
	RawRowsSeen                int
	RawRowsDeduped             int
	RawRowsSkippedCorrupt      int
	NamesIndexed               int
	WordsIndexed               int
	NeighborhoodEntriesWritten int
	PhoneticEntriesWritten     int
	Elapsed                    time.Duration
}

var buildLog = logrus.WithField("component", "builder")

// tokenPosition is a (word_id, word) pair surviving stopword
// filtering for one name, in ascending word_id order.
type tokenPosition struct {
	wordID uint8
	word   string
}

// expandTask is one unit of the parallel expansion stage (spec.md
// §4.4 step 6): fan-out is sharded per (name_id, word_id) token, fan-in
// merges back in name_id order so output stays deterministic
// regardless of goroutine scheduling (spec.md §5).
type expandTask struct {
	nameID uint32
	wordID uint8
	word   string
	dist   int
}

type expandResult struct {
	nameID          uint32
	entries         []IndexEntry
	neighborhoodCnt int
	phoneticCnt     int
}

// build runs the nine-step pipeline of spec.md §4.4 against raw,
// writing into the three provided stores. clean and dist must be pure
// (SPEC_FULL.md §4.6). stopwords may be empty but never nil.
func build(
	ctx context.Context,
	raw []RawRecord,
	nameIdx NameIndexStore,
	nameIDIdx NameIDIndexStore,
	entityIdx EntityIDIndexStore,
	clean Cleaner,
	dist Distancer,
	stopwords StopwordSet,
) (*BuildReport, error) {
	started := time.Now()
	report := &BuildReport{RawRowsSeen: len(raw)}

	// Step 1: dedupe raw records on (entity_id, name_id_guid, name).
	type rawKey struct{ entityID, nameIDGUID, name string }
	seenRaw := make(map[rawKey]struct{}, len(raw))
	deduped := make([]RawRecord, 0, len(raw))
	for _, r := range raw {
		k := rawKey{r.EntityID, r.NameIDGUID, r.Name}
		if _, dup := seenRaw[k]; dup {
			continue
		}
		seenRaw[k] = struct{}{}
		deduped = append(deduped, r)
	}
	report.RawRowsDeduped = len(raw) - len(deduped)

	// Step 2/3: filter + assign dense name_id + clean.
	cleanedNames := make([]CleanedName, 0, len(deduped))
	for _, r := range deduped {
		if ctx.Err() != nil {
			return nil, newErr(KindCancelled, "Build", ctx.Err())
		}
		if r.EntityID == "" || !isValidWord(r.Name) {
			report.RawRowsSkippedCorrupt++
			buildLog.WithField("entity_id", r.EntityID).Debug("skipping corrupt raw row")
			continue
		}
		nameIDGUID := r.NameIDGUID
		if nameIDGUID == "" {
			nameIDGUID = r.EntityID
		}
		cleanedNames = append(cleanedNames, CleanedName{
			NameID:      uint32(len(cleanedNames) + 1),
			EntityID:    r.EntityID,
			NameIDGUID:  nameIDGUID,
			CleanedName: clean.Clean(r.Name),
			FullName:    r.Name,
		})
	}
	report.NamesIndexed = len(cleanedNames)

	// Step 4/5: tokenize, dedupe-within-name, filter, stopword-filter.
	// tokensByName[i] corresponds to cleanedNames[i].
	tokensByName := make([][]tokenPosition, len(cleanedNames))
	var tasks []expandTask

	for i, cn := range cleanedNames {
		if ctx.Err() != nil {
			return nil, newErr(KindCancelled, "Build", ctx.Err())
		}
		words := splitWords(cn.CleanedName)
		seenWord := make(map[string]struct{}, len(words))
		var positions []tokenPosition
		for i, w := range words {
			if i > 255 {
				break // word_id is 0..255 per spec.md §3
			}
			if !isValidWord(w) {
				continue
			}
			if _, dup := seenWord[w]; dup {
				continue // duplicate within name: earliest word_id already kept
			}
			seenWord[w] = struct{}{}
			positions = append(positions, tokenPosition{wordID: uint8(i), word: w})
		}

		var kept []tokenPosition
		for _, p := range positions {
			if stopwords.Contains(p.word) {
				continue
			}
			kept = append(kept, p)
			d, err := validatedDist(dist, p.word)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, expandTask{nameID: cn.NameID, wordID: p.wordID, word: p.word, dist: d})
		}
		tokensByName[i] = kept
		report.WordsIndexed += len(kept)
	}

	// Step 6: expand (word, word_id, name_id) -> IndexEntry, fanned out
	// across a worker pool and merged back deterministically.
	results, err := expandParallel(ctx, tasks)
	if err != nil {
		return nil, err
	}

	// Step 7: write NameIndex.
	for _, res := range results {
		report.NeighborhoodEntriesWritten += res.neighborhoodCnt
		report.PhoneticEntriesWritten += res.phoneticCnt
		for _, e := range res.entries {
			if err := nameIdx.PutMany(e.NameHash, []IndexEntry{e}); err != nil {
				return nil, newErr(KindInternal, "Build", fmt.Errorf("write NameIndex: %w", err))
			}
		}
	}

	// Step 8: write NameIDIndex.
	nameIDRecs := make([]NameIDRec, 0, len(cleanedNames))
	for i, cn := range cleanedNames {
		nameIDRecs = append(nameIDRecs, NameIDRec{
			NameID:    cn.NameID,
			EntityID:  cn.EntityID,
			WordCount: uint8(min(len(tokensByName[i]), 255)),
		})
	}
	if err := nameIDIdx.PutMany(nameIDRecs); err != nil {
		return nil, newErr(KindInternal, "Build", fmt.Errorf("write NameIDIndex: %w", err))
	}

	// Step 9: write EntityIDIndex.
	entityRecs := make([]EntityIDRec, 0, len(cleanedNames))
	for _, cn := range cleanedNames {
		entityRecs = append(entityRecs, EntityIDRec{
			EntityID:   cn.EntityID,
			NameID:     cn.NameID,
			NameIDGUID: cn.NameIDGUID,
			FullName:   []byte(cn.FullName),
		})
	}
	if err := entityIdx.PutMany(entityRecs); err != nil {
		return nil, newErr(KindInternal, "Build", fmt.Errorf("write EntityIDIndex: %w", err))
	}

	report.Elapsed = time.Since(started)
	buildLog.WithFields(logrus.Fields{
		"names_indexed": report.NamesIndexed,
		"words_indexed": report.WordsIndexed,
		"elapsed":       report.Elapsed,
	}).Info("build complete")
	return report, nil
}

// expandParallel runs tasks through deletion-neighborhood + metaphone
// expansion across a worker-per-core pool (golang.org/x/sync/errgroup,
// grounded on vippsas-sqlcode's and the gnames-gndb manifest's use of
// the same package — see DESIGN.md). Each result is stored at its
// task's index and tasks are created in name_id order, so the write
// stage (and therefore the resulting store) stays deterministic
// regardless of goroutine completion order (spec.md §4.4
// "Determinism", §5 "shard by name_id at build").
func expandParallel(ctx context.Context, tasks []expandTask) ([]expandResult, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	out := make([]expandResult, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			if gctx.Err() != nil {
				return newErr(KindCancelled, "Build", gctx.Err())
			}
			entries, neighborhoodCnt, phoneticCnt := expandWord(t)
			out[i] = expandResult{nameID: t.nameID, entries: entries, neighborhoodCnt: neighborhoodCnt, phoneticCnt: phoneticCnt}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// expandWord implements spec.md §4.4 step 6 for a single token.
func expandWord(t expandTask) (entries []IndexEntry, neighborhoodCnt, phoneticCnt int) {
	deletionNeighborhood(t.word, t.dist, func(variant string) bool {
		ed := levenshteinDistance(t.word, variant)
		entries = append(entries, IndexEntry{
			NameHash:     hash64(variant),
			EditDistance: uint8(min(ed, 255)),
			WordID:       t.wordID,
			NameID:       t.nameID,
		})
		neighborhoodCnt++
		return true
	})

	phonetic := doubleMetaphone(asciiProject(t.word))
	entries = append(entries, IndexEntry{
		NameHash:     hash64(phonetic),
		EditDistance: 1,
		WordID:       t.wordID,
		NameID:       t.nameID,
	})
	phoneticCnt++

	return entries, neighborhoodCnt, phoneticCnt
}

// validatedDist calls dist.Dist and enforces the {0..4} range spec.md
// §4.6 requires, failing fast with KindInvalidArgument otherwise.
func validatedDist(dist Distancer, word string) (int, error) {
	d := dist.Dist(word)
	if d < 0 || d > 4 {
		return 0, newErr(KindInvalidArgument, "dist", fmt.Errorf("dist(%q) = %d, want 0..4", word, d))
	}
	return d, nil
}
