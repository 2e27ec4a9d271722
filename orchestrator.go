package namematch

import (
	"context"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

// Backend selects how Engine persists its three stores (spec.md §4.3:
// "implementations may keep stores in memory or file-backed").
type Backend int

const (
	// BackendMemory keeps all three stores in process memory only;
	// Build must be re-run after every process restart.
	BackendMemory Backend = iota
	// BackendFile persists each store to its own framed file under
	// EngineConfig's three paths, reopened by NewEngine on restart.
	BackendFile
)

// EngineConfig configures one Engine instance (spec.md §4.6).
type EngineConfig struct {
	// Backend selects memory-only or file-backed stores.
	Backend Backend

	// NameIndexPath, NameIDIndexPath, EntityIDIndexPath name the
	// on-disk store files. Required (non-empty) when Backend ==
	// BackendFile; ignored otherwise.
	NameIndexPath    string
	NameIDIndexPath  string
	EntityIDIndexPath string

	// StopwordsPath, if non-empty, names a newline-delimited stopword
	// list loaded at NewEngine time.
	StopwordsPath string

	// Overwrite permits Build to replace existing file-backed stores.
	// Without it, Build refuses to run if any store file already
	// exists (spec.md §4.6: "Build must not silently clobber an
	// existing index").
	Overwrite bool

	// MaxDirect bounds how many distinct entities BestMatches returns
	// before pagination (spec.md §4.5 stage 9). Zero uses
	// defaultMaxDirect.
	MaxDirect int

	// IndexFanoutCap bounds how many payloads a single NameIndex key
	// may return before a query fails with KindIndexFanoutLimit. Zero
	// uses defaultFanoutCap.
	IndexFanoutCap int

	// QueryCacheSize bounds the LRU query-result cache (spec.md §4.5
	// supplemental cache). Zero disables caching.
	QueryCacheSize int
}

// Engine is the fuzzy name-matching engine (spec.md §1): it owns the
// three index stores, the caller-supplied Cleaner/Distancer, the
// stopword set, and a bounded query-result cache. Exactly like the
// teacher's SessionGenerator/CanonicalSessionGenerator, an Engine is
// safe for concurrent use by multiple goroutines once built: stores
// are read-only at query time, guarded by their own internal
// sync.RWMutex, and the cache is its own concurrency-safe structure.
type Engine struct {
	cfg EngineConfig

	nameIdx   NameIndexStore
	nameIDIdx NameIDIndexStore
	entityIdx EntityIDIndexStore

	clean     Cleaner
	dist      Distancer
	stopwords StopwordSet

	cache *lru.Cache[string, []Result]
	log   *logrus.Entry
}

// NewEngine validates cfg, loads stopwords, opens (or initializes) the
// three stores per cfg.Backend, and constructs the query cache. clean
// and dist must not be nil.
func NewEngine(cfg EngineConfig, clean Cleaner, dist Distancer) (*Engine, error) {
	if clean == nil || dist == nil {
		return nil, newErr(KindInvalidArgument, "NewEngine", fmt.Errorf("clean and dist are required"))
	}
	if cfg.Backend == BackendFile {
		if cfg.NameIndexPath == "" || cfg.NameIDIndexPath == "" || cfg.EntityIDIndexPath == "" {
			return nil, newErr(KindInvalidArgument, "NewEngine", fmt.Errorf("file backend requires all three store paths"))
		}
	}

	stopwords, err := loadStopwords(cfg.StopwordsPath)
	if err != nil {
		return nil, newErr(KindInvalidArgument, "NewEngine", fmt.Errorf("load stopwords: %w", err))
	}

	e := &Engine{
		cfg:       cfg,
		clean:     clean,
		dist:      dist,
		stopwords: stopwords,
		log:       logrus.WithField("component", "engine"),
	}

	switch cfg.Backend {
	case BackendFile:
		if pathExists(cfg.NameIndexPath) && pathExists(cfg.NameIDIndexPath) && pathExists(cfg.EntityIDIndexPath) {
			if err := e.openFileStores(); err != nil {
				return nil, err
			}
		} else {
			e.nameIdx = newMemNameIndex()
			e.nameIDIdx = newMemNameIDIndex()
			e.entityIdx = newMemEntityIDIndex()
		}
	default:
		e.nameIdx = newMemNameIndex()
		e.nameIDIdx = newMemNameIDIndex()
		e.entityIdx = newMemEntityIDIndex()
	}

	if cfg.QueryCacheSize > 0 {
		cache, err := lru.New[string, []Result](cfg.QueryCacheSize)
		if err != nil {
			return nil, newErr(KindInternal, "NewEngine", fmt.Errorf("construct query cache: %w", err))
		}
		e.cache = cache
	}

	return e, nil
}

func (e *Engine) openFileStores() error {
	nameIdx, err := openNameIndex(e.cfg.NameIndexPath)
	if err != nil {
		return err
	}
	nameIDIdx, err := openNameIDIndex(e.cfg.NameIDIndexPath)
	if err != nil {
		return err
	}
	entityIdx, err := openEntityIDIndex(e.cfg.EntityIDIndexPath)
	if err != nil {
		return err
	}
	e.nameIdx, e.nameIDIdx, e.entityIdx = nameIdx, nameIDIdx, entityIdx
	return nil
}

// Build runs the nine-step index build (spec.md §4.4) against raw and
// replaces Engine's stores with the result, clearing the query cache
// (a freshly built index invalidates every cached answer). For
// BackendFile, Build refuses to run over existing store files unless
// cfg.Overwrite is set.
func (e *Engine) Build(ctx context.Context, raw []RawRecord) (*BuildReport, error) {
	if e.cfg.Backend == BackendFile && !e.cfg.Overwrite {
		if pathExists(e.cfg.NameIndexPath) || pathExists(e.cfg.NameIDIndexPath) || pathExists(e.cfg.EntityIDIndexPath) {
			return nil, newErr(KindInvalidArgument, "Build", fmt.Errorf("store files already exist, set Overwrite to replace them"))
		}
	}

	nameIdx := newMemNameIndex()
	nameIDIdx := newMemNameIDIndex()
	entityIdx := newMemEntityIDIndex()

	report, err := build(ctx, raw, nameIdx, nameIDIdx, entityIdx, e.clean, e.dist, e.stopwords)
	if err != nil {
		return nil, err
	}

	if e.cfg.Backend == BackendFile {
		saved := false
		defer func() {
			if !saved {
				// A failed save discards every store file so a later
				// NewEngine never opens a partially written index.
				_ = os.Remove(e.cfg.NameIndexPath)
				_ = os.Remove(e.cfg.NameIDIndexPath)
				_ = os.Remove(e.cfg.EntityIDIndexPath)
			}
		}()
		if err := saveNameIndex(nameIdx, e.cfg.NameIndexPath); err != nil {
			return nil, err
		}
		if err := saveNameIDIndex(nameIDIdx, e.cfg.NameIDIndexPath); err != nil {
			return nil, err
		}
		if err := saveEntityIDIndex(entityIdx, e.cfg.EntityIDIndexPath); err != nil {
			return nil, err
		}
		saved = true
	}

	e.nameIdx, e.nameIDIdx, e.entityIdx = nameIdx, nameIDIdx, entityIdx
	e.ClearQueryCache()
	e.log.WithField("names_indexed", report.NamesIndexed).Info("engine rebuilt")
	return report, nil
}

// BestMatches runs the ten-stage match pipeline (spec.md §4.5) for
// params.Name, caches the ranked-but-unfiltered result under the
// normalized query tokens, then applies params' min_score/only_direct
// filter and page_num/page_size pagination (spec.md §6).
func (e *Engine) BestMatches(ctx context.Context, params QueryParams) ([]Result, error) {
	params = clampQueryParams(params)

	qTokens := tokenizeQuery(e.clean.Clean(params.Name), e.stopwords)
	key := cacheKey(qTokens)

	var ranked []Result
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			ranked = cached
		}
	}

	if ranked == nil {
		var err error
		ranked, err = bestMatches(ctx, params.Name, e.nameIdx, e.nameIDIdx, e.entityIdx,
			e.clean, e.dist, e.stopwords, e.cfg.MaxDirect, e.cfg.IndexFanoutCap)
		if err != nil {
			return nil, err
		}
		if e.cache != nil {
			e.cache.Add(key, ranked)
		}
	}

	return postFilterAndPaginate(ranked, params), nil
}

// ClearQueryCache discards every cached ranked result. Safe to call
// concurrently with BestMatches.
func (e *Engine) ClearQueryCache() {
	if e.cache != nil {
		e.cache.Purge()
	}
}

// EngineStats reports the size of each store and the query cache, for
// operational visibility (spec.md §2 ambient observability).
type EngineStats struct {
	NamesIndexed    int
	DistinctHashes  int
	EntitiesIndexed int
	QueryCacheLen   int
}

// Stats returns the current store sizes and cache occupancy.
func (e *Engine) Stats() EngineStats {
	s := EngineStats{
		DistinctHashes:  e.nameIdx.Len(),
		NamesIndexed:    e.nameIDIdx.Len(),
		EntitiesIndexed: e.entityIdx.Len(),
	}
	if e.cache != nil {
		s.QueryCacheLen = e.cache.Len()
	}
	return s
}

// Close releases any file handles held by file-backed stores.
func (e *Engine) Close() error {
	if err := e.nameIdx.Close(); err != nil {
		return err
	}
	if err := e.nameIDIdx.Close(); err != nil {
		return err
	}
	return e.entityIdx.Close()
}
