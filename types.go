package namematch

// Cleaner is the user-supplied pure name-cleaning function,
// clean: UTF8 -> UTF8 (spec.md §1, §9). Implementations must be pure:
// same input always yields the same output, with no hidden state, so
// that build and query stay symmetric.
type Cleaner interface {
	Clean(name string) string
}

// CleanerFunc adapts a plain function to Cleaner.
type CleanerFunc func(string) string

// Clean implements Cleaner.
func (f CleanerFunc) Clean(name string) string { return f(name) }

// Distancer is the user-supplied adaptive edit-distance selector,
// dist: UTF8 -> {0..4} (spec.md §1, §9). A dist value of 0 degenerates
// the deletion neighborhood to {word}, disabling fuzziness for that
// word; metaphone expansion still applies (spec.md §4.6).
type Distancer interface {
	Dist(word string) int
}

// DistancerFunc adapts a plain function to Distancer.
type DistancerFunc func(string) int

// Dist implements Distancer.
func (f DistancerFunc) Dist(word string) int { return f(word) }

// WordKind distinguishes the two kinds of IndexEntry a word produces
// (spec.md §3's Word entity).
type WordKind uint8

const (
	// KindNeighborhood marks entries produced by the deletion
	// neighborhood expansion, with a precomputed edit distance.
	KindNeighborhood WordKind = iota
	// KindMetaphone marks the single phonetic entry per word, with
	// edit distance fixed at 1.
	KindMetaphone
)

// RawRecord is one row of the external raw corpus (spec.md §3, §6).
type RawRecord struct {
	EntityID   string // 36-char UUID-like string; non-empty required
	NameIDGUID string // UUID-like, may be empty (defaults to EntityID)
	Name       string // original UTF-8 name text
}

// CleanedName is a RawRecord after deduplication, filtering, dense
// name_id assignment and cleaning (spec.md §3).
type CleanedName struct {
	NameID      uint32
	EntityID    string
	NameIDGUID  string
	CleanedName string
	FullName    string // original, uncleaned name
}

// IndexEntry is one payload row of NameIndex, keyed externally by
// NameHash (spec.md §3, §4.3).
type IndexEntry struct {
	NameHash     uint64
	EditDistance uint8 // 0..255; ed <= dist(word) for neighborhood entries, 1 for metaphone entries
	WordID       uint8 // 0..255; first ordinal position of word within the name
	NameID       uint32
}

// NameIDRec is the single payload row of NameIDIndex for a given
// name_id (spec.md §3, §4.3).
type NameIDRec struct {
	NameID    uint32
	EntityID  string
	WordCount uint8 // distinct valid, non-stopword words in the cleaned name
}

// EntityIDRec is one payload row of EntityIDIndex for a given
// entity_id; multiple rows per entity_id are permitted (aliases)
// (spec.md §3, §4.3).
type EntityIDRec struct {
	EntityID   string
	NameID     uint32
	NameIDGUID string
	FullName   []byte // original name, stored as a variable-length blob
}

// Result is one ranked row returned by BestMatches (spec.md §4.5 stage
// 10, §6).
type Result struct {
	EntityID   string
	NameID     uint32
	NameIDGUID string
	FullName   string
	Score      uint8 // 0..100
	IsMatch    bool  // true when NameID appeared in the match set directly
}

// QueryParams are the externally-exposed query parameters (spec.md
// §6): min_score and only_direct are post-filters, page_num/page_size
// paginate the filtered, ranked list.
type QueryParams struct {
	Name       string
	MinScore   uint8 // 0..100, clamped
	OnlyDirect bool
	PageNum    int // >=1, clamped
	PageSize   int // >=1, clamped
}

// clampQueryParams applies the clamping rules of spec.md §6.
func clampQueryParams(p QueryParams) QueryParams {
	if p.MinScore > 100 {
		p.MinScore = 100
	}
	if p.PageNum < 1 {
		p.PageNum = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 1
	}
	return p
}
