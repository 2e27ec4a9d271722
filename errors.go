package namematch

import (
	"errors"
	"fmt"
)

// Kind classifies the failure modes a caller may need to branch on,
// per the error taxonomy of the matching engine (fail-fast vs.
// skip-and-count vs. fail-closed).
type Kind int

const (
	// KindInvalidArgument marks a precondition violation: empty
	// required path, dist() returning out of {0..4}, min_score
	// outside 0..100 pre-clamp.
	KindInvalidArgument Kind = iota
	// KindSourceCorrupt marks a raw row that failed UTF-8 validation
	// or lacked a required field. Never fatal; counted and skipped.
	KindSourceCorrupt
	// KindIndexMissing marks a query-time open failure of one of the
	// three stores.
	KindIndexMissing
	// KindIndexFanoutLimit marks a NameIndex key whose payload count
	// exceeded the configured cap.
	KindIndexFanoutLimit
	// KindCancelled marks a cooperative cancellation observed between
	// pipeline stages.
	KindCancelled
	// KindInternal marks an unexpected fault in hash/metaphone/
	// levenshtein or store I/O.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindSourceCorrupt:
		return "source_corrupt"
	case KindIndexMissing:
		return "index_missing"
	case KindIndexFanoutLimit:
		return "index_fanout_limit"
	case KindCancelled:
		return "cancelled"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the engine's error type. It carries a Kind so callers can
// branch with errors.As without string-matching, and wraps an
// underlying cause the way the teacher wraps LRU construction failures.
type Error struct {
	Kind Kind
	Op   string // component/operation that failed, e.g. "Build", "BestMatches"
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("namematch: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("namematch: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrCancelled) etc. match on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// Sentinel errors for errors.Is comparisons against a bare Kind.
var (
	ErrInvalidArgument  = &Error{Kind: KindInvalidArgument}
	ErrIndexMissing     = &Error{Kind: KindIndexMissing}
	ErrIndexFanoutLimit = &Error{Kind: KindIndexFanoutLimit}
	ErrCancelled        = &Error{Kind: KindCancelled}
	ErrInternal         = &Error{Kind: KindInternal}
)

// isCancellation reports whether err represents context cancellation,
// so callers (and the pipeline itself) can distinguish "abort, no
// results" cancellation from every other abort-with-no-results error.
func isCancellation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindCancelled
}
