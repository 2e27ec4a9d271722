package namematch

import (
	"context"
	"strings"
	"testing"
)

var upperClean = CleanerFunc(strings.ToUpper)

var fixedDist = DistancerFunc(func(w string) int { return 1 })

func TestBuildDedupesRawRows(t *testing.T) {
	raw := []RawRecord{
		{EntityID: "e-1", Name: "JOHN SMITH"},
		{EntityID: "e-1", Name: "JOHN SMITH"},
	}
	nameIdx, nameIDIdx, entityIdx := newMemNameIndex(), newMemNameIDIndex(), newMemEntityIDIndex()
	report, err := build(context.Background(), raw, nameIdx, nameIDIdx, entityIdx, upperClean, fixedDist, StopwordSet{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if report.RawRowsDeduped != 1 {
		t.Errorf("RawRowsDeduped = %d, want 1", report.RawRowsDeduped)
	}
	if report.NamesIndexed != 1 {
		t.Errorf("NamesIndexed = %d, want 1", report.NamesIndexed)
	}
}

func TestBuildSkipsCorruptRows(t *testing.T) {
	raw := []RawRecord{
		{EntityID: "", Name: "JOHN SMITH"},  // missing entity_id
		{EntityID: "e-1", Name: "X"},        // name too short to be a valid word
		{EntityID: "e-2", Name: "JOHN SMITH"},
	}
	nameIdx, nameIDIdx, entityIdx := newMemNameIndex(), newMemNameIDIndex(), newMemEntityIDIndex()
	report, err := build(context.Background(), raw, nameIdx, nameIDIdx, entityIdx, upperClean, fixedDist, StopwordSet{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if report.RawRowsSkippedCorrupt != 2 {
		t.Errorf("RawRowsSkippedCorrupt = %d, want 2", report.RawRowsSkippedCorrupt)
	}
	if report.NamesIndexed != 1 {
		t.Errorf("NamesIndexed = %d, want 1", report.NamesIndexed)
	}
}

func TestBuildDefaultsNameIDGUIDToEntityID(t *testing.T) {
	raw := []RawRecord{{EntityID: "e-1", Name: "JOHN SMITH"}}
	nameIdx, nameIDIdx, entityIdx := newMemNameIndex(), newMemNameIDIndex(), newMemEntityIDIndex()
	if _, err := build(context.Background(), raw, nameIdx, nameIDIdx, entityIdx, upperClean, fixedDist, StopwordSet{}); err != nil {
		t.Fatalf("build: %v", err)
	}
	recs, err := entityIdx.Lookup("e-1")
	if err != nil || len(recs) != 1 {
		t.Fatalf("Lookup(e-1) = %v, %v", recs, err)
	}
	if recs[0].NameIDGUID != "e-1" {
		t.Errorf("NameIDGUID = %q, want default of entity_id %q", recs[0].NameIDGUID, "e-1")
	}
}

func TestBuildWordIDIsSplitPosition(t *testing.T) {
	// "A" is filtered by isValidWord (length 1), so "JOHN A SMITH"
	// should assign SMITH word_id=2 (its split-array position), not 1
	// (its position after compacting out the invalid word).
	raw := []RawRecord{{EntityID: "e-1", Name: "JOHN A SMITH"}}
	nameIdx, nameIDIdx, entityIdx := newMemNameIndex(), newMemNameIDIndex(), newMemEntityIDIndex()
	if _, err := build(context.Background(), raw, nameIdx, nameIDIdx, entityIdx, upperClean, fixedDist, StopwordSet{}); err != nil {
		t.Fatalf("build: %v", err)
	}

	var sawSmithAtWordID2 bool
	_ = nameIdx.Scan(func(hash uint64, entries []IndexEntry) bool {
		for _, e := range entries {
			if e.WordID == 2 && e.EditDistance == 0 {
				sawSmithAtWordID2 = true
			}
		}
		return true
	})
	if !sawSmithAtWordID2 {
		t.Error("expected an exact-match entry at word_id=2 for SMITH (split-array position, gap preserved for the filtered word A)")
	}
}

func TestBuildStopwordsExcluded(t *testing.T) {
	raw := []RawRecord{{EntityID: "e-1", Name: "MR JOHN SMITH"}}
	stopwords := StopwordSet{"MR": struct{}{}}
	nameIdx, nameIDIdx, entityIdx := newMemNameIndex(), newMemNameIDIndex(), newMemEntityIDIndex()
	report, err := build(context.Background(), raw, nameIdx, nameIDIdx, entityIdx, upperClean, fixedDist, stopwords)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if report.WordsIndexed != 2 {
		t.Errorf("WordsIndexed = %d, want 2 (MR excluded)", report.WordsIndexed)
	}
	rec, ok, err := nameIDIdx.Lookup(1)
	if err != nil || !ok {
		t.Fatalf("Lookup(1) = %v, %v, %v", rec, ok, err)
	}
	if rec.WordCount != 2 {
		t.Errorf("WordCount = %d, want 2", rec.WordCount)
	}
}

func TestBuildRejectsDistOutOfRange(t *testing.T) {
	raw := []RawRecord{{EntityID: "e-1", Name: "JOHN SMITH"}}
	badDist := DistancerFunc(func(w string) int { return 5 })
	nameIdx, nameIDIdx, entityIdx := newMemNameIndex(), newMemNameIDIndex(), newMemEntityIDIndex()
	_, err := build(context.Background(), raw, nameIdx, nameIDIdx, entityIdx, upperClean, badDist, StopwordSet{})
	if err == nil {
		t.Fatal("expected an error for dist() out of {0..4}")
	}
	if !isKind(err, KindInvalidArgument) {
		t.Errorf("expected KindInvalidArgument, got %v", err)
	}
}

func TestBuildCancellation(t *testing.T) {
	raw := []RawRecord{{EntityID: "e-1", Name: "JOHN SMITH"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	nameIdx, nameIDIdx, entityIdx := newMemNameIndex(), newMemNameIDIndex(), newMemEntityIDIndex()
	_, err := build(ctx, raw, nameIdx, nameIDIdx, entityIdx, upperClean, fixedDist, StopwordSet{})
	if !isCancellation(err) {
		t.Errorf("expected a cancellation error, got %v", err)
	}
}

func TestBuildIsDeterministicAcrossRuns(t *testing.T) {
	raw := []RawRecord{
		{EntityID: "e-1", Name: "JOHN SMITH"},
		{EntityID: "e-2", Name: "JANE DOE"},
		{EntityID: "e-3", Name: "JON SMYTHE"},
	}

	run := func() []nameIndexRecord {
		nameIdx, nameIDIdx, entityIdx := newMemNameIndex(), newMemNameIDIndex(), newMemEntityIDIndex()
		if _, err := build(context.Background(), raw, nameIdx, nameIDIdx, entityIdx, upperClean, fixedDist, StopwordSet{}); err != nil {
			t.Fatalf("build: %v", err)
		}
		var records []nameIndexRecord
		_ = nameIdx.Scan(func(h uint64, entries []IndexEntry) bool {
			records = append(records, nameIndexRecord{Hash: h, Entries: entries})
			return true
		})
		return records
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("two builds produced different key counts: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Hash != b[i].Hash {
			t.Fatalf("two builds disagreed on scan order at index %d: %d vs %d", i, a[i].Hash, b[i].Hash)
		}
	}
}
