package namematch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMemNameIndexPutLookup(t *testing.T) {
	m := newMemNameIndex()
	if err := m.PutMany(42, []IndexEntry{{NameHash: 42, EditDistance: 0, WordID: 0, NameID: 1}}); err != nil {
		t.Fatalf("PutMany: %v", err)
	}
	if err := m.PutMany(42, []IndexEntry{{NameHash: 42, EditDistance: 1, WordID: 1, NameID: 2}}); err != nil {
		t.Fatalf("PutMany: %v", err)
	}
	got, err := m.Lookup(42)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Lookup(42) = %v, want 2 entries", got)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1 distinct key", m.Len())
	}
	if missing, _ := m.Lookup(99); len(missing) != 0 {
		t.Errorf("Lookup(99) = %v, want empty", missing)
	}
}

func TestMemNameIndexScanIsSorted(t *testing.T) {
	m := newMemNameIndex()
	_ = m.PutMany(30, []IndexEntry{{NameHash: 30}})
	_ = m.PutMany(10, []IndexEntry{{NameHash: 10}})
	_ = m.PutMany(20, []IndexEntry{{NameHash: 20}})

	var order []uint64
	_ = m.Scan(func(h uint64, _ []IndexEntry) bool {
		order = append(order, h)
		return true
	})
	want := []uint64{10, 20, 30}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Scan order = %v, want %v", order, want)
		}
	}
}

func TestMemNameIDIndexPutLookup(t *testing.T) {
	m := newMemNameIDIndex()
	if err := m.PutMany([]NameIDRec{{NameID: 1, EntityID: "e-1", WordCount: 2}}); err != nil {
		t.Fatalf("PutMany: %v", err)
	}
	rec, ok, err := m.Lookup(1)
	if err != nil || !ok {
		t.Fatalf("Lookup(1) = %v, %v, %v", rec, ok, err)
	}
	if rec.EntityID != "e-1" || rec.WordCount != 2 {
		t.Errorf("Lookup(1) = %+v, want EntityID=e-1 WordCount=2", rec)
	}
	if _, ok, _ := m.Lookup(999); ok {
		t.Error("Lookup(999) should report not found")
	}
}

func TestMemEntityIDIndexMultipleRows(t *testing.T) {
	m := newMemEntityIDIndex()
	_ = m.PutMany([]EntityIDRec{
		{EntityID: "e-1", NameID: 1, FullName: []byte("JOHN SMITH")},
		{EntityID: "e-1", NameID: 2, FullName: []byte("J SMITH")},
	})
	recs, err := m.Lookup("e-1")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("Lookup(e-1) = %v, want 2 rows (aliases)", recs)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	nameIdx := newMemNameIndex()
	_ = nameIdx.PutMany(7, []IndexEntry{{NameHash: 7, EditDistance: 1, WordID: 0, NameID: 5}})
	path := filepath.Join(dir, "name.idx")
	if err := saveNameIndex(nameIdx, path); err != nil {
		t.Fatalf("saveNameIndex: %v", err)
	}
	reopened, err := openNameIndex(path)
	if err != nil {
		t.Fatalf("openNameIndex: %v", err)
	}
	got, err := reopened.Lookup(7)
	if err != nil || len(got) != 1 || got[0].NameID != 5 {
		t.Errorf("round-tripped NameIndex Lookup(7) = %v, %v", got, err)
	}
}

func TestFileStoreDigestMismatchFailsClosed(t *testing.T) {
	dir := t.TempDir()
	nameIdx := newMemNameIndex()
	_ = nameIdx.PutMany(1, []IndexEntry{{NameHash: 1}})
	path := filepath.Join(dir, "name.idx")
	if err := saveNameIndex(nameIdx, path); err != nil {
		t.Fatalf("saveNameIndex: %v", err)
	}

	// Corrupt the file's body without touching the trailing digest.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	raw[5] ^= 0xFF
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write raw: %v", err)
	}

	if _, err := openNameIndex(path); err == nil {
		t.Fatal("expected digest mismatch error, got nil")
	} else if !isKind(err, KindIndexMissing) {
		t.Errorf("expected KindIndexMissing, got %v", err)
	}
}

func TestFileStoreWrongKindRejected(t *testing.T) {
	dir := t.TempDir()
	nameIDIdx := newMemNameIDIndex()
	_ = nameIDIdx.PutMany([]NameIDRec{{NameID: 1, EntityID: "e-1"}})
	path := filepath.Join(dir, "name_id.idx")
	if err := saveNameIDIndex(nameIDIdx, path); err != nil {
		t.Fatalf("saveNameIDIndex: %v", err)
	}
	if _, err := openNameIndex(path); err == nil {
		t.Fatal("expected kind mismatch error opening a NameIDIndex file as NameIndex")
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	if _, err := openNameIndex(filepath.Join(t.TempDir(), "does-not-exist")); err == nil {
		t.Fatal("expected error opening a nonexistent store file")
	} else if !isKind(err, KindIndexMissing) {
		t.Errorf("expected KindIndexMissing, got %v", err)
	}
}
