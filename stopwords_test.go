package namematch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadStopwordsEmptyPath(t *testing.T) {
	set, err := loadStopwords("")
	if err != nil {
		t.Fatalf("loadStopwords(\"\") error: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("loadStopwords(\"\") = %v, want empty set", set)
	}
	if set.Contains("MR") {
		t.Error("empty set should not contain anything")
	}
}

func TestLoadStopwordsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stopwords.txt")
	if err := os.WriteFile(path, []byte("MR\nMRS\n\nDR\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	set, err := loadStopwords(path)
	if err != nil {
		t.Fatalf("loadStopwords: %v", err)
	}
	for _, w := range []string{"MR", "MRS", "DR"} {
		if !set.Contains(w) {
			t.Errorf("expected stopword set to contain %q", w)
		}
	}
	if set.Contains("SMITH") {
		t.Error("stopword set should not contain non-listed words")
	}
}

func TestLoadStopwordsMissingFile(t *testing.T) {
	if _, err := loadStopwords("/nonexistent/path/stopwords.txt"); err == nil {
		t.Fatal("expected an error for a missing stopwords file")
	} else if !isKind(err, KindInvalidArgument) {
		t.Errorf("expected KindInvalidArgument, got %v", err)
	}
}

func TestNilStopwordSetContainsNothing(t *testing.T) {
	var set StopwordSet
	if set.Contains("MR") {
		t.Error("nil StopwordSet.Contains should always report false")
	}
}
