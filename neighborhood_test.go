package namematch

import (
	"sort"
	"testing"
)

func TestDeletionNeighborhoodIncludesInput(t *testing.T) {
	set := deletionNeighborhoodSet("AB", 2)
	found := false
	for _, v := range set {
		if v == "AB" {
			found = true
		}
	}
	if !found {
		t.Errorf("deletionNeighborhoodSet(%q, 2) = %v, must include the input itself", "AB", set)
	}
}

func TestDeletionNeighborhoodShortInputNotExpanded(t *testing.T) {
	set := deletionNeighborhoodSet("AB", 1)
	sort.Strings(set)
	if len(set) != 1 || set[0] != "AB" {
		t.Errorf("deletionNeighborhoodSet(%q, 1) = %v, want [AB] (2-rune strings don't expand further)", "AB", set)
	}
}

func TestDeletionNeighborhoodDepthOne(t *testing.T) {
	set := deletionNeighborhoodSet("ABC", 1)
	sort.Strings(set)
	want := []string{"AB", "AC", "ABC", "BC"}
	sort.Strings(want)
	if len(set) != len(want) {
		t.Fatalf("deletionNeighborhoodSet(%q, 1) = %v, want %v", "ABC", set, want)
	}
	for i := range set {
		if set[i] != want[i] {
			t.Errorf("deletionNeighborhoodSet(%q, 1) = %v, want %v", "ABC", set, want)
			break
		}
	}
}

func TestDeletionNeighborhoodNoDuplicates(t *testing.T) {
	set := deletionNeighborhoodSet("AAAA", 2)
	seen := make(map[string]struct{})
	for _, v := range set {
		if _, dup := seen[v]; dup {
			t.Fatalf("deletionNeighborhoodSet(%q, 2) contains duplicate %q", "AAAA", v)
		}
		seen[v] = struct{}{}
	}
}

func TestDeletionNeighborhoodZeroDist(t *testing.T) {
	set := deletionNeighborhoodSet("SMITH", 0)
	if len(set) != 1 || set[0] != "SMITH" {
		t.Errorf("deletionNeighborhoodSet(%q, 0) = %v, want [SMITH]", "SMITH", set)
	}
}

func TestDeletionNeighborhoodEarlyStop(t *testing.T) {
	count := 0
	deletionNeighborhood("ABCDEF", 3, func(string) bool {
		count++
		return count < 3
	})
	if count != 3 {
		t.Errorf("deletionNeighborhood did not stop after yield returned false: got %d calls", count)
	}
}
