package namematch

import "testing"

func rankedFixture() []Result {
	return []Result{
		{EntityID: "e-1", Score: 100, IsMatch: true},
		{EntityID: "e-2", Score: 90, IsMatch: false},
		{EntityID: "e-3", Score: 80, IsMatch: true},
		{EntityID: "e-4", Score: 70, IsMatch: false},
		{EntityID: "e-5", Score: 60, IsMatch: true},
	}
}

func TestPostFilterAndPaginateMinScore(t *testing.T) {
	out := postFilterAndPaginate(rankedFixture(), QueryParams{MinScore: 80, PageNum: 1, PageSize: 10})
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	for _, r := range out {
		if r.Score < 80 {
			t.Errorf("result %v scored below min_score", r)
		}
	}
}

func TestPostFilterAndPaginateOnlyDirect(t *testing.T) {
	out := postFilterAndPaginate(rankedFixture(), QueryParams{OnlyDirect: true, PageNum: 1, PageSize: 10})
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3 direct matches", len(out))
	}
	for _, r := range out {
		if !r.IsMatch {
			t.Errorf("result %v is not a direct match", r)
		}
	}
}

func TestPostFilterAndPaginatePages(t *testing.T) {
	ranked := rankedFixture()
	page1 := postFilterAndPaginate(ranked, QueryParams{PageNum: 1, PageSize: 2})
	page2 := postFilterAndPaginate(ranked, QueryParams{PageNum: 2, PageSize: 2})
	page3 := postFilterAndPaginate(ranked, QueryParams{PageNum: 3, PageSize: 2})

	if len(page1) != 2 || len(page2) != 2 || len(page3) != 1 {
		t.Fatalf("page lengths = %d, %d, %d, want 2, 2, 1", len(page1), len(page2), len(page3))
	}

	// Concatenating every page reproduces the unpaginated filtered list.
	var all []Result
	all = append(all, page1...)
	all = append(all, page2...)
	all = append(all, page3...)
	if len(all) != len(ranked) {
		t.Fatalf("concatenated pages = %d results, want %d", len(all), len(ranked))
	}
	for i := range ranked {
		if all[i].EntityID != ranked[i].EntityID {
			t.Errorf("concatenated page %d = %s, want %s", i, all[i].EntityID, ranked[i].EntityID)
		}
	}
}

func TestPostFilterAndPaginatePastEnd(t *testing.T) {
	out := postFilterAndPaginate(rankedFixture(), QueryParams{PageNum: 100, PageSize: 10})
	if out != nil {
		t.Errorf("expected nil for a page past the end, got %v", out)
	}
}

func TestClampQueryParams(t *testing.T) {
	p := clampQueryParams(QueryParams{MinScore: 200, PageNum: 0, PageSize: -5})
	if p.MinScore != 100 {
		t.Errorf("MinScore = %d, want clamped to 100", p.MinScore)
	}
	if p.PageNum != 1 {
		t.Errorf("PageNum = %d, want clamped to 1", p.PageNum)
	}
	if p.PageSize != 1 {
		t.Errorf("PageSize = %d, want clamped to 1", p.PageSize)
	}
}
