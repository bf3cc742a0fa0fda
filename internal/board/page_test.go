package board

import (
	"math"
	"slices"
	"testing"
	"time"

	"pgregory.net/rapid"

	"notifier/internal/service"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name      string
		page      int
		perPage   int
		wantItems []int
		wantPages int
		wantOff   int
	}{
		{"first page", 1, 3, []int{1, 2, 3}, 3, 0},
		{"last partial page", 3, 3, []int{7}, 3, 6},
		{"past the end", 4, 3, nil, 3, 7},
		{"page below one", 0, 3, []int{1, 2, 3}, 3, 0},
		{"default page size", 1, 0, items, 1, 0},
		{"largest page number", math.MaxInt, 3, nil, 3, 7},
		{"largest page size", 1, math.MaxInt, items, 1, 0},
		{"largest page and size", math.MaxInt, math.MaxInt, nil, 1, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(items, tt.page, tt.perPage)
			if !slices.Equal(p.Items, tt.wantItems) {
				t.Errorf("expected items %v, got %v", tt.wantItems, p.Items)
			}
			if p.TotalPages != tt.wantPages {
				t.Errorf("expected %d pages, got %d", tt.wantPages, p.TotalPages)
			}
			if p.Offset != tt.wantOff {
				t.Errorf("expected offset %d, got %d", tt.wantOff, p.Offset)
			}
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	p := Paginate[int](nil, 1, 10)
	if p.TotalPages != 1 || len(p.Items) != 0 || p.HasNext() || p.HasPrev() {
		t.Errorf("unexpected empty page %+v", p)
	}
}

// Walking every page in order yields the input exactly once.
func TestPaginate_PagesPartitionInput(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		items := rapid.SliceOf(rapid.Int()).Draw(rt, "items")
		perPage := rapid.IntRange(1, 25).Draw(rt, "perPage")

		first := Paginate(items, 1, perPage)
		var walked []int
		for n := 1; n <= first.TotalPages; n++ {
			p := Paginate(items, n, perPage)
			if len(p.Items) > perPage {
				rt.Fatalf("page %d has %d items, more than %d", n, len(p.Items), perPage)
			}
			if p.Offset != len(walked) {
				rt.Fatalf("page %d offset %d, want %d", n, p.Offset, len(walked))
			}
			if n < first.TotalPages && len(p.Items) != perPage {
				rt.Fatalf("non-final page %d is short: %d", n, len(p.Items))
			}
			walked = append(walked, p.Items...)
		}
		if !slices.Equal(walked, items) {
			rt.Fatalf("pages do not partition input: %v vs %v", walked, items)
		}
		if beyond := Paginate(items, first.TotalPages+1, perPage); len(beyond.Items) != 0 || beyond.HasNext() {
			rt.Fatalf("page past the end should be empty: %+v", beyond)
		}
		far := rapid.IntRange(first.TotalPages+1, math.MaxInt).Draw(rt, "far")
		if p := Paginate(items, far, perPage); len(p.Items) != 0 || p.Offset != len(items) || !p.HasPrev() {
			rt.Fatalf("page %d should be empty: %+v", far, p)
		}
	})
}

// Sorting is a total order on (created, key): the result does not depend on
// the input permutation.
func TestSortByCreated_IndependentOfInputOrder(t *testing.T) {
	base := time.Date(2023, 6, 2, 0, 0, 0, 0, time.UTC)
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(rt, "n")
		entries := make([]service.Entry, n)
		for i := range entries {
			entries[i] = service.Entry{
				Key: rapid.StringMatching(`[a-f0-9]{4}`).Draw(rt, "key") + string(rune('a'+i)),
				Value: service.Item{
					Created: base.Add(time.Duration(rapid.IntRange(0, 5).Draw(rt, "minute")) * time.Minute),
				},
			}
		}
		shuffled := slices.Clone(entries)
		perm := rapid.Permutation(shuffled).Draw(rt, "perm")

		SortByCreated(entries)
		SortByCreated(perm)
		for i := range entries {
			if entries[i].Key != perm[i].Key {
				rt.Fatalf("order differs at %d: %s vs %s", i, entries[i].Key, perm[i].Key)
			}
			if i > 0 && entries[i-1].Value.Created.After(entries[i].Value.Created) {
				rt.Fatalf("not sorted by created at %d", i)
			}
		}
	})
}
