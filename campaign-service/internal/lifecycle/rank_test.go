package lifecycle

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func ids(ranked []Ranked) []string {
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.ID)
	}
	return out
}

func sampleItems() []Item {
	return []Item{
		{ID: "closed-a", Dates: Dates{Start: day("2025-03-01"), Event: day("2025-04-01")}},
		{ID: "active-late", Dates: Dates{Start: day("2025-06-10"), Deadline: day("2025-06-30")}},
		{ID: "upcoming", Dates: Dates{Start: day("2025-08-01")}},
		{ID: "closed-b", Dates: Dates{Start: day("2025-03-01"), Deadline: day("2025-05-01")}},
		{ID: "active-early", Dates: Dates{Start: day("2025-06-01"), Deadline: day("2025-06-30")}},
	}
}

func TestRankPhaseMajorThenStartDate(t *testing.T) {
	got := Rank(today, sampleItems(), "")
	want := []string{"active-early", "active-late", "upcoming", "closed-a", "closed-b"}
	if diff := cmp.Diff(want, ids(got)); diff != "" {
		t.Fatalf("rank order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, PhaseActive, got[0].Phase)
	assert.Equal(t, PhaseClosed, got[4].Phase)
}

func TestRankFilterClosedKeepsInputOrderOnTies(t *testing.T) {
	got := Rank(today, sampleItems(), PhaseClosed)
	if diff := cmp.Diff([]string{"closed-a", "closed-b"}, ids(got)); diff != "" {
		t.Fatalf("filtered order mismatch (-want +got):\n%s", diff)
	}
}

func TestRankUndatedSortLast(t *testing.T) {
	items := []Item{
		{ID: "undated-1"},
		{ID: "dated", Dates: Dates{Start: day("2025-06-01")}},
		{ID: "undated-2"},
	}
	got := Rank(today, items, PhaseActive)
	assert.Equal(t, []string{"dated", "undated-1", "undated-2"}, ids(got))
}

func TestRankUnknownFilterMeansNoFilter(t *testing.T) {
	assert.Len(t, Rank(today, sampleItems(), Phase("archived")), 5)
}

func TestRankFilterIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, []string{"upcoming"}, ids(Rank(today, sampleItems(), Phase("upcoming"))))
}

func TestRankDoesNotMutateInput(t *testing.T) {
	items := sampleItems()
	_ = Rank(today, items, "")
	assert.Equal(t, "closed-a", items[0].ID)
	assert.Equal(t, "active-early", items[4].ID)
}

func TestRankEmpty(t *testing.T) {
	got := Rank(today, nil, "")
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = Rank(today, []Item{{ID: "x", Dates: Dates{Start: day("2025-08-01")}}}, PhaseClosed)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
