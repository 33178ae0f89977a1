package listing_test

import (
	"fmt"
	"testing"

	"careerpage/portal-service/internal/listing"
	"careerpage/portal-service/internal/model"
)

func jobsWithCategories(cats ...string) []model.Job {
	jobs := make([]model.Job, 0, len(cats))
	for i, c := range cats {
		jobs = append(jobs, model.Job{ID: fmt.Sprintf("j%d", i), JobCategory: c})
	}
	return jobs
}

func jobsOfLen(n int) []model.Job {
	jobs := make([]model.Job, n)
	for i := range jobs {
		jobs[i].ID = fmt.Sprintf("j%d", i)
	}
	return jobs
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ── CategoriesOf ──────────────────────────────────────────────────────────

func TestCategoriesOf_FewDistinctKeepsFirstSeenOrder(t *testing.T) {
	got := listing.CategoriesOf(jobsWithCategories("Design", "Sales", "Design", "IT"))
	want := []string{"Design", "Sales", "IT"}
	if !equalStrings(got, want) {
		t.Errorf("CategoriesOf = %v, want %v", got, want)
	}
}

func TestCategoriesOf_TruncatesToFirstFiveDistinct(t *testing.T) {
	got := listing.CategoriesOf(jobsWithCategories("A", "B", "A", "C", "D", "E", "F"))
	want := []string{"A", "B", "C", "D", "E"}
	if !equalStrings(got, want) {
		t.Errorf("CategoriesOf = %v, want %v", got, want)
	}
}

// Frequency must not matter: a category repeated after the fifth distinct
// value never displaces an earlier one.
func TestCategoriesOf_NotTopByFrequency(t *testing.T) {
	got := listing.CategoriesOf(jobsWithCategories("A", "B", "C", "D", "E", "F", "F", "F", "F"))
	want := []string{"A", "B", "C", "D", "E"}
	if !equalStrings(got, want) {
		t.Errorf("CategoriesOf = %v, want %v", got, want)
	}
}

func TestCategoriesOf_ExactlyFive(t *testing.T) {
	got := listing.CategoriesOf(jobsWithCategories("A", "B", "C", "D", "E"))
	if len(got) != listing.MaxCategories {
		t.Errorf("len(CategoriesOf) = %d, want %d", len(got), listing.MaxCategories)
	}
}

func TestCategoriesOf_Empty(t *testing.T) {
	if got := listing.CategoriesOf(nil); len(got) != 0 {
		t.Errorf("CategoriesOf(nil) = %v, want empty", got)
	}
}

// Values are compared exactly; case variants are distinct categories.
func TestCategoriesOf_ExactValues(t *testing.T) {
	got := listing.CategoriesOf(jobsWithCategories("IT", "it", ""))
	want := []string{"IT", "it", ""}
	if !equalStrings(got, want) {
		t.Errorf("CategoriesOf = %v, want %v", got, want)
	}
}

// ── VisiblePage ───────────────────────────────────────────────────────────

func TestVisiblePage_LengthIsMinOfCursorAndSize(t *testing.T) {
	for size := 0; size <= 12; size++ {
		jobs := jobsOfLen(size)
		for cursor := 0; cursor <= 20; cursor++ {
			want := cursor
			if size < want {
				want = size
			}
			if got := len(listing.VisiblePage(jobs, cursor)); got != want {
				t.Errorf("len(VisiblePage(%d jobs, %d)) = %d, want %d", size, cursor, got, want)
			}
		}
	}
}

func TestVisiblePage_IsPrefixInServerOrder(t *testing.T) {
	jobs := jobsOfLen(8)
	page := listing.VisiblePage(jobs, 5)
	for i := range page {
		if page[i].ID != jobs[i].ID {
			t.Errorf("page[%d] = %s, want %s", i, page[i].ID, jobs[i].ID)
		}
	}
}

func TestVisiblePage_NegativeCursor(t *testing.T) {
	if got := listing.VisiblePage(jobsOfLen(3), -5); len(got) != 0 {
		t.Errorf("VisiblePage with negative cursor returned %d jobs", len(got))
	}
}

func TestVisiblePage_CursorBeyondSmallCollection(t *testing.T) {
	jobs := jobsOfLen(3)
	if got := listing.VisiblePage(jobs, 5); len(got) != 3 {
		t.Errorf("VisiblePage(3 jobs, 5) returned %d jobs, want 3", len(got))
	}
	if listing.HasMore(jobs, 5) {
		t.Error("HasMore should be false when the cursor covers the collection")
	}
}

// ── RevealMore / HasMore ──────────────────────────────────────────────────

func TestRevealMore_AddsFive(t *testing.T) {
	for _, c := range []int{0, 5, 7, 100} {
		if got := listing.RevealMore(c); got != c+5 {
			t.Errorf("RevealMore(%d) = %d, want %d", c, got, c+5)
		}
	}
}

func TestRevealMore_UntilAffordanceDisappears(t *testing.T) {
	jobs := jobsOfLen(12)
	cursor := listing.PageStep
	steps := 0
	for listing.HasMore(jobs, cursor) {
		cursor = listing.RevealMore(cursor)
		steps++
		if steps > 10 {
			t.Fatal("reveal affordance never disappeared")
		}
	}
	if cursor != 15 {
		t.Errorf("final cursor = %d, want 15", cursor)
	}
	if steps != 2 {
		t.Errorf("steps = %d, want 2", steps)
	}
	if got := len(listing.VisiblePage(jobs, cursor)); got != 12 {
		t.Errorf("visible after full reveal = %d, want 12", got)
	}
}

// ── FormatCategory ────────────────────────────────────────────────────────

func TestFormatCategory(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Design", []string{"Design"}},
		{"Data Science", []string{"Data Science"}},
		{"Sales and Marketing", []string{"Sales and", "Marketing"}},
		{"Human Resource Management Team", []string{"Human Resource", "Management Team"}},
	}
	for _, c := range cases {
		if got := listing.FormatCategory(c.in); !equalStrings(got, c.want) {
			t.Errorf("FormatCategory(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
