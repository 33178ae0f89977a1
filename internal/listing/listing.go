// Package listing implements the public Job List View: one fetch of the whole
// collection, a bounded category facet and an incrementally revealed page.
//
// The facet is a stable truncation of the distinct-category sequence, never a
// top-N by frequency. The page is always a prefix of the collection in server
// order.
package listing

import (
	"math"
	"strings"

	"careerpage/portal-service/internal/model"
)

const (
	// MaxCategories bounds the category facet.
	MaxCategories = 5
	// PageStep is the initial cursor and the increment of RevealMore.
	PageStep = 5
)

// CategoriesOf returns the distinct job categories of jobs in first-seen
// order, stopping at MaxCategories.
func CategoriesOf(jobs []model.Job) []string {
	seen := make(map[string]struct{}, MaxCategories)
	out := make([]string, 0, MaxCategories)
	for _, job := range jobs {
		if len(out) == MaxCategories {
			break
		}
		if _, ok := seen[job.JobCategory]; ok {
			continue
		}
		seen[job.JobCategory] = struct{}{}
		out = append(out, job.JobCategory)
	}
	return out
}

// VisiblePage returns the first min(cursor, len(jobs)) jobs.
func VisiblePage(jobs []model.Job, cursor int) []model.Job {
	if cursor <= 0 {
		return jobs[:0]
	}
	if cursor > len(jobs) {
		cursor = len(jobs)
	}
	return jobs[:cursor]
}

// RevealMore advances the cursor by one page. The result is not capped;
// VisiblePage clamps it.
func RevealMore(cursor int) int { return cursor + PageStep }

// HasMore reports whether the "View More" affordance should be shown.
func HasMore(jobs []model.Job, cursor int) bool { return cursor < len(jobs) }

// FormatCategory splits labels longer than two words across two lines, the
// first line taking the larger half.
func FormatCategory(category string) []string {
	words := strings.Fields(category)
	if len(words) <= 2 {
		return []string{category}
	}
	mid := int(math.Ceil(float64(len(words)) / 2))
	return []string{strings.Join(words[:mid], " "), strings.Join(words[mid:], " ")}
}
