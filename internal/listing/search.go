package listing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"careerpage/portal-service/internal/model"
)

// SearchTitle returns the jobs whose title contains query, ignoring case and
// diacritics. Server order is kept; an empty query matches everything.
func SearchTitle(jobs []model.Job, query string) []model.Job {
	needle := fold(strings.TrimSpace(query))
	if needle == "" {
		return jobs
	}
	out := make([]model.Job, 0)
	for _, job := range jobs {
		if strings.Contains(fold(job.JobTitle), needle) {
			out = append(out, job)
		}
	}
	return out
}

// fold lowercases s and strips combining marks ("Développeur" → "developpeur").
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(result)
}
