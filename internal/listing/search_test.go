package listing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"careerpage/portal-service/internal/listing"
	"careerpage/portal-service/internal/model"
)

func titled(titles ...string) []model.Job {
	jobs := make([]model.Job, 0, len(titles))
	for _, t := range titles {
		jobs = append(jobs, model.Job{JobTitle: t})
	}
	return jobs
}

func titlesOf(jobs []model.Job) []string {
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.JobTitle)
	}
	return out
}

func TestSearchTitle_CaseInsensitive(t *testing.T) {
	jobs := titled("Senior GO Developer", "Designer", "golang intern")
	got := listing.SearchTitle(jobs, "go")
	assert.Equal(t, []string{"Senior GO Developer", "golang intern"}, titlesOf(got))
}

func TestSearchTitle_IgnoresDiacritics(t *testing.T) {
	jobs := titled("Développeur Backend", "Chef de projet")
	assert.Equal(t, []string{"Développeur Backend"}, titlesOf(listing.SearchTitle(jobs, "developpeur")))
	assert.Equal(t, []string{"Développeur Backend"}, titlesOf(listing.SearchTitle(jobs, "DÉVELOPPEUR")))
}

func TestSearchTitle_EmptyQueryMatchesAll(t *testing.T) {
	jobs := titled("A", "B")
	assert.Len(t, listing.SearchTitle(jobs, "   "), 2)
}

func TestSearchTitle_NoMatch(t *testing.T) {
	assert.Empty(t, listing.SearchTitle(titled("Designer"), "accountant"))
}
