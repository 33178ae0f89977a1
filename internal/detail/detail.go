// Package detail renders a single job and hosts the two forms that hang off
// job records: the application form and the create-job form.
package detail

import (
	"fmt"
	"strings"
	"time"

	"careerpage/portal-service/internal/model"
)

// NotSpecified is shown for absent optional fields.
const NotSpecified = "Not specified"

var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatDeadline renders a store deadline as DD/MM/YY. Dates are read in UTC.
func FormatDeadline(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NotSpecified
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return fmt.Sprintf("%02d/%02d/%02d", t.Day(), int(t.Month()), t.Year()%100)
		}
	}
	return NotSpecified
}

// CompanyInitial is the avatar letter: the company's first letter or "J".
func CompanyInitial(company string) string {
	for _, r := range strings.TrimSpace(company) {
		return string(r)
	}
	return "J"
}

// Page is the JSON view-model of the job detail page.
type Page struct {
	Job        model.Job `json:"job"`
	Initial    string    `json:"initial"`
	JobType    string    `json:"jobType"`
	Location   string    `json:"location"`
	Experience string    `json:"experience"`
	Salary     string    `json:"salaryRange"`
	Deadline   string    `json:"applicationDeadline"`
}

// Render builds the detail page for job.
func Render(job model.Job) Page {
	experience := job.Experience
	if strings.TrimSpace(experience) == "" {
		experience = NotSpecified
	}
	return Page{
		Job:        job,
		Initial:    CompanyInitial(job.CompanyName),
		JobType:    job.JobType,
		Location:   job.JobLocation,
		Experience: experience,
		Salary:     job.SalaryRange,
		Deadline:   FormatDeadline(job.ApplicationDeadline),
	}
}
