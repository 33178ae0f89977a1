package detail

import (
	"strings"

	"careerpage/portal-service/internal/model"
)

// ValidateNewJob checks the create-job form. Company name, title and
// location are required; a chosen job type must be one of model.JobTypes.
// The placeholder type is cleared.
func ValidateNewJob(job model.Job) (model.Job, error) {
	fields := map[string]string{}
	job.ID = ""
	job.CompanyName = strings.TrimSpace(job.CompanyName)
	job.JobTitle = strings.TrimSpace(job.JobTitle)
	job.JobLocation = strings.TrimSpace(job.JobLocation)

	if job.CompanyName == "" {
		fields["companyName"] = "company name is required"
	}
	if job.JobTitle == "" {
		fields["jobTitle"] = "job title is required"
	}
	if job.JobLocation == "" {
		fields["jobLocation"] = "job location is required"
	}
	if model.IsPlaceholder(job.JobType) {
		job.JobType = ""
	} else if _, err := model.ParseJobType(job.JobType); err != nil {
		fields["jobType"] = err.Error()
	}
	if len(fields) > 0 {
		return job, &ValidationError{Fields: fields}
	}
	return job, nil
}
