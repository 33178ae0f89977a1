// Package model defines the job record shared by every portal view.
package model

// Job mirrors one record of the Remote Job Store. Field names follow the
// store's JSON wire format; the portal never invents fields of its own.
type Job struct {
	ID                  string `json:"_id,omitempty"`
	CompanyName         string `json:"companyName"`
	CompanyWebsite      string `json:"companyWebsite,omitempty"`
	JobTitle            string `json:"jobTitle"`
	JobCategory         string `json:"jobCategory"`
	JobType             string `json:"jobType"`
	JobLocation         string `json:"jobLocation"`
	SalaryRange         string `json:"salaryRange"`
	Experience          string `json:"experience"`
	Qualification       string `json:"qualification"`
	ApplicationDeadline string `json:"applicationDeadline"`
	ApplicationLink     string `json:"applicationLink"`
	JobDescription      string `json:"jobDescription"`
}

// IndexByID returns the position of the job with the given identifier, or -1.
func IndexByID(jobs []Job, id string) int {
	for i := range jobs {
		if jobs[i].ID == id {
			return i
		}
	}
	return -1
}
