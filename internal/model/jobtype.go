package model

import "fmt"

// JobType values accepted by the create form.
//
//	Full Time | Part Time | Contract | Internship
//
// "Please select" is the form placeholder and never a valid type.
type JobType string

const (
	JobTypeFullTime   JobType = "Full Time"
	JobTypePartTime   JobType = "Part Time"
	JobTypeContract   JobType = "Contract"
	JobTypeInternship JobType = "Internship"
)

// JobTypePlaceholder is what the create form submits when nothing was chosen.
const JobTypePlaceholder = "Please select"

// JobTypes lists the selectable types in form order.
var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship}

// ParseJobType converts a raw string to a JobType, returning an error for
// unknown values. Matching is exact.
func ParseJobType(s string) (JobType, error) {
	jt := JobType(s)
	switch jt {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship:
		return jt, nil
	}
	return "", fmt.Errorf("unknown job type %q", s)
}

// IsPlaceholder reports whether s means "no type chosen".
func IsPlaceholder(s string) bool { return s == "" || s == JobTypePlaceholder }
