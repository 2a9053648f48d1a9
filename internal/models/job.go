// internal/models/job.go
package models

type JobOpening struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	RequiredSkills []string `json:"requiredSkills"`
	Location       string   `json:"location"`
	SalaryMin      int64    `json:"salaryMin,omitempty"` // minor currency units
	SalaryMax      int64    `json:"salaryMax,omitempty"`
	TargetSegments []int64  `json:"targetSegments,omitempty"`
}

// SalaryMidpoint returns the midpoint of the job's salary band, or 0 when
// no band is set.
func (j *JobOpening) SalaryMidpoint() int64 {
	if j.SalaryMin == 0 && j.SalaryMax == 0 {
		return 0
	}
	if j.SalaryMax == 0 {
		return j.SalaryMin
	}
	return (j.SalaryMin + j.SalaryMax) / 2
}

// IsEmpty reports whether the job carries no usable signal for a
// recommendation (no title, skills, or location).
func (j *JobOpening) IsEmpty() bool {
	return j.Title == "" && len(j.RequiredSkills) == 0 && j.Location == ""
}
