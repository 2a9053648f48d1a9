// internal/models/candidate.go
package models

import "time"

// Education levels, ordered lowest to highest. Unknown values rank as none.
const (
	EducationNone      = "none"
	EducationSecondary = "secondary"
	EducationBachelor  = "bachelor"
	EducationMaster    = "master"
	EducationDoctorate = "doctorate"
)

// EducationRank maps an education level to its ordinal rank.
func EducationRank(level string) int {
	switch level {
	case EducationSecondary:
		return 1
	case EducationBachelor:
		return 2
	case EducationMaster:
		return 3
	case EducationDoctorate:
		return 4
	default:
		return 0
	}
}

type Candidate struct {
	ID              string     `json:"id"`
	YearsExperience *float64   `json:"yearsExperience,omitempty"`
	EducationLevel  string     `json:"educationLevel"`
	PrimarySkill    string     `json:"primarySkill"`
	Skills          []string   `json:"skills"`
	Location        string     `json:"location"`
	DesiredSalary   *int64     `json:"desiredSalary,omitempty"` // minor currency units
	SegmentID       *int64     `json:"segmentId,omitempty"`
	SegmentUpdated  *time.Time `json:"segmentUpdatedAt,omitempty"`
}

// HasSkill reports whether the candidate lists the given skill.
func (c *Candidate) HasSkill(skill string) bool {
	if c.PrimarySkill == skill {
		return true
	}
	for _, s := range c.Skills {
		if s == skill {
			return true
		}
	}
	return false
}
