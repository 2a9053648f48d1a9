// internal/models/segment.go
package models

import "time"

// Segment is derived state: every segmentation run replaces the full set,
// so segment ids are not stable across runs.
type Segment struct {
	ID           int64          `json:"id"`
	RunID        string         `json:"runId"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	IsNameManual bool           `json:"isNameManual"`
	IsActive     bool           `json:"isActive"`
	Profile      SegmentProfile `json:"profile"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// SegmentProfile holds the descriptive statistics for one segment.
// A degenerate (empty) segment has zero counts and empty lists, never nil.
type SegmentProfile struct {
	SegmentID       int64          `json:"segmentId"`
	CandidateCount  int            `json:"candidateCount"`
	AvgExperience   float64        `json:"avgExperience"`
	TopSkills       []ValueCount   `json:"topSkills"`
	TopLocations    []ValueCount   `json:"topLocations"`
	EducationCounts map[string]int `json:"educationCounts"`
}

// ValueCount is a categorical value with its frequency within a segment.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}
