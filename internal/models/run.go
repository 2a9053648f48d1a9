// internal/models/run.go
package models

import "time"

// Segmentation run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// SegmentationRun records one segmentation invocation, so "which
// segmentation is active" is data rather than process state.
type SegmentationRun struct {
	ID                  string     `json:"id"`
	Strategy            string     `json:"strategy"`
	K                   int        `json:"k,omitempty"`
	Eps                 float64    `json:"eps,omitempty"`
	MinPoints           int        `json:"minPoints,omitempty"`
	Status              string     `json:"status"`
	SegmentCount        int        `json:"segmentCount"`
	CandidatesProcessed int        `json:"candidatesProcessed"`
	CandidatesNoise     int        `json:"candidatesUnsegmented"`
	RequestedBy         string     `json:"requestedBy,omitempty"`
	StartedAt           time.Time  `json:"startedAt"`
	FinishedAt          *time.Time `json:"finishedAt,omitempty"`
}
