// internal/workers/segmentation/refresh-segment-profiles/models.go
package refreshsegmentprofiles

// Input is intentionally empty: the refresh always covers the whole
// segment set. Kept as a struct so the wire shape can grow.
type Input struct{}

type Output struct {
	SegmentsRefreshed  int `json:"segmentsRefreshed"`
	ActiveSegments     int `json:"activeSegments"`
	CandidatesAssigned int `json:"candidatesAssigned"`
}
