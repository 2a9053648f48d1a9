// internal/workers/segmentation/segment-candidates/models.go
package segmentcandidates

// Input holds the process variables for one segmentation request. Strategy
// defaults from configuration when omitted; K defaults from the dataset
// size; eps/minPoints only apply to the density strategy.
type Input struct {
	Strategy    string  `json:"strategy,omitempty"`
	K           int     `json:"k,omitempty"`
	Eps         float64 `json:"eps,omitempty"`
	MinPoints   int     `json:"minPoints,omitempty"`
	RequestedBy string  `json:"requestedBy,omitempty"`
}

type Output struct {
	RunID                 string `json:"runId"`
	Strategy              string `json:"strategy"`
	SegmentCount          int    `json:"segmentCount"`
	CandidatesProcessed   int    `json:"candidatesProcessed"`
	CandidatesUnsegmented int    `json:"candidatesUnsegmented"`
}
