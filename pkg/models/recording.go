package models

// Grading status values reported by the listing API. A recording is "pending"
// until its upload is accepted by the grading queue, "queued"/"running" while
// a status marker exists, and "done" once the result JSON is on disk.
const (
	GradingPending = "pending"
	GradingQueued  = "queued"
	GradingRunning = "running"
	GradingDone    = "done"
)

// RecordingInfo is one row of the examiner's listing: a stored answer file
// joined with its (possibly absent) grading result.
type RecordingInfo struct {
	Name          string `json:"name"`
	URL           string `json:"url"`
	Size          string `json:"size"`
	Created       string `json:"created"`
	GradingStatus string `json:"grading_status"`
	Score         *int   `json:"score,omitempty"`
	Comment       string `json:"comment,omitempty"`
}

// CandidateReport aggregates one candidate's results across question files.
type CandidateReport struct {
	Completed bool           `json:"completed"`
	Count     int            `json:"count"`
	AvgScore  float64        `json:"avg_score"`
	Details   []ResultRecord `json:"details"`
}
