package models

// ResultRecord is the JSON artifact the grading pipeline writes next to a
// recording (same stem, .json extension). Its presence is the sole signal
// that processing finished; a score of 0 marks a failed grading attempt.
type ResultRecord struct {
	Filename   string `json:"filename"`
	Question   string `json:"question"`
	Transcript string `json:"transcript"`
	Score      int    `json:"score"`
	Comment    string `json:"comment"`
}

// Failed reports whether this record is an error sentinel rather than a
// real grade.
func (r ResultRecord) Failed() bool { return r.Score == 0 }
