package models

import "time"

const (
	SessionInProgress = "in_progress"
	SessionFinished   = "finished"
)

// SessionMeta is the meta.json manifest of one interview session directory.
// Uploads are appended on each answer; FinishedAt is set when the session is
// closed by the client.
type SessionMeta struct {
	ID         string         `json:"id"`
	Candidate  string         `json:"candidate"`
	Status     string         `json:"status"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Uploads    []UploadRecord `json:"uploads"`
}

// SessionAnswer is one session upload joined with its grading state: the
// same result-JSON-beside-media join the flat listing does, scoped to the
// session directory.
type SessionAnswer struct {
	UploadRecord
	GradingStatus string        `json:"grading_status"`
	Result        *ResultRecord `json:"result,omitempty"`
}

// SessionReport is the session read model: the meta manifest plus each
// answer's grading state.
type SessionReport struct {
	SessionMeta
	Answers []SessionAnswer `json:"answers"`
}

// UploadRecord is one per-question upload inside a session. Question and
// candidate travel as structured fields here instead of being parsed back
// out of the filename.
type UploadRecord struct {
	Question   int       `json:"question"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	Duration   string    `json:"duration,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}
