// Package models contains shared data models used across the recorder codebase.
package models

import "context"

// GradingProvider is the core interface every grading integration must implement.
// Never call a specific provider directly — always inject this interface.
type GradingProvider interface {
	// Grade transcribes one answer recording and scores it against the question.
	Grade(ctx context.Context, req GradeRequest) (GradeResult, error)
	// Name returns the provider identifier (e.g., "openai", "mock").
	Name() string
}

// GradeRequest is the input to a grading operation.
type GradeRequest struct {
	// MediaPath is the stored answer recording on disk.
	MediaPath string
	// AudioPath, when non-empty, points at a pre-extracted audio-only track
	// that providers should prefer over MediaPath to cut payload size.
	AudioPath string
	// Question is the prompt the candidate was answering.
	Question string
}

// GradeResult is the structured output of a grading operation.
type GradeResult struct {
	Transcript string
	Score      int // 1-10
	Comment    string
	Model      string
}
