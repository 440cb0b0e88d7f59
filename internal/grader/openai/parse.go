package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProviderUnavailable = errors.New("grading provider unavailable")
	ErrInvalidResponse     = errors.New("grading provider returned invalid response")
)

// GradePayload is the structured body the scoring model is asked to return.
type GradePayload struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// ParseGradePayload parses a model response into a GradePayload. Models wrap
// JSON in markdown code fences often enough that the noise is stripped first.
// The score is clamped into 1..10; 0 stays reserved for failure sentinels.
func ParseGradePayload(raw string) (GradePayload, error) {
	cleaned := StripCodeFences(raw)
	// Some models pad the JSON with prose; cut down to the outermost object.
	if start := strings.Index(cleaned, "{"); start >= 0 {
		if end := strings.LastIndex(cleaned, "}"); end > start {
			cleaned = cleaned[start : end+1]
		}
	}

	var payload GradePayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return GradePayload{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	payload.Score = clampScore(payload.Score)
	return payload, nil
}

// StripCodeFences removes a surrounding markdown code fence, with or without
// a language tag.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the language tag on the opening fence line.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		first := strings.TrimSpace(s[:i])
		if first == "" || !strings.ContainsAny(first, "{}") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func clampScore(n int) int {
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}
