package mock

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/examlab/recorder/pkg/models"
)

// MockProvider satisfies models.GradingProvider for testing and for running
// the recorder without upstream credentials.
type MockProvider struct {
	Name_     string
	GradeFunc func(ctx context.Context, req models.GradeRequest) (models.GradeResult, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Grade(ctx context.Context, req models.GradeRequest) (models.GradeResult, error) {
	if m.GradeFunc != nil {
		return m.GradeFunc(ctx, req)
	}
	return models.GradeResult{}, nil
}

// NewProvider returns a MockProvider with a sensible default response.
func NewProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		GradeFunc: func(_ context.Context, req models.GradeRequest) (models.GradeResult, error) {
			return models.GradeResult{
				Transcript: fmt.Sprintf("Placeholder transcript for %s", filepath.Base(req.MediaPath)),
				Score:      7,
				Comment:    "Mock grading result for testing",
				Model:      "mock-v1",
			}, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		GradeFunc: func(_ context.Context, _ models.GradeRequest) (models.GradeResult, error) {
			return models.GradeResult{}, err
		},
	}
}

// NewBlockingProvider returns a MockProvider that blocks until its context is
// cancelled, for exercising timeout handling.
func NewBlockingProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-blocking",
		GradeFunc: func(ctx context.Context, _ models.GradeRequest) (models.GradeResult, error) {
			<-ctx.Done()
			return models.GradeResult{}, ctx.Err()
		},
	}
}

// Compile-time check that MockProvider implements GradingProvider.
var _ models.GradingProvider = (*MockProvider)(nil)
