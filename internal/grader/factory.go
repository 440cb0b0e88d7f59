package grader

import (
	"fmt"

	"github.com/examlab/recorder/internal/config"
	"github.com/examlab/recorder/internal/grader/mock"
	"github.com/examlab/recorder/internal/grader/openai"
	"github.com/examlab/recorder/pkg/models"
)

// NewProvider constructs the appropriate grading provider based on config.
// Called once at server startup.
func NewProvider(cfg config.GraderConfig) (models.GradingProvider, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "mock":
		return mock.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown grading provider %q: must be one of openai, mock", cfg.Provider)
	}
}
