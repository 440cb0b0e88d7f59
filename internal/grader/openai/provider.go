// Package openai grades answer recordings through the OpenAI API: Whisper for
// speech-to-text, then a chat completion that scores the transcript against
// the question.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/examlab/recorder/internal/config"
	"github.com/examlab/recorder/pkg/models"
)

const systemPrompt = `You are an interview examiner. You receive one interview question and the transcript of a candidate's spoken answer. Score the answer from 1 (very poor) to 10 (excellent) for relevance, structure and depth. Respond with ONLY a JSON object: {"score": <int 1-10>, "comment": "<one short sentence>"}.`

// Provider implements models.GradingProvider using the OpenAI API.
type Provider struct {
	cfg config.OpenAIConfig
	cli *goopenai.Client
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Provider{cfg: cfg, cli: goopenai.NewClientWithConfig(clientCfg)}
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) Grade(ctx context.Context, req models.GradeRequest) (models.GradeResult, error) {
	audioPath := req.AudioPath
	if audioPath == "" {
		audioPath = req.MediaPath
	}

	resp, err := p.cli.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    p.cfg.TranscribeModel,
		FilePath: audioPath,
	})
	if err != nil {
		return models.GradeResult{}, fmt.Errorf("transcribe %s: %w", audioPath, err)
	}
	transcript := strings.TrimSpace(resp.Text)
	if transcript == "" {
		return models.GradeResult{}, fmt.Errorf("%w: empty transcription", ErrInvalidResponse)
	}

	payload, model, err := p.score(ctx, req.Question, transcript)
	if err != nil {
		return models.GradeResult{}, err
	}

	return models.GradeResult{
		Transcript: transcript,
		Score:      payload.Score,
		Comment:    payload.Comment,
		Model:      model,
	}, nil
}

// score walks the configured model list in order until one accepts the
// request and returns a parsable payload.
func (p *Provider) score(ctx context.Context, question, transcript string) (GradePayload, string, error) {
	user := fmt.Sprintf("Question: %s\n\nCandidate's answer transcript:\n%s", question, transcript)

	var lastErr error
	for _, model := range p.cfg.ScoringModels {
		resp, err := p.cli.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
			Model:       model,
			Temperature: 0.2,
			Messages: []goopenai.ChatCompletionMessage{
				{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: goopenai.ChatMessageRoleUser, Content: user},
			},
		})
		if err != nil {
			slog.Warn("scoring model rejected request, trying next", "model", model, "error", err)
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("%w: no choices from %s", ErrInvalidResponse, model)
			continue
		}
		payload, err := ParseGradePayload(resp.Choices[0].Message.Content)
		if err != nil {
			lastErr = fmt.Errorf("model %s: %w", model, err)
			continue
		}
		return payload, model, nil
	}
	return GradePayload{}, "", fmt.Errorf("%w: %v", ErrProviderUnavailable, lastErr)
}

var _ models.GradingProvider = (*Provider)(nil)
