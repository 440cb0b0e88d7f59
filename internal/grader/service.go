// Package grader runs the background grading pipeline: prompt lookup,
// optional audio extraction, the external transcription+scoring call, and the
// terminal result write.
package grader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/examlab/recorder/internal/cache"
	"github.com/examlab/recorder/internal/config"
	"github.com/examlab/recorder/internal/media"
	"github.com/examlab/recorder/internal/questions"
	"github.com/examlab/recorder/internal/store"
	"github.com/examlab/recorder/pkg/models"
)

// Service grades stored recordings on a bounded worker pool. Every accepted
// job terminates in a result JSON on disk — a real grade or an error
// sentinel — so polling clients never hang on a started job.
type Service struct {
	provider     models.GradingProvider
	store        store.Store
	bank         *questions.Bank
	cache        cache.Cache
	timeout      time.Duration
	extractAudio bool

	queue chan job
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

type job struct {
	id uuid.UUID
	// name is the media file's store-relative name; the result and status
	// marker share its stem.
	name string
}

// NewService builds the grading service. Call Start before Enqueue.
func NewService(provider models.GradingProvider, st store.Store, bank *questions.Bank, ca cache.Cache, cfg config.GraderConfig) *Service {
	return &Service{
		provider:     provider,
		store:        st,
		bank:         bank,
		cache:        ca,
		timeout:      cfg.Timeout,
		extractAudio: cfg.ExtractAudio,
		queue:        make(chan job, cfg.QueueSize),
	}
}

// Start launches the worker pool.
func (s *Service) Start(workers int) {
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for j := range s.queue {
				s.run(j)
			}
		}()
	}
}

// Stop drains the queue and waits for in-flight jobs. In-flight jobs are
// never cancelled; they run to their terminal result write.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Enqueue accepts one stored recording for grading. The "queued" marker is
// written synchronously before this returns, so an accepted upload is always
// distinguishable from one that never entered the pipeline. A full queue
// rejects the job with ErrQueueFull and leaves no marker behind.
func (s *Service) Enqueue(ctx context.Context, name string) error {
	if err := s.store.WriteStatus(ctx, name, models.GradingQueued); err != nil {
		return fmt.Errorf("mark queued: %w", err)
	}

	j := job{id: uuid.New(), name: name}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		_ = s.store.ClearStatus(ctx, name)
		return ErrQueueFull
	}
	select {
	case s.queue <- j:
		slog.Info("grading job enqueued", "job_id", j.id, "file", name)
		return nil
	default:
		_ = s.store.ClearStatus(ctx, name)
		return ErrQueueFull
	}
}

// run executes one grading job. It recovers from panics and always leaves a
// result file behind — the terminal action is "a JSON now exists for this
// recording", success or not.
func (s *Service) run(j job) {
	ctx := context.Background()

	index, _ := questions.ParseIndex(j.name)
	prompt := s.bank.Prompt(index)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in grading job", "job_id", j.id, "file", j.name, "panic", r)
			s.writeSentinel(ctx, j, prompt, fmt.Errorf("panic: %v", r))
		}
	}()

	_ = s.store.WriteStatus(ctx, j.name, models.GradingRunning)

	result, err := s.grade(ctx, j, prompt)
	if err != nil {
		slog.Warn("grading failed", "job_id", j.id, "file", j.name, "error", err)
		s.writeSentinel(ctx, j, prompt, err)
		return
	}

	rec := models.ResultRecord{
		Filename:   j.name,
		Question:   prompt,
		Transcript: result.Transcript,
		Score:      result.Score,
		Comment:    result.Comment,
	}
	s.finish(ctx, j, rec)
	slog.Info("grading finished", "job_id", j.id, "file", j.name, "score", rec.Score, "model", result.Model)
}

func (s *Service) grade(ctx context.Context, j job, prompt string) (models.GradeResult, error) {
	mediaPath := s.store.MediaPath(j.name)

	audioPath := ""
	if s.extractAudio {
		tmp := filepath.Join(os.TempDir(), fmt.Sprintf("grader-%s.wav", j.id))
		if err := media.ExtractAudio(ctx, mediaPath, tmp); err != nil {
			// Extraction only shrinks the payload; fall back to the video.
			slog.Warn("audio extraction failed, sending full media", "job_id", j.id, "error", err)
		} else {
			audioPath = tmp
			defer os.Remove(tmp)
		}
	}

	gradeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.provider.Grade(gradeCtx, models.GradeRequest{
		MediaPath: mediaPath,
		AudioPath: audioPath,
		Question:  prompt,
	})
}

// writeSentinel records a terminal failure: score 0 with a diagnostic
// comment. Nothing from here ever propagates to an HTTP caller.
func (s *Service) writeSentinel(ctx context.Context, j job, prompt string, cause error) {
	rec := models.ResultRecord{
		Filename:   j.name,
		Question:   prompt,
		Transcript: "",
		Score:      0,
		Comment:    fmt.Sprintf("grading failed: %v", cause),
	}
	s.finish(ctx, j, rec)
}

func (s *Service) finish(ctx context.Context, j job, rec models.ResultRecord) {
	if err := s.store.WriteResult(ctx, rec); err != nil {
		// The one failure mode that leaves no result file. The status
		// marker is kept so the recording does not read as never-started.
		slog.Error("result write failed", "job_id", j.id, "file", j.name, "error", err)
		return
	}
	_ = s.store.ClearStatus(ctx, j.name)
	s.invalidate(ctx, j.name)
}

// invalidate drops cached views that the new result makes stale, best-effort.
func (s *Service) invalidate(ctx context.Context, name string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, cache.ListingKey())
	if candidate := questions.Candidate(name); candidate != "" {
		_ = s.cache.Delete(ctx, cache.ReportKey(candidate))
	}
}
