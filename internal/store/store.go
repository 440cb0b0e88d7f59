package store

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/examlab/recorder/pkg/models"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrSessionFinished = errors.New("session already finished")
)

// Store is the persistence interface. The backing store is a directory: the
// listing IS the index, and a recording's grading result lives in a sibling
// JSON file sharing its stem. All filesystem access goes through here.
type Store interface {
	// SaveMedia writes an answer recording under name, overwriting any
	// existing file with the same name (the re-record feature).
	SaveMedia(ctx context.Context, name string, r io.Reader) (int64, error)
	// MediaPath returns the absolute on-disk path for a stored name.
	MediaPath(name string) string
	// ListRecordings joins every media file with its optional result and
	// status marker, newest first.
	ListRecordings(ctx context.Context) ([]Recording, error)
	// DeleteRecording removes the media file, its result and its status
	// marker. Missing files are not an error.
	DeleteRecording(ctx context.Context, name string) error
	// DeleteAll clears the entire store, sessions included.
	DeleteAll(ctx context.Context) error

	// WriteResult persists rec next to the media file named rec.Filename,
	// replacing any previous result for that file.
	WriteResult(ctx context.Context, rec models.ResultRecord) error
	ReadResult(ctx context.Context, name string) (models.ResultRecord, bool, error)
	// ResultsFor loads every result whose filename starts with the
	// candidate identifier, sorted by embedded question index.
	// Unparsable result files are skipped.
	ResultsFor(ctx context.Context, candidate string) ([]models.ResultRecord, error)

	// Status markers record that grading was accepted ("queued") or picked
	// up ("running") before any result exists. Written synchronously at
	// enqueue time so a recording with neither marker nor result is known
	// to have never entered the pipeline.
	WriteStatus(ctx context.Context, name, status string) error
	ReadStatus(ctx context.Context, name string) (string, bool, error)
	ClearStatus(ctx context.Context, name string) error

	// Sessions: one directory per interview, with a meta.json manifest and
	// Q<n>.<ext> media files.
	StartSession(ctx context.Context, candidate string) (*models.SessionMeta, error)
	GetSession(ctx context.Context, id string) (*models.SessionMeta, error)
	SaveSessionMedia(ctx context.Context, id string, question int, ext, duration string, r io.Reader) (*models.UploadRecord, error)
	FinishSession(ctx context.Context, id string) (*models.SessionMeta, error)
}

// Recording is one media file joined with whatever grading state exists for
// it on disk.
type Recording struct {
	Name    string
	Size    int64
	ModTime time.Time
	Result  *models.ResultRecord // nil while no result JSON exists
	Status  string               // queued/running marker, "" when absent
}

// GradingStatus derives the reported status: a result means done, a marker
// means queued or running, nothing means the pipeline never started.
func (r Recording) GradingStatus() string {
	switch {
	case r.Result != nil:
		return models.GradingDone
	case r.Status != "":
		return r.Status
	default:
		return models.GradingPending
	}
}

// SanitizeFilename strips every rune outside [A-Za-z0-9._-]. Characters are
// dropped, not rejected, so two distinct inputs can collide on the same
// sanitized name; the later upload wins.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == '.', c == '_', c == '-':
			b.WriteRune(c)
		}
	}
	return b.String()
}
