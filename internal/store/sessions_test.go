package store_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/examlab/recorder/internal/store"
	"github.com/examlab/recorder/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Lifecycle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	meta, err := s.StartSession(ctx, "Alice")
	require.NoError(t, err)
	assert.NotEmpty(t, meta.ID)
	assert.Equal(t, "Alice", meta.Candidate)
	assert.Equal(t, models.SessionInProgress, meta.Status)
	assert.Empty(t, meta.Uploads)

	rec, err := s.SaveSessionMedia(ctx, meta.ID, 1, ".webm", "42s", strings.NewReader("answer one"))
	require.NoError(t, err)
	assert.Equal(t, "Q1.webm", rec.Filename)
	assert.Equal(t, int64(len("answer one")), rec.Size)
	assert.Equal(t, "42s", rec.Duration)

	// Media lands inside the session directory.
	data, err := os.ReadFile(s.MediaPath("sessions/" + meta.ID + "/Q1.webm"))
	require.NoError(t, err)
	assert.Equal(t, "answer one", string(data))

	got, err := s.GetSession(ctx, meta.ID)
	require.NoError(t, err)
	require.Len(t, got.Uploads, 1)
	assert.Equal(t, 1, got.Uploads[0].Question)

	finished, err := s.FinishSession(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionFinished, finished.Status)
	require.NotNil(t, finished.FinishedAt)
}

func TestSession_ReAnswerReplacesUpload(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	meta, err := s.StartSession(ctx, "Bob")
	require.NoError(t, err)

	_, err = s.SaveSessionMedia(ctx, meta.ID, 2, ".webm", "", strings.NewReader("take one"))
	require.NoError(t, err)
	_, err = s.SaveSessionMedia(ctx, meta.ID, 2, ".webm", "", strings.NewReader("take two"))
	require.NoError(t, err)

	got, err := s.GetSession(ctx, meta.ID)
	require.NoError(t, err)
	require.Len(t, got.Uploads, 1)
	assert.Equal(t, int64(len("take two")), got.Uploads[0].Size)

	data, err := os.ReadFile(s.MediaPath("sessions/" + meta.ID + "/Q2.webm"))
	require.NoError(t, err)
	assert.Equal(t, "take two", string(data))
}

func TestSession_UploadAfterFinishRejected(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	meta, err := s.StartSession(ctx, "Carol")
	require.NoError(t, err)
	_, err = s.FinishSession(ctx, meta.ID)
	require.NoError(t, err)

	_, err = s.SaveSessionMedia(ctx, meta.ID, 1, ".webm", "", strings.NewReader("late"))
	assert.ErrorIs(t, err, store.ErrSessionFinished)
}

func TestSession_UnknownID(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.GetSession(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.GetSession(ctx, "a2c8f7de-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
