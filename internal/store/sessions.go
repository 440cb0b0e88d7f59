package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/examlab/recorder/pkg/models"
)

func (s *FSStore) sessionDir(id string) string {
	return filepath.Join(s.root, sessionsDir, id)
}

func (s *FSStore) StartSession(_ context.Context, candidate string) (*models.SessionMeta, error) {
	meta := &models.SessionMeta{
		ID:        uuid.New().String(),
		Candidate: candidate,
		Status:    models.SessionInProgress,
		StartedAt: time.Now().UTC(),
		Uploads:   []models.UploadRecord{},
	}
	if err := os.MkdirAll(s.sessionDir(meta.ID), 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	if err := s.writeMeta(meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (s *FSStore) GetSession(_ context.Context, id string) (*models.SessionMeta, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.readMeta(id)
}

// SaveSessionMedia stores the answer for one question as Q<n>.<ext> inside
// the session directory and appends an upload record to meta.json.
// Re-answering a question overwrites the media file and its record.
func (s *FSStore) SaveSessionMedia(ctx context.Context, id string, question int, ext, duration string, r io.Reader) (*models.UploadRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.readMeta(id)
	if err != nil {
		return nil, err
	}
	if meta.Status == models.SessionFinished {
		return nil, ErrSessionFinished
	}

	filename := fmt.Sprintf("Q%d%s", question, ext)
	relative := fmt.Sprintf("%s/%s/%s", sessionsDir, id, filename)
	size, err := s.SaveMedia(ctx, relative, r)
	if err != nil {
		return nil, err
	}

	record := models.UploadRecord{
		Question:   question,
		Filename:   filename,
		Size:       size,
		Duration:   duration,
		UploadedAt: time.Now().UTC(),
	}
	replaced := false
	for i, u := range meta.Uploads {
		if u.Question == question {
			meta.Uploads[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		meta.Uploads = append(meta.Uploads, record)
	}

	if err := s.writeMeta(meta); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *FSStore) FinishSession(_ context.Context, id string) (*models.SessionMeta, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.readMeta(id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	meta.Status = models.SessionFinished
	meta.FinishedAt = &now
	if err := s.writeMeta(meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (s *FSStore) readMeta(id string) (*models.SessionMeta, error) {
	data, err := os.ReadFile(filepath.Join(s.sessionDir(id), metaFile))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}
	var meta models.SessionMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", id, err)
	}
	return &meta, nil
}

func (s *FSStore) writeMeta(meta *models.SessionMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", meta.ID, err)
	}
	if err := os.WriteFile(filepath.Join(s.sessionDir(meta.ID), metaFile), data, 0o644); err != nil {
		return fmt.Errorf("write session %s: %w", meta.ID, err)
	}
	return nil
}
