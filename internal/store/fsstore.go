package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/examlab/recorder/internal/questions"
	"github.com/examlab/recorder/pkg/models"
)

const (
	resultExt   = ".json"
	statusExt   = ".status"
	sessionsDir = "sessions"
	metaFile    = "meta.json"
)

// FSStore implements Store on top of a single directory tree.
type FSStore struct {
	root string

	// mu guards session meta.json read-modify-write cycles. Flat media and
	// result files need no lock: each write is a whole-file replace and
	// last-writer-wins is the intended collision behavior.
	mu sync.Mutex
}

// NewFSStore creates the storage root (and its sessions subtree) if missing.
func NewFSStore(root string) (*FSStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if err := os.MkdirAll(filepath.Join(root, sessionsDir), 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &FSStore{root: root}, nil
}

// cleanName validates a relative media name. Session names carry a
// sessions/<id>/ prefix; everything else must be a bare filename. Sanitized
// names can legitimately start with dots ("....etcpasswd"), so only a real
// parent-directory component is traversal.
func (s *FSStore) cleanName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty filename")
	}
	cleaned := filepath.ToSlash(filepath.Clean(filepath.FromSlash(name)))
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid filename %q", name)
	}
	return cleaned, nil
}

func (s *FSStore) MediaPath(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func (s *FSStore) resultPath(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(stem(name)+resultExt))
}

func (s *FSStore) statusPath(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(stem(name)+statusExt))
}

func (s *FSStore) SaveMedia(_ context.Context, name string, r io.Reader) (int64, error) {
	cleaned, err := s.cleanName(name)
	if err != nil {
		return 0, err
	}
	dst := s.MediaPath(cleaned)
	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", cleaned, err)
	}
	n, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return 0, fmt.Errorf("write %s: %w", cleaned, err)
	}
	return n, nil
}

func (s *FSStore) ListRecordings(ctx context.Context) ([]Recording, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read storage dir: %w", err)
	}

	var recs []Recording
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, resultExt) || strings.HasSuffix(name, statusExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		rec := Recording{Name: name, Size: info.Size(), ModTime: info.ModTime()}
		if result, ok, _ := s.readResultFile(s.resultPath(name)); ok {
			rec.Result = &result
		}
		if status, ok, _ := s.ReadStatus(ctx, name); ok {
			rec.Status = status
		}
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].ModTime.After(recs[j].ModTime) })
	return recs, nil
}

func (s *FSStore) DeleteRecording(_ context.Context, name string) error {
	cleaned, err := s.cleanName(name)
	if err != nil {
		return err
	}
	// Missing files are a no-op: deleting an already-deleted pair succeeds.
	for _, p := range []string{s.MediaPath(cleaned), s.resultPath(cleaned), s.statusPath(cleaned)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

func (s *FSStore) DeleteAll(_ context.Context) error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("read storage dir: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", e.Name(), err)
		}
	}
	return os.MkdirAll(filepath.Join(s.root, sessionsDir), 0o755)
}

func (s *FSStore) WriteResult(_ context.Context, rec models.ResultRecord) error {
	cleaned, err := s.cleanName(rec.Filename)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result for %s: %w", cleaned, err)
	}
	if err := os.WriteFile(s.resultPath(cleaned), data, 0o644); err != nil {
		return fmt.Errorf("write result for %s: %w", cleaned, err)
	}
	return nil
}

func (s *FSStore) ReadResult(_ context.Context, name string) (models.ResultRecord, bool, error) {
	cleaned, err := s.cleanName(name)
	if err != nil {
		return models.ResultRecord{}, false, err
	}
	return s.readResultFile(s.resultPath(cleaned))
}

func (s *FSStore) readResultFile(path string) (models.ResultRecord, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return models.ResultRecord{}, false, nil
	}
	if err != nil {
		return models.ResultRecord{}, false, err
	}
	var rec models.ResultRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.ResultRecord{}, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return rec, true, nil
}

func (s *FSStore) ResultsFor(_ context.Context, candidate string) ([]models.ResultRecord, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read storage dir: %w", err)
	}

	var results []models.ResultRecord
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, resultExt) || !strings.HasPrefix(name, candidate) {
			continue
		}
		rec, ok, err := s.readResultFile(filepath.Join(s.root, name))
		if err != nil || !ok {
			// Unparsable results are skipped, not fatal.
			continue
		}
		results = append(results, rec)
	}

	sort.Slice(results, func(i, j int) bool {
		qi, _ := questions.ParseIndex(results[i].Filename)
		qj, _ := questions.ParseIndex(results[j].Filename)
		return qi < qj
	})
	return results, nil
}

func (s *FSStore) WriteStatus(_ context.Context, name, status string) error {
	cleaned, err := s.cleanName(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.statusPath(cleaned), []byte(status), 0o644); err != nil {
		return fmt.Errorf("write status for %s: %w", cleaned, err)
	}
	return nil
}

func (s *FSStore) ReadStatus(_ context.Context, name string) (string, bool, error) {
	cleaned, err := s.cleanName(name)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(s.statusPath(cleaned))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return strings.TrimSpace(string(data)), true, nil
}

func (s *FSStore) ClearStatus(_ context.Context, name string) error {
	cleaned, err := s.cleanName(name)
	if err != nil {
		return err
	}
	if err := os.Remove(s.statusPath(cleaned)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear status for %s: %w", cleaned, err)
	}
	return nil
}

var _ Store = (*FSStore)(nil)
