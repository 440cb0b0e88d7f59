package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/examlab/recorder/pkg/models"
)

// memCache is a trivial in-process Cache for exercising the listing cache.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.sets++
	return nil
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memCache) Ping(context.Context) error { return nil }

func (c *memCache) IncrWithExpiry(context.Context, string, time.Duration) (int64, error) {
	return 1, nil
}

func listVideos(t *testing.T, h http.HandlerFunc) []models.RecordingInfo {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	rec := serve(http.MethodGet, "/api/videos", h, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", rec.Code, rec.Body.String())
	}
	var infos []models.RecordingInfo
	decodeBody(t, rec, &infos)
	return infos
}

func TestListVideos_Empty(t *testing.T) {
	st := newStore(t)
	infos := listVideos(t, NewListVideosHandler(st, nil))
	if len(infos) != 0 {
		t.Fatalf("got %d entries, want 0", len(infos))
	}
}

func TestListVideos_JoinsGradingState(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	if _, err := st.SaveMedia(ctx, "Alice_Q1.webm", strings.NewReader("aa")); err != nil {
		t.Fatal(err)
	}
	if _, err := st.SaveMedia(ctx, "Alice_Q2.webm", strings.NewReader("bb")); err != nil {
		t.Fatal(err)
	}
	if _, err := st.SaveMedia(ctx, "Alice_Q3.webm", strings.NewReader("cc")); err != nil {
		t.Fatal(err)
	}
	if err := st.WriteResult(ctx, models.ResultRecord{
		Filename: "Alice_Q1.webm", Question: "Tell me about yourself.",
		Transcript: "hi", Score: 8, Comment: "good",
	}); err != nil {
		t.Fatal(err)
	}
	if err := st.WriteStatus(ctx, "Alice_Q2.webm", models.GradingRunning); err != nil {
		t.Fatal(err)
	}

	infos := listVideos(t, NewListVideosHandler(st, nil))
	if len(infos) != 3 {
		t.Fatalf("got %d entries, want 3", len(infos))
	}

	byName := map[string]models.RecordingInfo{}
	for _, info := range infos {
		byName[info.Name] = info
	}

	done := byName["Alice_Q1.webm"]
	if done.GradingStatus != models.GradingDone {
		t.Fatalf("Q1 status = %q", done.GradingStatus)
	}
	if done.Score == nil || *done.Score != 8 || done.Comment != "good" {
		t.Fatalf("Q1 grade not joined: %+v", done)
	}
	if done.URL != "/uploads/Alice_Q1.webm" {
		t.Fatalf("Q1 url = %q", done.URL)
	}

	if s := byName["Alice_Q2.webm"].GradingStatus; s != models.GradingRunning {
		t.Fatalf("Q2 status = %q", s)
	}
	pending := byName["Alice_Q3.webm"]
	if pending.GradingStatus != models.GradingPending {
		t.Fatalf("Q3 status = %q", pending.GradingStatus)
	}
	if pending.Score != nil {
		t.Fatal("Q3 has a score before any result exists")
	}
}

func TestListVideos_ResultFileHiddenFromListing(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	if _, err := st.SaveMedia(ctx, "Bob_Q1.webm", strings.NewReader("x")); err != nil {
		t.Fatal(err)
	}
	if err := st.WriteResult(ctx, models.ResultRecord{Filename: "Bob_Q1.webm", Score: 5}); err != nil {
		t.Fatal(err)
	}

	infos := listVideos(t, NewListVideosHandler(st, nil))
	if len(infos) != 1 {
		t.Fatalf("got %d entries, want 1 (result JSON must not list)", len(infos))
	}
}

func TestListVideos_ServesFromCache(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	ca := newMemCache()
	h := NewListVideosHandler(st, ca)

	if _, err := st.SaveMedia(ctx, "Eve_Q1.webm", strings.NewReader("x")); err != nil {
		t.Fatal(err)
	}

	first := listVideos(t, h)
	if len(first) != 1 || ca.sets != 1 {
		t.Fatalf("first pass: %d entries, %d cache sets", len(first), ca.sets)
	}

	// a second poll inside the TTL must come from the cache, not a rescan
	if _, err := st.SaveMedia(ctx, "Eve_Q2.webm", strings.NewReader("y")); err != nil {
		t.Fatal(err)
	}
	second := listVideos(t, h)
	if len(second) != 1 {
		t.Fatalf("second pass returned %d entries, want cached 1", len(second))
	}
	if ca.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", ca.sets)
	}
}
