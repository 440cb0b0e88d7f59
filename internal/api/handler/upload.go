// Package handler implements the recorder's HTTP endpoints.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/examlab/recorder/internal/api/response"
	"github.com/examlab/recorder/internal/cache"
	"github.com/examlab/recorder/internal/grader"
	"github.com/examlab/recorder/internal/store"
)

// Enqueuer schedules background grading of one stored recording.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string) error
}

// NewUploadHandler returns the handler for POST /api/upload.
//
// The response is written as soon as the media file is on disk and the
// grading job is accepted — grading itself happens out of band and its
// outcome is only ever visible through the result JSON.
func NewUploadHandler(st store.Store, enq Enqueuer, ca cache.Cache, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				response.Error(w, http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE",
					fmt.Sprintf("Upload exceeds the %d byte limit", maxBytes), nil)
				return
			}
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"Expected multipart/form-data with a file field", nil)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"Missing file field 'file'", nil)
			return
		}
		defer file.Close()

		name := deriveName(header.Filename, r.FormValue("candidate"), r.FormValue("question"))
		if name == "" || name == filepath.Ext(name) {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"Filename sanitized to nothing; use letters, digits, '.', '_' or '-'", nil)
			return
		}

		if _, err := st.SaveMedia(r.Context(), name, file); err != nil {
			response.Error(w, http.StatusInternalServerError, "STORAGE_ERROR",
				"Could not store the uploaded file", nil)
			return
		}

		if ca != nil {
			_ = ca.Delete(r.Context(), cache.ListingKey())
		}

		if err := enq.Enqueue(r.Context(), name); err != nil {
			if errors.Is(err, grader.ErrQueueFull) {
				response.Error(w, http.StatusServiceUnavailable, "SERVER_BUSY",
					"Grading queue is full, retry the upload shortly", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "STORAGE_ERROR",
				"Could not schedule grading", nil)
			return
		}

		response.OK(w, map[string]any{
			"filename": name,
			"url":      "/uploads/" + name,
		})
	}
}

// deriveName prefers the structured candidate+question fields over whatever
// name the browser sent; either way the result passes the sanitizer.
func deriveName(original, candidate, question string) string {
	if candidate != "" && question != "" {
		if q, err := strconv.Atoi(question); err == nil && q >= 1 {
			ext := filepath.Ext(original)
			if ext == "" {
				ext = ".webm"
			}
			return store.SanitizeFilename(fmt.Sprintf("%s_Question_%d%s", candidate, q, ext))
		}
	}
	return store.SanitizeFilename(original)
}
