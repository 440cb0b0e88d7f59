package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/examlab/recorder/internal/api/response"
	"github.com/examlab/recorder/internal/grader"
	"github.com/examlab/recorder/internal/store"
	"github.com/examlab/recorder/pkg/models"
)

// NewStartSessionHandler returns the handler for POST /api/session/start.
func NewStartSessionHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Candidate string `json:"candidate"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Candidate == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "candidate is required", nil)
			return
		}

		meta, err := st.StartSession(r.Context(), req.Candidate)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "STORAGE_ERROR",
				"Could not create the session", nil)
			return
		}
		response.Created(w, meta)
	}
}

// NewGetSessionHandler returns the handler for GET /api/session/{sessionID}:
// the session meta plus every answer joined with its grading state, so
// session grades are reachable without scanning the flat listing.
func NewGetSessionHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meta, err := st.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Unknown session", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "STORAGE_ERROR",
				"Could not read the session", nil)
			return
		}

		report := models.SessionReport{
			SessionMeta: *meta,
			Answers:     make([]models.SessionAnswer, 0, len(meta.Uploads)),
		}
		for _, up := range meta.Uploads {
			relative := fmt.Sprintf("sessions/%s/%s", meta.ID, up.Filename)
			answer := models.SessionAnswer{UploadRecord: up}
			rec := store.Recording{}
			if result, ok, _ := st.ReadResult(r.Context(), relative); ok {
				answer.Result = &result
				rec.Result = answer.Result
			}
			if status, ok, _ := st.ReadStatus(r.Context(), relative); ok {
				rec.Status = status
			}
			answer.GradingStatus = rec.GradingStatus()
			report.Answers = append(report.Answers, answer)
		}
		response.JSON(w, report)
	}
}

// NewSessionUploadHandler returns the handler for POST /api/session/{sessionID}/upload.
// The question index travels as a structured form field; the stored name is
// always Q<n>.<ext> inside the session directory.
func NewSessionUploadHandler(st store.Store, enq Enqueuer, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
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

		question, err := strconv.Atoi(r.FormValue("question"))
		if err != nil || question < 1 {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"question must be a positive integer", nil)
			return
		}

		ext := filepath.Ext(store.SanitizeFilename(header.Filename))
		if ext == "" {
			ext = ".webm"
		}

		rec, err := st.SaveSessionMedia(r.Context(), sessionID, question, ext, r.FormValue("duration"), file)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Unknown session", nil)
				return
			}
			if errors.Is(err, store.ErrSessionFinished) {
				response.Error(w, http.StatusConflict, "SESSION_FINISHED",
					"The session is already finished", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "STORAGE_ERROR",
				"Could not store the uploaded file", nil)
			return
		}

		relative := fmt.Sprintf("sessions/%s/%s", sessionID, rec.Filename)
		if err := enq.Enqueue(r.Context(), relative); err != nil {
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
			"session_id": sessionID,
			"filename":   rec.Filename,
			"url":        "/uploads/" + relative,
		})
	}
}

// NewFinishSessionHandler returns the handler for POST /api/session/{sessionID}/finish.
func NewFinishSessionHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meta, err := st.FinishSession(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Unknown session", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "STORAGE_ERROR",
				"Could not finish the session", nil)
			return
		}
		response.JSON(w, meta)
	}
}
