package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/examlab/recorder/internal/api/response"
	"github.com/examlab/recorder/internal/cache"
	"github.com/examlab/recorder/internal/questions"
	"github.com/examlab/recorder/internal/store"
)

// NewDeleteVideoHandler returns the handler for DELETE /api/video/{filename}.
// It removes the media file and its result/status siblings; deleting a pair
// that does not exist is a success, not an error.
func NewDeleteVideoHandler(st store.Store, ca cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := store.SanitizeFilename(chi.URLParam(r, "filename"))
		if name == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"Filename is required", nil)
			return
		}

		if err := st.DeleteRecording(r.Context(), name); err != nil {
			response.Error(w, http.StatusInternalServerError, "STORAGE_ERROR",
				"Could not delete the recording", nil)
			return
		}

		dropCaches(r, ca, name)
		response.OK(w, nil)
	}
}

// NewNukeAllHandler returns the handler for DELETE /api/nuke-all-videos,
// used to reset the store between test sessions.
func NewNukeAllHandler(st store.Store, ca cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.DeleteAll(r.Context()); err != nil {
			response.Error(w, http.StatusInternalServerError, "STORAGE_ERROR",
				"Could not clear the recording store", nil)
			return
		}

		dropCaches(r, ca, "")
		response.OK(w, nil)
	}
}

func dropCaches(r *http.Request, ca cache.Cache, name string) {
	if ca == nil {
		return
	}
	_ = ca.Delete(r.Context(), cache.ListingKey())
	if name != "" {
		if candidate := questions.Candidate(name); candidate != "" {
			_ = ca.Delete(r.Context(), cache.ReportKey(candidate))
		}
	}
}
