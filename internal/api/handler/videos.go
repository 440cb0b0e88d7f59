package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/examlab/recorder/internal/api/response"
	"github.com/examlab/recorder/internal/cache"
	"github.com/examlab/recorder/internal/store"
	"github.com/examlab/recorder/pkg/models"
)

// listingTTL bounds how stale the examiner's listing may read between polls.
const listingTTL = 2 * time.Second

// NewListVideosHandler returns the handler for GET /api/videos: every stored
// recording joined with its grading state, newest first.
func NewListVideosHandler(st store.Store, ca cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ca != nil {
			if cached, ok, _ := ca.Get(r.Context(), cache.ListingKey()); ok {
				w.Header().Set("Content-Type", "application/json")
				w.Write(cached)
				return
			}
		}

		recs, err := st.ListRecordings(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "STORAGE_ERROR",
				"Could not read the recording store", nil)
			return
		}

		infos := make([]models.RecordingInfo, 0, len(recs))
		for _, rec := range recs {
			info := models.RecordingInfo{
				Name:          rec.Name,
				URL:           "/uploads/" + rec.Name,
				Size:          fmt.Sprintf("%.2f MB", float64(rec.Size)/1024/1024),
				Created:       rec.ModTime.Format("02/01/2006 15:04"),
				GradingStatus: rec.GradingStatus(),
			}
			if rec.Result != nil {
				score := rec.Result.Score
				info.Score = &score
				info.Comment = rec.Result.Comment
			}
			infos = append(infos, info)
		}

		body, err := json.Marshal(infos)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		if ca != nil {
			_ = ca.Set(r.Context(), cache.ListingKey(), body, listingTTL)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}
}
