package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/examlab/recorder/internal/api/response"
	"github.com/examlab/recorder/internal/cache"
	"github.com/examlab/recorder/internal/store"
	"github.com/examlab/recorder/pkg/models"
)

// reportTTL bounds staleness of a candidate's cached report; finished
// gradings and deletes drop the key early.
const reportTTL = 2 * time.Second

// NewCandidateResultsHandler returns the handler for GET /api/results/{candidate}:
// the candidate's results aggregated across their question files.
//
// completed only means "enough result files exist" — a result that lands
// after a poll reported completed raises count and avg_score on the next one.
func NewCandidateResultsHandler(st store.Store, ca cache.Cache, expectedQuestions int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidate := store.SanitizeFilename(chi.URLParam(r, "candidate"))
		if candidate == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"Candidate identifier is required", nil)
			return
		}

		if ca != nil {
			if cached, ok, _ := ca.Get(r.Context(), cache.ReportKey(candidate)); ok {
				w.Header().Set("Content-Type", "application/json")
				w.Write(cached)
				return
			}
		}

		results, err := st.ResultsFor(r.Context(), candidate)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "STORAGE_ERROR",
				"Could not read the recording store", nil)
			return
		}
		if results == nil {
			results = []models.ResultRecord{}
		}

		var sum int
		for _, rec := range results {
			sum += rec.Score
		}
		avg := 0.0
		if len(results) > 0 {
			avg = float64(sum) / float64(len(results))
		}

		report := models.CandidateReport{
			Completed: len(results) >= expectedQuestions,
			Count:     len(results),
			AvgScore:  avg,
			Details:   results,
		}

		body, err := json.Marshal(report)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}
		if ca != nil {
			_ = ca.Set(r.Context(), cache.ReportKey(candidate), body, reportTTL)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
	}
}
