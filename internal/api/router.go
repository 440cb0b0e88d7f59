package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/examlab/recorder/internal/api/middleware"
	"github.com/examlab/recorder/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler    http.HandlerFunc
	UploadHandler    http.HandlerFunc
	ListVideos       http.HandlerFunc
	CandidateResults http.HandlerFunc
	DeleteVideo      http.HandlerFunc
	NukeAll          http.HandlerFunc

	SessionStart  http.HandlerFunc
	SessionGet    http.HandlerFunc
	SessionUpload http.HandlerFunc
	SessionFinish http.HandlerFunc

	HomePage     http.HandlerFunc
	ExaminerPage http.HandlerFunc

	// UploadsDir is mounted read-only at /uploads/* so the examiner can
	// play recordings straight from the store.
	UploadsDir string
	StaticDir  string
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.Get("/api/health", orNotImplemented(deps.HealthHandler))

	r.Get("/api/videos", orNotImplemented(deps.ListVideos))
	r.Get("/api/results/{candidate}", orNotImplemented(deps.CandidateResults))
	r.Delete("/api/video/{filename}", orNotImplemented(deps.DeleteVideo))
	r.Delete("/api/nuke-all-videos", orNotImplemented(deps.NukeAll))

	r.Get("/api/session/{sessionID}", orNotImplemented(deps.SessionGet))
	r.Post("/api/session/{sessionID}/finish", orNotImplemented(deps.SessionFinish))

	// Upload paths carry the rate limit; everything else is poll traffic.
	r.Group(func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}
		r.Post("/api/upload", orNotImplemented(deps.UploadHandler))
		r.Post("/api/session/start", orNotImplemented(deps.SessionStart))
		r.Post("/api/session/{sessionID}/upload", orNotImplemented(deps.SessionUpload))
	})

	r.Get("/", orNotImplemented(deps.HomePage))
	r.Get("/examiner", orNotImplemented(deps.ExaminerPage))
	if deps.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadsDir))))
	}
	if deps.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticDir))))
	}

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
