package handler

import (
	"net/http"
	"os"
	"path/filepath"
)

// NewPageHandler serves one HTML page from the static directory. A missing
// page is reported inline rather than as a bare 404 so a misconfigured
// deployment is obvious in the browser.
func NewPageHandler(staticDir, page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(staticDir, page)
		if _, err := os.Stat(path); err != nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("<h1>Missing " + page + "</h1>"))
			return
		}
		http.ServeFile(w, r, path)
	}
}
