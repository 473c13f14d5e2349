package handlers

import (
	"net/http"
	"strings"
)

// mediaFileServer serves files under root. Directory listings are refused.
func mediaFileServer(root string) http.Handler {
	fs := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			notFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}
