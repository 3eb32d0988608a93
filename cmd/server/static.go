package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// apiPrefixes are never answered with the single page app.
var apiPrefixes = []string{"/api/", "/group-expenses", "/settlements", "/friends", "/metrics"}

// staticHandler serves the frontend build. Unknown paths get index.html so
// client-side routes survive a reload.
type staticHandler struct {
	dir string
}

func newStaticHandler(path string) (*staticHandler, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve static path: %w", err)
	}
	return &staticHandler{dir: dir}, nil
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, prefix := range apiPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			http.NotFound(w, r)
			return
		}
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	urlPath := r.URL.Path
	if urlPath == "/" {
		urlPath = "/index.html"
	}

	filePath := filepath.Join(h.dir, filepath.Clean("/"+urlPath))
	if info, err := os.Stat(filePath); err != nil || info.IsDir() {
		http.ServeFile(w, r, filepath.Join(h.dir, "index.html"))
		return
	}
	http.ServeFile(w, r, filePath)
}
