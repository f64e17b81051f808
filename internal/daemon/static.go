package daemon

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// staticHandler serves a static frontend export. It serves the exact file
// when it exists, falls back to the path with an .html extension (static
// export convention), and finally to index.html for client-side routing.
type staticHandler struct {
	root string
}

func newStaticHandler(root string) *staticHandler {
	return &staticHandler{root: root}
}

func (h *staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requested := strings.TrimPrefix(filepath.Clean("/"+r.URL.Path), "/")
	if requested == "" || requested == "." {
		requested = "index.html"
	}

	candidates := []string{
		filepath.Join(h.root, requested),
		filepath.Join(h.root, requested+".html"),
		filepath.Join(h.root, "index.html"),
	}
	for _, candidate := range candidates {
		if !strings.HasPrefix(candidate, h.root) {
			continue
		}
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		http.ServeFile(w, r, candidate)
		return
	}

	http.NotFound(w, r)
}
