package web

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/thedropbears/driverstation/internal/assets"
)

type RouterOptions struct {
	// StaticDir, when set to an existing directory, is served at "/"
	// instead of the embedded viewer.
	StaticDir      string
	DevMode        bool
	StreamInterval time.Duration
	// Done closes open streams.
	Done <-chan struct{}
}

// NewRouter builds the mirror:
// - /api/v1/* for the read-only API
// - / for the viewer page
func NewRouter(deps MirrorDeps, opts RouterOptions) http.Handler {
	deps = deps.withDefaults()
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if opts.DevMode {
		r.Use(WithDevCORS)
	}
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", handleStatus(deps))
		r.Get("/frame.png", handleFrame(deps))
		r.Get("/qr.png", handleQRCode(deps))
		r.Get("/stream", handleStream(deps, opts.StreamInterval, opts.Done))
	})
	r.Handle("/*", StaticUIHandler(opts.StaticDir))
	return r
}

// StaticUIHandler serves either the embedded viewer or a directory.
func StaticUIHandler(dir string) http.Handler {
	var fileServer http.Handler
	if dir == "" {
		fileServer = http.FileServer(http.FS(assets.WebUI))
	} else if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return http.NotFoundHandler()
	} else {
		fileServer = http.FileServer(http.Dir(dir))
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Clean path to avoid oddities.
		r.URL.Path = filepath.ToSlash(filepath.Clean("/" + r.URL.Path))
		fileServer.ServeHTTP(w, r)
	})
}
