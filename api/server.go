/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging through logrus
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the front-end dev server

ROUTE GROUPS:
  /api/weeks            Week picker
  /api/entries/*        Entry views, add/delete, exports
  /api/summary/*        Quarterly summary
  /api/roster/*         Roster lookups
  /healthz              Liveness + store ping
  /*                    Static files (front-end)

STATIC FILE SERVING:
  Serves the front-end from RouterOptions.StaticDir when that directory
  exists. Unknown paths fall back to index.html for client-side routing.
  Without a directory, a small landing page lists the endpoints.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/serve.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	StaticDir   string
	CORSOrigins []string
	Logger      logrus.FieldLogger
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = h.Logger
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Get("/healthz", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/weeks", h.ListWeeks)

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.GetEntries)
			r.Post("/", h.CreateEntry)
			r.Post("/delete", h.DeleteEntry)
			r.Get("/export.xlsx", h.ExportMonth)
			r.Get("/calendar.ics", h.ExportCalendar)
		})

		r.Get("/summary/quarter", h.QuarterSummary)
		r.Get("/roster/{login}", h.GetRosterRecord)
	})

	if dir := opts.StaticDir; dir != "" && isDir(dir) {
		fileServer := http.FileServer(http.Dir(dir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			fullPath := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				// SPA routing: serve index.html
				http.ServeFile(w, r, filepath.Join(dir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
	} else {
		r.Get("/*", landingPage)
	}

	return r
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// requestLogger logs one line per request with status and latency.
func requestLogger(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				entry := logger.WithFields(logrus.Fields{
					"request_id": middleware.GetReqID(r.Context()),
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     ww.Status(),
					"bytes":      ww.BytesWritten(),
					"duration":   time.Since(start).String(),
				})
				if ww.Status() >= http.StatusInternalServerError {
					entry.Warn("Request completed with server error")
					return
				}
				entry.Debug("Request completed")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func landingPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Overtime Board</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Overtime Board API</h1>
<p>No front-end directory is configured. Set <code>server.static_dir</code> to serve one.</p>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/weeks">/api/weeks</a> - Week picker</li>
<li>/api/entries?week_start=YYYY-MM-DD - Week overview</li>
<li>/api/entries?day=YYYY-MM-DD - Day details</li>
<li>/api/entries?month=M - Month listing</li>
<li>/api/summary/quarter?q=1 - Quarterly ranking</li>
<li><a href="/healthz">/healthz</a> - Health check</li>
</ul>
</body>
</html>`))
}
