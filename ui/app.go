package ui

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"csvpilot/internal/container"
)

// App is the HTTP application: the conversational analysis endpoints plus a
// static file server for generated artifacts
type App struct {
	router *chi.Mux
	deps   *container.Container
}

// NewApp creates the HTTP application over the wired container
func NewApp(deps *container.Container) *App {
	app := &App{
		router: chi.NewRouter(),
		deps:   deps,
	}
	app.setupMiddleware()
	app.setupRoutes()
	return app
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
	a.router.Use(middleware.Timeout(30 * time.Minute))
}

// setupRoutes registers all endpoints
func (a *App) setupRoutes() {
	a.router.Get("/health", a.handleHealth)

	a.router.Route("/api", func(r chi.Router) {
		r.Post("/upload", a.handleUpload)
		r.Post("/workflow", a.handleWorkflow)

		r.Route("/tools", func(r chi.Router) {
			r.Post("/profile", a.handleProfile)
			r.Post("/columns", a.handleColumns)
			r.Post("/summarize", a.handleSummarize)
			r.Post("/correlate", a.handleCorrelate)
			r.Post("/select", a.handleSelect)
			r.Post("/visualize", a.handleVisualize)
			r.Post("/preprocess", a.handlePreprocess)
			r.Post("/train", a.handleTrain)
		})

		r.Get("/runs", a.handleListRuns)
		r.Get("/runs/{runID}", a.handleGetRun)
		r.Get("/runs/{runID}/artifacts", a.handleListArtifacts)
		r.Get("/sessions/{sessionID}", a.handleGetSession)
		r.Delete("/sessions/{sessionID}", a.handleDeleteSession)
	})

	// Generated artifacts (charts, reports, preprocessed files)
	outputsFS := http.FileServer(http.Dir(a.deps.Config.Paths.OutputsDir))
	a.router.Handle("/outputs/*", http.StripPrefix("/outputs/", outputsFS))
}

// Start runs the HTTP server; blocks until it exits
func (a *App) Start() error {
	addr := fmt.Sprintf(":%s", a.deps.Config.Server.Port)
	log.Printf("[UI] listening on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

// Router exposes the mux for tests
func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
