package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"skud-compare-api/internal/metrics"
	"skud-compare-api/internal/reconcile"
)

// ProjectsSource lists the distinct projects of the tabell sheet.
type ProjectsSource interface {
	FetchProjects(ctx context.Context) ([]string, error)
}

// Server is the HTTP boundary around the comparison pipeline.
type Server struct {
	pipeline  *reconcile.Pipeline
	projects  ProjectsSource
	metrics   *metrics.Metrics
	uploadDir string
	log       *zap.SugaredLogger
}

func New(pipeline *reconcile.Pipeline, projects ProjectsSource, m *metrics.Metrics,
	uploadDir string, log *zap.SugaredLogger) *Server {
	return &Server{
		pipeline:  pipeline,
		projects:  projects,
		metrics:   m,
		uploadDir: uploadDir,
		log:       log,
	}
}

// Router wires the routes. All /api routes answer CORS preflight.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.corsMiddleware)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/compare", s.handleCompare).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/compare/export", s.handleExport).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/projects", s.handleProjects).Methods(http.MethodGet, http.MethodOptions)
	return r
}

// ListenAndServe blocks serving HTTP on the port until ctx is cancelled,
// then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, port string) error {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return err
	}
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      s.Router(),
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("listening", "port", port)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.FetchProjects(r.Context())
	if err != nil {
		s.log.Errorw("projects fetch failed", "error", err)
		s.writeError(w, "projects", http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, "projects", http.StatusOK, map[string]any{"projects": projects})
}
