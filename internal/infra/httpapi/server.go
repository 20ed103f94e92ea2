package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/safewatch/safewatch-analysis-service/internal/domain/entity"
)

type VideoAnalyzer interface {
	Execute(ctx context.Context, upload entity.VideoUpload) (*entity.AnalysisResult, error)
}

type ModelLister interface {
	Execute(ctx context.Context) ([]entity.ModelInfo, error)
}

type ServerConfig struct {
	Port           int
	StaticDir      string
	MaxUploadBytes int64
}

type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

func NewServer(cfg ServerConfig, analyzer VideoAnalyzer, lister ModelLister, logger *zap.Logger) *Server {
	h := &handlers{
		analyzer:       analyzer,
		lister:         lister,
		staticDir:      cfg.StaticDir,
		maxUploadBytes: cfg.MaxUploadBytes,
		logger:         logger,
	}
	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           newRouter(h, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// newRouter wires the API routes ahead of the static catch-all.
func newRouter(h *handlers, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.Use(loggingMiddleware(logger))

	// No method matchers here: a mismatch would fall through to the static
	// catch-all and answer 404 instead of 405.
	router.HandleFunc("/list-models", allowMethods(h.listModels, http.MethodGet, http.MethodHead))
	router.HandleFunc("/analyze-video", allowMethods(h.analyzeVideo, http.MethodPost))

	router.HandleFunc("/", h.index).Methods(http.MethodGet, http.MethodHead, http.MethodOptions)

	static := noDirListing(http.FileServer(http.Dir(h.staticDir)))
	router.PathPrefix("/frontend/").Handler(http.StripPrefix("/frontend", static))
	router.PathPrefix("/").Handler(static)

	return router
}

func (s *Server) Start() error {
	s.logger.Info("http server starting", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
