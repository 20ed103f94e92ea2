package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/safewatch/safewatch-analysis-service/internal/domain/entity"
	"github.com/safewatch/safewatch-analysis-service/internal/session"
)

const videoField = "video"

type handlers struct {
	analyzer       VideoAnalyzer
	lister         ModelLister
	staticDir      string
	maxUploadBytes int64
	logger         *zap.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.staticDir, "index.html"))
}

func (h *handlers) listModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.lister.Execute(r.Context())
	if err != nil {
		h.logger.Error("list models failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, models)
}

// analyzeVideo streams the "video" part straight into the pipeline, so the
// upload is never buffered in memory.
func (h *handlers) analyzeVideo(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: entity.ErrNoVideoFile.Error()})
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: entity.ErrNoVideoFile.Error()})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		filename, isFile := partFilename(part.Header.Get("Content-Disposition"))
		if part.FormName() != videoField || !isFile {
			part.Close()
			continue
		}

		result, err := h.analyzer.Execute(r.Context(), entity.VideoUpload{
			Filename: filename,
			Body:     part,
		})
		part.Close()
		if err != nil {
			h.writeAnalysisError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}
}

func (h *handlers) writeAnalysisError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case entity.IsInputError(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: tooLarge.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}

// partFilename reports the base filename of a multipart part and whether the
// part carries a filename parameter at all. A browser submitting the form
// with nothing selected sends filename="". RFC 2231 values are decoded, so
// control characters are replaced before the name goes anywhere else.
func partFilename(disposition string) (string, bool) {
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return "", false
	}
	name, ok := params["filename"]
	if !ok {
		return "", false
	}
	if name == "" {
		return "", true
	}
	return filepath.Base(session.StripControl(name)), true
}

// allowMethods answers 405 with an Allow header for any method outside
// methods. Preflight requests never get here; corsMiddleware answers them.
func allowMethods(next http.HandlerFunc, methods ...string) http.HandlerFunc {
	allow := strings.Join(append(slices.Clone(methods), http.MethodOptions), ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		if !slices.Contains(methods, r.Method) {
			w.Header().Set("Allow", allow)
			writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: http.StatusText(http.StatusMethodNotAllowed)})
			return
		}
		next(w, r)
	}
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
