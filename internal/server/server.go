// Package server exposes material libraries over HTTP. It serves library
// material lists and renders export documents on demand, one request per
// material, in any of the supported output styles.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/materialkit/matdump/pkg/encode"
	"github.com/materialkit/matdump/pkg/errors"
	"github.com/materialkit/matdump/pkg/export"
	"github.com/materialkit/matdump/pkg/scene"
	"github.com/materialkit/matdump/pkg/walk"
)

// Config holds the server dependencies.
type Config struct {
	Logger *log.Logger

	// OpenLibrary resolves a library name to a loaded library. The returned
	// cleanup func is called when the request finishes.
	OpenLibrary func(ctx context.Context, name string) (scene.Library, func(), error)

	// MaxDepth caps reference chains during document rendering.
	// Zero selects the walker default.
	MaxDepth int
}

// Server is the HTTP export service.
type Server struct {
	cfg Config
}

// New creates a server from cfg. A nil logger falls back to log.Default().
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Server{cfg: cfg}
}

// Handler builds the chi router with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Get("/libraries/{library}/materials", s.handleListMaterials)
	r.Get("/libraries/{library}/materials/{material}", s.handleExportMaterial)

	return r
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// requestLogger tags every request with an ID and logs method, path, and
// elapsed time.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		next.ServeHTTP(w, r)
		s.cfg.Logger.Info("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed", time.Since(start).Round(time.Millisecond))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// materialInfo is the list entry returned by handleListMaterials.
type materialInfo struct {
	Name  string `json:"name"`
	Class string `json:"class"`
	File  string `json:"file"`
}

func (s *Server) handleListMaterials(w http.ResponseWriter, r *http.Request) {
	libName := chi.URLParam(r, "library")

	lib, cleanup, err := s.cfg.OpenLibrary(r.Context(), libName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer cleanup()

	materials, err := lib.Materials()
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeSceneLoad, err, "enumerate materials of %q", libName))
		return
	}

	infos := make([]materialInfo, 0, len(materials))
	for _, m := range materials {
		infos = append(infos, materialInfo{
			Name:  m.Name(),
			Class: m.Class(),
			File:  export.Sanitize(m.Name()),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"library":   lib.Name(),
		"materials": infos,
	})
}

func (s *Server) handleExportMaterial(w http.ResponseWriter, r *http.Request) {
	libName := chi.URLParam(r, "library")
	matName := chi.URLParam(r, "material")

	styleName := r.URL.Query().Get("style")
	if styleName == "" {
		styleName = "tagged"
	}
	style, err := encode.ParseStyle(styleName)
	if err != nil {
		s.writeError(w, err)
		return
	}

	lib, cleanup, err := s.cfg.OpenLibrary(r.Context(), libName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer cleanup()

	materials, err := lib.Materials()
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeSceneLoad, err, "enumerate materials of %q", libName))
		return
	}

	var material scene.Node
	for _, m := range materials {
		if m.Name() == matName || export.Sanitize(m.Name()) == matName {
			material = m
			break
		}
	}
	if material == nil {
		s.writeError(w, errors.New(errors.ErrCodeMaterialNotFound, "material %q not found in %q", matName, libName))
		return
	}

	sink := export.NewSink()
	walk.New(style, s.cfg.MaxDepth, s.cfg.Logger).Walk(material, sink)

	contentType := "application/yaml; charset=utf-8"
	if style == encode.StyleFlowMapping {
		contentType = "application/json; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(sink.Document()))
}

// writeError maps an error code to an HTTP status and writes a JSON body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidStyle, errors.ErrCodeInvalidPath:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeMaterialNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeSceneLoad:
		status = http.StatusBadGateway
	}

	s.cfg.Logger.Error("request failed", "status", status, "err", err)
	writeJSON(w, status, map[string]string{"error": errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
