package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"easel/internal/config"
	"easel/internal/engine"
	"easel/internal/logging"
	"easel/internal/registry"
	"easel/internal/services"
)

// uploadFieldName is the multipart form field carrying the image bytes.
const uploadFieldName = "image"

// Server routes asset and modification requests to the store and engine.
type Server struct {
	store    *registry.Store
	engine   *engine.Engine
	maxBytes int64
	logger   *slog.Logger
	handler  http.Handler
}

// New builds the HTTP surface over the given store and engine.
func New(cfg *config.Config, store *registry.Store, eng *engine.Engine, logger *slog.Logger) *Server {
	s := &Server{
		store:    store,
		engine:   eng,
		maxBytes: cfg.Service.MaxUploadBytes(),
		logger:   logging.WithComponent(logger, "server"),
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))
	router.Use(s.logRequests)

	router.Post("/assets", s.handleCreateAsset)
	router.Post("/modify", s.handleModify)
	router.Get("/uploads/{sourceName}", s.handleGetUpload)
	router.Get("/derived/{name}", s.handleGetDerived)
	router.Route("/api", func(r chi.Router) {
		r.Get("/assets", s.handleListAssets)
		r.Get("/assets/{id}", s.handleGetAsset)
		r.Get("/status", s.handleStatus)
	})

	s.handler = router
	return s
}

// Handler returns the routing tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

type createAssetResponse struct {
	Message string `json:"message"`
	AssetID string `json:"asset_id"`
}

type modifyRequest struct {
	AssetID string `json:"asset_id"`
	Prompt  string `json:"prompt"`
}

type modifyResponse struct {
	Message     string `json:"message"`
	AssetID     string `json:"asset_id"`
	ModifiedURL string `json:"modified_url"`
}

type assetView struct {
	AssetID       string `json:"asset_id"`
	Kind          string `json:"kind"`
	SourceName    string `json:"source_name"`
	ContentType   string `json:"content_type,omitempty"`
	SizeBytes     int64  `json:"size_bytes"`
	ParentAssetID string `json:"parent_asset_id,omitempty"`
	Prompt        string `json:"prompt,omitempty"`
	CreatedAt     string `json:"created_at"`
	URL           string `json:"url"`
}

type statusResponse struct {
	Running   bool   `json:"running"`
	Originals int    `json:"originals"`
	Derived   int    `json:"derived"`
	Database  string `json:"database"`
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes+1<<20)

	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No image file provided.")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	record, err := s.store.SaveOriginal(r.Context(), header.Filename, contentType, file, s.maxBytes)
	if err != nil {
		if errors.Is(err, registry.ErrUploadTooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "Image exceeds the upload size limit.")
			return
		}
		s.logger.Error("save original failed", logging.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Could not store the uploaded image.")
		return
	}

	s.logger.Info("asset registered",
		logging.String("asset_id", record.AssetID),
		logging.String("source_name", record.SourceName),
		logging.Int64("size_bytes", record.SizeBytes))
	writeJSON(w, http.StatusCreated, createAssetResponse{
		Message: "Image uploaded and asset registered.",
		AssetID: record.AssetID,
	})
}

func (s *Server) handleModify(w http.ResponseWriter, r *http.Request) {
	var req modifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Request body must be JSON with asset_id and prompt.")
		return
	}

	derived, err := s.engine.Modify(r.Context(), req.AssetID, req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			writeMessage(w, http.StatusBadRequest, services.UserMessage(err, "Invalid modification request."))
		case errors.Is(err, services.ErrNotFound):
			writeMessage(w, http.StatusNotFound, services.UserMessage(err, "Asset not found."))
		default:
			s.logger.Error("modification failed",
				logging.String("asset_id", req.AssetID),
				logging.Error(err))
			writeMessage(w, http.StatusInternalServerError, "Modification failed.")
		}
		return
	}

	writeJSON(w, http.StatusOK, modifyResponse{
		Message:     "Modification applied.",
		AssetID:     derived.AssetID,
		ModifiedURL: "/derived/" + derived.SourceName,
	})
}

func (s *Server) handleGetUpload(w http.ResponseWriter, r *http.Request) {
	sourceName := chi.URLParam(r, "sourceName")
	record, err := s.store.GetBySourceName(r.Context(), sourceName)
	if err != nil {
		s.logger.Error("lookup by source name failed", logging.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Could not look up the asset.")
		return
	}
	if record == nil {
		writeMessage(w, http.StatusNotFound, "No upload with that name.")
		return
	}
	serveStored(w, r, record.StoredPath, record.ContentType)
}

func (s *Server) handleGetDerived(w http.ResponseWriter, r *http.Request) {
	name := registry.SanitizeSourceName(chi.URLParam(r, "name"))
	path := filepath.Join(s.store.DerivedDir(), name)
	if _, err := os.Stat(path); err != nil {
		writeMessage(w, http.StatusNotFound, "No derived image with that name.")
		return
	}
	serveStored(w, r, path, "image/png")
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	var kinds []registry.Kind
	if raw := strings.TrimSpace(r.URL.Query().Get("kind")); raw != "" {
		kinds = append(kinds, registry.Kind(raw))
	}
	records, err := s.store.List(r.Context(), kinds...)
	if err != nil {
		s.logger.Error("list assets failed", logging.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Could not list assets.")
		return
	}
	views := make([]assetView, 0, len(records))
	for _, record := range records {
		views = append(views, viewOf(record))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	record, err := s.store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.logger.Error("get asset failed", logging.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Could not look up the asset.")
		return
	}
	if record == nil {
		writeMessage(w, http.StatusNotFound, "Asset not found.")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(record))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats failed", logging.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Could not read registry stats.")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Running:   true,
		Originals: stats[registry.KindOriginal],
		Derived:   stats[registry.KindDerived],
		Database:  s.store.Path(),
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(wrapped, r)
		s.logger.Debug("request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", wrapped.Status()),
			logging.Duration("elapsed", time.Since(start)))
	})
}

func viewOf(record *registry.Record) assetView {
	view := assetView{
		AssetID:       record.AssetID,
		Kind:          string(record.Kind),
		SourceName:    record.SourceName,
		ContentType:   record.ContentType,
		SizeBytes:     record.SizeBytes,
		ParentAssetID: record.ParentAssetID,
		Prompt:        record.Prompt,
		CreatedAt:     record.CreatedAt.Format(time.RFC3339),
	}
	if record.IsDerived() {
		view.URL = "/derived/" + record.SourceName
	} else {
		view.URL = "/uploads/" + record.SourceName
	}
	return view
}

func serveStored(w http.ResponseWriter, r *http.Request, path, contentType string) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	http.ServeFile(w, r, path)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
