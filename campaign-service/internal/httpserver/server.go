package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ILLUVRSE/adoptions/campaign-service/internal/auth"
	"github.com/ILLUVRSE/adoptions/campaign-service/internal/service"
	"github.com/ILLUVRSE/adoptions/campaign-service/internal/store"
)

const defaultMaxUploadBytes = 10 << 20

type Config struct {
	RequestTimeout time.Duration
	MaxUploadBytes int64
}

type Server struct {
	cfg       Config
	db        store.Store
	campaigns *service.CampaignService
	points    *service.CollectionPointService
	verifier  *auth.Verifier
	logger    *zap.Logger
}

func New(cfg Config, db store.Store, campaigns *service.CampaignService, points *service.CollectionPointService, verifier *auth.Verifier, logger *zap.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if verifier == nil {
		verifier = auth.NewVerifier("", "", "")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:       cfg,
		db:        db,
		campaigns: campaigns,
		points:    points,
		verifier:  verifier,
		logger:    logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/campaigns", s.handleListCampaigns)
		r.Get("/campaigns/{id}", s.handleGetCampaign)
		r.Post("/campaigns/{id}/adoptions", s.handleAdopt)

		r.Group(func(r chi.Router) {
			r.Use(s.verifier.Middleware(s.rejectAuth))
			r.Post("/admin/campaigns/{id}/images", s.handleUploadImage)
		})

		r.HandleFunc("/collection-points", s.handleCollectionPoints)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	status := map[string]interface{}{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.db.Ping(ctx); err != nil {
		status["ok"] = false
		status["db"] = "down"
		status["error"] = err.Error()
		respondJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	status["db"] = "up"
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	listing, err := s.campaigns.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		s.logger.Error("list campaigns failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load campaigns", err.Error())
		return
	}
	respondList(w, listing.Campaigns, len(listing.Campaigns))
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	view, err := s.campaigns.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "failed to load campaign", err)
		return
	}
	respondData(w, http.StatusOK, view)
}

func (s *Server) handleAdopt(w http.ResponseWriter, r *http.Request) {
	var req service.AdoptRequest
	if err := decodeJSON(w, r, &req, 16*1024); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	req.CampaignID = chi.URLParam(r, "id")
	adoption, err := s.campaigns.Adopt(r.Context(), req)
	if err != nil {
		s.fail(w, "failed to record adoption", err)
		return
	}
	respondData(w, http.StatusCreated, adoption)
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid upload", err.Error())
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid upload", "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	att, err := s.campaigns.AttachImage(r.Context(), service.ImageUpload{
		CampaignID:  chi.URLParam(r, "id"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		s.fail(w, "failed to attach image", err)
		return
	}
	s.logger.Info("image attached",
		zap.String("campaign_id", att.CampaignID),
		zap.String("attachment_id", att.ID.String()),
		zap.String("subject", auth.SubjectFromContext(r.Context())))
	respondData(w, http.StatusCreated, att)
}

var collectionPointMethods = strings.Join([]string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
}, ", ")

type updatePointRequest struct {
	ID string `json:"id"`
	service.CollectionPointPatch
}

func (s *Server) handleCollectionPoints(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if id := r.URL.Query().Get("id"); id != "" {
			cp, err := s.points.Get(r.Context(), id)
			if err != nil {
				s.fail(w, "failed to load collection point", err)
				return
			}
			respondData(w, http.StatusOK, cp)
			return
		}
		points, err := s.points.List(r.Context())
		if err != nil {
			s.fail(w, "failed to load collection points", err)
			return
		}
		respondList(w, points, len(points))
	case http.MethodPost:
		if !s.authorize(w, r) {
			return
		}
		var req service.CollectionPointRequest
		if err := decodeJSON(w, r, &req, 64*1024); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
		cp, err := s.points.Create(r.Context(), req)
		if err != nil {
			s.fail(w, "failed to create collection point", err)
			return
		}
		respondData(w, http.StatusCreated, cp)
	case http.MethodPut, http.MethodPatch:
		if !s.authorize(w, r) {
			return
		}
		var req updatePointRequest
		if err := decodeJSON(w, r, &req, 64*1024); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
		id := r.URL.Query().Get("id")
		if id == "" {
			id = req.ID
		}
		cp, err := s.points.Update(r.Context(), id, req.CollectionPointPatch)
		if err != nil {
			s.fail(w, "failed to update collection point", err)
			return
		}
		respondData(w, http.StatusOK, cp)
	case http.MethodDelete:
		if !s.authorize(w, r) {
			return
		}
		if err := s.points.Delete(r.Context(), r.URL.Query().Get("id")); err != nil {
			s.fail(w, "failed to delete collection point", err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	default:
		w.Header().Set("Allow", collectionPointMethods)
		respondError(w, http.StatusMethodNotAllowed, "method not allowed", r.Method)
	}
}

// authorize applies the admin check to handlers that are not behind the
// router-level middleware.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) bool {
	if !s.verifier.Enabled() {
		return true
	}
	if _, err := s.verifier.Authorize(r); err != nil {
		s.rejectAuth(w, err)
		return false
	}
	return true
}

func (s *Server) rejectAuth(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	if errors.Is(err, auth.ErrMissingScope) {
		status = http.StatusForbidden
	}
	respondError(w, status, "unauthorized", err.Error())
}

// fail maps service and store errors onto HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	}
	respondError(w, status, msg, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrMissingID), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrCampaignNotActive), errors.Is(err, service.ErrNoAvailability):
		return http.StatusConflict
	case errors.Is(err, service.ErrUploadsDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, limit int64) error {
	if limit <= 0 {
		limit = 1 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func respondList(w http.ResponseWriter, data interface{}, count int) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
		"count":   count,
	})
}

func respondError(w http.ResponseWriter, status int, msg, details string) {
	payload := map[string]interface{}{
		"success": false,
		"error":   msg,
	}
	if details != "" {
		payload["details"] = details
	}
	respondJSON(w, status, payload)
}
