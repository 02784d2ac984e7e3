package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"intervue-backend/internal/models"
	"intervue-backend/internal/repository"
)

const analyticsCacheTTL = 5 * time.Minute

type sessionStore interface {
	GetSession(ctx context.Context, sessionID string) (*models.InterviewSession, error)
	EndSession(ctx context.Context, sessionID string) error
	DailyAnalytics(ctx context.Context, date time.Time) (*models.Analytics, error)
}

// AdminHandler serves the reporting surface: session lookup, administrative
// session close, and the derived daily analytics. None of this runs on the
// chat path.
type AdminHandler struct {
	store  sessionStore
	cache  *redis.Client // nil when REDIS_URL is unset
	logger *zap.Logger
}

func NewAdminHandler(store sessionStore, cache *redis.Client, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{store: store, cache: cache, logger: logger}
}

func (h *AdminHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	sess, err := h.store.GetSession(r.Context(), sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Session not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to load session", zap.String("session_id", sessionID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

// EndSession stamps the session's end time. Idempotent: a second call leaves
// the original end time in place.
func (h *AdminHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	err := h.store.EndSession(r.Context(), sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Session not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to end session", zap.String("session_id", sessionID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Session ended"})
}

// Analytics returns the derived aggregate for one calendar date (UTC),
// defaulting to today.
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid date, expected YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	cacheKey := "analytics:" + date.Format("2006-01-02")
	if h.cache != nil {
		if cached, err := h.cache.Get(r.Context(), cacheKey).Result(); err == nil {
			var stats models.Analytics
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				writeJSON(w, http.StatusOK, stats)
				return
			}
		}
	}

	stats, err := h.store.DailyAnalytics(r.Context(), date)
	if err != nil {
		h.logger.Error("failed to compute analytics", zap.String("date", cacheKey), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	if h.cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			h.cache.Set(r.Context(), cacheKey, data, analyticsCacheTTL)
		}
	}

	writeJSON(w, http.StatusOK, stats)
}
