package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"intervue-backend/internal/models"
	"intervue-backend/internal/services"
)

// maxMessageLength caps what gets forwarded upstream. The UI sends short
// voice transcripts; anything larger is not a real question.
const maxMessageLength = 4000

type conversationStore interface {
	SaveConversation(ctx context.Context, c *models.Conversation) error
	TouchSession(ctx context.Context, sessionID, userAgent, ipAddress string) error
}

type answerGenerator interface {
	Configured() bool
	Answer(ctx context.Context, prompt string) (string, error)
}

type sessionResolver interface {
	Resolve(w http.ResponseWriter, r *http.Request) string
}

type ChatHandler struct {
	store    conversationStore
	gemini   answerGenerator
	sessions sessionResolver
	persona  *services.Persona
	logger   *zap.Logger
}

func NewChatHandler(
	store conversationStore,
	gemini answerGenerator,
	sessions sessionResolver,
	persona *services.Persona,
	logger *zap.Logger,
) *ChatHandler {
	return &ChatHandler{
		store:    store,
		gemini:   gemini,
		sessions: sessions,
		persona:  persona,
		logger:   logger,
	}
}

// Chat handles one turn: validate, compose the persona prompt, make a single
// blocking upstream call, persist the exchange, and return the reply.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "No message provided"})
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "No message provided"})
		return
	}
	if len(message) > maxMessageLength {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Message too long"})
		return
	}

	// Credential check happens before any network call.
	if !h.gemini.Configured() {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Gemini API key not configured"})
		return
	}

	sessionID := h.sessions.Resolve(w, r)
	start := time.Now()

	reply, err := h.gemini.Answer(r.Context(), h.persona.Prompt(message))
	if err != nil {
		h.writeChatError(w, r, sessionID, message, err)
		return
	}

	elapsed := time.Since(start).Seconds()
	h.persist(r, sessionID, message, reply, elapsed)

	writeJSON(w, http.StatusOK, models.ChatResponse{Response: reply})
}

// Health reports liveness and whether the upstream credential is present.
func (h *ChatHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:           "healthy",
		APIKeyConfigured: h.gemini.Configured(),
	})
}

func (h *ChatHandler) writeChatError(w http.ResponseWriter, r *http.Request, sessionID, message string, err error) {
	var formatErr *services.ResponseFormatError
	if errors.As(err, &formatErr) {
		h.logger.Error("invalid upstream response format",
			zap.String("session_id", sessionID),
			zap.String("message", message),
			zap.String("detail", formatErr.Detail),
			zap.String("request_id", r.Header.Get("X-Request-ID")))
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Invalid response format from AI service"})
		return
	}

	var upstreamErr *services.UpstreamError
	if errors.As(err, &upstreamErr) {
		h.logger.Error("upstream AI call failed",
			zap.String("session_id", sessionID),
			zap.String("message", message),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get response from AI service"})
		return
	}

	h.logger.Error("unexpected chat failure",
		zap.String("session_id", sessionID),
		zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
}

// persist records the session touch and the conversation row. Failures are
// logged and swallowed: a write problem never alters the HTTP outcome of a
// turn that already succeeded upstream.
func (h *ChatHandler) persist(r *http.Request, sessionID, message, reply string, elapsed float64) {
	ctx := r.Context()

	if err := h.store.TouchSession(ctx, sessionID, r.UserAgent(), clientIP(r)); err != nil {
		h.logger.Warn("failed to record interview session",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	conv := &models.Conversation{
		SessionID:           sessionID,
		UserMessage:         message,
		AIResponse:          reply,
		Timestamp:           time.Now().UTC(),
		ResponseTimeSeconds: &elapsed,
	}
	if err := h.store.SaveConversation(ctx, conv); err != nil {
		h.logger.Warn("failed to record conversation",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}

func clientIP(r *http.Request) string {
	// RealIP middleware has already rewritten RemoteAddr when proxied.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
