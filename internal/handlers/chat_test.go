package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"intervue-backend/internal/models"
	"intervue-backend/internal/repository"
	"intervue-backend/internal/services"
)

// ─── Fakes ───

type fakeStore struct {
	conversations []*models.Conversation
	touches       map[string]int
	sessions      map[string]*models.InterviewSession
	analytics     *models.Analytics
	failSave      bool
	failTouch     bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		touches:  make(map[string]int),
		sessions: make(map[string]*models.InterviewSession),
	}
}

func (s *fakeStore) SaveConversation(ctx context.Context, c *models.Conversation) error {
	if s.failSave {
		return fmt.Errorf("store unreachable")
	}
	c.ID = int64(len(s.conversations) + 1)
	s.conversations = append(s.conversations, c)
	return nil
}

func (s *fakeStore) TouchSession(ctx context.Context, sessionID, userAgent, ipAddress string) error {
	if s.failTouch {
		return fmt.Errorf("store unreachable")
	}
	s.touches[sessionID]++
	return nil
}

func (s *fakeStore) GetSession(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return sess, nil
}

func (s *fakeStore) EndSession(ctx context.Context, sessionID string) error {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return repository.ErrNotFound
	}
	if sess.EndTime == nil {
		now := time.Now().UTC()
		sess.EndTime = &now
	}
	return nil
}

func (s *fakeStore) DailyAnalytics(ctx context.Context, date time.Time) (*models.Analytics, error) {
	if s.analytics != nil {
		return s.analytics, nil
	}
	return &models.Analytics{Date: date.UTC().Format("2006-01-02")}, nil
}

type fakeGenerator struct {
	configured bool
	reply      string
	err        error
	calls      int
	lastPrompt string
}

func (g *fakeGenerator) Configured() bool { return g.configured }

func (g *fakeGenerator) Answer(ctx context.Context, prompt string) (string, error) {
	g.calls++
	g.lastPrompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

type fakeSessions struct {
	id string
}

func (s *fakeSessions) Resolve(w http.ResponseWriter, r *http.Request) string { return s.id }

func newTestHandler(store *fakeStore, gen *fakeGenerator) *ChatHandler {
	persona := services.LoadPersona("testdata/does-not-exist.txt", zap.NewNop())
	return NewChatHandler(store, gen, &fakeSessions{id: "sess-1"}, persona, zap.NewNop())
}

func postChat(h *ChatHandler, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Chat(rr, req)
	return rr
}

// ─── Chat Handler Tests ───

func TestChat_Success(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{configured: true, reply: "I move fast and learn faster."}
	h := newTestHandler(store, gen)

	body, _ := json.Marshal(models.ChatRequest{Message: "What is your superpower?"})
	rr := postChat(h, body)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Response != "I move fast and learn faster." {
		t.Errorf("Expected upstream reply, got %q", resp.Response)
	}

	if gen.calls != 1 {
		t.Errorf("Expected exactly one upstream call, got %d", gen.calls)
	}

	if len(store.conversations) != 1 {
		t.Fatalf("Expected one conversation row, got %d", len(store.conversations))
	}
	conv := store.conversations[0]
	if conv.SessionID != "sess-1" {
		t.Errorf("Expected session id sess-1, got %q", conv.SessionID)
	}
	if conv.UserMessage == "" || conv.AIResponse == "" {
		t.Error("Expected non-empty user message and AI response")
	}
	if conv.ResponseTimeSeconds == nil || *conv.ResponseTimeSeconds < 0 {
		t.Errorf("Expected non-negative latency, got %v", conv.ResponseTimeSeconds)
	}
	if store.touches["sess-1"] != 1 {
		t.Errorf("Expected one session touch, got %d", store.touches["sess-1"])
	}
}

func TestChat_PromptComposition(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{configured: true, reply: "ok"}
	h := newTestHandler(store, gen)

	body, _ := json.Marshal(models.ChatRequest{Message: "Tell me your life story"})
	postChat(h, body)

	prompt := gen.lastPrompt
	qIdx := strings.Index(prompt, "Question: Tell me your life story")
	if qIdx < 0 {
		t.Fatalf("Prompt missing question cue: %q", prompt)
	}
	if !strings.HasSuffix(prompt, "Answer:") {
		t.Errorf("Prompt should end with answer cue, got %q", prompt)
	}
	if !strings.Contains(prompt[:qIdx], "Swarangi Sawant") {
		t.Error("Persona text should precede the question")
	}
}

func TestChat_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing message field", `{}`},
		{"empty message", `{"message": ""}`},
		{"whitespace message", `{"message": "   "}`},
		{"malformed json", `{"message": `},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			gen := &fakeGenerator{configured: true, reply: "ok"}
			h := newTestHandler(store, gen)

			rr := postChat(h, []byte(tc.body))

			if rr.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rr.Code)
			}

			var resp models.ErrorResponse
			json.NewDecoder(rr.Body).Decode(&resp)
			if resp.Error != "No message provided" {
				t.Errorf("Expected 'No message provided', got %q", resp.Error)
			}

			if gen.calls != 0 {
				t.Errorf("Expected zero upstream calls, got %d", gen.calls)
			}
		})
	}
}

func TestChat_MessageTooLong(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{configured: true, reply: "ok"}
	h := newTestHandler(store, gen)

	body, _ := json.Marshal(models.ChatRequest{Message: strings.Repeat("a", maxMessageLength+1)})
	rr := postChat(h, body)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
	if gen.calls != 0 {
		t.Errorf("Expected zero upstream calls, got %d", gen.calls)
	}
}

func TestChat_APIKeyNotConfigured(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{configured: false}
	h := newTestHandler(store, gen)

	body, _ := json.Marshal(models.ChatRequest{Message: "hello"})
	rr := postChat(h, body)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error != "Gemini API key not configured" {
		t.Errorf("Expected configuration error message, got %q", resp.Error)
	}

	if gen.calls != 0 {
		t.Errorf("Expected zero upstream calls, got %d", gen.calls)
	}
}

func TestChat_UpstreamFailure(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{
		configured: true,
		err:        &services.UpstreamError{Err: fmt.Errorf("connection refused")},
	}
	h := newTestHandler(store, gen)

	body, _ := json.Marshal(models.ChatRequest{Message: "hello"})
	rr := postChat(h, body)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error != "Failed to get response from AI service" {
		t.Errorf("Expected upstream failure message, got %q", resp.Error)
	}

	if len(store.conversations) != 0 {
		t.Errorf("Expected no conversation rows after upstream failure, got %d", len(store.conversations))
	}
	if len(store.touches) != 0 {
		t.Errorf("Expected no session touches after upstream failure, got %d", len(store.touches))
	}
}

func TestChat_InvalidResponseFormat(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{
		configured: true,
		err:        &services.ResponseFormatError{Detail: "no text in candidates"},
	}
	h := newTestHandler(store, gen)

	body, _ := json.Marshal(models.ChatRequest{Message: "hello"})
	rr := postChat(h, body)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error != "Invalid response format from AI service" {
		t.Errorf("Expected format error message, got %q", resp.Error)
	}

	if len(store.conversations) != 0 {
		t.Errorf("Expected no conversation rows, got %d", len(store.conversations))
	}
}

func TestChat_PersistenceFailureStillSucceeds(t *testing.T) {
	store := newFakeStore()
	store.failSave = true
	store.failTouch = true
	gen := &fakeGenerator{configured: true, reply: "still here"}
	h := newTestHandler(store, gen)

	body, _ := json.Marshal(models.ChatRequest{Message: "hello"})
	rr := postChat(h, body)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200 despite persistence failure, got %d", rr.Code)
	}

	var resp models.ChatResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Response != "still here" {
		t.Errorf("Expected reply despite persistence failure, got %q", resp.Response)
	}
}

func TestChat_SessionStableAcrossSequentialCalls(t *testing.T) {
	store := newFakeStore()
	gen := &fakeGenerator{configured: true, reply: "ok"}
	h := newTestHandler(store, gen)

	for i := 0; i < 2; i++ {
		body, _ := json.Marshal(models.ChatRequest{Message: fmt.Sprintf("question %d", i)})
		rr := postChat(h, body)
		if rr.Code != http.StatusOK {
			t.Fatalf("Call %d: expected 200, got %d", i, rr.Code)
		}
	}

	if len(store.conversations) != 2 {
		t.Fatalf("Expected two conversation rows, got %d", len(store.conversations))
	}
	if store.conversations[0].SessionID != store.conversations[1].SessionID {
		t.Errorf("Expected stable session id, got %q and %q",
			store.conversations[0].SessionID, store.conversations[1].SessionID)
	}
	if store.touches["sess-1"] != 2 {
		t.Errorf("Expected question count incremented per turn, got %d", store.touches["sess-1"])
	}
}

// ─── Health Tests ───

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		configured bool
	}{
		{"api key configured", true},
		{"api key missing", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(newFakeStore(), &fakeGenerator{configured: tc.configured})

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()
			h.Health(rr, req)

			if rr.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", rr.Code)
			}

			var resp models.HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Status != "healthy" {
				t.Errorf("Expected status healthy, got %q", resp.Status)
			}
			if resp.APIKeyConfigured != tc.configured {
				t.Errorf("Expected api_key_configured=%v, got %v", tc.configured, resp.APIKeyConfigured)
			}
		})
	}
}
