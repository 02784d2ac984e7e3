package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// UpstreamError covers transport failures and non-success statuses from the
// generative API.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("upstream AI service: %v", e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }

// ResponseFormatError means the upstream responded but the body carried no
// generated text where one was expected. Kept distinct from UpstreamError.
type ResponseFormatError struct {
	Detail string
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("unexpected upstream response shape: %s", e.Detail)
}

// GeminiService issues one blocking GenerateContent call per request.
// No retry, backoff, or timeout override beyond the transport default.
type GeminiService struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
}

// NewGeminiService builds the upstream client. An empty apiKey yields an
// unconfigured service: the process still serves health checks, and chat
// requests fail before any network call is made.
func NewGeminiService(apiKey, modelName string, logger *zap.Logger) (*GeminiService, error) {
	if apiKey == "" {
		return &GeminiService{logger: logger}, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiService{
		client: client,
		model:  client.GenerativeModel(modelName),
		logger: logger,
	}, nil
}

// Configured reports whether an upstream credential was supplied.
func (s *GeminiService) Configured() bool {
	return s.client != nil
}

// Answer sends the finished prompt and returns the generated text.
func (s *GeminiService) Answer(ctx context.Context, prompt string) (string, error) {
	if s.client == nil {
		return "", &UpstreamError{Err: fmt.Errorf("gemini client not configured")}
	}

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		s.logger.Error("Gemini API call failed", zap.Error(err))
		return "", &UpstreamError{Err: err}
	}

	text := extractText(resp)
	if text == "" {
		s.logger.Error("Gemini response contained no text",
			zap.Int("candidates", len(resp.Candidates)))
		return "", &ResponseFormatError{Detail: "no text in candidates"}
	}

	return text, nil
}

func (s *GeminiService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
