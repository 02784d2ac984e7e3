package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
)

func TestExtractText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []genai.Part{genai.Text("Hello, "), genai.Text("world.")},
				},
			},
		},
	}

	if got := extractText(resp); got != "Hello, world." {
		t.Errorf("Expected concatenated parts, got %q", got)
	}
}

func TestExtractText_NoContent(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"no candidates", &genai.GenerateContentResponse{}},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
		{"no text parts", &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: &genai.Content{}}},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractText(tc.resp); got != "" {
				t.Errorf("Expected empty text, got %q", got)
			}
		})
	}
}

func TestGeminiService_Unconfigured(t *testing.T) {
	svc, err := NewGeminiService("", "gemini-pro", zap.NewNop())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if svc.Configured() {
		t.Error("Expected service to report unconfigured")
	}

	_, err = svc.Answer(context.Background(), "prompt")
	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Errorf("Expected UpstreamError, got %v", err)
	}

	// Close on an unconfigured service is a no-op
	svc.Close()
}

func TestErrorTypes_Distinct(t *testing.T) {
	var formatErr *ResponseFormatError
	var upstreamErr *UpstreamError

	err := error(&ResponseFormatError{Detail: "no text"})
	if !errors.As(err, &formatErr) {
		t.Error("Expected ResponseFormatError to match itself")
	}
	if errors.As(err, &upstreamErr) {
		t.Error("ResponseFormatError must not match UpstreamError")
	}
}
