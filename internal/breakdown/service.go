package breakdown

import (
	"context"
	"log"
	"time"
)

// Analysis sources reported to the client
const (
	SourceGemini = "AI (Google Gemini)"
	SourceMock   = "Mock Logic (Fallback)"
)

// Service produces scene breakdowns, preferring the LLM and falling
// back to the keyword heuristic when it is unconfigured or failing
type Service struct {
	gemini *GeminiClient
}

// NewService wires the analyzer. gemini may be nil.
func NewService(apiKey, model string, timeout time.Duration) *Service {
	return &Service{gemini: NewGeminiClient(apiKey, model, timeout)}
}

// Analyze breaks down one scene description. The second return value
// names which path produced the result.
func (s *Service) Analyze(ctx context.Context, text string) (*Analysis, string) {
	if s.gemini != nil {
		analysis, err := s.gemini.AnalyzeScene(ctx, text)
		if err == nil {
			return analysis, SourceGemini
		}
		log.Printf("[Breakdown] Gemini analysis failed, falling back: %v", err)
	}
	return AnalyzeScene(text), SourceMock
}
