package breakdown

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

const analysisPrompt = `You are a professional cinematographer and script supervisor. Analyze the given scene description and extract the following visual elements in JSON format:
- shotType (array of strings, e.g., 'Wide Shot', 'Close Up')
- movement (array of strings, e.g., 'Pan', 'Dolly')
- mood (array of strings, e.g., 'Tense', 'Dark')
- characters (array of strings, names only)
- props (array of strings)
- sound (array of strings, e.g., 'Footsteps', 'Wind', 'Silence')
- sceneDynamics (array of strings, e.g., 'High Energy', 'Slow Burn', 'Chaotic')
- purposeNotes (array of strings, brief notes on the scene's narrative purpose or technical requirements)
- lighting (array of strings, e.g., 'High Contrast', 'Soft', 'Neon', 'Natural')

Scene Description: %q

Return ONLY the valid JSON object, no markdown formatting.`

// GeminiClient calls the Google Generative Language REST API
type GeminiClient struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiClient creates a Gemini client. Returns nil when no API key
// is configured; callers fall back to the keyword heuristic.
func NewGeminiClient(apiKey, model string, timeout time.Duration) *GeminiClient {
	if apiKey == "" {
		log.Println("[Breakdown] GEMINI_API_KEY not set, using keyword analysis only")
		return nil
	}
	if model == "" {
		model = "gemini-flash-latest"
	}
	return &GeminiClient{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// AnalyzeScene asks the model for a breakdown of one scene description
func (c *GeminiClient) AnalyzeScene(ctx context.Context, text string) (*Analysis, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: fmt.Sprintf(analysisPrompt, text)}}},
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s:generateContent", geminiEndpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("gemini API error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini API returned status %d", resp.StatusCode)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	raw := stripCodeFences(parsed.Candidates[0].Content.Parts[0].Text)

	var analysis Analysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, fmt.Errorf("parse analysis JSON: %w", err)
	}
	return &analysis, nil
}

// stripCodeFences removes markdown code blocks the model sometimes wraps
// its JSON in despite the prompt
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
