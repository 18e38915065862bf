package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Gemini calls the generateContent REST endpoint.
type Gemini struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewGemini(baseURL string) *Gemini {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Gemini{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: http.DefaultClient,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		ResponseMIMEType string  `json:"responseMimeType,omitempty"`
		ResponseSchema   *Schema `json:"responseSchema,omitempty"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) GenerateContent(ctx context.Context, apiKey string, req Request) (string, error) {
	// compose request body
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
	}
	if req.SystemInstruction != "" {
		reqBody.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.SystemInstruction}}}
	}
	reqBody.GenerationConfig.ResponseMIMEType = req.ResponseMIMEType
	reqBody.GenerationConfig.ResponseSchema = req.ResponseSchema
	reqBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("(*Gemini).GenerateContent: failed to marshal request body: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.BaseURL, req.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBodyBytes))
	if err != nil {
		return "", fmt.Errorf("(*Gemini).GenerateContent: failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", apiKey)

	client := g.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("(*Gemini).GenerateContent: failed to do request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("(*Gemini).GenerateContent: failed to read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("(*Gemini).GenerateContent: bad status code %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var respBody geminiResponse
	if err := json.Unmarshal(body, &respBody); err != nil {
		return "", fmt.Errorf("(*Gemini).GenerateContent: failed to unmarshal response: %w", err)
	}
	if len(respBody.Candidates) == 0 {
		return "", fmt.Errorf("(*Gemini).GenerateContent: no candidates")
	}
	var text strings.Builder
	for _, part := range respBody.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
