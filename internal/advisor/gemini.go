package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/api/googleapi"
)

const (
	DefaultModel    = "gemini-2.0-flash"
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"

	systemInstruction = "You are a world-class financial advisor. Be professional, data-driven, and brief."
	promptTemplate    = `Analyze these recent transactions and provide exactly 3 concise, highly actionable financial tips for the user in a bulleted format.
Focus on spending habits, potential savings, and rule-based advice (e.g., 50/30/20 rule).
Transactions: %s`
)

// ErrMissingAPIKey is returned by NewGeminiAdvisor without a credential.
var ErrMissingAPIKey = errors.New("missing Gemini API key")

type GeminiConfig struct {
	APIKey string
	Model  string
	// Endpoint overrides the API base URL, mostly for tests and proxies.
	Endpoint string
	// HTTPClient defaults to http.DefaultClient. Deadlines come from the
	// request context.
	HTTPClient *http.Client
}

// GeminiAdvisor calls models/{model}:generateContent on the Gemini REST API.
type GeminiAdvisor struct {
	client   *http.Client
	endpoint string
	model    string
	apiKey   string
}

var _ Advisor = (*GeminiAdvisor)(nil)

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
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func NewGeminiAdvisor(cfg GeminiConfig) (*GeminiAdvisor, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	model := strings.TrimPrefix(strings.TrimSpace(cfg.Model), "models/")
	if model == "" {
		model = DefaultModel
	}
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("gemini endpoint: %w", err)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &GeminiAdvisor{client: client, endpoint: endpoint, model: model, apiKey: key}, nil
}

func (a *GeminiAdvisor) Advise(ctx context.Context, summaries []TransactionSummary) (string, error) {
	payload, err := json.Marshal(summaries)
	if err != nil {
		return "", fmt.Errorf("encode summaries: %w", err)
	}

	body, err := json.Marshal(geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemInstruction}}},
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: fmt.Sprintf(promptTemplate, payload)}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	u := fmt.Sprintf("%s/models/%s:generateContent?key=%s", a.endpoint, a.model, url.QueryEscape(a.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	// CheckResponse decodes the {"error": {...}} envelope into a *googleapi.Error.
	if err := googleapi.CheckResponse(resp); err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	text := responseText(out)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp geminiResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}
