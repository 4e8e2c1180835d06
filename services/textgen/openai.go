// Package textgen talks to an OpenAI-compatible chat-completions endpoint.
package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/studyhubapp/studyhub/core"
	"github.com/studyhubapp/studyhub/core/chat"
)

const (
	serviceName = "assistant"

	defaultModel     = "deepseek/deepseek-r1-0528-qwen3-8b"
	defaultMaxTokens = 3000
	temperature      = 0.7

	systemPrompt = "You are an educational AI assistant for students. Provide helpful, accurate, " +
		"and concise answers to academic questions. Focus on explaining concepts clearly and " +
		"providing examples where appropriate."
)

type OpenAIGenerator struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

var _ chat.TextGenerator = (*OpenAIGenerator)(nil)

func NewOpenAIGenerator(conf *core.Config) *OpenAIGenerator {
	model := conf.Assistant.Model
	if model == "" {
		model = defaultModel
	}
	return &OpenAIGenerator{
		apiKey:    conf.Assistant.APIKey,
		baseURL:   conf.Assistant.BaseURL,
		model:     model,
		maxTokens: defaultMaxTokens,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, question string) (string, error) {
	reqBody := apiRequest{
		Model: g.model,
		Messages: []apiMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: question},
		},
		MaxTokens:   g.maxTokens,
		Temperature: temperature,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "marshaling request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("X-Title", core.Conf.AppName)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", core.NewExternalServiceError(serviceName, 0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", core.NewExternalServiceError(serviceName, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", core.NewExternalServiceError(serviceName, resp.StatusCode, errors.New(apiErr.Error.Message))
		}
		return "", core.NewExternalServiceError(serviceName, resp.StatusCode, errors.Errorf("unexpected response: %s", respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", core.NewExternalServiceError(serviceName, resp.StatusCode, errors.Wrap(err, "decoding response"))
	}
	if len(result.Choices) == 0 {
		return "", core.NewExternalServiceError(serviceName, resp.StatusCode, errors.New("response has no choices"))
	}
	return result.Choices[0].Message.Content, nil
}

// --- chat-completions API types ---

type apiRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature float64      `json:"temperature"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message apiMessage `json:"message"`
	} `json:"choices"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
