package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/storyarc/narrative-backend/internal/apperr"
	"github.com/storyarc/narrative-backend/internal/config"
	"github.com/storyarc/narrative-backend/internal/logger"
)

// Client performs structured-output chat completions. One network call per
// invocation, no retry; every failure mode wraps apperr.ErrGenerationFailed.
type Client interface {
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) ([]byte, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(cfg *config.Config, log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(cfg.OpenAIAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	return &client{
		log:     log.With("service", "OpenAIClient"),
		baseURL: strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		apiKey:  apiKey,
		model:   cfg.OpenAIModel,
		// The transport timeout backstops the per-request context deadline.
		httpClient: &http.Client{Timeout: cfg.GenerateTimeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *client) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) ([]byte, error) {
	if schemaName == "" || schema == nil {
		return nil, fmt.Errorf("%w: schema required", apperr.ErrGenerationFailed)
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
		ResponseFormat: map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   schemaName,
				"schema": schema,
				"strict": true,
			},
		},
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", apperr.ErrGenerationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", apperr.ErrGenerationFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("Generation call failed", "error", err)
		return nil, fmt.Errorf("%w: %v", apperr.ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", apperr.ErrGenerationFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("Generation call returned non-2xx", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: upstream status %d", apperr.ErrGenerationFailed, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", apperr.ErrGenerationFailed, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", apperr.ErrGenerationFailed)
	}
	if refusal := parsed.Choices[0].Message.Refusal; refusal != "" {
		return nil, fmt.Errorf("%w: model refused: %s", apperr.ErrGenerationFailed, refusal)
	}
	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", apperr.ErrGenerationFailed)
	}
	return []byte(content), nil
}
