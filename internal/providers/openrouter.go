package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gradepilot/evaluator-api/internal/models"
	"github.com/gradepilot/evaluator-api/internal/utils"
)

const (
	openRouterEndpoint     = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterModel = "openai/gpt-4o-mini"
)

const openRouterExtractInstruction = `Extract all handwritten and printed text from this answer sheet image. Return only the extracted text, preserving line breaks. If the image contains no readable text, respond with exactly: NO_TEXT_FOUND`

// OpenRouter speaks the chat-completions protocol. Images travel inline as
// base64 data URLs inside the message content.
type OpenRouter struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   *utils.Logger
}

type openRouterRequest struct {
	Model    string              `json:"model"`
	Messages []openRouterMessage `json:"messages"`
}

type openRouterMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openRouterImageURL struct {
	URL string `json:"url"`
}

type openRouterImagePart struct {
	Type     string              `json:"type"`
	Text     string              `json:"text,omitempty"`
	ImageURL *openRouterImageURL `json:"image_url,omitempty"`
}

type openRouterResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

func NewOpenRouter(apiKey string, client *http.Client, logger *utils.Logger) *OpenRouter {
	return &OpenRouter{
		apiKey:   apiKey,
		endpoint: openRouterEndpoint,
		client:   client,
		logger:   logger,
	}
}

func (o *OpenRouter) model(cfg models.ProviderConfig) string {
	if cfg.Options.Model != "" {
		return cfg.Options.Model
	}
	return defaultOpenRouterModel
}

// complete sends one chat request and returns the first choice's content.
func (o *OpenRouter) complete(ctx context.Context, cfg models.ProviderConfig, content any) (string, int, error) {
	reqBody := openRouterRequest{
		Model: o.model(cfg),
		Messages: []openRouterMessage{
			{Role: "user", Content: content},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		o.logger.Warn("openrouter API error", "status", resp.StatusCode, "body", string(body))
		return "", resp.StatusCode, fmt.Errorf("openrouter returned status %d", resp.StatusCode)
	}

	var parsed openRouterResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if parsed.Error != nil {
		return "", resp.StatusCode, fmt.Errorf("openrouter API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", resp.StatusCode, fmt.Errorf("no choices in response")
	}

	return stripCodeFences(parsed.Choices[0].Message.Content), resp.StatusCode, nil
}

func (o *OpenRouter) Extract(ctx context.Context, img Image, cfg models.ProviderConfig) models.ExtractionOutcome {
	ctx, cancel := context.WithTimeout(ctx, cfg.Options.Timeout(defaultExtractTimeout))
	defer cancel()

	contentType := img.ContentType
	if contentType == "" {
		contentType = "image/png"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(img.Data))

	content := []openRouterImagePart{
		{Type: "text", Text: openRouterExtractInstruction},
		{Type: "image_url", ImageURL: &openRouterImageURL{URL: dataURL}},
	}

	text, status, err := o.complete(ctx, cfg, content)
	if err != nil {
		o.logger.Warn("openrouter extraction failed", "index", img.Index, "error", err)
		kind := classifyErr(err)
		if status != 0 && status != http.StatusOK {
			kind = classifyStatus(status)
		}
		return failedOutcome(img.Index, "openrouter", kind)
	}

	text = strings.TrimSpace(text)
	if text == "NO_TEXT_FOUND" {
		text = ""
	}
	return textOutcome(img.Index, "openrouter", text)
}

func (o *OpenRouter) Classify(ctx context.Context, prompt string, cfg models.ProviderConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Options.Timeout(defaultClassifyTimeout))
	defer cancel()

	text, _, err := o.complete(ctx, cfg, prompt)
	return text, err
}

func (o *OpenRouter) Evaluate(ctx context.Context, prompt string, cfg models.ProviderConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Options.Timeout(defaultEvaluateTimeout))
	defer cancel()

	text, _, err := o.complete(ctx, cfg, prompt)
	return text, err
}
