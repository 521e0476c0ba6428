package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/gradepilot/evaluator-api/internal/models"
	"github.com/gradepilot/evaluator-api/internal/utils"
)

const defaultGeminiModel = "gemini-1.5-flash"

const geminiExtractInstruction = `Extract all handwritten and printed text from this answer sheet image.
Return only the extracted text, preserving line breaks. If the image contains
no readable text, respond with exactly: NO_TEXT_FOUND`

// Gemini talks to the Google Generative AI API. The image travels inline
// as part of the request, not as a separate upload.
type Gemini struct {
	apiKey string
	logger *utils.Logger
}

func NewGemini(apiKey string, logger *utils.Logger) *Gemini {
	return &Gemini{apiKey: apiKey, logger: logger}
}

func (g *Gemini) model(cfg models.ProviderConfig) string {
	if cfg.Options.Model != "" {
		return cfg.Options.Model
	}
	return defaultGeminiModel
}

func (g *Gemini) generate(ctx context.Context, cfg models.ProviderConfig, parts ...genai.Part) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}
	defer client.Close()

	resp, err := client.GenerativeModel(g.model(cfg)).GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	return geminiText(resp), nil
}

func (g *Gemini) Extract(ctx context.Context, img Image, cfg models.ProviderConfig) models.ExtractionOutcome {
	ctx, cancel := context.WithTimeout(ctx, cfg.Options.Timeout(defaultExtractTimeout))
	defer cancel()

	text, err := g.generate(ctx, cfg,
		genai.Text(geminiExtractInstruction),
		genai.ImageData(imageFormat(img.ContentType), img.Data),
	)
	if err != nil {
		g.logger.Warn("gemini extraction failed", "index", img.Index, "error", err)
		return failedOutcome(img.Index, "gemini", classifyErr(err))
	}

	text = strings.TrimSpace(text)
	if text == "NO_TEXT_FOUND" {
		text = ""
	}
	return textOutcome(img.Index, "gemini", text)
}

func (g *Gemini) Classify(ctx context.Context, prompt string, cfg models.ProviderConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Options.Timeout(defaultClassifyTimeout))
	defer cancel()

	return g.generate(ctx, cfg, genai.Text(prompt))
}

func (g *Gemini) Evaluate(ctx context.Context, prompt string, cfg models.ProviderConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Options.Timeout(defaultEvaluateTimeout))
	defer cancel()

	return g.generate(ctx, cfg, genai.Text(prompt))
}

// geminiText flattens the first candidate's text parts.
func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return stripCodeFences(sb.String())
}

// imageFormat converts a MIME content type to the bare format name the SDK
// expects ("image/png" -> "png").
func imageFormat(contentType string) string {
	format := strings.TrimPrefix(strings.ToLower(contentType), "image/")
	if format == "" || format == contentType {
		return "png"
	}
	if format == "jpg" {
		return "jpeg"
	}
	return format
}

// stripCodeFences removes a surrounding markdown code block, which models
// add despite instructions.
func stripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.TrimPrefix(cleaned, "```")
	if idx := strings.Index(cleaned, "\n"); idx >= 0 && !strings.ContainsAny(cleaned[:idx], " \t") {
		cleaned = cleaned[idx+1:]
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}
