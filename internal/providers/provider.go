// Package providers holds one adapter per external AI provider. Adapters
// implement only the capability interfaces their provider supports and map
// every provider-specific failure onto the models.ErrorKind taxonomy.
package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gradepilot/evaluator-api/internal/config"
	"github.com/gradepilot/evaluator-api/internal/models"
	"github.com/gradepilot/evaluator-api/internal/utils"
)

// Image is one resolved answer image handed to an extraction adapter.
type Image struct {
	Index       int
	Data        []byte
	ContentType string
}

// Extractor turns an answer image into extracted text. It never returns an
// error: failures are classified into the outcome itself so a single bad
// image cannot abort a batch.
type Extractor interface {
	Extract(ctx context.Context, img Image, cfg models.ProviderConfig) models.ExtractionOutcome
}

// Classifier answers a short free-text classification prompt.
type Classifier interface {
	Classify(ctx context.Context, prompt string, cfg models.ProviderConfig) (string, error)
}

// Evaluator answers a full evaluation prompt with free text.
type Evaluator interface {
	Evaluate(ctx context.Context, prompt string, cfg models.ProviderConfig) (string, error)
}

// Factory maps provider names from the registry onto adapter instances.
// Adapters exist only for providers that have credentials configured.
type Factory struct {
	adapters map[string]any
}

func NewFactory(cfg *config.Config, logger *utils.Logger) *Factory {
	client := &http.Client{}

	adapters := make(map[string]any)
	if cfg.GeminiAPIKey != "" {
		adapters["gemini"] = NewGemini(cfg.GeminiAPIKey, logger)
	}
	if cfg.OCRSpaceAPIKey != "" {
		adapters["ocrspace"] = NewOCRSpace(cfg.OCRSpaceAPIKey, client, logger)
	}
	if cfg.OpenRouterAPIKey != "" {
		adapters["openrouter"] = NewOpenRouter(cfg.OpenRouterAPIKey, client, logger)
	}

	return &Factory{adapters: adapters}
}

// Register installs an adapter under a provider name. Used by tests and by
// callers wiring custom providers.
func (f *Factory) Register(name string, adapter any) {
	if f.adapters == nil {
		f.adapters = make(map[string]any)
	}
	f.adapters[name] = adapter
}

func (f *Factory) Extractor(cfg models.ProviderConfig) (Extractor, error) {
	adapter, ok := f.adapters[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("provider %s is not installed", cfg.Name)
	}
	extractor, ok := adapter.(Extractor)
	if !ok {
		return nil, fmt.Errorf("provider %s does not support text extraction", cfg.Name)
	}
	return extractor, nil
}

func (f *Factory) Classifier(cfg models.ProviderConfig) (Classifier, error) {
	adapter, ok := f.adapters[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("provider %s is not installed", cfg.Name)
	}
	classifier, ok := adapter.(Classifier)
	if !ok {
		return nil, fmt.Errorf("provider %s does not support analysis", cfg.Name)
	}
	return classifier, nil
}

func (f *Factory) Evaluator(cfg models.ProviderConfig) (Evaluator, error) {
	adapter, ok := f.adapters[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("provider %s is not installed", cfg.Name)
	}
	evaluator, ok := adapter.(Evaluator)
	if !ok {
		return nil, fmt.Errorf("provider %s does not support evaluation", cfg.Name)
	}
	return evaluator, nil
}

// classifyStatus maps an HTTP status code to an ErrorKind.
func classifyStatus(status int) models.ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return models.ErrorKindAuthFailed
	case status == http.StatusTooManyRequests:
		return models.ErrorKindRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return models.ErrorKindTimeout
	case status == http.StatusUnsupportedMediaType || status == http.StatusUnprocessableEntity:
		return models.ErrorKindUnsupportedFormat
	case status >= 400 && status < 500:
		return models.ErrorKindBadRequest
	default:
		return models.ErrorKindProviderError
	}
}

// classifyErr maps a transport-level error to an ErrorKind.
func classifyErr(err error) models.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.ErrorKindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return models.ErrorKindTimeout
		}
		return models.ErrorKindFetchFailed
	}
	return models.ErrorKindProviderError
}

// failedOutcome builds a classified failure outcome for one image.
func failedOutcome(index int, provider string, kind models.ErrorKind) models.ExtractionOutcome {
	return models.ExtractionOutcome{
		Index:        index,
		Success:      false,
		ErrorKind:    kind,
		ProviderUsed: provider,
	}
}

// textOutcome builds a success outcome, substituting the no-readable-text
// sentinel when the provider found nothing.
func textOutcome(index int, provider, text string) models.ExtractionOutcome {
	if text == "" {
		text = models.NoReadableText
	}
	return models.ExtractionOutcome{
		Index:        index,
		Text:         text,
		Success:      true,
		ErrorKind:    models.ErrorKindNone,
		ProviderUsed: provider,
	}
}

const (
	defaultExtractTimeout  = 120 * time.Second
	defaultClassifyTimeout = 15 * time.Second
	defaultEvaluateTimeout = 180 * time.Second
)
