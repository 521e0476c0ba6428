// Package extraction drives extraction adapters over an ordered batch of
// document references. Outcomes always come back one per input, in input
// order; a failed item never aborts the rest of the batch.
package extraction

import (
	"context"

	"github.com/gradepilot/evaluator-api/internal/models"
	"github.com/gradepilot/evaluator-api/internal/providers"
	"github.com/gradepilot/evaluator-api/internal/utils"
)

// LocalProvider is the providerUsed value for documents read from their
// own text layer, without an AI call.
const LocalProvider = "local"

// ProviderResolver is the registry surface the orchestrator needs.
type ProviderResolver interface {
	Resolve(ctx context.Context, task models.Capability) (*models.ProviderConfig, error)
	ResolveFallback(ctx context.Context, task models.Capability, excluding string) (*models.ProviderConfig, error)
}

// DocumentResolver fetches document bytes and spots local text layers.
type DocumentResolver interface {
	Resolve(ctx context.Context, ref models.DocumentReference) (providers.Image, error)
	LocalText(img providers.Image) (string, bool)
}

// AdapterFactory hands out the extraction adapter for a provider config.
type AdapterFactory interface {
	Extractor(cfg models.ProviderConfig) (providers.Extractor, error)
}

type Orchestrator struct {
	registry  ProviderResolver
	factory   AdapterFactory
	documents DocumentResolver
	logger    *utils.Logger
}

func NewOrchestrator(reg ProviderResolver, factory AdapterFactory, documents DocumentResolver, logger *utils.Logger) *Orchestrator {
	return &Orchestrator{
		registry:  reg,
		factory:   factory,
		documents: documents,
		logger:    logger,
	}
}

// ExtractBatch produces one outcome per reference, in input order. Items
// are processed one at a time to respect provider rate limits. A systemic
// primary-provider failure triggers a single retry of the affected items
// with the fallback provider; if no provider can serve the batch at all,
// placeholder failure outcomes come back instead of an error.
func (o *Orchestrator) ExtractBatch(ctx context.Context, refs []models.DocumentReference) []models.ExtractionOutcome {
	outcomes := make([]models.ExtractionOutcome, len(refs))
	images := make([]*providers.Image, len(refs))

	// resolve documents and serve text layers locally where possible
	pending := make([]int, 0, len(refs))
	for i, ref := range refs {
		ref.Index = i
		img, err := o.documents.Resolve(ctx, ref)
		if err != nil {
			o.logger.Warn("failed to resolve document reference", "index", i, "error", err)
			outcomes[i] = models.FailedOutcome(i, models.ErrorKindFetchFailed)
			continue
		}
		if text, ok := o.documents.LocalText(img); ok {
			outcomes[i] = models.ExtractionOutcome{
				Index:        i,
				Text:         text,
				Success:      true,
				ErrorKind:    models.ErrorKindNone,
				ProviderUsed: LocalProvider,
			}
			continue
		}
		images[i] = &img
		pending = append(pending, i)
	}

	if len(pending) == 0 {
		return outcomes
	}

	primary, err := o.registry.Resolve(ctx, models.CapabilityTextExtraction)
	if err != nil {
		o.logger.Error("no extraction provider configured", "error", err)
		o.failPending(outcomes, pending)
		return outcomes
	}

	served := o.runProvider(ctx, *primary, images, pending, outcomes)
	if served {
		return outcomes
	}
	if ctx.Err() != nil {
		// cancelled, not a provider problem: keep timeout outcomes for
		// whatever was not served
		for _, i := range pending {
			if !outcomes[i].Success && outcomes[i].ErrorKind == "" {
				outcomes[i] = models.FailedOutcome(i, models.ErrorKindTimeout)
			}
		}
		return outcomes
	}

	// the primary failed systemically; try the fallback provider once
	fallback, err := o.registry.ResolveFallback(ctx, models.CapabilityTextExtraction, primary.Name)
	if err != nil {
		o.logger.Warn("primary extraction provider unusable and no fallback available", "primary", primary.Name)
		o.failPending(outcomes, pending)
		return outcomes
	}

	o.logger.Info("retrying extraction batch with fallback provider", "primary", primary.Name, "fallback", fallback.Name)
	if !o.runProvider(ctx, *fallback, images, pending, outcomes) {
		o.failPending(outcomes, pending)
	}
	return outcomes
}

// runProvider runs one adapter over the pending items, filling outcomes in
// place. It returns false when the provider failed systemically: adapter
// lookup failed, or every item failed with the same transport-level error.
func (o *Orchestrator) runProvider(ctx context.Context, cfg models.ProviderConfig, images []*providers.Image, pending []int, outcomes []models.ExtractionOutcome) bool {
	adapter, err := o.factory.Extractor(cfg)
	if err != nil {
		o.logger.Warn("extraction provider misconfigured", "provider", cfg.Name, "error", err)
		return false
	}

	for _, i := range pending {
		if ctx.Err() != nil {
			// cancelled: remaining items become timeout failures, ordering intact
			out := models.FailedOutcome(i, models.ErrorKindTimeout)
			out.ProviderUsed = cfg.Name
			outcomes[i] = out
			continue
		}
		outcomes[i] = adapter.Extract(ctx, *images[i], cfg)
		o.logger.Debug("extraction attempt finished",
			"provider", cfg.Name,
			"index", i,
			"success", outcomes[i].Success,
			"error_kind", outcomes[i].ErrorKind)
	}

	return !systemicFailure(outcomes, pending)
}

// systemicFailure reports whether every pending item failed with the same
// transport-level error kind. Per-item kinds like bad-request or
// unsupported-format point at the input, not the provider, and do not
// count.
func systemicFailure(outcomes []models.ExtractionOutcome, pending []int) bool {
	if len(pending) == 0 {
		return false
	}
	var kind models.ErrorKind
	for n, i := range pending {
		out := outcomes[i]
		if out.Success {
			return false
		}
		switch out.ErrorKind {
		case models.ErrorKindFetchFailed, models.ErrorKindAuthFailed, models.ErrorKindRateLimited,
			models.ErrorKindTimeout, models.ErrorKindProviderError:
		default:
			return false
		}
		if n == 0 {
			kind = out.ErrorKind
		} else if out.ErrorKind != kind {
			return false
		}
	}
	return true
}

func (o *Orchestrator) failPending(outcomes []models.ExtractionOutcome, pending []int) {
	for _, i := range pending {
		outcomes[i] = models.FailedOutcome(i, models.ErrorKindProviderError)
	}
}

// ExtractAndClean runs the batch and sanitizes the successful texts. The
// returned texts preserve outcome order; outcomes carry the per-item
// diagnostics.
func (o *Orchestrator) ExtractAndClean(ctx context.Context, refs []models.DocumentReference) ([]string, []models.ExtractionOutcome) {
	outcomes := o.ExtractBatch(ctx, refs)

	raw := make([]string, 0, len(outcomes))
	for _, out := range outcomes {
		if out.Success && out.Text != models.NoReadableText {
			raw = append(raw, out.Text)
		}
	}
	return CleanTexts(raw), outcomes
}
