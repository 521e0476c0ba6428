package relevance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gradepilot/evaluator-api/internal/models"
	"github.com/gradepilot/evaluator-api/internal/providers"
	"github.com/gradepilot/evaluator-api/internal/registry"
	"github.com/gradepilot/evaluator-api/internal/utils"
)

type fakeRegistry struct {
	analysis *models.ProviderConfig
}

func (f *fakeRegistry) Resolve(ctx context.Context, task models.Capability) (*models.ProviderConfig, error) {
	if f.analysis == nil {
		return nil, registry.ErrNoProviderConfigured
	}
	return f.analysis, nil
}

func (f *fakeRegistry) ResolveFallback(ctx context.Context, task models.Capability, excluding string) (*models.ProviderConfig, error) {
	return nil, registry.ErrNoFallbackProvider
}

type fakeClassifier struct {
	response string
	err      error
}

func (f *fakeClassifier) Classify(ctx context.Context, prompt string, cfg models.ProviderConfig) (string, error) {
	return f.response, f.err
}

type fakeFactory struct {
	classifier providers.Classifier
}

func (f *fakeFactory) Classifier(cfg models.ProviderConfig) (providers.Classifier, error) {
	if f.classifier == nil {
		return nil, errors.New("provider does not support analysis")
	}
	return f.classifier, nil
}

func newValidator(classifier providers.Classifier) *Validator {
	reg := &fakeRegistry{}
	if classifier != nil {
		reg.analysis = &models.ProviderConfig{
			Name:         "gemini",
			Capabilities: []models.Capability{models.CapabilityAnalysis},
			Preferred:    []models.Capability{models.CapabilityAnalysis},
			Active:       true,
		}
	}
	return NewValidator(reg, &fakeFactory{classifier: classifier}, utils.NewLogger("error"))
}

func question() models.Question {
	return models.Question{
		ID:       "q1",
		Text:     "Explain the process of photosynthesis in plants",
		MaxMarks: 10,
	}
}

func successOutcome(text string) models.ExtractionOutcome {
	return models.ExtractionOutcome{Text: text, Success: true}
}

func TestValidateNoReadableText(t *testing.T) {
	v := newValidator(nil)

	outcomes := []models.ExtractionOutcome{
		{Success: false, ErrorKind: models.ErrorKindProviderError},
		{Success: true, Text: models.NoReadableText},
	}
	verdict := v.Validate(context.Background(), question(), outcomes)

	assert.False(t, verdict.IsValid)
	assert.Contains(t, verdict.Reason, "no readable text")
}

func TestValidateMathGarbageRejected(t *testing.T) {
	v := newValidator(nil)

	verdict := v.Validate(context.Background(), question(), []models.ExtractionOutcome{
		successOutcome("42 + 17 = 59"),
	})

	assert.False(t, verdict.IsValid)
	assert.NotEmpty(t, verdict.Reason)
}

func TestValidateRepeatedCharacterRejected(t *testing.T) {
	v := newValidator(nil)

	verdict := v.Validate(context.Background(), question(), []models.ExtractionOutcome{
		successOutcome("zzzzzz zzzzzz zzzzzzz"),
	})
	assert.False(t, verdict.IsValid)
	assert.Contains(t, verdict.Reason, "repeated character")
}

func TestValidateShortUnrelatedRejected(t *testing.T) {
	v := newValidator(nil)

	verdict := v.Validate(context.Background(), question(), []models.ExtractionOutcome{
		successOutcome("hello world"),
	})

	assert.False(t, verdict.IsValid)
}

func TestValidateRelevantAnswerAccepted(t *testing.T) {
	v := newValidator(nil)

	verdict := v.Validate(context.Background(), question(), []models.ExtractionOutcome{
		successOutcome("Photosynthesis is the process by which plants convert light energy into chemical energy using chlorophyll."),
	})

	assert.True(t, verdict.IsValid)
	assert.NotEmpty(t, verdict.Reason)
}

func TestValidateAIClassifierRejects(t *testing.T) {
	v := newValidator(&fakeClassifier{response: "NOT_RELEVANT: the text is a shopping list, not an answer about photosynthesis"})

	verdict := v.Validate(context.Background(), question(), []models.ExtractionOutcome{
		successOutcome("milk, eggs, two loaves of bread and a dozen apples for the weekend"),
	})

	assert.False(t, verdict.IsValid)
	assert.Contains(t, verdict.AIOpinion, "NOT_RELEVANT")
}

func TestValidateClassifierErrorDegradesToHeuristics(t *testing.T) {
	v := newValidator(&fakeClassifier{err: errors.New("deadline exceeded")})

	verdict := v.Validate(context.Background(), question(), []models.ExtractionOutcome{
		successOutcome("Plants perform photosynthesis to produce glucose and oxygen from carbon dioxide and water."),
	})

	assert.True(t, verdict.IsValid)
	assert.Empty(t, verdict.AIOpinion)
}

func TestSignificantTermsFiltersStopWords(t *testing.T) {
	terms := significantTerms("Explain the process of photosynthesis in plants", []string{"chlorophyll"})

	assert.Contains(t, terms, "photosynthesis")
	assert.Contains(t, terms, "plants")
	assert.Contains(t, terms, "chlorophyll")
	assert.NotContains(t, terms, "the")
	assert.NotContains(t, terms, "of")
	assert.NotContains(t, terms, "in")
	assert.NotContains(t, terms, "explain")
}

func TestCountTermMatchesPrefixRule(t *testing.T) {
	// "photosynthesis" matches via the 4-character prefix "phot"
	matches := countTermMatches([]string{"photosynthesis"}, "the photo shows a plant")
	assert.Equal(t, 1, matches)

	matches = countTermMatches([]string{"photosynthesis"}, "completely unrelated text")
	assert.Equal(t, 0, matches)
}
