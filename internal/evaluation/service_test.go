package evaluation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradepilot/evaluator-api/internal/models"
	"github.com/gradepilot/evaluator-api/internal/providers"
	"github.com/gradepilot/evaluator-api/internal/registry"
	"github.com/gradepilot/evaluator-api/internal/utils"
)

type fakeRegistry struct {
	evaluation *models.ProviderConfig
}

func (f *fakeRegistry) Resolve(ctx context.Context, task models.Capability) (*models.ProviderConfig, error) {
	if f.evaluation == nil {
		return nil, registry.ErrNoProviderConfigured
	}
	return f.evaluation, nil
}

func (f *fakeRegistry) ResolveFallback(ctx context.Context, task models.Capability, excluding string) (*models.ProviderConfig, error) {
	return nil, registry.ErrNoFallbackProvider
}

type fakeEvaluator struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, prompt string, cfg models.ProviderConfig) (string, error) {
	f.lastPrompt = prompt
	return f.response, f.err
}

type fakeFactory struct {
	evaluator *fakeEvaluator
}

func (f *fakeFactory) Evaluator(cfg models.ProviderConfig) (providers.Evaluator, error) {
	if f.evaluator == nil {
		return nil, errors.New("provider does not support evaluation")
	}
	return f.evaluator, nil
}

func evalConfig() *models.ProviderConfig {
	return &models.ProviderConfig{
		Name:         "gemini",
		Capabilities: []models.Capability{models.CapabilityEvaluation},
		Preferred:    []models.Capability{models.CapabilityEvaluation},
		Active:       true,
	}
}

func TestEvaluateParsesProviderResponse(t *testing.T) {
	evaluator := &fakeEvaluator{response: wellFormedResponse}
	s := NewService(&fakeRegistry{evaluation: evalConfig()}, &fakeFactory{evaluator: evaluator}, utils.NewLogger("error"))

	record, err := s.Evaluate(context.Background(), parserQuestion(), []string{"the answer"}, "")
	require.NoError(t, err)
	assert.Equal(t, 85, record.Relevancy)
	assert.Equal(t, 7, record.Score)
	assert.Contains(t, evaluator.lastPrompt, "Explain the causes of the French Revolution")
}

func TestEvaluateNoProviderConfigured(t *testing.T) {
	s := NewService(&fakeRegistry{}, &fakeFactory{}, utils.NewLogger("error"))

	record, err := s.Evaluate(context.Background(), parserQuestion(), []string{"the answer"}, "")
	assert.Error(t, err)

	// the record is still the fallback evaluator's fully formed output
	assert.GreaterOrEqual(t, record.Relevancy, 60)
	assert.LessOrEqual(t, record.Relevancy, 90)
	assert.Equal(t, record.Relevancy*parserQuestion().MaxMarks/100, record.Score)
	assert.NotEqual(t, defaultRemark, record.Remark)
	for _, section := range models.AnalysisSections {
		assert.NotEmpty(t, record.Analysis[section])
	}
}

func TestEvaluateProviderFailureFallsBack(t *testing.T) {
	evaluator := &fakeEvaluator{err: errors.New("upstream 503")}
	s := NewService(&fakeRegistry{evaluation: evalConfig()}, &fakeFactory{evaluator: evaluator}, utils.NewLogger("error"))

	record, err := s.Evaluate(context.Background(), parserQuestion(), []string{"the answer"}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, record.Remark)
	assert.NotEmpty(t, record.Comments)
}

func TestEvaluateUsesCustomCriteria(t *testing.T) {
	evaluator := &fakeEvaluator{response: wellFormedResponse}
	s := NewService(&fakeRegistry{evaluation: evalConfig()}, &fakeFactory{evaluator: evaluator}, utils.NewLogger("error"))

	_, err := s.Evaluate(context.Background(), parserQuestion(), []string{"the answer"}, "Award full marks only when dates are cited.")
	require.NoError(t, err)
	assert.Contains(t, evaluator.lastPrompt, "Award full marks only when dates are cited.")
}

func TestEvaluateFallsBackToQuestionGuideline(t *testing.T) {
	evaluator := &fakeEvaluator{response: wellFormedResponse}
	s := NewService(&fakeRegistry{evaluation: evalConfig()}, &fakeFactory{evaluator: evaluator}, utils.NewLogger("error"))

	q := parserQuestion()
	q.Guideline = "Weigh economic causes twice as heavily."
	_, err := s.Evaluate(context.Background(), q, []string{"the answer"}, "")
	require.NoError(t, err)
	assert.Contains(t, evaluator.lastPrompt, "Weigh economic causes twice as heavily.")
}
