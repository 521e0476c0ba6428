// Package evaluation builds evaluation prompts, drives the evaluation
// provider and parses its free-text response into a structured record.
// Provider unavailability and malformed responses are absorbed here: the
// caller always receives a well-formed record.
package evaluation

import (
	"context"
	"fmt"

	"github.com/gradepilot/evaluator-api/internal/models"
	"github.com/gradepilot/evaluator-api/internal/providers"
	"github.com/gradepilot/evaluator-api/internal/utils"
)

// ProviderResolver is the registry surface the service needs.
type ProviderResolver interface {
	Resolve(ctx context.Context, task models.Capability) (*models.ProviderConfig, error)
	ResolveFallback(ctx context.Context, task models.Capability, excluding string) (*models.ProviderConfig, error)
}

// EvaluatorFactory hands out the evaluation adapter for a provider config.
type EvaluatorFactory interface {
	Evaluator(cfg models.ProviderConfig) (providers.Evaluator, error)
}

type Service struct {
	registry ProviderResolver
	factory  EvaluatorFactory
	logger   *utils.Logger
}

func NewService(reg ProviderResolver, factory EvaluatorFactory, logger *utils.Logger) *Service {
	return &Service{registry: reg, factory: factory, logger: logger}
}

// Evaluate scores the extracted answer texts against the question. The
// returned record is always structurally valid; err is non-nil only when
// no evaluation-capable provider is configured at all, in which case the
// record is the fallback evaluator's output and the caller decides whether
// that is acceptable.
func (s *Service) Evaluate(ctx context.Context, question models.Question, texts []string, criteria string) (models.EvaluationRecord, error) {
	cfg, err := s.registry.Resolve(ctx, models.CapabilityEvaluation)
	if err != nil {
		// a capable non-preferred provider is still configured
		cfg, err = s.registry.ResolveFallback(ctx, models.CapabilityEvaluation, "")
	}
	if err != nil {
		s.logger.Warn("no evaluation provider configured, using fallback evaluation", "question", question.ID)
		return Mock(question), fmt.Errorf("evaluation provider unavailable: %w", err)
	}

	evaluator, err := s.factory.Evaluator(*cfg)
	if err != nil {
		s.logger.Warn("evaluation provider misconfigured, using fallback evaluation", "provider", cfg.Name, "error", err)
		return Mock(question), nil
	}

	prompt := s.buildPrompt(question, texts, criteria)

	response, err := evaluator.Evaluate(ctx, prompt, *cfg)
	if err != nil {
		s.logger.Warn("evaluation provider call failed, using fallback evaluation", "provider", cfg.Name, "error", err)
		return Mock(question), nil
	}

	record := Parse(response, question)
	s.logger.Info("answer evaluated",
		"provider", cfg.Name,
		"question", question.ID,
		"relevancy", record.Relevancy,
		"score", record.Score)
	return record, nil
}

func (s *Service) buildPrompt(question models.Question, texts []string, criteria string) string {
	if criteria == "" {
		criteria = question.Guideline
	}
	if criteria != "" {
		return BuildCustomPrompt(question, texts, criteria, CustomPromptOptions{})
	}
	return BuildStandardPrompt(question, texts)
}
