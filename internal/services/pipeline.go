package services

import (
	"context"
	"time"

	"github.com/gradepilot/evaluator-api/internal/evaluation"
	"github.com/gradepilot/evaluator-api/internal/models"
	"github.com/gradepilot/evaluator-api/internal/questions"
	"github.com/gradepilot/evaluator-api/internal/utils"
)

// EvaluationPipeline runs a submission through the full flow: document
// extraction, sanitization, relevance validation and evaluation.
type EvaluationPipeline interface {
	EvaluateSubmission(ctx context.Context, submissionID string, req *models.EvaluateRequest) (*models.EvaluateResponse, error)
}

// Extractor is the extraction stage as the pipeline sees it. Satisfied by
// extraction.Orchestrator.
type Extractor interface {
	ExtractAndClean(ctx context.Context, refs []models.DocumentReference) ([]string, []models.ExtractionOutcome)
}

// RelevanceChecker is satisfied by relevance.Validator.
type RelevanceChecker interface {
	Validate(ctx context.Context, question models.Question, outcomes []models.ExtractionOutcome) models.RelevanceVerdict
}

// Evaluator is satisfied by evaluation.Service.
type Evaluator interface {
	Evaluate(ctx context.Context, question models.Question, texts []string, criteria string) (models.EvaluationRecord, error)
}

type pipeline struct {
	questions    questions.Store
	orchestrator Extractor
	validator    RelevanceChecker
	evaluator    Evaluator
	logger       *utils.Logger
}

func NewPipeline(
	questionStore questions.Store,
	orchestrator Extractor,
	validator RelevanceChecker,
	evaluator Evaluator,
	logger *utils.Logger,
) EvaluationPipeline {
	return &pipeline{
		questions:    questionStore,
		orchestrator: orchestrator,
		validator:    validator,
		evaluator:    evaluator,
		logger:       logger,
	}
}

func (p *pipeline) EvaluateSubmission(ctx context.Context, submissionID string, req *models.EvaluateRequest) (*models.EvaluateResponse, error) {
	if req.QuestionID == "" {
		return nil, utils.NewBadRequestError("Question ID is required")
	}
	if len(req.Documents) == 0 {
		return nil, utils.NewBadRequestError("At least one document reference is required")
	}

	question, err := p.questions.GetByID(ctx, req.QuestionID)
	if err != nil {
		p.logger.Error("Failed to load question", "error", err, "question", req.QuestionID)
		return nil, utils.NewInternalError("Failed to load question")
	}
	if question == nil {
		return nil, utils.NewNotFoundError("Question not found")
	}

	texts, outcomes := p.orchestrator.ExtractAndClean(ctx, req.Documents)

	verdict := p.validator.Validate(ctx, *question, outcomes)

	resp := &models.EvaluateResponse{
		EvaluationID: utils.GenerateID(),
		SubmissionID: submissionID,
		QuestionID:   question.ID,
		Outcomes:     outcomes,
		Verdict:      verdict,
		EvaluatedAt:  time.Now(),
	}

	if !verdict.IsValid {
		p.logger.Info("Submission rejected as not relevant",
			"submission", submissionID,
			"question", question.ID,
			"reason", verdict.Reason)
		resp.Record = evaluation.NotRelevant(verdict.Reason)
		return resp, nil
	}

	record, err := p.evaluator.Evaluate(ctx, *question, texts, req.Criteria)
	if err != nil {
		// the record is the fallback evaluator's output; serve it rather
		// than failing the submission over a configuration gap
		p.logger.Warn("Evaluation degraded to fallback", "submission", submissionID, "error", err)
	}
	resp.Record = record

	p.logger.Info("Submission evaluated",
		"submission", submissionID,
		"question", question.ID,
		"relevancy", record.Relevancy,
		"score", record.Score)

	return resp, nil
}
