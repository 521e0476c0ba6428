package models

import "time"

// EvaluateRequest asks the pipeline to score one submission: the question
// it answers, the answer-sheet documents, and optional custom criteria
// that override the question's guideline.
type EvaluateRequest struct {
	QuestionID string              `json:"question_id"`
	Documents  []DocumentReference `json:"documents"`
	Criteria   string              `json:"criteria,omitempty"`
}

// EvaluateResponse is the full pipeline result: per-document extraction
// outcomes, the relevance verdict and the evaluation record. The record is
// always present and structurally complete, even when the verdict rejected
// the submission.
type EvaluateResponse struct {
	EvaluationID string              `json:"evaluation_id"`
	SubmissionID string              `json:"submission_id"`
	QuestionID   string              `json:"question_id"`
	Outcomes     []ExtractionOutcome `json:"outcomes"`
	Verdict      RelevanceVerdict    `json:"verdict"`
	Record       EvaluationRecord    `json:"record"`
	EvaluatedAt  time.Time           `json:"evaluated_at"`
}
