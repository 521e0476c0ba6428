package models

// RelevanceVerdict is the result of checking whether extracted answer text
// addresses the question at all.
type RelevanceVerdict struct {
	IsValid bool `json:"is_valid"`
	// Reason is human readable and never empty when IsValid is false.
	Reason string `json:"reason"`
	// AIOpinion holds the raw classifier text when an analysis provider
	// weighed in, kept for audit.
	AIOpinion string `json:"ai_opinion,omitempty"`
}

// Analysis section names. These are the keys of EvaluationRecord.Analysis
// and the section headers every evaluation prompt demands back.
const (
	SectionIntroduction = "introduction"
	SectionBody         = "body"
	SectionConclusion   = "conclusion"
	SectionStrengths    = "strengths"
	SectionWeaknesses   = "weaknesses"
	SectionSuggestions  = "suggestions"
	SectionFeedback     = "feedback"
)

// AnalysisSections lists all analysis keys in presentation order.
var AnalysisSections = []string{
	SectionIntroduction,
	SectionBody,
	SectionConclusion,
	SectionStrengths,
	SectionWeaknesses,
	SectionSuggestions,
	SectionFeedback,
}

// EvaluationRecord is the structured result of evaluating one answer.
// Invariants: Relevancy is clamped to [0,100], Score to [0,maxMarks];
// Remark is never empty; Comments and every Analysis list hold at least
// one entry so consumers never branch on emptiness.
type EvaluationRecord struct {
	Relevancy int                 `json:"relevancy"`
	Score     int                 `json:"score"`
	Remark    string              `json:"remark"`
	Comments  []string            `json:"comments"`
	Analysis  map[string][]string `json:"analysis"`
}

// Question is the upstream view of a posed question: the text, its marks
// ceiling and optional evaluator hints.
type Question struct {
	ID       string   `json:"id" db:"id"`
	Text     string   `json:"text" db:"text"`
	MaxMarks int      `json:"max_marks" db:"max_marks"`
	Keywords []string `json:"keywords,omitempty"`
	// Guideline is custom evaluation criteria; the fixed rubric template
	// applies when it is empty.
	Guideline string `json:"guideline,omitempty" db:"guideline"`
}
