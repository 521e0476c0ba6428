package evaluation

import (
	"math/rand"

	"github.com/gradepilot/evaluator-api/internal/models"
)

// Remark pools keyed by score bracket. Content is illustrative; the record
// shape carries the same invariants as a parsed one.
var remarkPools = map[string][]string{
	"excellent": {
		"Excellent answer covering all the key aspects of the question.",
		"Outstanding work with a clear structure and strong supporting points.",
	},
	"good": {
		"Good answer addressing most of the important points.",
		"A solid attempt with a mostly complete treatment of the topic.",
	},
	"average": {
		"A fair attempt, but several important points are missing or thin.",
		"The answer addresses the question partially and needs more depth.",
	},
	"poor": {
		"The answer falls short of what the question asks for.",
		"Substantial gaps remain; the question is only superficially addressed.",
	},
}

func remarkFor(scorePercent int) string {
	var pool []string
	switch {
	case scorePercent >= 90:
		pool = remarkPools["excellent"]
	case scorePercent >= 70:
		pool = remarkPools["good"]
	case scorePercent >= 50:
		pool = remarkPools["average"]
	default:
		pool = remarkPools["poor"]
	}
	return pool[rand.Intn(len(pool))]
}

// NotRelevant produces the zero-score record returned when the relevance
// check rejects a submission. The reason becomes the remark so the caller
// sees why no marks were awarded.
func NotRelevant(reason string) models.EvaluationRecord {
	analysis := make(map[string][]string, len(models.AnalysisSections))
	for _, section := range models.AnalysisSections {
		analysis[section] = []string{sectionDefaults[section]}
	}
	return models.EvaluationRecord{
		Relevancy: 0,
		Score:     0,
		Remark:    reason,
		Comments:  []string{"The submitted answer was not evaluated against the rubric."},
		Analysis:  analysis,
	}
}

// Mock produces a structurally complete evaluation without consulting any
// provider: pseudo-random relevancy in [60,90] and a score proportional to
// it. Used when no evaluation provider is reachable or the response could
// not be parsed.
func Mock(question models.Question) models.EvaluationRecord {
	relevancy := 60 + rand.Intn(31)

	maxMarks := question.MaxMarks
	if maxMarks < 0 {
		maxMarks = 0
	}
	score := relevancy * maxMarks / 100

	return models.EvaluationRecord{
		Relevancy: relevancy,
		Score:     score,
		Remark:    remarkFor(relevancy),
		Comments: []string{
			"This evaluation was generated without provider assistance.",
			"Review the answer manually for a definitive assessment.",
		},
		Analysis: map[string][]string{
			models.SectionIntroduction: {"The answer opens with a workable framing of the topic."},
			models.SectionBody:         {"The main points are present but could be developed further."},
			models.SectionConclusion:   {"The answer closes without fully resolving the question."},
			models.SectionStrengths:    {"Relevant points are raised and the structure is readable."},
			models.SectionWeaknesses:   {"Supporting evidence and examples are limited."},
			models.SectionSuggestions:  {"Add concrete examples and connect each point back to the question."},
			models.SectionFeedback:     {"A reasonable attempt; focus on depth and supporting detail."},
		},
	}
}
