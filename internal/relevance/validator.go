// Package relevance decides whether extracted answer text addresses the
// posed question at all. Cheap structural checks run first; the AI
// classifier is consulted only after they pass, and its unavailability
// degrades silently to the keyword heuristic.
package relevance

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/gradepilot/evaluator-api/internal/models"
	"github.com/gradepilot/evaluator-api/internal/providers"
	"github.com/gradepilot/evaluator-api/internal/utils"
)

// ProviderResolver is the registry surface the validator needs.
type ProviderResolver interface {
	Resolve(ctx context.Context, task models.Capability) (*models.ProviderConfig, error)
	ResolveFallback(ctx context.Context, task models.Capability, excluding string) (*models.ProviderConfig, error)
}

// ClassifierFactory hands out the analysis adapter for a provider config.
type ClassifierFactory interface {
	Classifier(cfg models.ProviderConfig) (providers.Classifier, error)
}

type Validator struct {
	registry ProviderResolver
	factory  ClassifierFactory
	logger   *utils.Logger
}

func NewValidator(reg ProviderResolver, factory ClassifierFactory, logger *utils.Logger) *Validator {
	return &Validator{registry: reg, factory: factory, logger: logger}
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "what": true,
	"which": true, "their": true, "will": true, "about": true, "with": true,
	"this": true, "that": true, "from": true, "have": true, "has": true,
	"was": true, "were": true, "been": true, "its": true, "into": true,
	"how": true, "why": true, "when": true, "where": true, "who": true,
	"does": true, "did": true, "explain": true, "describe": true,
	"discuss": true, "define": true, "write": true, "answer": true,
	"question": true, "following": true, "briefly": true, "detail": true,
}

// Validate applies the rule chain in order, short-circuiting on the first
// failing rule. An invalid verdict always carries a reason.
func (v *Validator) Validate(ctx context.Context, question models.Question, outcomes []models.ExtractionOutcome) models.RelevanceVerdict {
	texts := make([]string, 0, len(outcomes))
	for _, out := range outcomes {
		if out.Success && strings.TrimSpace(out.Text) != "" && out.Text != models.NoReadableText {
			texts = append(texts, out.Text)
		}
	}
	if len(texts) == 0 {
		return models.RelevanceVerdict{
			IsValid: false,
			Reason:  "no readable text found in images",
		}
	}

	combined := strings.ToLower(strings.Join(texts, "\n"))
	terms := significantTerms(question.Text, question.Keywords)

	aiOpinion := v.classify(ctx, question.Text, combined)
	if aiOpinion != "" && isNotRelevant(aiOpinion) {
		return models.RelevanceVerdict{
			IsValid:   false,
			Reason:    "answer content does not address the question",
			AIOpinion: aiOpinion,
		}
	}

	matches := countTermMatches(terms, combined)
	if len(strings.TrimSpace(combined)) < 20 && matches == 0 {
		return models.RelevanceVerdict{
			IsValid:   false,
			Reason:    "answer text is too short and shares no terms with the question",
			AIOpinion: aiOpinion,
		}
	}

	if reason, garbage := garbageReason(combined); garbage {
		return models.RelevanceVerdict{
			IsValid:   false,
			Reason:    reason,
			AIOpinion: aiOpinion,
		}
	}

	return models.RelevanceVerdict{
		IsValid:   true,
		Reason:    "answer appears to address the question",
		AIOpinion: aiOpinion,
	}
}

// classify asks an analysis-capable provider for a binary opinion. Any
// failure, including no provider being configured, returns "" so the
// heuristics carry on alone.
func (v *Validator) classify(ctx context.Context, questionText, combined string) string {
	cfg, err := v.registry.Resolve(ctx, models.CapabilityAnalysis)
	if err != nil {
		// no preferred provider; any active analysis-capable one will do
		cfg, err = v.registry.ResolveFallback(ctx, models.CapabilityAnalysis, "")
		if err != nil {
			return ""
		}
	}

	classifier, err := v.factory.Classifier(*cfg)
	if err != nil {
		v.logger.Warn("analysis provider misconfigured", "provider", cfg.Name, "error", err)
		return ""
	}

	prompt := fmt.Sprintf(`You are checking whether a student's answer attempts to address an exam question.

Question: %s

Student's answer text:
%s

Respond with exactly one line starting with RELEVANT or NOT_RELEVANT, followed by a brief justification.`, questionText, combined)

	opinion, err := classifier.Classify(ctx, prompt, *cfg)
	if err != nil {
		v.logger.Warn("relevance classifier unreachable, falling back to heuristics", "provider", cfg.Name, "error", err)
		return ""
	}
	return strings.TrimSpace(opinion)
}

func isNotRelevant(opinion string) bool {
	return strings.Contains(strings.ToUpper(opinion), "NOT_RELEVANT")
}

// significantTerms tokenizes the question, drops stop words and tokens of
// two characters or fewer, and appends any curated keywords.
func significantTerms(questionText string, keywords []string) []string {
	seen := map[string]bool{}
	var terms []string

	add := func(token string) {
		token = strings.ToLower(strings.TrimFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}))
		if len(token) <= 2 || stopWords[token] || seen[token] {
			return
		}
		seen[token] = true
		terms = append(terms, token)
	}

	for _, token := range strings.Fields(questionText) {
		add(token)
	}
	for _, kw := range keywords {
		add(kw)
	}
	return terms
}

// countTermMatches counts question terms present in the combined text,
// either exactly or as a prefix of at least four characters.
func countTermMatches(terms []string, combined string) int {
	matches := 0
	for _, term := range terms {
		if strings.Contains(combined, term) {
			matches++
			continue
		}
		if len(term) >= 4 && strings.Contains(combined, term[:4]) {
			matches++
		}
	}
	return matches
}

// garbageReason applies the rejection patterns for non-answer text.
func garbageReason(combined string) (string, bool) {
	trimmed := strings.TrimSpace(combined)

	letters := 0
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			letters++
		}
	}

	if letters == 0 {
		return "extracted text contains only digits and symbols", true
	}
	if letters <= 10 {
		return "extracted text contains too few letters to be an answer", true
	}

	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, trimmed)
	runes := []rune(stripped)
	if len(runes) >= 6 {
		same := true
		for _, r := range runes[1:] {
			if r != runes[0] {
				same = false
				break
			}
		}
		if same {
			return "extracted text is a single repeated character", true
		}
	}

	return "", false
}
