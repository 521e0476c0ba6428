package evaluation

import (
	"fmt"
	"strings"

	"github.com/gradepilot/evaluator-api/internal/models"
)

// nextImageMarker separates texts extracted from consecutive answer
// images inside the prompt.
const nextImageMarker = "--- NEXT IMAGE ---"

// rubricTemplate is the fixed framework every evaluation prompt embeds so
// providers return a predictable structure.
const rubricTemplate = `Evaluate the answer using this framework:
- Introduction: does the answer open by framing the topic?
- Body: are the main points developed with facts, examples or reasoning?
- Conclusion: does the answer close by summarizing or resolving the question?
- Strengths: what the student did well.
- Weaknesses: what is missing, wrong or underdeveloped.
- Suggestions: concrete ways to improve the answer.
- Feedback: overall qualitative feedback for the student.`

// requiredHeaders is the rigid output section list appended to every
// prompt. Providers must echo these headers verbatim; the response parser
// depends on it.
const requiredHeaders = `Your response MUST contain exactly the following sections, each starting on its own line with the header shown:
RELEVANCY: <number between 0 and 100>
SCORE: <number between 0 and %d>
INTRODUCTION:
BODY:
CONCLUSION:
STRENGTHS:
WEAKNESSES:
SUGGESTIONS:
FEEDBACK:
COMMENTS:
REMARK:
Use bullet points inside INTRODUCTION, BODY, CONCLUSION, STRENGTHS, WEAKNESSES and SUGGESTIONS. Do not add any other sections.`

// CustomPromptOptions tune the custom-criteria prompt variant.
type CustomPromptOptions struct {
	// OmitExtractedText leaves the student's text out, for criteria that
	// evaluate attached artifacts the provider already has.
	OmitExtractedText bool
	// OmitQuestionDetails leaves out question text and marks, for criteria
	// that restate them.
	OmitQuestionDetails bool
}

// BuildStandardPrompt builds the evaluation request for a question using
// the fixed rubric.
func BuildStandardPrompt(question models.Question, texts []string) string {
	var sb strings.Builder

	sb.WriteString("You are an experienced examiner evaluating a student's written answer.\n\n")
	writeQuestionDetails(&sb, question)
	sb.WriteString(rubricTemplate)
	sb.WriteString("\n\n")
	writeExtractedText(&sb, texts)
	fmt.Fprintf(&sb, requiredHeaders, question.MaxMarks)

	return sb.String()
}

// BuildCustomPrompt builds the evaluation request with user-supplied
// criteria prepended to the fixed rubric.
func BuildCustomPrompt(question models.Question, texts []string, criteria string, opts CustomPromptOptions) string {
	var sb strings.Builder

	sb.WriteString("You are an experienced examiner evaluating a student's written answer.\n\n")
	if criteria = strings.TrimSpace(criteria); criteria != "" {
		sb.WriteString("Apply these evaluation criteria before anything else:\n")
		sb.WriteString(criteria)
		sb.WriteString("\n\n")
	}
	if !opts.OmitQuestionDetails {
		writeQuestionDetails(&sb, question)
	}
	sb.WriteString(rubricTemplate)
	sb.WriteString("\n\n")
	if !opts.OmitExtractedText {
		writeExtractedText(&sb, texts)
	}
	fmt.Fprintf(&sb, requiredHeaders, question.MaxMarks)

	return sb.String()
}

func writeQuestionDetails(sb *strings.Builder, question models.Question) {
	fmt.Fprintf(sb, "Question: %s\n", question.Text)
	fmt.Fprintf(sb, "Maximum marks: %d\n\n", question.MaxMarks)
	if len(question.Keywords) > 0 {
		fmt.Fprintf(sb, "Expected key concepts: %s\n\n", strings.Join(question.Keywords, ", "))
	}
}

func writeExtractedText(sb *strings.Builder, texts []string) {
	sb.WriteString("The student's answer, extracted from the submitted images:\n")
	for i, text := range texts {
		if i > 0 {
			sb.WriteString("\n" + nextImageMarker + "\n")
		}
		sb.WriteString(text)
	}
	sb.WriteString("\n\n")
}
