package evaluation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradepilot/evaluator-api/internal/models"
)

func parserQuestion() models.Question {
	return models.Question{ID: "q1", Text: "Explain the causes of the French Revolution", MaxMarks: 10}
}

const wellFormedResponse = `RELEVANCY: 85
SCORE: 7

INTRODUCTION:
- Opens by situating the revolution in 1789
BODY:
- Covers fiscal crisis and bread prices
- Mentions the Estates-General
CONCLUSION:
- Ties causes back to the fall of the monarchy
STRENGTHS:
- Strong chronological structure
WEAKNESSES:
- No mention of Enlightenment thought
SUGGESTIONS:
- Add the role of the philosophes
FEEDBACK:
A focused answer that covers the economic causes well.
COMMENTS:
The handwriting was clear and easy to extract.
REMARK:
Good answer overall.`

func TestParseWellFormedResponse(t *testing.T) {
	record := Parse(wellFormedResponse, parserQuestion())

	assert.Equal(t, 85, record.Relevancy)
	assert.Equal(t, 7, record.Score)
	assert.Equal(t, []string{"Opens by situating the revolution in 1789"}, record.Analysis[models.SectionIntroduction])
	assert.Equal(t, []string{"Covers fiscal crisis and bread prices", "Mentions the Estates-General"}, record.Analysis[models.SectionBody])
	assert.Equal(t, []string{"No mention of Enlightenment thought"}, record.Analysis[models.SectionWeaknesses])
	assert.Equal(t, []string{"The handwriting was clear and easy to extract."}, record.Comments)
	assert.Equal(t, "Good answer overall.", record.Remark)
}

func TestParsePromptRoundTrip(t *testing.T) {
	// a response using exactly the headers the prompt demands parses back
	// with the injected values in the matching fields
	q := parserQuestion()
	prompt := BuildStandardPrompt(q, []string{"some answer text"})
	for _, header := range []string{"RELEVANCY:", "SCORE:", "INTRODUCTION:", "WEAKNESSES:", "REMARK:"} {
		require.Contains(t, prompt, header)
	}

	record := Parse(wellFormedResponse, q)
	assert.Equal(t, 85, record.Relevancy)
	assert.Equal(t, 7, record.Score)
}

func TestParseClampsOutOfRangeValues(t *testing.T) {
	raw := "RELEVANCY: 250\nSCORE: 99\nREMARK: inflated"
	record := Parse(raw, parserQuestion())

	assert.Equal(t, 100, record.Relevancy)
	assert.Equal(t, 10, record.Score)
}

func TestParseTolerantMarkers(t *testing.T) {
	raw := "relevancy - 60\n**Score** : 4\nremark: fine"
	record := Parse(raw, parserQuestion())

	assert.Equal(t, 60, record.Relevancy)
	assert.Equal(t, 4, record.Score)
}

func TestParseMissingSectionGetsDefault(t *testing.T) {
	raw := strings.ReplaceAll(wellFormedResponse, "WEAKNESSES:\n- No mention of Enlightenment thought\n", "")
	record := Parse(raw, parserQuestion())

	require.Len(t, record.Analysis[models.SectionWeaknesses], 1)
	assert.Equal(t, sectionDefaults[models.SectionWeaknesses], record.Analysis[models.SectionWeaknesses][0])
}

func TestParseNoSectionListEverEmpty(t *testing.T) {
	record := Parse("RELEVANCY: 40\nSCORE: 2", parserQuestion())

	assert.GreaterOrEqual(t, record.Relevancy, 0)
	assert.LessOrEqual(t, record.Relevancy, 100)
	for _, section := range models.AnalysisSections {
		assert.NotEmpty(t, record.Analysis[section], "section %s", section)
	}
	assert.NotEmpty(t, record.Comments)
	assert.NotEmpty(t, record.Remark)
}

func TestParseHeaderVariants(t *testing.T) {
	raw := `RELEVANCY: 70
SCORE: 6
Areas for Improvement:
- Needs more dates
Recommendations:
- Cite primary sources`
	record := Parse(raw, parserQuestion())

	assert.Equal(t, []string{"Needs more dates"}, record.Analysis[models.SectionWeaknesses])
	assert.Equal(t, []string{"Cite primary sources"}, record.Analysis[models.SectionSuggestions])
}

func TestParseRepeatedHeaderAppends(t *testing.T) {
	raw := `STRENGTHS:
- Clear thesis
BODY:
- Good middle
STRENGTHS:
- Strong evidence`
	record := Parse(raw, parserQuestion())

	assert.Equal(t, []string{"Clear thesis", "Strong evidence"}, record.Analysis[models.SectionStrengths])
}

func TestParseHeaderTrailingContent(t *testing.T) {
	raw := "STRENGTHS: Clear and legible handwriting"
	record := Parse(raw, parserQuestion())

	assert.Equal(t, []string{"Clear and legible handwriting"}, record.Analysis[models.SectionStrengths])
}

func TestParseSectionWordInProseIsNotAHeader(t *testing.T) {
	raw := `BODY:
- The introduction of new taxes angered the Third Estate`
	record := Parse(raw, parserQuestion())

	assert.Equal(t, []string{"The introduction of new taxes angered the Third Estate"}, record.Analysis[models.SectionBody])
	assert.Equal(t, []string{sectionDefaults[models.SectionIntroduction]}, record.Analysis[models.SectionIntroduction])
}

func TestParseDeduplicatesRepeatedLines(t *testing.T) {
	raw := `SUGGESTIONS:
- Add more examples
- Add more examples`
	record := Parse(raw, parserQuestion())

	assert.Equal(t, []string{"Add more examples"}, record.Analysis[models.SectionSuggestions])
}

func TestParseEmptyResponseFallsBack(t *testing.T) {
	record := Parse("   \n  ", parserQuestion())

	assert.GreaterOrEqual(t, record.Relevancy, 60)
	assert.LessOrEqual(t, record.Relevancy, 90)
	assert.NotEmpty(t, record.Remark)
	for _, section := range models.AnalysisSections {
		assert.NotEmpty(t, record.Analysis[section])
	}
}

func TestParseMarkdownDecoratedHeaders(t *testing.T) {
	raw := "## **Weaknesses**\n- Missing the economic angle"
	record := Parse(raw, parserQuestion())

	assert.Equal(t, []string{"Missing the economic angle"}, record.Analysis[models.SectionWeaknesses])
}
