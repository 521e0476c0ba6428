package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gradepilot/evaluator-api/internal/models"
)

func TestCleanTextsDropsNoiseLines(t *testing.T) {
	texts := []string{
		"The French Revolution began in 1789.\n\n12345\n======\nIt ended the monarchy.",
	}

	cleaned := CleanTexts(texts)
	assert.Equal(t, []string{"The French Revolution began in 1789.\nIt ended the monarchy."}, cleaned)
}

func TestCleanTextsIdempotent(t *testing.T) {
	clean := []string{"A complete, well formed answer.\nWith two content lines."}

	once := CleanTexts(clean)
	twice := CleanTexts(once)
	assert.Equal(t, clean, once)
	assert.Equal(t, once, twice)
}

func TestCleanTextsDropsFailureSentinels(t *testing.T) {
	texts := []string{
		models.NoReadableText,
		"Text extraction failed for image 2. Please ensure the image is clear and readable.",
		"Actual answer content survives here.",
	}

	cleaned := CleanTexts(texts)
	assert.Equal(t, []string{"Actual answer content survives here."}, cleaned)
}

func TestCleanTextsDropsEmptiedTexts(t *testing.T) {
	texts := []string{"777\n...\n!!", "kept line of real text"}

	cleaned := CleanTexts(texts)
	assert.Len(t, cleaned, 1)
}

func TestKeepLine(t *testing.T) {
	tests := []struct {
		line string
		keep bool
	}{
		{"", false},
		{"ab", false},           // too short
		{"42 + 17 = 59", false}, // no letters
		{"aaaaaaa", false},      // repeated character
		{"- - - - - -", false},  // repeated ignoring spaces
		{"x.!?,;:", false},      // one alphanumeric only
		{"The answer is 42.", true},
		{"ok?", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.keep, keepLine(tt.line), "line %q", tt.line)
	}
}
