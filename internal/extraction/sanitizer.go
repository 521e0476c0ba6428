package extraction

import (
	"strings"
	"unicode"

	"github.com/gradepilot/evaluator-api/internal/models"
)

// CleanTexts strips noise lines from raw extracted texts: OCR garbage,
// failure placeholders, bare page numbers. Purely a filter, no semantic
// judgment. Texts left empty after filtering are dropped.
func CleanTexts(texts []string) []string {
	cleaned := make([]string, 0, len(texts))
	for _, text := range texts {
		if c := cleanText(text); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return cleaned
}

func cleanText(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if keepLine(line) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func keepLine(line string) bool {
	if len(line) < 3 {
		return false
	}
	if isFailureSentinel(line) {
		return false
	}
	if isRepeatedChar(line, 6) {
		return false
	}

	letters, alnum := 0, 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	// purely numeric/punctuation lines carry no answer content
	if letters == 0 {
		return false
	}
	return alnum >= 2
}

func isFailureSentinel(line string) bool {
	return line == models.NoReadableText ||
		strings.HasPrefix(line, "Text extraction failed for image")
}

// isRepeatedChar reports whether line is one character repeated at least
// minRun times, ignoring spaces.
func isRepeatedChar(line string, minRun int) bool {
	stripped := strings.ReplaceAll(line, " ", "")
	runes := []rune(stripped)
	if len(runes) < minRun {
		return false
	}
	for _, r := range runes[1:] {
		if r != runes[0] {
			return false
		}
	}
	return true
}
