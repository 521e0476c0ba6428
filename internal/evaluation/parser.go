package evaluation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gradepilot/evaluator-api/internal/models"
)

// Free-text provider responses are parsed with a declared table of header
// patterns, one per section, each tolerant of label variants. The table is
// data so the heuristics stay testable apart from the accumulation logic.

const (
	sectionComments = "comments"
	sectionRemark   = "remark"
)

type sectionPattern struct {
	section string
	re      *regexp.Regexp
}

// headerPattern builds a pattern matching a section header at line start:
// tolerant of markdown decoration and ':'/'-' separators, but a bare
// section word followed by prose is not a header.
func headerPattern(labels string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^[#*\s]*(?:` + labels + `)[*\s]*(?:[:\-\x{2013}\x{2014}]+\s*(.*)|)$`)
}

var sectionPatterns = []sectionPattern{
	{models.SectionIntroduction, headerPattern(`introduction|intro`)},
	{models.SectionConclusion, headerPattern(`conclusions?`)},
	{models.SectionStrengths, headerPattern(`strengths?|positives|what went well`)},
	{models.SectionWeaknesses, headerPattern(`weaknesses?|areas? (?:of|for) improvement|improvement areas`)},
	{models.SectionSuggestions, headerPattern(`suggestions?|recommendations?`)},
	{models.SectionFeedback, headerPattern(`overall feedback|feedback`)},
	{sectionComments, headerPattern(`additional comments|comments?`)},
	{sectionRemark, headerPattern(`final remarks?|overall remarks?|remarks?`)},
	{models.SectionBody, headerPattern(`main body|body|content analysis`)},
}

var (
	relevancyMarker = regexp.MustCompile(`(?i)^[#*\s]*relevancy\b`)
	scoreMarker     = regexp.MustCompile(`(?i)^[#*\s]*score\b`)
	firstInteger    = regexp.MustCompile(`\d+`)
	bulletPrefix    = regexp.MustCompile(`^[\-\*\x{2022}\x{00b7}\x{25aa}>]+\s*`)
	numberPrefix    = regexp.MustCompile(`^\d+[\.\)]\s*`)
)

var sectionDefaults = map[string]string{
	models.SectionIntroduction: "No introduction could be identified in the answer.",
	models.SectionBody:         "The main body of the answer could not be assessed in detail.",
	models.SectionConclusion:   "No conclusion could be identified in the answer.",
	models.SectionStrengths:    "The answer shows an attempt to address the question.",
	models.SectionWeaknesses:   "No specific weaknesses were identified.",
	models.SectionSuggestions:  "Compare your submission with a model answer to find gaps.",
	models.SectionFeedback:     "See the score and section analysis for overall performance.",
}

const defaultComment = "Evaluation completed from the extracted answer text."

const defaultRemark = "Answer evaluated."

// Parse turns a provider's free-text evaluation response into a structured
// record. It never fails: an unusable response yields the fallback
// evaluator's record, and every numeric field is clamped to its bounds.
func Parse(raw string, question models.Question) (rec models.EvaluationRecord) {
	defer func() {
		if r := recover(); r != nil {
			rec = Mock(question)
		}
	}()

	if strings.TrimSpace(raw) == "" {
		return Mock(question)
	}
	return parse(raw, question)
}

func parse(raw string, question models.Question) models.EvaluationRecord {
	var (
		relevancy int
		score     int
		sections  = map[string][]string{}
		current   string
	)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if relevancyMarker.MatchString(line) {
			relevancy = firstIntegerIn(line, relevancy)
			continue
		}
		if scoreMarker.MatchString(line) {
			score = firstIntegerIn(line, score)
			continue
		}

		if section, trailing, ok := matchHeader(line); ok {
			// a repeated header re-activates its section; accumulated
			// content is kept and appended to
			current = section
			if t := stripBullet(trailing); t != "" {
				sections[current] = append(sections[current], t)
			}
			continue
		}

		if current == "" {
			continue
		}
		sections[current] = append(sections[current], stripBullet(line))
	}

	record := models.EvaluationRecord{
		Relevancy: clamp(relevancy, 0, 100),
		Score:     clamp(score, 0, max(question.MaxMarks, 0)),
		Analysis:  map[string][]string{},
	}

	for _, section := range models.AnalysisSections {
		record.Analysis[section] = finishSection(sections[section], sectionDefaults[section])
	}
	record.Comments = finishSection(sections[sectionComments], defaultComment)
	record.Remark = strings.Join(finishSection(sections[sectionRemark], defaultRemark), " ")

	return record
}

// matchHeader tests a line against the pattern table, returning the
// matched section and any trailing content on the header line.
func matchHeader(line string) (section, trailing string, ok bool) {
	for _, sp := range sectionPatterns {
		if m := sp.re.FindStringSubmatch(line); m != nil {
			return sp.section, strings.TrimSpace(m[1]), true
		}
	}
	return "", "", false
}

// finishSection re-filters stray header lines, deduplicates, trims, and
// substitutes the default placeholder when nothing is left. Sections are
// never empty for consumers.
func finishSection(lines []string, def string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, trailing, ok := matchHeader(line); ok && trailing == "" {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	if len(out) == 0 {
		return []string{def}
	}
	return out
}

func stripBullet(line string) string {
	line = bulletPrefix.ReplaceAllString(line, "")
	line = numberPrefix.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

func firstIntegerIn(line string, fallback int) int {
	match := firstInteger.FindString(line)
	if match == "" {
		return fallback
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return fallback
	}
	return n
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
