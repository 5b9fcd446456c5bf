package checks

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/contextlint/contextlint/internal/types"
)

var (
	headingRe      = regexp.MustCompile(`(?m)^(#{1,6})\s`)
	headingLineRe  = regexp.MustCompile(`(?m)^#{1,6}\s.*$`)
	listRe         = regexp.MustCompile(`(?m)^[ \t]*[-*+]\s`)
	sentenceEndRe  = regexp.MustCompile(`[.!?]+`)
	vowelGroupRe   = regexp.MustCompile(`(?i)[aeiou]+`)
	firstBreakRe   = regexp.MustCompile(`[.!?]\s`)
)

// Chunk sizes empirically associated with higher citation rates.
const (
	sweetSpotMin = 50
	sweetSpotMax = 150
)

// readabilityMinWords is the floor below which a Flesch-Kincaid grade is
// statistically meaningless and therefore omitted.
const readabilityMinWords = 30

// CheckContent analyzes markdown density: counts, structure flags, heading
// hierarchy, chunking, answer-first ratio, and readability.
func CheckContent(markdown string) types.ContentReport {
	if markdown == "" {
		return types.ContentReport{HeadingHierarchyValid: true, Detail: "No content extracted"}
	}

	words := strings.Fields(markdown)
	wordCount := len(words)

	hasHeadings := headingRe.MatchString(markdown)
	hasLists := listRe.MatchString(markdown)
	hasCodeBlocks := strings.Contains(markdown, "```")

	chunkCount, avgChunkWords, sweetSpot := analyzeChunks(markdown)
	headingCount, hierarchyValid := analyzeHeadings(markdown)

	detail := fmt.Sprintf("%d words", wordCount)
	if hasHeadings {
		detail += ", has headings"
	}
	if hasLists {
		detail += ", has lists"
	}
	if hasCodeBlocks {
		detail += ", has code blocks"
	}

	return types.ContentReport{
		WordCount:             wordCount,
		CharCount:             len([]rune(markdown)),
		HasHeadings:           hasHeadings,
		HasLists:              hasLists,
		HasCodeBlocks:         hasCodeBlocks,
		ChunkCount:            chunkCount,
		AvgChunkWords:         avgChunkWords,
		ChunksInSweetSpot:     sweetSpot,
		ReadabilityGrade:      readabilityGrade(markdown, wordCount),
		HeadingCount:          headingCount,
		HeadingHierarchyValid: hierarchyValid,
		AnswerFirstRatio:      answerFirstRatio(markdown),
		Detail:                detail,
	}
}

// analyzeHeadings counts markdown headings and validates the hierarchy:
// each heading may go at most one level deeper than the deepest level seen
// so far; going shallower is always valid. No H1 requirement.
func analyzeHeadings(markdown string) (count int, valid bool) {
	matches := headingRe.FindAllStringSubmatch(markdown, -1)
	if len(matches) == 0 {
		return 0, true
	}

	valid = true
	maxSeen := len(matches[0][1])
	for _, m := range matches[1:] {
		level := len(m[1])
		if level > maxSeen+1 {
			valid = false
			break
		}
		if level > maxSeen {
			maxSeen = level
		}
	}
	return len(matches), valid
}

// analyzeChunks splits the text on heading lines and sizes the resulting
// sections. Whitespace-only chunks are dropped.
func analyzeChunks(markdown string) (count, avgWords, sweetSpot int) {
	chunks := headingLineRe.Split(markdown, -1)

	var sizes []int
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		sizes = append(sizes, len(strings.Fields(chunk)))
	}
	if len(sizes) == 0 {
		return 0, 0, 0
	}

	total := 0
	for _, n := range sizes {
		total += n
		if n >= sweetSpotMin && n <= sweetSpotMax {
			sweetSpot++
		}
	}
	return len(sizes), total / len(sizes), sweetSpot
}

// answerFirstRatio is the fraction of heading-delimited sections whose
// first sentence is a statement rather than a question, rounded to two
// decimals. Empty input yields 0.
func answerFirstRatio(markdown string) float64 {
	if strings.TrimSpace(markdown) == "" {
		return 0
	}

	sections := headingLineRe.Split(markdown, -1)
	var nonEmpty []string
	for _, s := range sections {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			nonEmpty = append(nonEmpty, trimmed)
		}
	}
	if len(nonEmpty) == 0 {
		return 0
	}

	answerFirst := 0
	for _, section := range nonEmpty {
		first := firstSentence(section)
		if first != "" && !strings.HasSuffix(strings.TrimSpace(first), "?") {
			answerFirst++
		}
	}
	return math.Round(float64(answerFirst)/float64(len(nonEmpty))*100) / 100
}

// firstSentence returns the text up to and including the first
// sentence-ending punctuation that is followed by whitespace, or the whole
// section when no such break exists.
func firstSentence(section string) string {
	if loc := firstBreakRe.FindStringIndex(section); loc != nil {
		return section[:loc[0]+1]
	}
	return section
}

// readabilityGrade computes the Flesch-Kincaid grade level, or nil when
// the text is too short to grade. Syllables are approximated by contiguous
// vowel groups, floored at one per word.
func readabilityGrade(text string, wordCount int) *float64 {
	if wordCount < readabilityMinWords {
		return nil
	}

	var sentences int
	for _, s := range sentenceEndRe.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}

	syllables := 0
	for _, word := range strings.Fields(text) {
		groups := len(vowelGroupRe.FindAllString(word, -1))
		if groups < 1 {
			groups = 1
		}
		syllables += groups
	}

	grade := 0.39*(float64(wordCount)/float64(sentences)) +
		11.8*(float64(syllables)/float64(wordCount)) - 15.59
	rounded := math.Round(grade*10) / 10
	return &rounded
}
