package chunking

import (
	"strings"
	"unicode"
)

// Sentence-terminal punctuation, ASCII and CJK.
var sentenceEnders = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true,
}

// Clause punctuation used as a second-level split for oversized sentences.
var clauseEnders = map[rune]bool{
	',': true, ';': true, ':': true,
}

// Segment splits text into sentence-like units of at most maxLen runes.
// Units are cut after sentence-terminal punctuation; any unit still longer
// than maxLen is split again on clause punctuation, and finally at fixed
// rune offsets. Empty units are dropped.
func Segment(text string, maxLen int) []string {
	if maxLen < 1 {
		maxLen = 1
	}

	var units []string
	for _, s := range splitSentences(text) {
		if runeLen(s) <= maxLen {
			units = append(units, s)
			continue
		}
		for _, part := range splitClauses(s) {
			if runeLen(part) <= maxLen {
				units = append(units, part)
				continue
			}
			units = append(units, forceSplit(part, maxLen)...)
		}
	}
	return units
}

// splitSentences cuts after each sentence-terminal rune, keeping the
// punctuation with its sentence and swallowing the following whitespace.
func splitSentences(text string) []string {
	var out []string
	var buf []rune
	for _, r := range text {
		buf = append(buf, r)
		if sentenceEnders[r] {
			if s := strings.TrimSpace(string(buf)); s != "" {
				out = append(out, s)
			}
			buf = buf[:0]
		}
	}
	if s := strings.TrimSpace(string(buf)); s != "" {
		out = append(out, s)
	}
	return out
}

// splitClauses cuts on clause punctuation followed by whitespace. The
// delimiter is dropped, mirroring how readers treat clause boundaries.
func splitClauses(s string) []string {
	var out []string
	runes := []rune(s)
	start := 0
	for i := 0; i < len(runes); i++ {
		if clauseEnders[runes[i]] && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			if part := strings.TrimSpace(string(runes[start:i])); part != "" {
				out = append(out, part)
			}
			start = i + 1
		}
	}
	if part := strings.TrimSpace(string(runes[start:])); part != "" {
		out = append(out, part)
	}
	return out
}

// forceSplit chops s into maxLen-rune pieces.
func forceSplit(s string, maxLen int) []string {
	runes := []rune(s)
	var out []string
	for i := 0; i < len(runes); i += maxLen {
		end := i + maxLen
		if end > len(runes) {
			end = len(runes)
		}
		if part := strings.TrimSpace(string(runes[i:end])); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runeLen(s string) int { return len([]rune(s)) }
