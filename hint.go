package imgnamer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// hintTrimChars are stripped from both ends of every hint word.
const hintTrimChars = ".,;:!?\"'()[]{}«»—–-"

// HintWords splits hint into distinct lowercased words of at least minRunes
// runes, in first-seen order.
func HintWords(hint string, minRunes int) []string {
	var words []string
	seen := make(map[string]bool)
	for _, w := range strings.Fields(hint) {
		w = strings.ToLower(strings.Trim(w, hintTrimChars))
		if w == "" || utf8.RuneCountInString(w) < minRunes || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}

// HintBonus returns 1 + matched/total, where total is the number of hint words
// kept by HintWords and matched is how many of them occur in title as whole
// words (case-insensitive). A hint with no usable words is neutral (1.0).
func HintBonus(title, hint string, minWordLength int) float64 {
	words := HintWords(hint, minWordLength)
	if len(words) == 0 {
		return 1
	}
	matched := 0
	for _, w := range words {
		if containsWord(title, w) {
			matched++
		}
	}
	return 1 + float64(matched)/float64(len(words))
}

// containsWord reports whether word occurs in s bounded by non-alphanumeric
// runes or the string ends.
func containsWord(s, word string) bool {
	re := regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])` + regexp.QuoteMeta(word) + `(?:$|[^\p{L}\p{N}_])`)
	return re.MatchString(s)
}
