package chunker

import (
	"strings"
	"unicode/utf8"
)

// EstimateTokens gives a rough token count: about 1.33 tokens per word, or
// one per four runes for text with few spaces (CJK), whichever is larger.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	tokens := int(float64(len(strings.Fields(text))) * 1.33)
	if byRunes := utf8.RuneCountInString(text) / 4; byRunes > tokens {
		tokens = byRunes
	}
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
