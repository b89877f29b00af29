package mdast

import "unicode"

// EOF is passed as the lookahead rune when the scan has reached the end of
// the current span.
const EOF rune = -1

// Classifier reports whether buf, the runes accumulated since the last
// token, opens a token of some shape. next is the first unread rune.
type Classifier func(buf string, next rune) bool

// IsPlainText matches a non-empty run of word runes (letters, digits, '_').
// It is the low-priority fallback for lines that open with a word.
func IsPlainText(buf string, next rune) bool {
	if buf == "" {
		return false
	}
	for _, r := range buf {
		if !isWordRune(r) {
			return false
		}
	}
	return true
}

// IsHeader matches 1..6 hashes followed by a space.
func IsHeader(buf string, next rune) bool {
	return next == ' ' && hashRun(buf) == len(buf) && validLevel(len(buf))
}

// IsChapter uses the header opener: a chapter opens wherever a header does.
func IsChapter(buf string, next rune) bool {
	return IsHeader(buf, next)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func validLevel(n int) bool {
	return n >= MinLevel && n <= MaxLevel
}

// hashRun counts the leading '#' bytes of s.
func hashRun(s string) int {
	n := 0
	for n < len(s) && s[n] == '#' {
		n++
	}
	return n
}

// openerLevel returns the level of a line shaped like a header opener
// (1..6 hashes then a space), or 0.
func openerLevel(line string) int {
	n := hashRun(line)
	if !validLevel(n) || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}
